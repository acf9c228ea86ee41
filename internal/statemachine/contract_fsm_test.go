package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidaplan/corretora-api/internal/models"
)

func TestContractLifecycle(t *testing.T) {
	ctx := context.Background()
	contract := &models.Contract{Status: models.ContractStatusEmAnalise}

	require.NoError(t, NewContractFSM(contract).Activate(ctx))
	assert.Equal(t, models.ContractStatusAtivo, contract.Status)

	require.NoError(t, NewContractFSM(contract).Suspend(ctx))
	assert.Equal(t, models.ContractStatusSuspenso, contract.Status)

	// suspended contracts can be reactivated
	require.NoError(t, NewContractFSM(contract).Activate(ctx))
	assert.Equal(t, models.ContractStatusAtivo, contract.Status)

	require.NoError(t, NewContractFSM(contract).Close(ctx))
	assert.Equal(t, models.ContractStatusEncerrado, contract.Status)
}

func TestContractInvalidTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot suspend before activation", func(t *testing.T) {
		contract := &models.Contract{Status: models.ContractStatusEmAnalise}
		assert.Error(t, NewContractFSM(contract).Suspend(ctx))
		assert.Equal(t, models.ContractStatusEmAnalise, contract.Status)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		contract := &models.Contract{Status: models.ContractStatusAtivo}
		require.NoError(t, NewContractFSM(contract).Cancel(ctx))
		assert.Equal(t, models.ContractStatusCancelado, contract.Status)

		assert.Error(t, NewContractFSM(contract).Activate(ctx))
		assert.Error(t, NewContractFSM(contract).Close(ctx))
	})

	t.Run("closed is terminal", func(t *testing.T) {
		contract := &models.Contract{Status: models.ContractStatusEncerrado}
		assert.Error(t, NewContractFSM(contract).Activate(ctx))
		assert.Error(t, NewContractFSM(contract).Cancel(ctx))
	})
}

func TestLeadPipeline(t *testing.T) {
	ctx := context.Background()
	lead := &models.Lead{Stage: models.LeadStageNovo}

	require.NoError(t, NewLeadFSM(lead).Advance(ctx, "contact"))
	assert.Equal(t, models.LeadStageEmContato, lead.Stage)

	require.NoError(t, NewLeadFSM(lead).Advance(ctx, "propose"))
	assert.Equal(t, models.LeadStageProposta, lead.Stage)

	require.NoError(t, NewLeadFSM(lead).Advance(ctx, "win"))
	assert.Equal(t, models.LeadStageFechado, lead.Stage)
}

func TestLeadPipelineLoseAndRevive(t *testing.T) {
	ctx := context.Background()
	lead := &models.Lead{Stage: models.LeadStageEmContato}

	require.NoError(t, NewLeadFSM(lead).Advance(ctx, "lose"))
	assert.Equal(t, models.LeadStagePerdido, lead.Stage)

	require.NoError(t, NewLeadFSM(lead).Advance(ctx, "revive"))
	assert.Equal(t, models.LeadStageEmContato, lead.Stage)
}

func TestLeadPipelineGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot propose before contact", func(t *testing.T) {
		lead := &models.Lead{Stage: models.LeadStageNovo}
		assert.Error(t, NewLeadFSM(lead).Advance(ctx, "propose"))
		assert.Equal(t, models.LeadStageNovo, lead.Stage)
	})

	t.Run("fechado is terminal", func(t *testing.T) {
		lead := &models.Lead{Stage: models.LeadStageFechado}
		lfsm := NewLeadFSM(lead)
		assert.False(t, lfsm.Can("contact"))
		assert.False(t, lfsm.Can("lose"))
		assert.Error(t, lfsm.Advance(ctx, "lose"))
	})

	t.Run("cannot win directly from novo", func(t *testing.T) {
		lead := &models.Lead{Stage: models.LeadStageNovo}
		assert.Error(t, NewLeadFSM(lead).Advance(ctx, "win"))
	})
}
