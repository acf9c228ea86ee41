package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/vidaplan/corretora-api/internal/models"
)

// ContractFSM wraps a contract with its state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	cfsm.fsm = fsm.NewFSM(
		contract.Status,
		fsm.Events{
			// em_analise/suspenso → ativo
			{Name: "activate", Src: []string{models.ContractStatusEmAnalise, models.ContractStatusSuspenso}, Dst: models.ContractStatusAtivo},

			// ativo → suspenso
			{Name: "suspend", Src: []string{models.ContractStatusAtivo}, Dst: models.ContractStatusSuspenso},

			// em_analise/ativo/suspenso → cancelado
			{Name: "cancel", Src: []string{models.ContractStatusEmAnalise, models.ContractStatusAtivo, models.ContractStatusSuspenso}, Dst: models.ContractStatusCancelado},

			// ativo → encerrado
			{Name: "close", Src: []string{models.ContractStatusAtivo}, Dst: models.ContractStatusEncerrado},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Activate transitions the contract to ativo
func (c *ContractFSM) Activate(ctx context.Context) error {
	if !c.contract.MayActivate() {
		return fmt.Errorf("contract cannot be activated in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Suspend transitions the contract to suspenso
func (c *ContractFSM) Suspend(ctx context.Context) error {
	if !c.contract.MaySuspend() {
		return fmt.Errorf("contract cannot be suspended in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "suspend"); err != nil {
		return fmt.Errorf("failed to suspend contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Cancel transitions the contract to cancelado
func (c *ContractFSM) Cancel(ctx context.Context) error {
	if !c.contract.MayCancel() {
		return fmt.Errorf("contract cannot be cancelled in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Close transitions the contract to encerrado
func (c *ContractFSM) Close(ctx context.Context) error {
	if !c.contract.MayClose() {
		return fmt.Errorf("contract cannot be closed in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("failed to close contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}
