package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidaplan/corretora-api/internal/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func TestValidatePlan(t *testing.T) {
	svc := NewCommissionService()

	t.Run("advance mode ignores the plan entirely", func(t *testing.T) {
		assert.NoError(t, svc.ValidatePlan(true, nil))
		assert.NoError(t, svc.ValidatePlan(true, models.InstallmentList{
			{Percentual: 500}, // over the ceiling, still fine in advance mode
		}))
	})

	t.Run("distributed mode requires at least one active installment", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidatePlan(false, nil), ErrSemParcelas)
		assert.ErrorIs(t, svc.ValidatePlan(false, models.InstallmentList{}), ErrSemParcelas)
		// zero-percent rows are ignored
		assert.ErrorIs(t, svc.ValidatePlan(false, models.InstallmentList{
			{Percentual: 0, DataPagamento: strPtr("2026-01-10")},
		}), ErrSemParcelas)
	})

	t.Run("every active installment needs a valid payment date", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidatePlan(false, models.InstallmentList{
			{Percentual: 100},
		}), ErrParcelaSemData)
		assert.ErrorIs(t, svc.ValidatePlan(false, models.InstallmentList{
			{Percentual: 100, DataPagamento: strPtr("")},
		}), ErrParcelaSemData)
		assert.ErrorIs(t, svc.ValidatePlan(false, models.InstallmentList{
			{Percentual: 100, DataPagamento: strPtr("10/01/2026")},
		}), ErrParcelaSemData)
	})

	t.Run("sum above the 280 ceiling is rejected", func(t *testing.T) {
		err := svc.ValidatePlan(false, models.InstallmentList{
			{Percentual: 200, DataPagamento: strPtr("2026-01-10")},
			{Percentual: 110, DataPagamento: strPtr("2026-02-10")},
		})
		assert.ErrorIs(t, err, ErrTetoComissaoExcedido)
	})

	t.Run("valid distributed plan passes", func(t *testing.T) {
		err := svc.ValidatePlan(false, models.InstallmentList{
			{Percentual: 100, DataPagamento: strPtr("2026-01-10")},
			{Percentual: 80, DataPagamento: strPtr("2026-02-10")},
		})
		assert.NoError(t, err)
	})
}

func TestRecomputeAdvanceMode(t *testing.T) {
	svc := NewCommissionService()

	contract := &models.Contract{
		MensalidadeTotal:      1000,
		ComissaoMultiplicador: 2.8,
		RecebimentoAdiantado:  true,
		Adjustments: []models.ValueAdjustment{
			{Tipo: models.AdjustmentAcrescimo, Valor: 200},
		},
	}

	svc.Recompute(contract)
	assert.Equal(t, 3360.0, contract.ComissaoPrevista) // (1000+200) * 2.8
}

func TestRecomputeDistributedMode(t *testing.T) {
	svc := NewCommissionService()

	contract := &models.Contract{
		MensalidadeTotal:      1000,
		ComissaoMultiplicador: 2.8,
		RecebimentoAdiantado:  false,
		ComissaoParcelas: models.InstallmentList{
			{Percentual: 100, DataPagamento: strPtr("2026-01-10")},
			{Percentual: 80, DataPagamento: strPtr("2026-02-10")},
		},
	}

	svc.Recompute(contract)
	assert.Equal(t, 1800.0, contract.ComissaoPrevista) // 1000 * 180%
}

func TestRecomputeDistributedModeCapsAtCeiling(t *testing.T) {
	svc := NewCommissionService()

	contract := &models.Contract{
		MensalidadeTotal:     1000,
		RecebimentoAdiantado: false,
		ComissaoParcelas: models.InstallmentList{
			{Percentual: 200, DataPagamento: strPtr("2026-01-10")},
			{Percentual: 110, DataPagamento: strPtr("2026-02-10")},
		},
	}

	// Even though validation would reject this plan, the rate itself
	// never exceeds the ceiling.
	svc.Recompute(contract)
	assert.Equal(t, 2800.0, contract.ComissaoPrevista)
}

func TestRecomputeKeepsStaleValueWhenAdjustedIsNotPositive(t *testing.T) {
	svc := NewCommissionService()

	contract := &models.Contract{
		MensalidadeTotal:      1000,
		ComissaoMultiplicador: 2.8,
		RecebimentoAdiantado:  true,
		ComissaoPrevista:      2800,
		Adjustments: []models.ValueAdjustment{
			{Tipo: models.AdjustmentDesconto, Valor: 1500},
		},
	}

	svc.Recompute(contract)
	assert.Equal(t, 2800.0, contract.ComissaoPrevista, "previous value must survive a non-positive adjusted base")
}

func TestRecomputeRoundsToTwoDecimals(t *testing.T) {
	svc := NewCommissionService()

	contract := &models.Contract{
		MensalidadeTotal:      333.33,
		ComissaoMultiplicador: 2.8,
		RecebimentoAdiantado:  true,
	}

	svc.Recompute(contract)
	assert.Equal(t, 933.32, contract.ComissaoPrevista)
}

func TestEffectiveRateFallsBackToMultiplierWithoutPlan(t *testing.T) {
	svc := NewCommissionService()

	contract := &models.Contract{
		ComissaoMultiplicador: 2.8,
		RecebimentoAdiantado:  false,
	}
	assert.Equal(t, 2.8, svc.EffectiveRate(contract))
}

func TestEstimateBonus(t *testing.T) {
	svc := NewCommissionService()

	t.Run("no bonus configured", func(t *testing.T) {
		estimate := svc.EstimateBonus(&models.Contract{Vidas: 10})
		assert.Equal(t, 0.0, estimate.Total)
		assert.Equal(t, 1, estimate.InstallmentsNeeded)
	})

	t.Run("total scales with lives", func(t *testing.T) {
		estimate := svc.EstimateBonus(&models.Contract{
			Vidas:             10,
			BonusPorVidaValor: f64Ptr(50),
		})
		assert.Equal(t, 500.0, estimate.Total)
		assert.Equal(t, 1, estimate.InstallmentsNeeded)
	})

	t.Run("monthly cap splits the payout", func(t *testing.T) {
		estimate := svc.EstimateBonus(&models.Contract{
			Vidas:             10,
			BonusPorVidaValor: f64Ptr(50),
			BonusLimiteMensal: f64Ptr(20),
		})
		require.Equal(t, 500.0, estimate.Total)
		assert.Equal(t, 200.0, estimate.MonthlyCapTotal)
		assert.Equal(t, 3, estimate.InstallmentsNeeded) // ceil(500/200)
	})
}
