package services

import (
	"math"
	"time"

	"github.com/vidaplan/corretora-api/internal/models"
)

// CommissionService derives the predicted commission and per-life bonus
// figures from a contract's inputs. All methods are pure; persistence is
// the caller's job.
type CommissionService struct{}

// NewCommissionService creates a new commission service
func NewCommissionService() *CommissionService {
	return &CommissionService{}
}

// ValidatePlan checks the installment plan before a contract is saved.
// In advance mode the plan is ignored entirely. In distributed mode the
// active installments must be non-empty, fully dated and within the
// 280% ceiling.
func (s *CommissionService) ValidatePlan(recebimentoAdiantado bool, parcelas models.InstallmentList) error {
	if recebimentoAdiantado {
		return nil
	}

	active := parcelas.Active()
	if len(active) == 0 {
		return ErrSemParcelas
	}
	for _, parcela := range active {
		if parcela.DataPagamento == nil || *parcela.DataPagamento == "" {
			return ErrParcelaSemData
		}
		if _, err := time.Parse("2006-01-02", *parcela.DataPagamento); err != nil {
			return ErrParcelaSemData
		}
	}
	if parcelas.TotalPercent() > models.MaxCommissionPercent {
		return ErrTetoComissaoExcedido
	}
	return nil
}

// EffectiveRate selects the commission rate for a contract: the capped
// installment total when a distributed plan is in effect, the flat
// multiplier otherwise.
func (s *CommissionService) EffectiveRate(contract *models.Contract) float64 {
	total := contract.ComissaoParcelas.TotalPercent()
	if !contract.RecebimentoAdiantado && total > 0 {
		return math.Min(total, models.MaxCommissionPercent) / 100
	}
	return contract.ComissaoMultiplicador
}

// Recompute derives comissao_prevista from the adjusted monthly value and
// the effective rate, rounded to 2 decimals. When the adjusted value is
// zero or negative the previous value is retained untouched; the original
// system behaves this way and callers rely on it.
func (s *CommissionService) Recompute(contract *models.Contract) {
	adjusted := contract.AdjustedMonthlyValue()
	if adjusted <= 0 {
		return
	}
	contract.ComissaoPrevista = round2(adjusted * s.EffectiveRate(contract))
}

// BonusEstimate is the per-life bonus projection for a contract.
type BonusEstimate struct {
	Total              float64 `json:"bonus_total"`
	MonthlyCapTotal    float64 `json:"bonus_monthly_cap_total"`
	InstallmentsNeeded int     `json:"installments_needed"`
}

// EstimateBonus computes the total bonus owed and, when a monthly payout
// cap applies, the number of months required to exhaust it. Purely
// informational, no payment schedule is generated.
func (s *CommissionService) EstimateBonus(contract *models.Contract) BonusEstimate {
	estimate := BonusEstimate{InstallmentsNeeded: 1}
	if contract.BonusPorVidaValor == nil || contract.Vidas < 1 {
		return estimate
	}

	estimate.Total = *contract.BonusPorVidaValor * float64(contract.Vidas)

	if contract.BonusLimiteMensal != nil && *contract.BonusLimiteMensal > 0 {
		estimate.MonthlyCapTotal = *contract.BonusLimiteMensal * float64(contract.Vidas)
		if estimate.MonthlyCapTotal > 0 {
			estimate.InstallmentsNeeded = int(math.Ceil(estimate.Total / estimate.MonthlyCapTotal))
		}
	}
	return estimate
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
