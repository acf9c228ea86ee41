package models

import (
	"time"
)

// Contract represents a health-insurance deal managed by the brokerage.
// Commission fields keep the pt-BR column/JSON names used by the rest of
// the back office.
type Contract struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	LeadID       *uint  `gorm:"index" json:"lead_id"`
	CorretorID   uint   `gorm:"not null;index" json:"corretor_id"`
	Titular      string `gorm:"not null" json:"titular"`
	CNPJ         *string `gorm:"size:18;index" json:"cnpj"`
	Operadora    string `gorm:"size:120" json:"operadora"`
	Plano        string `gorm:"size:120" json:"plano"`
	Status       string `gorm:"default:em_analise;index" json:"status"`

	// Commission inputs
	MensalidadeTotal        float64         `gorm:"column:mensalidade_total;type:decimal;not null;default:0" json:"mensalidade_total"`
	ComissaoMultiplicador   float64         `gorm:"column:comissao_multiplicador;type:decimal;not null;default:2.8" json:"comissao_multiplicador"`
	RecebimentoAdiantado    bool            `gorm:"column:comissao_recebimento_adiantado;default:true" json:"comissao_recebimento_adiantado"`
	ComissaoParcelas        InstallmentList `gorm:"column:comissao_parcelas;type:jsonb" json:"comissao_parcelas"`
	ComissaoPrevista        float64         `gorm:"column:comissao_prevista;type:decimal" json:"comissao_prevista"`

	// Per-life bonus
	Vidas             int      `gorm:"not null;default:1" json:"vidas"`
	BonusPorVidaValor *float64 `gorm:"column:bonus_por_vida_valor;type:decimal" json:"bonus_por_vida_valor"`
	BonusAplicado     bool     `gorm:"column:bonus_por_vida_aplicado;default:false" json:"bonus_por_vida_aplicado"`
	BonusLimiteMensal *float64 `gorm:"column:bonus_limite_mensal;type:decimal" json:"bonus_limite_mensal"`

	VigenciaInicio *time.Time `json:"vigencia_inicio"`
	CanceledAt     *time.Time `json:"canceled_at"`
	Note           *string    `gorm:"type:text" json:"note"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	Lead        *Lead             `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Corretor    User              `gorm:"foreignKey:CorretorID" json:"corretor,omitempty"`
	Adjustments []ValueAdjustment `gorm:"foreignKey:ContractID" json:"ajustes,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusEmAnalise = "em_analise"
	ContractStatusAtivo     = "ativo"
	ContractStatusSuspenso  = "suspenso"
	ContractStatusCancelado = "cancelado"
	ContractStatusEncerrado = "encerrado"
)

// MayActivate returns true if the contract can transition to ativo
func (c *Contract) MayActivate() bool {
	return c.Status == ContractStatusEmAnalise || c.Status == ContractStatusSuspenso
}

// MaySuspend returns true if the contract can be suspended
func (c *Contract) MaySuspend() bool {
	return c.Status == ContractStatusAtivo
}

// MayCancel returns true if the contract can be cancelled
func (c *Contract) MayCancel() bool {
	return c.Status == ContractStatusEmAnalise ||
		c.Status == ContractStatusAtivo ||
		c.Status == ContractStatusSuspenso
}

// MayClose returns true if the contract can be closed out
func (c *Contract) MayClose() bool {
	return c.Status == ContractStatusAtivo
}

// AdjustedMonthlyValue folds the adjustment ledger over the base monthly value.
func (c *Contract) AdjustedMonthlyValue() float64 {
	return AdjustedValue(c.MensalidadeTotal, c.Adjustments)
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                   uint              `json:"id"`
	LeadID               *uint             `json:"lead_id"`
	CorretorID           uint              `json:"corretor_id"`
	CorretorName         string            `json:"corretor_name"`
	Titular              string            `json:"titular"`
	CNPJ                 *string           `json:"cnpj"`
	Operadora            string            `json:"operadora"`
	Plano                string            `json:"plano"`
	Status               string            `json:"status"`
	MensalidadeTotal     float64           `json:"mensalidade_total"`
	ValorAjustado        float64           `json:"valor_ajustado"`
	Multiplicador        float64           `json:"comissao_multiplicador"`
	RecebimentoAdiantado bool              `json:"comissao_recebimento_adiantado"`
	Parcelas             InstallmentList   `json:"comissao_parcelas"`
	ComissaoPrevista     float64           `json:"comissao_prevista"`
	Vidas                int               `json:"vidas"`
	BonusPorVidaValor    *float64          `json:"bonus_por_vida_valor"`
	BonusAplicado        bool              `json:"bonus_por_vida_aplicado"`
	BonusLimiteMensal    *float64          `json:"bonus_limite_mensal"`
	Ajustes              []ValueAdjustment `json:"ajustes"`
	VigenciaInicio       *time.Time        `json:"vigencia_inicio"`
	Note                 *string           `json:"note"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:                   c.ID,
		LeadID:               c.LeadID,
		CorretorID:           c.CorretorID,
		Titular:              c.Titular,
		CNPJ:                 c.CNPJ,
		Operadora:            c.Operadora,
		Plano:                c.Plano,
		Status:               c.Status,
		MensalidadeTotal:     c.MensalidadeTotal,
		ValorAjustado:        c.AdjustedMonthlyValue(),
		Multiplicador:        c.ComissaoMultiplicador,
		RecebimentoAdiantado: c.RecebimentoAdiantado,
		Parcelas:             c.ComissaoParcelas,
		ComissaoPrevista:     c.ComissaoPrevista,
		Vidas:                c.Vidas,
		BonusPorVidaValor:    c.BonusPorVidaValor,
		BonusAplicado:        c.BonusAplicado,
		BonusLimiteMensal:    c.BonusLimiteMensal,
		Ajustes:              c.Adjustments,
		VigenciaInicio:       c.VigenciaInicio,
		Note:                 c.Note,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
	resp.CorretorName = c.Corretor.FullName
	if resp.Parcelas == nil {
		resp.Parcelas = InstallmentList{}
	}
	if resp.Ajustes == nil {
		resp.Ajustes = []ValueAdjustment{}
	}
	return resp
}
