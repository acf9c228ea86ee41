package models

import (
	"time"
)

// ValueAdjustment is a signed monetary adjustment (surcharge or discount)
// applied to a contract's base monthly value. Rows are immutable once
// created; the only lifecycle operations are create and delete.
type ValueAdjustment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ContractID uint      `gorm:"not null;index" json:"contract_id"`
	Tipo       string    `gorm:"size:20;not null" json:"tipo"` // acrescimo, desconto
	Valor      float64   `gorm:"not null" json:"valor"`
	Motivo     string    `gorm:"type:text" json:"motivo"`
	CreatedBy  string    `gorm:"size:120" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`

	// Associations
	Contract *Contract `gorm:"foreignKey:ContractID" json:"-"`
}

// TableName specifies the table name for ValueAdjustment
func (ValueAdjustment) TableName() string {
	return "ajustes_valor"
}

// Adjustment type constants
const (
	AdjustmentAcrescimo = "acrescimo"
	AdjustmentDesconto  = "desconto"
)

// SignedValue returns the adjustment's contribution to the fold:
// positive for surcharges, negative for discounts.
func (a *ValueAdjustment) SignedValue() float64 {
	if a.Tipo == AdjustmentDesconto {
		return -a.Valor
	}
	return a.Valor
}

// AdjustedValue folds a list of adjustments over a base value. The fold is
// a plain sum of signed deltas, so it is order-independent. No floor is
// applied: discounts exceeding the base yield a negative result.
func AdjustedValue(base float64, adjustments []ValueAdjustment) float64 {
	adjusted := base
	for i := range adjustments {
		adjusted += adjustments[i].SignedValue()
	}
	return adjusted
}
