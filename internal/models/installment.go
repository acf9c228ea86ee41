package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxCommissionPercent is the ceiling for the sum of installment percentages.
const MaxCommissionPercent = 280.0

// Percent is a percentage value that tolerates sloppy client input:
// it decodes from a JSON number or a numeric string, and anything
// non-numeric decodes as 0 (the installment is later dropped at save time).
type Percent float64

// UnmarshalJSON implements json.Unmarshaler
func (p *Percent) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*p = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	// pt-BR decimal comma input
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = Percent(v)
	return nil
}

// MarshalJSON implements json.Marshaler
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(p))
}

// CommissionInstallment is one entry of the distributed commission plan
// persisted as jsonb in the contract's comissao_parcelas column.
type CommissionInstallment struct {
	Percentual    Percent `json:"percentual"`
	DataPagamento *string `json:"data_pagamento"` // YYYY-MM-DD, nil when unset
}

// InstallmentList is the jsonb column type for comissao_parcelas.
type InstallmentList []CommissionInstallment

// Value implements driver.Valuer
func (l InstallmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *InstallmentList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into InstallmentList", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Active returns the installments that carry a positive percentage.
// Zero entries (including non-numeric input parsed as 0) are excluded
// and never persisted.
func (l InstallmentList) Active() InstallmentList {
	var active InstallmentList
	for _, ins := range l {
		if ins.Percentual > 0 {
			active = append(active, ins)
		}
	}
	return active
}

// TotalPercent sums the active installments' percentages.
func (l InstallmentList) TotalPercent() float64 {
	var total float64
	for _, ins := range l.Active() {
		total += float64(ins.Percentual)
	}
	return total
}
