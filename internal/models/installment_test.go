package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Percent
	}{
		{"number", `120.5`, 120.5},
		{"numeric string", `"100"`, 100},
		{"decimal comma", `"87,5"`, 87.5},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"garbage decodes as zero", `"cem por cento"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Percent
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestInstallmentListActiveDropsZeroRows(t *testing.T) {
	date := "2026-01-10"
	list := InstallmentList{
		{Percentual: 100, DataPagamento: &date},
		{Percentual: 0, DataPagamento: &date},
		{Percentual: 80},
	}

	active := list.Active()
	require.Len(t, active, 2)
	assert.Equal(t, Percent(100), active[0].Percentual)
	assert.Equal(t, Percent(80), active[1].Percentual)
	assert.Equal(t, 180.0, list.TotalPercent())
}

func TestInstallmentListScanValue(t *testing.T) {
	date := "2026-03-15"
	list := InstallmentList{{Percentual: 140, DataPagamento: &date}}

	raw, err := list.Value()
	require.NoError(t, err)

	var scanned InstallmentList
	require.NoError(t, scanned.Scan(raw))
	require.Len(t, scanned, 1)
	assert.Equal(t, Percent(140), scanned[0].Percentual)
	require.NotNil(t, scanned[0].DataPagamento)
	assert.Equal(t, date, *scanned[0].DataPagamento)

	var empty InstallmentList
	val, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", val)
}

func TestAdjustedValueFold(t *testing.T) {
	acrescimo := ValueAdjustment{Tipo: AdjustmentAcrescimo, Valor: 200}
	desconto := ValueAdjustment{Tipo: AdjustmentDesconto, Valor: 50}

	assert.Equal(t, 1150.0, AdjustedValue(1000, []ValueAdjustment{acrescimo, desconto}))

	// order never matters
	assert.Equal(t,
		AdjustedValue(1000, []ValueAdjustment{acrescimo, desconto}),
		AdjustedValue(1000, []ValueAdjustment{desconto, acrescimo}))

	// no floor at zero
	assert.Equal(t, -500.0, AdjustedValue(1000, []ValueAdjustment{
		{Tipo: AdjustmentDesconto, Valor: 1500},
	}))

	assert.Equal(t, 1000.0, AdjustedValue(1000, nil))
}

func TestIsGroupChatID(t *testing.T) {
	assert.True(t, IsGroupChatID("120363041234567890@g.us"))
	assert.False(t, IsGroupChatID("5511999990000@s.whatsapp.net"))
	assert.False(t, IsGroupChatID("123456@lid"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "5511999990000", DigitsOnly("+55 (11) 99999-0000"))
	assert.Equal(t, "", DigitsOnly("abc"))
}
