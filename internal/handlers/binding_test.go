package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	Titular string  `json:"titular"`
	Vidas   int     `json:"vidas"`
	Valor   float64 `json:"mensalidade_total"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "nested structure",
			key:      "contract",
			body:     `{"contract": {"titular": "Empresa A", "vidas": 12, "mensalidade_total": 4500.5}}`,
			expected: bindTarget{Titular: "Empresa A", Vidas: 12, Valor: 4500.5},
		},
		{
			name:     "flat structure",
			key:      "contract",
			body:     `{"titular": "Empresa B", "vidas": 3}`,
			expected: bindTarget{Titular: "Empresa B", Vidas: 3},
		},
		{
			name:     "missing key falls back to flat",
			key:      "contract",
			body:     `{"other": 1, "titular": "Empresa C"}`,
			expected: bindTarget{Titular: "Empresa C"},
		},
		{
			name:        "type mismatch errors",
			key:         "contract",
			body:        `{"titular": "Empresa D", "vidas": "doze"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/contracts", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			err := BindNestedOrFlat(c, tt.key, &target)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, target)
		})
	}
}
