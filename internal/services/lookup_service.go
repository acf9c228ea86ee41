package services

import (
	"context"
	"fmt"

	"github.com/vidaplan/corretora-api/internal/integrations/brasilapi"
	"github.com/vidaplan/corretora-api/internal/models"
)

// LookupService validates and enriches company and address data
type LookupService struct {
	client brasilapi.Client
}

func NewLookupService(client brasilapi.Client) *LookupService {
	return &LookupService{client: client}
}

// LookupCNPJ fetches the registry record for a CNPJ. The document is
// normalized to digits before the query.
func (s *LookupService) LookupCNPJ(ctx context.Context, cnpj string) (*brasilapi.Company, error) {
	digits := models.DigitsOnly(cnpj)
	if len(digits) != 14 {
		return nil, fmt.Errorf("%w: CNPJ deve ter 14 dígitos", ErrValidation)
	}
	return s.client.LookupCNPJ(ctx, digits)
}

// LookupCEP fetches the address for a CEP
func (s *LookupService) LookupCEP(ctx context.Context, cep string) (*brasilapi.Address, error) {
	digits := models.DigitsOnly(cep)
	if len(digits) != 8 {
		return nil, fmt.Errorf("%w: CEP deve ter 8 dígitos", ErrValidation)
	}
	return s.client.LookupCEP(ctx, digits)
}
