package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidaplan/corretora-api/internal/models"
)

func TestUpsertFromSourceDeduplicatesByExternalID(t *testing.T) {
	repo := &fakeLeadRepo{}
	externalID := "L-42"
	repo.leads = append(repo.leads, &models.Lead{
		ID:         7,
		Name:       "Ana",
		ExternalID: &externalID,
	})
	svc := NewLeadService(repo, nil, nil, nil)

	lead := &models.Lead{Name: "Ana Souza", ExternalID: &externalID, Source: models.LeadSourceFacebook}
	existing, isNew, err := svc.UpsertFromSource(context.Background(), lead)
	require.NoError(t, err)

	assert.False(t, isNew)
	assert.Equal(t, uint(7), existing.ID)
	assert.Len(t, repo.leads, 1)
}

func TestUpsertFromSourceDeduplicatesByPhoneDigits(t *testing.T) {
	repo := &fakeLeadRepo{}
	repo.leads = append(repo.leads, &models.Lead{
		ID:    3,
		Name:  "Carlos",
		Phone: "+55 (11) 99999-0000",
	})
	svc := NewLeadService(repo, nil, nil, nil)

	// same number, different formatting
	lead := &models.Lead{Name: "Carlos P", Phone: "5511999990000", Source: models.LeadSourceWhatsApp}
	existing, isNew, err := svc.UpsertFromSource(context.Background(), lead)
	require.NoError(t, err)

	assert.False(t, isNew)
	assert.Equal(t, uint(3), existing.ID)
}
