package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/integrations/facebook"
	"github.com/vidaplan/corretora-api/internal/models"
)

type fakeGraphClient struct {
	calls   []string
	details *facebook.LeadDetails
}

func (c *fakeGraphClient) GetLeadDetails(ctx context.Context, leadgenID string) (*facebook.LeadDetails, error) {
	c.calls = append(c.calls, leadgenID)
	return c.details, nil
}

func TestVerifySubscription(t *testing.T) {
	cfg := &config.Config{FacebookVerifyToken: "segredo"}
	svc := NewFacebookService(cfg, &fakeGraphClient{}, nil, &fakeEventRepo{})

	t.Run("valid handshake echoes the challenge", func(t *testing.T) {
		challenge, err := svc.VerifySubscription("subscribe", "segredo", "12345")
		require.NoError(t, err)
		assert.Equal(t, "12345", challenge)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		_, err := svc.VerifySubscription("subscribe", "errado", "12345")
		assert.Error(t, err)
	})

	t.Run("empty token never matches", func(t *testing.T) {
		empty := NewFacebookService(&config.Config{}, &fakeGraphClient{}, nil, &fakeEventRepo{})
		_, err := empty.VerifySubscription("subscribe", "", "12345")
		assert.Error(t, err)
	})

	t.Run("wrong mode is rejected", func(t *testing.T) {
		_, err := svc.VerifySubscription("unsubscribe", "segredo", "12345")
		assert.Error(t, err)
	})
}

func TestWebhookPayloadParsing(t *testing.T) {
	raw := `{
		"object": "page",
		"entry": [{
			"id": "1234",
			"time": 1700000000,
			"changes": [{
				"field": "leadgen",
				"value": {"leadgen_id": "L-1", "form_id": "F-1", "page_id": "P-1"}
			}]
		}]
	}`

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	require.Len(t, payload.Entry, 1)
	require.Len(t, payload.Entry[0].Changes, 1)
	assert.Equal(t, "leadgen", payload.Entry[0].Changes[0].Field)
	assert.Equal(t, "L-1", payload.Entry[0].Changes[0].Value.LeadgenID)
}

func TestHandleLeadEventIgnoresNonLeadgenChanges(t *testing.T) {
	client := &fakeGraphClient{}
	eventRepo := &fakeEventRepo{}
	svc := NewFacebookService(&config.Config{}, client, nil, eventRepo)

	var payload WebhookPayload
	raw := []byte(`{"entry":[{"changes":[{"field":"feed","value":{}},{"field":"leadgen","value":{}}]}]}`)
	require.NoError(t, json.Unmarshal(raw, &payload))

	created, err := svc.HandleLeadEvent(context.Background(), raw, &payload)
	require.NoError(t, err)

	assert.Equal(t, 0, created)
	assert.Empty(t, client.calls, "no fetch without a leadgen id")

	// raw payload was persisted for audit
	require.Len(t, eventRepo.events, 1)
	assert.Equal(t, models.ProviderFacebook, eventRepo.events[0].Provider)
}

func TestLeadDetailsField(t *testing.T) {
	details := &facebook.LeadDetails{
		FieldData: []facebook.LeadField{
			{Name: "full_name", Values: []string{"Ana Souza"}},
			{Name: "phone_number", Values: []string{"+5511988887777"}},
			{Name: "sem_valor"},
		},
	}

	assert.Equal(t, "Ana Souza", details.Field("full_name"))
	assert.Equal(t, "+5511988887777", details.Field("phone_number"))
	assert.Equal(t, "", details.Field("sem_valor"))
	assert.Equal(t, "", details.Field("inexistente"))
}
