package services

import (
	"context"
	"fmt"

	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/integrations/facebook"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/pkg/logger"
)

// FacebookService handles the lead-ads webhook: subscription
// verification and turning leadgen notifications into leads.
type FacebookService struct {
	cfg       *config.Config
	client    facebook.Client
	leadSvc   *LeadService
	eventRepo repository.WebhookEventRepository
}

func NewFacebookService(cfg *config.Config, client facebook.Client, leadSvc *LeadService, eventRepo repository.WebhookEventRepository) *FacebookService {
	return &FacebookService{
		cfg:       cfg,
		client:    client,
		leadSvc:   leadSvc,
		eventRepo: eventRepo,
	}
}

// WebhookPayload is the lead-ads change notification body
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Time    int64  `json:"time"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				LeadgenID string `json:"leadgen_id"`
				LeadID    string `json:"lead_id"`
				FormID    string `json:"form_id"`
				PageID    string `json:"page_id"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// VerifySubscription answers the GET verification handshake. It returns
// the challenge to echo back, or an error when the token does not match.
func (s *FacebookService) VerifySubscription(mode, verifyToken, challenge string) (string, error) {
	if mode != "subscribe" {
		return "", fmt.Errorf("modo de verificação inválido: %s", mode)
	}
	if verifyToken == "" || verifyToken != s.cfg.FacebookVerifyToken {
		return "", fmt.Errorf("token de verificação inválido")
	}
	return challenge, nil
}

// HandleLeadEvent processes a lead-ads notification: every leadgen entry
// is fetched from the Graph API and upserted as a lead. Entries that fail
// are logged and skipped so one bad lead never drops the batch.
func (s *FacebookService) HandleLeadEvent(ctx context.Context, rawBody []byte, payload *WebhookPayload) (int, error) {
	if err := s.eventRepo.Create(ctx, &models.WebhookEvent{
		Provider:  models.ProviderFacebook,
		EventName: "leadgen",
		Payload:   string(rawBody),
	}); err != nil {
		logger.Error(fmt.Sprintf("[Facebook] Failed to persist raw event: %v", err))
	}

	created := 0
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" {
				continue
			}
			leadgenID := change.Value.LeadgenID
			if leadgenID == "" {
				leadgenID = change.Value.LeadID
			}
			if leadgenID == "" {
				continue
			}

			isNew, err := s.importLead(ctx, leadgenID)
			if err != nil {
				logger.Error(fmt.Sprintf("[Facebook] Skipping leadgen %s: %v", leadgenID, err))
				continue
			}
			if isNew {
				created++
			}
		}
	}
	return created, nil
}

func (s *FacebookService) importLead(ctx context.Context, leadgenID string) (bool, error) {
	details, err := s.client.GetLeadDetails(ctx, leadgenID)
	if err != nil {
		return false, err
	}

	name := details.Field("full_name")
	if name == "" {
		name = details.Field("nome_completo")
	}
	if name == "" {
		name = "Lead Facebook " + leadgenID
	}

	phone := details.Field("phone_number")
	if phone == "" {
		phone = details.Field("telefone")
	}

	lead := &models.Lead{
		Name:       name,
		Phone:      phone,
		Email:      details.Field("email"),
		Source:     models.LeadSourceFacebook,
		ExternalID: &leadgenID,
	}

	_, isNew, err := s.leadSvc.UpsertFromSource(ctx, lead)
	return isNew, err
}
