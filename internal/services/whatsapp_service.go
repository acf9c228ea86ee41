package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/vidaplan/corretora-api/internal/integrations/whapi"
	"github.com/vidaplan/corretora-api/internal/jobs"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/pkg/logger"
	"gorm.io/gorm"
)

// WhatsAppService normalizes provider webhook deliveries into chats and
// messages, keeps chat identity consistent when the provider switches
// between phone-number and linked-ID addressing, and sends outbound
// messages through the provider API.
type WhatsAppService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	eventRepo   repository.WebhookEventRepository
	leadRepo    repository.LeadRepository
	leadSvc     *LeadService
	client      whapi.Client
	worker      *jobs.Worker
}

func NewWhatsAppService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	eventRepo repository.WebhookEventRepository,
	leadRepo repository.LeadRepository,
	leadSvc *LeadService,
	client whapi.Client,
	worker *jobs.Worker,
) *WhatsAppService {
	return &WhatsAppService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		eventRepo:   eventRepo,
		leadRepo:    leadRepo,
		leadSvc:     leadSvc,
		client:      client,
		worker:      worker,
	}
}

// ProcessResult summarizes one webhook delivery
type ProcessResult struct {
	EventName string `json:"event_name"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Acks      int    `json:"acks"`
}

// ProcessEvent handles one webhook delivery. headerEvent is the
// X-Whapi-Event header value and wins over the body-declared event name.
// Individual message failures are logged and skipped; the delivery as a
// whole only fails when nothing at all could be read.
func (s *WhatsAppService) ProcessEvent(ctx context.Context, headerEvent string, rawBody []byte, envelope *whapi.Envelope) (*ProcessResult, error) {
	eventName := headerEvent
	if eventName == "" {
		eventName = envelope.Event.Event
		if eventName == "" {
			eventName = envelope.Event.Type
		}
	}

	// Audit first. A failed insert must never drop the delivery.
	if err := s.eventRepo.Create(ctx, &models.WebhookEvent{
		Provider:  models.ProviderWhapi,
		EventName: eventName,
		Payload:   string(rawBody),
	}); err != nil {
		logger.Error(fmt.Sprintf("[WhatsApp] Failed to persist raw event: %v", err))
	}

	result := &ProcessResult{EventName: eventName}

	if strings.Contains(eventName, "statuses") || len(envelope.Statuses) > 0 {
		for _, status := range envelope.Statuses {
			if status.ID == "" {
				continue
			}
			if err := s.messageRepo.UpdateAckStatus(ctx, status.ID, status.Status); err != nil {
				logger.Warn(fmt.Sprintf("[WhatsApp] Ack update failed for %s: %v", status.ID, err))
				continue
			}
			result.Acks++
		}
	}

	if !strings.Contains(eventName, "messages") && len(envelope.Messages) == 0 {
		return result, nil
	}

	for _, msg := range envelope.Messages {
		if err := s.processMessage(ctx, &msg); err != nil {
			logger.Error(fmt.Sprintf("[WhatsApp] Skipping message %s: %v", msg.ID, err))
			result.Skipped++
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *WhatsAppService) processMessage(ctx context.Context, msg *whapi.Message) error {
	if msg.ID == "" || msg.ChatID == "" {
		return fmt.Errorf("mensagem sem id ou chat_id")
	}

	body, hasMedia := extractContent(msg)

	direction := models.DirectionInbound
	if msg.FromMe {
		direction = models.DirectionOutbound
	}

	timestamp := time.Unix(msg.Timestamp, 0)
	isGroup := models.IsGroupChatID(msg.ChatID)
	phone := chatPhoneNumber(msg.ChatID, isGroup)
	if phone == "" && !isGroup && !msg.FromMe &&
		strings.Contains(msg.ChatID, "@lid") && !strings.Contains(msg.From, "@lid") {
		// Linked-ID chats carry no phone in the chat ID; the sender
		// field still identifies the contact.
		phone = normalizePhone(msg.From)
	}

	chat, err := s.resolveChat(ctx, msg, phone, isGroup, timestamp)
	if err != nil {
		return err
	}

	if err := s.chatRepo.Upsert(ctx, chat); err != nil {
		return fmt.Errorf("falha ao salvar chat: %w", err)
	}

	message := &models.ChatMessage{
		ID:         msg.ID,
		ChatID:     chat.ID,
		Direction:  direction,
		Body:       body,
		HasMedia:   hasMedia,
		SenderName: msg.FromName,
		Timestamp:  timestamp,
	}
	if err := s.messageRepo.Upsert(ctx, message); err != nil {
		return fmt.Errorf("falha ao salvar mensagem: %w", err)
	}

	// First inbound contact from an individual becomes a pipeline lead.
	if direction == models.DirectionInbound && !chat.IsGroup && chat.PhoneNumber != nil {
		if _, created, err := s.RegisterLeadFromInbound(ctx, chat); err != nil {
			logger.Warn(fmt.Sprintf("[WhatsApp] Lead intake failed for chat %s: %v", chat.ID, err))
		} else if created {
			logger.Info(fmt.Sprintf("[WhatsApp] Lead registered from inbound chat %s", chat.ID))
		}
	}
	return nil
}

// resolveChat loads or builds the chat row for a message, resolves its
// display name and, for individual chats, merges any duplicate chat that
// already holds the same phone number under a different provider ID.
func (s *WhatsAppService) resolveChat(ctx context.Context, msg *whapi.Message, phone string, isGroup bool, timestamp time.Time) (*models.Chat, error) {
	var stored *models.Chat
	existing, err := s.chatRepo.FindByID(ctx, msg.ChatID)
	if err == nil {
		stored = existing
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	chat := &models.Chat{
		ID:      msg.ChatID,
		IsGroup: isGroup,
	}
	if stored != nil {
		chat.Name = stored.Name
		chat.PhoneNumber = stored.PhoneNumber
		chat.LID = stored.LID
		chat.LastMessageAt = stored.LastMessageAt
		chat.CreatedAt = stored.CreatedAt
	}

	if !isGroup {
		if phone != "" {
			chat.PhoneNumber = &phone
		}
		if strings.Contains(msg.ChatID, "@lid") {
			lid := msg.ChatID
			chat.LID = &lid
		}
		if phone != "" {
			if err := s.mergeDuplicate(ctx, chat, phone); err != nil {
				logger.Warn(fmt.Sprintf("[WhatsApp] Identity merge failed for %s: %v", msg.ChatID, err))
			}
		}
	}

	chat.Name = s.resolveChatName(ctx, msg, chat, phone, isGroup)
	if chat.LastMessageAt == nil || timestamp.After(*chat.LastMessageAt) {
		chat.LastMessageAt = &timestamp
	}
	return chat, nil
}

// mergeDuplicate collapses a second chat row that resolved to the same
// phone number, regardless of which addressing arrived first. The
// phone-addressed ID always survives: when the current delivery uses a
// linked ID and a phone-addressed row already exists, the chat adopts
// that row's ID instead. History moves to the survivor and the other
// row goes away; the merge repeats safely because a second run finds no
// duplicate left.
func (s *WhatsAppService) mergeDuplicate(ctx context.Context, chat *models.Chat, phone string) error {
	dup, err := s.chatRepo.FindByPhoneNumber(ctx, phone, chat.ID)
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	loserID := dup.ID
	if strings.Contains(chat.ID, "@lid") && !strings.Contains(dup.ID, "@lid") {
		loserID = chat.ID
		chat.ID = dup.ID
		if dup.LastMessageAt != nil && (chat.LastMessageAt == nil || dup.LastMessageAt.After(*chat.LastMessageAt)) {
			chat.LastMessageAt = dup.LastMessageAt
		}
		if chat.CreatedAt.IsZero() {
			chat.CreatedAt = dup.CreatedAt
		}
	}

	if err := s.messageRepo.Reassign(ctx, loserID, chat.ID); err != nil {
		return err
	}
	if err := s.chatRepo.Delete(ctx, loserID); err != nil {
		return err
	}

	// Keep whatever the duplicate knew that the survivor does not.
	if chat.Name == "" {
		chat.Name = dup.Name
	}
	if chat.LID == nil {
		chat.LID = dup.LID
	}
	logger.Info(fmt.Sprintf("[WhatsApp] Merged duplicate chat %s into %s", loserID, chat.ID))
	return nil
}

// resolveChatName picks the chat display name. Groups keep their known
// name and fall back to the sender; individual chats prefer a matching
// lead's registered name over provider-supplied names. chat carries the
// name known so far, including one inherited from a merged duplicate.
func (s *WhatsAppService) resolveChatName(ctx context.Context, msg *whapi.Message, chat *models.Chat, phone string, isGroup bool) string {
	if isGroup {
		if chat.Name != "" {
			return chat.Name
		}
		if msg.FromName != "" {
			return msg.FromName
		}
		return msg.ChatID
	}

	if phone != "" {
		if lead, err := s.leadRepo.FindByPhone(ctx, phone); err == nil && lead.Name != "" {
			return lead.Name
		}
		if lead, err := s.leadRepo.FindByPhoneDigits(ctx, models.DigitsOnly(phone)); err == nil && lead.Name != "" {
			return lead.Name
		}
	}
	if !msg.FromMe && msg.FromName != "" {
		return msg.FromName
	}
	if chat.Name != "" {
		return chat.Name
	}
	return msg.ChatID
}

// extractContent resolves the message body from the first populated
// content field, in a fixed priority order.
func extractContent(msg *whapi.Message) (body string, hasMedia bool) {
	switch {
	case msg.Text != nil:
		return msg.Text.Body, false
	case msg.Image != nil:
		return mediaBody(msg.Image, "[imagem]"), true
	case msg.Video != nil:
		return mediaBody(msg.Video, "[vídeo]"), true
	case msg.Audio != nil:
		return mediaBody(msg.Audio, "[áudio]"), true
	case msg.Voice != nil:
		return mediaBody(msg.Voice, "[mensagem de voz]"), true
	case msg.Document != nil:
		if msg.Document.Caption != "" {
			return msg.Document.Caption, true
		}
		if msg.Document.FileName != "" {
			return msg.Document.FileName, true
		}
		return "[documento]", true
	case msg.Location != nil:
		return locationBody(msg.Location), false
	default:
		return "", false
	}
}

func mediaBody(media *whapi.MediaContent, placeholder string) string {
	if media.Caption != "" {
		return media.Caption
	}
	return placeholder
}

func locationBody(loc *whapi.LocationContent) string {
	if loc.Name != "" {
		return loc.Name
	}
	return fmt.Sprintf("%.6f, %.6f", loc.Latitude, loc.Longitude)
}

// chatPhoneNumber derives the E.164 phone number from an individual
// provider chat ID. Group and linked-ID addresses carry no phone number.
func chatPhoneNumber(chatID string, isGroup bool) string {
	if isGroup || strings.Contains(chatID, "@lid") {
		return ""
	}
	raw := chatID
	if at := strings.Index(raw, "@"); at >= 0 {
		raw = raw[:at]
	}
	return normalizePhone(raw)
}

// normalizePhone reduces a raw phone value to E.164, assuming Brazilian
// numbering when the country code is ambiguous.
func normalizePhone(raw string) string {
	raw = models.DigitsOnly(raw)
	if raw == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse("+"+raw, "BR")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "+" + raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// SendMessage sends a text through the provider and records it as an
// outbound message in the chat history.
func (s *WhatsAppService) SendMessage(ctx context.Context, chatID, body string) (*models.ChatMessage, error) {
	chat, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	messageID, err := s.client.SendText(ctx, chat.ID, body)
	if err != nil {
		return nil, fmt.Errorf("falha ao enviar mensagem: %w", err)
	}
	if messageID == "" {
		messageID = uuid.New().String()
	}

	now := time.Now()
	message := &models.ChatMessage{
		ID:        messageID,
		ChatID:    chat.ID,
		Direction: models.DirectionOutbound,
		Body:      body,
		Timestamp: now,
		AckStatus: "sent",
	}
	if err := s.messageRepo.Upsert(ctx, message); err != nil {
		return nil, err
	}

	chat.LastMessageAt = &now
	if err := s.chatRepo.Upsert(ctx, chat); err != nil {
		logger.Warn(fmt.Sprintf("[WhatsApp] Failed to bump chat %s: %v", chat.ID, err))
	}
	return message, nil
}

// AutoContactStep is one message in a scripted first-contact sequence
type AutoContactStep struct {
	Body  string        `json:"body"`
	Delay time.Duration `json:"delay"`
}

// DefaultAutoContactSteps returns the first-contact script sent to leads
// that arrive through inbound channels.
func DefaultAutoContactSteps(leadName string) []AutoContactStep {
	return []AutoContactStep{
		{Body: fmt.Sprintf("Olá %s! Aqui é da corretora. Recebemos seu interesse em planos de saúde.", leadName)},
		{Body: "Para montar a melhor proposta, pode me dizer quantas vidas seriam no plano?", Delay: 8 * time.Second},
		{Body: "Assim que responder, um de nossos corretores dá sequência ao atendimento.", Delay: 8 * time.Second},
	}
}

// StartAutoContact runs a scripted message sequence against a chat in the
// background. Between steps it re-checks the chat: when the contact
// replies (a newer inbound message exists), the remaining steps abort so
// a human conversation is never interrupted.
func (s *WhatsAppService) StartAutoContact(ctx context.Context, chatID string, steps []AutoContactStep) error {
	chat, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.IsGroup {
		return fmt.Errorf("contato automático não se aplica a grupos")
	}

	startedAt := time.Now()
	s.worker.Enqueue(func(ctx context.Context) error {
		for i, step := range steps {
			if step.Delay > 0 {
				select {
				case <-time.After(step.Delay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if i > 0 {
				replied, err := s.hasInboundSince(ctx, chatID, startedAt)
				if err != nil {
					logger.Warn(fmt.Sprintf("[WhatsApp] Auto-contact reply check failed for %s: %v", chatID, err))
				}
				if replied {
					logger.Info(fmt.Sprintf("[WhatsApp] Auto-contact aborted for %s, contact replied", chatID))
					return nil
				}
			}
			if _, err := s.SendMessage(ctx, chatID, step.Body); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}

func (s *WhatsAppService) hasInboundSince(ctx context.Context, chatID string, since time.Time) (bool, error) {
	query := repository.NewListQuery()
	query.PerPage = 5
	messages, _, err := s.messageRepo.FindByChatID(ctx, chatID, query)
	if err != nil {
		return false, err
	}
	for _, m := range messages {
		if m.Direction == models.DirectionInbound && m.Timestamp.After(since) {
			return true, nil
		}
	}
	return false, nil
}

// ListChats returns chats ordered by recent activity
func (s *WhatsAppService) ListChats(ctx context.Context, query *repository.ListQuery) ([]models.Chat, int64, error) {
	return s.chatRepo.List(ctx, query)
}

// ListMessages returns a chat's messages, newest first
func (s *WhatsAppService) ListMessages(ctx context.Context, chatID string, query *repository.ListQuery) ([]models.ChatMessage, int64, error) {
	if _, err := s.chatRepo.FindByID(ctx, chatID); err != nil {
		return nil, 0, err
	}
	return s.messageRepo.FindByChatID(ctx, chatID, query)
}

// RegisterLeadFromInbound creates a lead for a first inbound contact when
// no lead exists for the phone number yet.
func (s *WhatsAppService) RegisterLeadFromInbound(ctx context.Context, chat *models.Chat) (*models.Lead, bool, error) {
	if chat.IsGroup || chat.PhoneNumber == nil {
		return nil, false, nil
	}
	lead := &models.Lead{
		Name:   chat.Name,
		Phone:  *chat.PhoneNumber,
		Source: models.LeadSourceWhatsApp,
	}
	return s.leadSvc.UpsertFromSource(ctx, lead)
}
