package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidaplan/corretora-api/internal/integrations/whapi"
	"github.com/vidaplan/corretora-api/internal/jobs"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"gorm.io/gorm"
)

// In-memory repository fakes, keyed the same way the real tables are.

type fakeChatRepo struct {
	chats   map[string]*models.Chat
	deleted []string
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]*models.Chat)}
}

func (r *fakeChatRepo) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	if chat, ok := r.chats[id]; ok {
		copied := *chat
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChatRepo) FindByPhoneNumber(ctx context.Context, phone string, excludeID string) (*models.Chat, error) {
	for _, chat := range r.chats {
		if chat.ID != excludeID && chat.PhoneNumber != nil && *chat.PhoneNumber == phone {
			copied := *chat
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChatRepo) Upsert(ctx context.Context, chat *models.Chat) error {
	copied := *chat
	r.chats[chat.ID] = &copied
	return nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, id string) error {
	delete(r.chats, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeChatRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Chat, int64, error) {
	var out []models.Chat
	for _, chat := range r.chats {
		out = append(out, *chat)
	}
	return out, int64(len(out)), nil
}

type fakeMessageRepo struct {
	messages map[string]*models.ChatMessage
	acks     map[string]string
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string]*models.ChatMessage),
		acks:     make(map[string]string),
	}
}

func (r *fakeMessageRepo) FindByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	if m, ok := r.messages[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) FindByChatID(ctx context.Context, chatID string, query *repository.ListQuery) ([]models.ChatMessage, int64, error) {
	var out []models.ChatMessage
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeMessageRepo) Upsert(ctx context.Context, message *models.ChatMessage) error {
	copied := *message
	r.messages[message.ID] = &copied
	return nil
}

func (r *fakeMessageRepo) Reassign(ctx context.Context, fromChatID, toChatID string) error {
	for _, m := range r.messages {
		if m.ChatID == fromChatID {
			m.ChatID = toChatID
		}
	}
	return nil
}

func (r *fakeMessageRepo) UpdateAckStatus(ctx context.Context, messageID, ackStatus string) error {
	r.acks[messageID] = ackStatus
	if m, ok := r.messages[messageID]; ok {
		m.AckStatus = ackStatus
	}
	return nil
}

type fakeEventRepo struct {
	events []models.WebhookEvent
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.WebhookEvent) error {
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) List(ctx context.Context, provider string, query *repository.ListQuery) ([]models.WebhookEvent, int64, error) {
	return r.events, int64(len(r.events)), nil
}

type fakeLeadRepo struct {
	leads []*models.Lead
}

func (r *fakeLeadRepo) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	for _, l := range r.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	for _, l := range r.leads {
		if l.Phone == phone {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindByPhoneDigits(ctx context.Context, digits string) (*models.Lead, error) {
	for _, l := range r.leads {
		if models.DigitsOnly(l.Phone) == digits {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindByExternalID(ctx context.Context, externalID string) (*models.Lead, error) {
	for _, l := range r.leads {
		if l.ExternalID != nil && *l.ExternalID == externalID {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) Create(ctx context.Context, lead *models.Lead) error {
	lead.ID = uint(len(r.leads) + 1)
	r.leads = append(r.leads, lead)
	return nil
}

func (r *fakeLeadRepo) Update(ctx context.Context, lead *models.Lead) error { return nil }
func (r *fakeLeadRepo) Delete(ctx context.Context, id uint) error           { return nil }

func (r *fakeLeadRepo) List(ctx context.Context, query *repository.LeadQuery) ([]models.Lead, int64, error) {
	return nil, 0, nil
}

func (r *fakeLeadRepo) CountByStage(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

type fakeWhapiClient struct {
	sent []string
}

func (c *fakeWhapiClient) SendText(ctx context.Context, to, body string) (string, error) {
	c.sent = append(c.sent, body)
	return "wamid.sent", nil
}

type fakeNotificationRepo struct {
	created []models.Notification
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.created = append(r.created, *notification)
	return nil
}

func (r *fakeNotificationRepo) Update(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uint) error { return nil }
func (r *fakeNotificationRepo) Delete(ctx context.Context, id uint) error            { return nil }

type fakeUserRepo struct {
	admins []models.User
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error           { return nil }

func (r *fakeUserRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) {
	return r.admins, nil
}

type fakeAuditRepo struct {
	entries []models.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func newTestWhatsAppService() (*WhatsAppService, *fakeChatRepo, *fakeMessageRepo, *fakeEventRepo, *fakeLeadRepo) {
	chatRepo := newFakeChatRepo()
	messageRepo := newFakeMessageRepo()
	eventRepo := &fakeEventRepo{}
	leadRepo := &fakeLeadRepo{}
	worker := jobs.NewWorker(1)
	notificationSvc := NewNotificationService(&fakeNotificationRepo{}, &fakeUserRepo{})
	leadSvc := NewLeadService(leadRepo, notificationSvc, NewAuditService(&fakeAuditRepo{}), worker)
	svc := NewWhatsAppService(chatRepo, messageRepo, eventRepo, leadRepo, leadSvc, &fakeWhapiClient{}, worker)
	return svc, chatRepo, messageRepo, eventRepo, leadRepo
}

func textMessage(id, chatID, body string) whapi.Message {
	return whapi.Message{
		ID:        id,
		ChatID:    chatID,
		Type:      "text",
		Timestamp: time.Now().Unix(),
		Text:      &whapi.TextContent{Body: body},
	}
}

func TestProcessEventPersistsRawPayload(t *testing.T) {
	svc, _, _, eventRepo, _ := newTestWhatsAppService()

	raw := []byte(`{"messages":[]}`)
	result, err := svc.ProcessEvent(context.Background(), "messages.post", raw, &whapi.Envelope{})
	require.NoError(t, err)

	require.Len(t, eventRepo.events, 1)
	assert.Equal(t, models.ProviderWhapi, eventRepo.events[0].Provider)
	assert.Equal(t, "messages.post", eventRepo.events[0].EventName)
	assert.Equal(t, string(raw), eventRepo.events[0].Payload)
	assert.Equal(t, "messages.post", result.EventName)
}

func TestProcessEventHeaderOverridesBodyEventName(t *testing.T) {
	svc, _, _, eventRepo, _ := newTestWhatsAppService()

	envelope := &whapi.Envelope{Event: whapi.Event{Event: "statuses.post"}}
	result, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), envelope)
	require.NoError(t, err)

	assert.Equal(t, "messages.post", result.EventName)
	assert.Equal(t, "messages.post", eventRepo.events[0].EventName)
}

func TestProcessEventStoresInboundTextMessage(t *testing.T) {
	svc, chatRepo, messageRepo, _, _ := newTestWhatsAppService()

	envelope := &whapi.Envelope{
		Messages: []whapi.Message{textMessage("wamid.1", "5511999990000@s.whatsapp.net", "Olá, quero um plano")},
	}
	result, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), envelope)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	msg := messageRepo.messages["wamid.1"]
	require.NotNil(t, msg)
	assert.Equal(t, models.DirectionInbound, msg.Direction)
	assert.Equal(t, "Olá, quero um plano", msg.Body)
	assert.False(t, msg.HasMedia)

	chat := chatRepo.chats["5511999990000@s.whatsapp.net"]
	require.NotNil(t, chat)
	require.NotNil(t, chat.PhoneNumber)
	assert.Equal(t, "+5511999990000", *chat.PhoneNumber)
	assert.False(t, chat.IsGroup)
}

func TestProcessEventOutboundDirection(t *testing.T) {
	svc, _, messageRepo, _, _ := newTestWhatsAppService()

	msg := textMessage("wamid.out", "5511999990000@s.whatsapp.net", "Proposta enviada")
	msg.FromMe = true
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{msg},
	})
	require.NoError(t, err)

	assert.Equal(t, models.DirectionOutbound, messageRepo.messages["wamid.out"].Direction)
}

func TestContentPriority(t *testing.T) {
	media := &whapi.MediaContent{Caption: "segue a foto"}

	tests := []struct {
		name     string
		msg      whapi.Message
		body     string
		hasMedia bool
	}{
		{
			name:     "text wins over media",
			msg:      whapi.Message{Text: &whapi.TextContent{Body: "texto"}, Image: media},
			body:     "texto",
			hasMedia: false,
		},
		{
			name:     "image caption",
			msg:      whapi.Message{Image: media},
			body:     "segue a foto",
			hasMedia: true,
		},
		{
			name:     "image without caption gets placeholder",
			msg:      whapi.Message{Image: &whapi.MediaContent{}},
			body:     "[imagem]",
			hasMedia: true,
		},
		{
			name:     "voice placeholder",
			msg:      whapi.Message{Voice: &whapi.MediaContent{}},
			body:     "[mensagem de voz]",
			hasMedia: true,
		},
		{
			name:     "document falls back to file name",
			msg:      whapi.Message{Document: &whapi.MediaContent{FileName: "proposta.pdf"}},
			body:     "proposta.pdf",
			hasMedia: true,
		},
		{
			name:     "location name",
			msg:      whapi.Message{Location: &whapi.LocationContent{Name: "Escritório Central"}},
			body:     "Escritório Central",
			hasMedia: false,
		},
		{
			name:     "location without name falls back to coordinates",
			msg:      whapi.Message{Location: &whapi.LocationContent{Latitude: -23.55052, Longitude: -46.633308}},
			body:     "-23.550520, -46.633308",
			hasMedia: false,
		},
		{
			name:     "no content",
			msg:      whapi.Message{},
			body:     "",
			hasMedia: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, hasMedia := extractContent(&tt.msg)
			assert.Equal(t, tt.body, body)
			assert.Equal(t, tt.hasMedia, hasMedia)
		})
	}
}

func TestGroupChatKeepsStoredName(t *testing.T) {
	svc, chatRepo, _, _, _ := newTestWhatsAppService()

	groupID := "120363041234567890@g.us"
	chatRepo.chats[groupID] = &models.Chat{ID: groupID, Name: "Equipe Comercial", IsGroup: true}

	msg := textMessage("wamid.g1", groupID, "bom dia")
	msg.FromName = "Maria"
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{msg},
	})
	require.NoError(t, err)

	chat := chatRepo.chats[groupID]
	assert.True(t, chat.IsGroup)
	assert.Equal(t, "Equipe Comercial", chat.Name)
	assert.Nil(t, chat.PhoneNumber, "group chats carry no phone number")
}

func TestIndividualChatNamePrefersLead(t *testing.T) {
	svc, chatRepo, _, _, leadRepo := newTestWhatsAppService()

	leadRepo.leads = append(leadRepo.leads, &models.Lead{
		ID:    1,
		Name:  "Carlos Pereira",
		Phone: "+5511999990000",
	})

	msg := textMessage("wamid.n1", "5511999990000@s.whatsapp.net", "oi")
	msg.FromName = "carlos wpp"
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{msg},
	})
	require.NoError(t, err)

	assert.Equal(t, "Carlos Pereira", chatRepo.chats["5511999990000@s.whatsapp.net"].Name)
}

func TestIdentityMergeReassignsHistory(t *testing.T) {
	svc, chatRepo, messageRepo, _, _ := newTestWhatsAppService()

	phone := "+5511999990000"
	oldChatID := "123456789@lid"
	chatRepo.chats[oldChatID] = &models.Chat{ID: oldChatID, Name: "Carlos", PhoneNumber: &phone}
	messageRepo.messages["wamid.old"] = &models.ChatMessage{ID: "wamid.old", ChatID: oldChatID, Body: "histórico"}

	// The same contact now arrives under its phone-number chat ID.
	newChatID := "5511999990000@s.whatsapp.net"
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{textMessage("wamid.new", newChatID, "nova mensagem")},
	})
	require.NoError(t, err)

	// Old history was moved to the surviving chat and the duplicate row removed.
	assert.Equal(t, newChatID, messageRepo.messages["wamid.old"].ChatID)
	assert.Contains(t, chatRepo.deleted, oldChatID)
	_, hasOld := chatRepo.chats[oldChatID]
	assert.False(t, hasOld)

	survivor := chatRepo.chats[newChatID]
	require.NotNil(t, survivor)
	assert.Equal(t, "Carlos", survivor.Name, "survivor inherits the duplicate's name")

	// A second delivery finds no duplicate left; the merge is idempotent.
	_, err = svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{textMessage("wamid.new2", newChatID, "mais uma")},
	})
	require.NoError(t, err)
	assert.Len(t, chatRepo.deleted, 1)
}

func TestIdentityMergeWhenLinkedIDArrivesSecond(t *testing.T) {
	svc, chatRepo, messageRepo, _, _ := newTestWhatsAppService()

	phoneChatID := "5511999990000@s.whatsapp.net"
	first := textMessage("wamid.1", phoneChatID, "quero uma cotação")
	first.FromName = "Carlos"
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{first},
	})
	require.NoError(t, err)

	// The provider switches the same contact to linked-ID addressing;
	// the sender field still carries the phone number.
	lidChatID := "98765432109876@lid"
	second := textMessage("wamid.2", lidChatID, "ainda está aí?")
	second.From = "5511999990000"
	_, err = svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{second},
	})
	require.NoError(t, err)

	// One chat row, keyed by the phone-addressed ID, holding both messages.
	require.Len(t, chatRepo.chats, 1)
	survivor := chatRepo.chats[phoneChatID]
	require.NotNil(t, survivor)
	assert.Equal(t, phoneChatID, messageRepo.messages["wamid.1"].ChatID)
	assert.Equal(t, phoneChatID, messageRepo.messages["wamid.2"].ChatID)

	require.NotNil(t, survivor.LID)
	assert.Equal(t, lidChatID, *survivor.LID)
	require.NotNil(t, survivor.PhoneNumber)
	assert.Equal(t, "+5511999990000", *survivor.PhoneNumber)
	assert.Equal(t, "Carlos", survivor.Name)
}

func TestLinkedIDWithoutSenderPhoneStaysSeparate(t *testing.T) {
	svc, chatRepo, _, _, _ := newTestWhatsAppService()

	msg := textMessage("wamid.lid", "98765432109876@lid", "oi")
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{msg},
	})
	require.NoError(t, err)

	chat := chatRepo.chats["98765432109876@lid"]
	require.NotNil(t, chat)
	assert.Nil(t, chat.PhoneNumber)
}

func TestInboundMessageRegistersLead(t *testing.T) {
	svc, _, _, _, leadRepo := newTestWhatsAppService()

	msg := textMessage("wamid.l1", "5511999990000@s.whatsapp.net", "quero contratar")
	msg.FromName = "Joana"
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{msg},
	})
	require.NoError(t, err)

	require.Len(t, leadRepo.leads, 1)
	lead := leadRepo.leads[0]
	assert.Equal(t, "Joana", lead.Name)
	assert.Equal(t, "+5511999990000", lead.Phone)
	assert.Equal(t, models.LeadSourceWhatsApp, lead.Source)

	// A second message from the same contact does not create another lead.
	_, err = svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{textMessage("wamid.l2", "5511999990000@s.whatsapp.net", "alô?")},
	})
	require.NoError(t, err)
	assert.Len(t, leadRepo.leads, 1)
}

func TestOutboundMessageDoesNotRegisterLead(t *testing.T) {
	svc, _, _, _, leadRepo := newTestWhatsAppService()

	msg := textMessage("wamid.o1", "5511999990000@s.whatsapp.net", "Segue a proposta")
	msg.FromMe = true
	_, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), &whapi.Envelope{
		Messages: []whapi.Message{msg},
	})
	require.NoError(t, err)

	assert.Empty(t, leadRepo.leads)
}

func TestProcessEventSkipsBrokenMessages(t *testing.T) {
	svc, _, messageRepo, _, _ := newTestWhatsAppService()

	envelope := &whapi.Envelope{
		Messages: []whapi.Message{
			{ID: "", ChatID: "5511999990000@s.whatsapp.net"}, // missing id
			textMessage("wamid.ok", "5511888880000@s.whatsapp.net", "válida"),
		},
	}
	result, err := svc.ProcessEvent(context.Background(), "messages.post", []byte(`{}`), envelope)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	assert.NotNil(t, messageRepo.messages["wamid.ok"])
}

func TestProcessEventAppliesAcks(t *testing.T) {
	svc, _, messageRepo, _, _ := newTestWhatsAppService()

	messageRepo.messages["wamid.a"] = &models.ChatMessage{ID: "wamid.a", AckStatus: "sent"}

	envelope := &whapi.Envelope{
		Statuses: []whapi.Status{
			{ID: "wamid.a", Status: "read"},
			{ID: "", Status: "read"}, // ignored
		},
	}
	result, err := svc.ProcessEvent(context.Background(), "statuses.post", []byte(`{}`), envelope)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Acks)
	assert.Equal(t, "read", messageRepo.acks["wamid.a"])
	assert.Equal(t, 0, result.Processed)
}

func TestChatPhoneNumber(t *testing.T) {
	assert.Equal(t, "+5511999990000", chatPhoneNumber("5511999990000@s.whatsapp.net", false))
	assert.Equal(t, "", chatPhoneNumber("120363041234567890@g.us", true))
	assert.Equal(t, "", chatPhoneNumber("123456789@lid", false))
	assert.Equal(t, "", chatPhoneNumber("@s.whatsapp.net", false))
}

func TestSendMessageRecordsOutbound(t *testing.T) {
	chatRepo := newFakeChatRepo()
	messageRepo := newFakeMessageRepo()
	client := &fakeWhapiClient{}
	svc := NewWhatsAppService(chatRepo, messageRepo, &fakeEventRepo{}, &fakeLeadRepo{}, nil, client, nil)

	chatID := "5511999990000@s.whatsapp.net"
	chatRepo.chats[chatID] = &models.Chat{ID: chatID, Name: "Carlos"}

	message, err := svc.SendMessage(context.Background(), chatID, "Segue a proposta")
	require.NoError(t, err)

	assert.Equal(t, []string{"Segue a proposta"}, client.sent)
	assert.Equal(t, models.DirectionOutbound, message.Direction)
	assert.Equal(t, "sent", message.AckStatus)
	require.NotNil(t, chatRepo.chats[chatID].LastMessageAt)
}
