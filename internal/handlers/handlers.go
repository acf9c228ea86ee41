package handlers

import (
	"github.com/vidaplan/corretora-api/internal/scheduler"
	"github.com/vidaplan/corretora-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Lead         *LeadHandler
	Contract     *ContractHandler
	Chat         *ChatHandler
	Notification *NotificationHandler
	Reminder     *ReminderHandler
	Webhook      *WebhookHandler
	Export       *ExportHandler
	Lookup       *LookupHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, reminderScheduler *scheduler.ReminderScheduler) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(reminderScheduler),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Lead:         NewLeadHandler(svcs.Lead, svcs.WhatsApp),
		Contract:     NewContractHandler(svcs.Contract),
		Chat:         NewChatHandler(svcs.WhatsApp),
		Notification: NewNotificationHandler(svcs.Notification),
		Reminder:     NewReminderHandler(svcs.Reminder, reminderScheduler),
		Webhook:      NewWebhookHandler(svcs.WhatsApp, svcs.Facebook),
		Export:       NewExportHandler(svcs.Export),
		Lookup:       NewLookupHandler(svcs.Lookup),
	}
}
