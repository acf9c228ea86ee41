package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Lead         LeadRepository
	Contract     ContractRepository
	Adjustment   AdjustmentRepository
	Chat         ChatRepository
	Message      MessageRepository
	Notification NotificationRepository
	Reminder     ReminderRepository
	WebhookEvent WebhookEventRepository
	Audit        AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Lead:         NewLeadRepository(db),
		Contract:     NewContractRepository(db),
		Adjustment:   NewAdjustmentRepository(db),
		Chat:         NewChatRepository(db),
		Message:      NewMessageRepository(db),
		Notification: NewNotificationRepository(db),
		Reminder:     NewReminderRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
		Audit:        NewAuditRepository(db),
	}
}
