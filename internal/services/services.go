package services

import (
	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/integrations/brasilapi"
	"github.com/vidaplan/corretora-api/internal/integrations/facebook"
	"github.com/vidaplan/corretora-api/internal/integrations/whapi"
	"github.com/vidaplan/corretora-api/internal/jobs"
	"github.com/vidaplan/corretora-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Lead         *LeadService
	Contract     *ContractService
	Commission   *CommissionService
	Notification *NotificationService
	Reminder     *ReminderService
	WhatsApp     *WhatsAppService
	Facebook     *FacebookService
	Lookup       *LookupService
	Export       *ExportService
	Email        *EmailService
	Audit        *AuditService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(repos.Audit)
	commissionSvc := NewCommissionService()

	leadSvc := NewLeadService(repos.Lead, notificationSvc, auditSvc, worker)

	whapiClient := whapi.NewClient(cfg)
	facebookClient := facebook.NewClient(cfg)
	brasilClient := brasilapi.NewClient(cfg)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, emailSvc, auditSvc, worker),
		Lead:         leadSvc,
		Contract:     NewContractService(repos.Contract, repos.Adjustment, repos.Lead, notificationSvc, auditSvc, worker),
		Commission:   commissionSvc,
		Notification: notificationSvc,
		Reminder:     NewReminderService(repos.Reminder, notificationSvc, emailSvc),
		WhatsApp:     NewWhatsAppService(repos.Chat, repos.Message, repos.WebhookEvent, repos.Lead, leadSvc, whapiClient, worker),
		Facebook:     NewFacebookService(cfg, facebookClient, leadSvc, repos.WebhookEvent),
		Lookup:       NewLookupService(brasilClient),
		Export:       NewExportService(repos.Contract, commissionSvc),
		Email:        emailSvc,
		Audit:        auditSvc,
	}
}
