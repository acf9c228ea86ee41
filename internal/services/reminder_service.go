package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/pkg/logger"
)

// ReminderService manages follow-up reminders and fires notifications
// when they come due.
type ReminderService struct {
	repo            repository.ReminderRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
}

func NewReminderService(repo repository.ReminderRepository, notificationSvc *NotificationService, emailSvc *EmailService) *ReminderService {
	return &ReminderService{
		repo:            repo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
	}
}

func (s *ReminderService) FindByID(ctx context.Context, id uint) (*models.Reminder, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ReminderService) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Reminder, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *ReminderService) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.DueAt.IsZero() {
		return fmt.Errorf("%w: data de vencimento é obrigatória", ErrValidation)
	}
	return s.repo.Create(ctx, reminder)
}

func (s *ReminderService) Update(ctx context.Context, reminder *models.Reminder) error {
	return s.repo.Update(ctx, reminder)
}

func (s *ReminderService) Complete(ctx context.Context, id uint) (*models.Reminder, error) {
	reminder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reminder.MarkCompleted()
	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

func (s *ReminderService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// ProcessDue fires every due reminder: it stamps notified_at first so a
// crash between notification and e-mail does not double-fire, then
// notifies in-app and by e-mail. Returns how many reminders fired.
func (s *ReminderService) ProcessDue(ctx context.Context) (int, error) {
	due, err := s.repo.FindDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	fired := 0
	for i := range due {
		reminder := &due[i]
		reminder.MarkNotified()
		if err := s.repo.Update(ctx, reminder); err != nil {
			logger.Error(fmt.Sprintf("[Reminder] Failed to stamp reminder %d: %v", reminder.ID, err))
			continue
		}

		if err := s.notificationSvc.NotifyUser(ctx, reminder.UserID,
			"Lembrete vencido",
			fmt.Sprintf("Lembrete: %s", reminder.Title),
			models.NotificationTypeReminderDue); err != nil {
			logger.Error(fmt.Sprintf("[Reminder] Failed to notify user %d: %v", reminder.UserID, err))
		}

		if err := s.emailSvc.SendReminderDue(ctx, &reminder.User, reminder); err != nil {
			logger.Warn(fmt.Sprintf("[Reminder] Failed to email reminder %d: %v", reminder.ID, err))
		}
		fired++
	}
	return fired, nil
}
