package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/services"
	"gorm.io/gorm"
)

type fakeReminderRepo struct {
	due     []models.Reminder
	updated []models.Reminder
}

func (r *fakeReminderRepo) FindByID(ctx context.Context, id uint) (*models.Reminder, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReminderRepo) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Reminder, int64, error) {
	return nil, 0, nil
}

func (r *fakeReminderRepo) FindDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, reminder := range r.due {
		if reminder.NotifiedAt == nil {
			out = append(out, reminder)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) Create(ctx context.Context, reminder *models.Reminder) error { return nil }

func (r *fakeReminderRepo) Update(ctx context.Context, reminder *models.Reminder) error {
	r.updated = append(r.updated, *reminder)
	for i := range r.due {
		if r.due[i].ID == reminder.ID {
			r.due[i] = *reminder
		}
	}
	return nil
}

func (r *fakeReminderRepo) Delete(ctx context.Context, id uint) error { return nil }

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

type fakeUserRepo struct{}

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

func (r *fakeUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) { return nil, nil }

func newTestScheduler(repo *fakeReminderRepo) *ReminderScheduler {
	notificationSvc := services.NewNotificationService(&fakeNotificationRepo{}, &fakeUserRepo{})
	emailSvc := services.NewEmailService(&config.Config{})
	reminderSvc := services.NewReminderService(repo, notificationSvc, emailSvc)
	return NewReminderScheduler(&config.Config{ReminderCron: "*/5 * * * *"}, reminderSvc)
}

func TestScanFiresDueReminders(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &fakeReminderRepo{
		due: []models.Reminder{
			{ID: 1, UserID: 7, Title: "Ligar para o cliente", DueAt: past},
		},
	}
	s := newTestScheduler(repo)

	s.scan(context.Background())

	require.Len(t, repo.updated, 1)
	assert.NotNil(t, repo.updated[0].NotifiedAt, "fired reminder is stamped")

	status := s.Status()
	assert.Equal(t, 1, status["last_fired"])
	assert.Equal(t, false, status["running"])
}

func TestTriggerManualRunsScan(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &fakeReminderRepo{
		due: []models.Reminder{
			{ID: 2, UserID: 7, Title: "Renovação do contrato", DueAt: past},
		},
	}
	s := newTestScheduler(repo)

	s.TriggerManual(context.Background())

	assert.Eventually(t, func() bool {
		return s.Status()["last_fired"] == 1
	}, 2*time.Second, 10*time.Millisecond)
}
