package repository

import (
	"context"
	"time"

	"github.com/vidaplan/corretora-api/internal/models"

	"gorm.io/gorm"
)

// ReminderRepository defines the interface for reminder data access
type ReminderRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Reminder, error)
	FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Reminder, int64, error)
	// FindDue returns reminders whose due date has passed and that have
	// neither fired nor been completed.
	FindDue(ctx context.Context, now time.Time) ([]models.Reminder, error)
	Create(ctx context.Context, reminder *models.Reminder) error
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, id uint) error
}

type reminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) FindByID(ctx context.Context, id uint) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.db.WithContext(ctx).
		Preload("Lead").
		Preload("Contract").
		First(&reminder, id).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepository) FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Reminder, int64, error) {
	var reminders []models.Reminder
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Reminder{}).Where("user_id = ?", userID)
	if pending, ok := query.Filters["pending"]; ok && pending == "true" {
		db = db.Where("completed_at IS NULL")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("due_at ASC").
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&reminders).Error
	return reminders, total, err
}

func (r *reminderRepository) FindDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Lead").
		Where("due_at <= ? AND notified_at IS NULL AND completed_at IS NULL", now).
		Order("due_at ASC").
		Find(&reminders).Error
	return reminders, err
}

func (r *reminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}

func (r *reminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	return r.db.WithContext(ctx).Save(reminder).Error
}

func (r *reminderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Reminder{}, id).Error
}
