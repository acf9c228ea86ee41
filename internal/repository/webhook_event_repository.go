package repository

import (
	"context"

	"github.com/vidaplan/corretora-api/internal/models"

	"gorm.io/gorm"
)

// WebhookEventRepository persists raw provider deliveries (audit trail)
type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
	List(ctx context.Context, provider string, query *ListQuery) ([]models.WebhookEvent, int64, error)
}

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *webhookEventRepository) List(ctx context.Context, provider string, query *ListQuery) ([]models.WebhookEvent, int64, error) {
	var events []models.WebhookEvent
	var total int64

	db := r.db.WithContext(ctx).Model(&models.WebhookEvent{})
	if provider != "" {
		db = db.Where("provider = ?", provider)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&events).Error
	return events, total, err
}
