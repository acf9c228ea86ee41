package repository

import (
	"context"

	"github.com/vidaplan/corretora-api/internal/models"

	"gorm.io/gorm"
)

// AdjustmentRepository defines the interface for value adjustment data access
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *models.ValueAdjustment) error
	FindByID(ctx context.Context, id uint) (*models.ValueAdjustment, error)
	FindByContractID(ctx context.Context, contractID uint) ([]models.ValueAdjustment, error)
	Delete(ctx context.Context, id uint) error
	DeleteByContractID(ctx context.Context, contractID uint) error
}

type adjustmentRepository struct {
	db *gorm.DB
}

// NewAdjustmentRepository creates a new adjustment repository
func NewAdjustmentRepository(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(ctx context.Context, adjustment *models.ValueAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *adjustmentRepository) FindByID(ctx context.Context, id uint) (*models.ValueAdjustment, error) {
	var adjustment models.ValueAdjustment
	err := r.db.WithContext(ctx).First(&adjustment, id).Error
	if err != nil {
		return nil, err
	}
	return &adjustment, nil
}

// FindByContractID retrieves the contract's ledger in insertion order.
// The fold is commutative, the order only matters for display.
func (r *adjustmentRepository) FindByContractID(ctx context.Context, contractID uint) ([]models.ValueAdjustment, error) {
	var adjustments []models.ValueAdjustment
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&adjustments).Error
	return adjustments, err
}

func (r *adjustmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ValueAdjustment{}, id).Error
}

// DeleteByContractID removes the whole ledger (used when deleting a contract)
func (r *adjustmentRepository) DeleteByContractID(ctx context.Context, contractID uint) error {
	return r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Delete(&models.ValueAdjustment{}).Error
}
