package repository

import (
	"context"
	"fmt"

	"github.com/vidaplan/corretora-api/internal/models"

	"gorm.io/gorm"
)

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Lead, error)
	FindByPhone(ctx context.Context, phone string) (*models.Lead, error)
	FindByPhoneDigits(ctx context.Context, digits string) (*models.Lead, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *LeadQuery) ([]models.Lead, int64, error)
	CountByStage(ctx context.Context) (map[string]int64, error)
}

// LeadQuery extends ListQuery with lead-specific filters
type LeadQuery struct {
	*ListQuery
	Stage        string
	Source       string
	AssignedToID uint
}

type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByPhoneDigits matches a lead whose phone, stripped of formatting,
// equals the given digit string. Used by the chat normalizer, where the
// provider only hands us bare digits.
func (r *leadRepository) FindByPhoneDigits(ctx context.Context, digits string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Where("regexp_replace(phone, '\\D', '', 'g') = ?", digits).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *leadRepository) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *leadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Lead{}, id).Error
}

func (r *leadRepository) List(ctx context.Context, query *LeadQuery) ([]models.Lead, int64, error) {
	var leads []models.Lead
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Lead{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", search, search, search)
	}
	if query.Stage != "" {
		db = db.Where("stage = ?", query.Stage)
	}
	if query.Source != "" {
		db = db.Where("source = ?", query.Source)
	}
	if query.AssignedToID != 0 {
		db = db.Where("assigned_to_id = ?", query.AssignedToID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := "created_at DESC"
	if query.SortBy != "" {
		dir := "ASC"
		if query.SortDir == "desc" {
			dir = "DESC"
		}
		sort = fmt.Sprintf("%s %s", query.SortBy, dir)
	}

	err := db.Preload("AssignedTo").
		Order(sort).
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&leads).Error
	return leads, total, err
}

func (r *leadRepository) CountByStage(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Stage string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("stage, COUNT(*) as count").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Stage] = row.Count
	}
	return counts, nil
}
