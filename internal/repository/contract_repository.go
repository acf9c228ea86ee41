package repository

import (
	"context"
	"fmt"

	"github.com/vidaplan/corretora-api/internal/models"

	"gorm.io/gorm"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Contract, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error)
	FindByLead(ctx context.Context, leadID uint) ([]models.Contract, error)
	FindByCorretor(ctx context.Context, corretorID uint) ([]models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error)
	GetStats(ctx context.Context) (*ContractStats, error)
}

// ContractQuery extends ListQuery with contract-specific filters
type ContractQuery struct {
	*ListQuery
	UserID  uint
	IsAdmin bool
	Status  string
	LeadID  uint
}

// ContractStats holds contract count statistics
type ContractStats struct {
	Total     int64 `json:"total"`
	EmAnalise int64 `json:"em_analise"`
	Ativos    int64 `json:"ativos"`
	Suspensos int64 `json:"suspensos"`
	Cancelados int64 `json:"cancelados"`
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindByIDWithDetails preloads the adjustment ledger and relations needed
// by the commission calculator and the response DTO.
func (r *contractRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Adjustments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Corretor").
		Preload("Lead").
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByLead(ctx context.Context, leadID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByCorretor(ctx context.Context, corretorID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("corretor_id = ?", corretorID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *contractRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Contract{}, id).Error
}

func (r *contractRepository) List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contract{})

	// Non-admins only see their own book
	if !query.IsAdmin && query.UserID != 0 {
		db = db.Where("corretor_id = ?", query.UserID)
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("titular ILIKE ? OR operadora ILIKE ? OR plano ILIKE ?", search, search, search)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.LeadID != 0 {
		db = db.Where("lead_id = ?", query.LeadID)
	}
	if startDate, ok := query.Filters["start_date"]; ok && startDate != "" {
		db = db.Where("created_at >= ?", startDate)
	}
	if endDate, ok := query.Filters["end_date"]; ok && endDate != "" {
		db = db.Where("created_at <= ?", endDate)
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

	err := db.Preload("Adjustments").
		Preload("Corretor").
		Order(sort).
		Offset((query.Page - 1) * query.PerPage).
		Limit(query.PerPage).
		Find(&contracts).Error
	return contracts, total, err
}

func (r *contractRepository) GetStats(ctx context.Context) (*ContractStats, error) {
	stats := &ContractStats{}
	db := r.db.WithContext(ctx).Model(&models.Contract{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	counts := map[string]*int64{
		models.ContractStatusEmAnalise: &stats.EmAnalise,
		models.ContractStatusAtivo:     &stats.Ativos,
		models.ContractStatusSuspenso:  &stats.Suspensos,
		models.ContractStatusCancelado: &stats.Cancelados,
	}
	for status, dest := range counts {
		if err := r.db.WithContext(ctx).
			Model(&models.Contract{}).
			Where("status = ?", status).
			Count(dest).Error; err != nil {
			return nil, err
		}
	}

	return stats, nil
}
