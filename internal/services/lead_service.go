package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vidaplan/corretora-api/internal/jobs"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/statemachine"
	"gorm.io/gorm"
)

type LeadService struct {
	repo            repository.LeadRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewLeadService(repo repository.LeadRepository, notificationSvc *NotificationService, auditSvc *AuditService, worker *jobs.Worker) *LeadService {
	return &LeadService{
		repo:            repo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *LeadService) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *LeadService) List(ctx context.Context, query *repository.LeadQuery) ([]models.Lead, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *LeadService) CountByStage(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByStage(ctx)
}

func (s *LeadService) Create(ctx context.Context, lead *models.Lead, createdBy uint) error {
	if lead.Stage == "" {
		lead.Stage = models.LeadStageNovo
	}
	if lead.Source == "" {
		lead.Source = models.LeadSourceManual
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Novo lead",
			fmt.Sprintf("Lead %s cadastrado (origem: %s)", lead.Name, lead.Source),
			models.NotificationTypeLeadNew)
	})

	s.auditSvc.Log(ctx, createdBy, "CREATE", "Lead", lead.ID,
		fmt.Sprintf("Lead %s criado", lead.Name), "", "")
	return nil
}

func (s *LeadService) Update(ctx context.Context, lead *models.Lead) error {
	return s.repo.Update(ctx, lead)
}

func (s *LeadService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// Advance fires a pipeline event (contact, propose, win, lose, revive) on
// the lead's stage machine and notifies the assigned corretor.
func (s *LeadService) Advance(ctx context.Context, id uint, event string) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lfsm := statemachine.NewLeadFSM(lead)
	if err := lfsm.Advance(ctx, event); err != nil {
		return nil, err
	}

	now := time.Now()
	lead.LastContact = &now
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}

	if lead.AssignedToID != nil {
		assignee := *lead.AssignedToID
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyUser(ctx, assignee,
				"Lead atualizado",
				fmt.Sprintf("Lead %s agora em %s", lead.Name, lead.Stage),
				models.NotificationTypeLeadStageChanged)
		})
	}
	return lead, nil
}

// UpsertFromSource creates a lead coming from an external channel
// (Facebook lead ads, inbound WhatsApp) unless one already exists for the
// same external ID or phone number.
func (s *LeadService) UpsertFromSource(ctx context.Context, lead *models.Lead) (*models.Lead, bool, error) {
	if lead.ExternalID != nil {
		if existing, err := s.repo.FindByExternalID(ctx, *lead.ExternalID); err == nil {
			return existing, false, nil
		} else if err != gorm.ErrRecordNotFound {
			return nil, false, err
		}
	}
	if lead.Phone != "" {
		if existing, err := s.repo.FindByPhoneDigits(ctx, models.DigitsOnly(lead.Phone)); err == nil {
			return existing, false, nil
		} else if err != gorm.ErrRecordNotFound {
			return nil, false, err
		}
	}

	if err := s.Create(ctx, lead, 0); err != nil {
		return nil, false, err
	}
	return lead, true, nil
}
