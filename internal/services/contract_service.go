package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vidaplan/corretora-api/internal/jobs"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"github.com/vidaplan/corretora-api/internal/statemachine"
)

type ContractService struct {
	repo            repository.ContractRepository
	adjustmentRepo  repository.AdjustmentRepository
	leadRepo        repository.LeadRepository
	commissionSvc   *CommissionService
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewContractService(
	repo repository.ContractRepository,
	adjustmentRepo repository.AdjustmentRepository,
	leadRepo repository.LeadRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *ContractService {
	return &ContractService{
		repo:            repo,
		adjustmentRepo:  adjustmentRepo,
		leadRepo:        leadRepo,
		commissionSvc:   NewCommissionService(),
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// FindByID gets a contract by ID
func (s *ContractService) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByIDWithDetails gets a contract with its adjustment ledger preloaded
func (s *ContractService) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	return s.repo.FindByIDWithDetails(ctx, id)
}

func (s *ContractService) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ContractService) GetStats(ctx context.Context) (*repository.ContractStats, error) {
	return s.repo.GetStats(ctx)
}

// Create validates the commission plan, derives comissao_prevista and
// persists the contract. When comissaoOverride is non-nil the client's
// value wins over the calculator (the computed figure is a suggestion;
// last write wins at save time).
func (s *ContractService) Create(ctx context.Context, contract *models.Contract, comissaoOverride *float64) error {
	if err := s.commissionSvc.ValidatePlan(contract.RecebimentoAdiantado, contract.ComissaoParcelas); err != nil {
		return err
	}

	// Only positive-percentage installments persist
	contract.ComissaoParcelas = contract.ComissaoParcelas.Active()
	if contract.Vidas < 1 {
		contract.Vidas = 1
	}
	if contract.ComissaoMultiplicador == 0 {
		contract.ComissaoMultiplicador = 2.8
	}

	s.commissionSvc.Recompute(contract)
	if comissaoOverride != nil {
		contract.ComissaoPrevista = *comissaoOverride
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		return err
	}

	// Close the originating lead
	if contract.LeadID != nil {
		if lead, err := s.leadRepo.FindByID(ctx, *contract.LeadID); err == nil && lead.IsOpen() {
			lead.Stage = models.LeadStageFechado
			s.leadRepo.Update(ctx, lead)
		}
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Novo contrato",
			fmt.Sprintf("Contrato de %s cadastrado para análise", contract.Titular),
			models.NotificationTypeContractActivated)
	})

	s.auditSvc.Log(ctx, contract.CorretorID, "CREATE", "Contract", contract.ID,
		fmt.Sprintf("Contrato criado para %s. Mensalidade: %.2f, comissão prevista: %.2f",
			contract.Titular, contract.MensalidadeTotal, contract.ComissaoPrevista), "", "")

	return nil
}

// Update applies changes to a contract, re-validates the plan and
// recomputes the predicted commission. An explicit comissaoOverride
// suppresses the recomputation for this save.
func (s *ContractService) Update(ctx context.Context, contract *models.Contract, comissaoOverride *float64) error {
	if err := s.commissionSvc.ValidatePlan(contract.RecebimentoAdiantado, contract.ComissaoParcelas); err != nil {
		return err
	}

	contract.ComissaoParcelas = contract.ComissaoParcelas.Active()

	if comissaoOverride != nil {
		contract.ComissaoPrevista = *comissaoOverride
	} else {
		s.commissionSvc.Recompute(contract)
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, contract.CorretorID, "UPDATE", "Contract", contract.ID, "Contrato atualizado", "", "")
	return nil
}

// AddAdjustment appends an immutable surcharge/discount row to the
// contract's ledger and refreshes the derived commission.
func (s *ContractService) AddAdjustment(ctx context.Context, contractID uint, adjustment *models.ValueAdjustment) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if adjustment.Tipo != models.AdjustmentAcrescimo && adjustment.Tipo != models.AdjustmentDesconto {
		return nil, fmt.Errorf("tipo de ajuste inválido: %s", adjustment.Tipo)
	}

	adjustment.ContractID = contract.ID
	if err := s.adjustmentRepo.Create(ctx, adjustment); err != nil {
		return nil, err
	}

	return s.refreshCommission(ctx, contract.ID)
}

// DeleteAdjustment removes a ledger row (irreversible; the handler asks
// the client for confirmation) and refreshes the derived commission.
func (s *ContractService) DeleteAdjustment(ctx context.Context, adjustmentID uint) (*models.Contract, error) {
	adjustment, err := s.adjustmentRepo.FindByID(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}

	if err := s.adjustmentRepo.Delete(ctx, adjustmentID); err != nil {
		return nil, err
	}

	return s.refreshCommission(ctx, adjustment.ContractID)
}

// refreshCommission reloads the ledger and re-derives comissao_prevista.
func (s *ContractService) refreshCommission(ctx context.Context, contractID uint) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, contractID)
	if err != nil {
		return nil, err
	}

	s.commissionSvc.Recompute(contract)
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// EstimateBonus returns the per-life bonus projection for a contract.
func (s *ContractService) EstimateBonus(ctx context.Context, id uint) (*BonusEstimate, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	estimate := s.commissionSvc.EstimateBonus(contract)
	return &estimate, nil
}

// Activate transitions a contract to ativo. Activation re-runs the plan
// validation so a contract never goes live with an inconsistent plan.
func (s *ContractService) Activate(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.commissionSvc.ValidatePlan(contract.RecebimentoAdiantado, contract.ComissaoParcelas); err != nil {
		return nil, err
	}

	fsm := statemachine.NewContractFSM(contract)
	if err := fsm.Activate(ctx); err != nil {
		return nil, fmt.Errorf("cannot activate contract: %w", err)
	}

	now := time.Now()
	if contract.VigenciaInicio == nil {
		contract.VigenciaInicio = &now
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyUser(ctx, contract.CorretorID,
			"Contrato ativado",
			fmt.Sprintf("O contrato de %s está ativo", contract.Titular),
			models.NotificationTypeContractActivated)
	})

	s.auditSvc.Log(ctx, contract.CorretorID, "ACTIVATE", "Contract", contract.ID, "Contrato ativado", "", "")
	return contract, nil
}

// Suspend transitions a contract to suspenso
func (s *ContractService) Suspend(ctx context.Context, id uint) (*models.Contract, error) {
	return s.transition(ctx, id, func(fsm *statemachine.ContractFSM) error {
		return fsm.Suspend(ctx)
	}, "SUSPEND")
}

// Cancel transitions a contract to cancelado
func (s *ContractService) Cancel(ctx context.Context, id uint, reason string) (*models.Contract, error) {
	contract, err := s.transition(ctx, id, func(fsm *statemachine.ContractFSM) error {
		return fsm.Cancel(ctx)
	}, "CANCEL")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	contract.CanceledAt = &now
	if reason != "" {
		contract.Note = &reason
	}
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyUser(ctx, contract.CorretorID,
			"Contrato cancelado",
			fmt.Sprintf("O contrato de %s foi cancelado", contract.Titular),
			models.NotificationTypeContractCancelled)
	})
	return contract, nil
}

// Close transitions a contract to encerrado
func (s *ContractService) Close(ctx context.Context, id uint) (*models.Contract, error) {
	return s.transition(ctx, id, func(fsm *statemachine.ContractFSM) error {
		return fsm.Close(ctx)
	}, "CLOSE")
}

func (s *ContractService) transition(ctx context.Context, id uint, event func(*statemachine.ContractFSM) error, action string) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewContractFSM(contract)
	if err := event(fsm); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, contract.CorretorID, action, "Contract", contract.ID,
		fmt.Sprintf("Contrato agora em %s", contract.Status), "", "")
	return contract, nil
}

// Delete removes a contract and its ledger
func (s *ContractService) Delete(ctx context.Context, id uint) error {
	if err := s.adjustmentRepo.DeleteByContractID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
