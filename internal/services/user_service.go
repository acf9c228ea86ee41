package services

import (
	"context"
	"fmt"

	"github.com/vidaplan/corretora-api/internal/jobs"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo     repository.UserRepository
	emailSvc *EmailService
	auditSvc *AuditService
	worker   *jobs.Worker
}

func NewUserService(repo repository.UserRepository, emailSvc *EmailService, auditSvc *AuditService, worker *jobs.Worker) *UserService {
	return &UserService{
		repo:     repo,
		emailSvc: emailSvc,
		auditSvc: auditSvc,
		worker:   worker,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

// Create hashes the password, persists the user and sends the welcome
// e-mail off the request path.
func (s *UserService) Create(ctx context.Context, user *models.User, password string, createdBy uint) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.EncryptedPassword = string(hashed)
	if createdBy != 0 {
		user.CreatedBy = &createdBy
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailSvc.SendAccountCreated(ctx, user)
	})

	s.auditSvc.Log(ctx, createdBy, "CREATE", "User", user.ID,
		fmt.Sprintf("Usuário %s criado", user.Email), "", "")
	return nil
}

func (s *UserService) Update(ctx context.Context, user *models.User) error {
	return s.repo.Update(ctx, user)
}

// ChangePassword verifies the current password before setting a new one
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(current)); err != nil {
		return ErrInvalidPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.EncryptedPassword = string(hashed)
	return s.repo.Update(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
