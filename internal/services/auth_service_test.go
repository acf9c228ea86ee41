package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/models"
	"gorm.io/gorm"
)

type fakeRefreshTokenRepo struct {
	tokens  map[string]*models.RefreshToken
	expired int64
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := r.tokens[token]; ok {
		return rt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByUser(ctx context.Context, userID uint) error {
	for key, rt := range r.tokens {
		if rt.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return r.expired, nil
}

func TestCleanupExpiredTokens(t *testing.T) {
	repo := newFakeRefreshTokenRepo()
	repo.expired = 3
	svc := NewAuthService(&fakeUserRepo{}, repo, &config.Config{JWTSecret: "segredo"})

	removed, err := svc.CleanupExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}

func TestLogoutDropsUserTokens(t *testing.T) {
	repo := newFakeRefreshTokenRepo()
	repo.tokens["abc"] = &models.RefreshToken{Token: "abc", UserID: 7}
	repo.tokens["def"] = &models.RefreshToken{Token: "def", UserID: 8}
	svc := NewAuthService(&fakeUserRepo{}, repo, &config.Config{JWTSecret: "segredo"})

	require.NoError(t, svc.Logout(context.Background(), 7))
	assert.NotContains(t, repo.tokens, "abc")
	assert.Contains(t, repo.tokens, "def")
}
