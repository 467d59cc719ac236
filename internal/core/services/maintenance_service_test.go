package services

import (
	"testing"
	"time"

	"census-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPurgeRefreshTokens(t *testing.T) {
	f := newFixture(t)
	root, err := f.users.GetByUsername(f.ctx, rootUser)
	require.NoError(t, err)

	revoked := time.Now()
	for _, tok := range []*models.RefreshToken{
		{UserID: root.ID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour)},
		{UserID: root.ID, TokenHash: "expired", ExpiresAt: time.Now().Add(-time.Hour)},
		{UserID: root.ID, TokenHash: "revoked", ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revoked},
	} {
		require.NoError(t, f.tokens.Create(f.ctx, tok))
	}

	svc := NewMaintenanceService(f.tokens, zap.NewNop())
	assert.Equal(t, int64(2), svc.PurgeRefreshTokens(f.ctx))
	assert.Equal(t, int64(0), svc.PurgeRefreshTokens(f.ctx))

	n, err := f.tokens.CountActiveByUserID(f.ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMaintenanceRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	svc := NewMaintenanceService(f.tokens, zap.NewNop())
	assert.Error(t, svc.Start("not a cron line"))

	require.NoError(t, svc.Start("0 3 * * *"))
	svc.Stop()
}
