package repositories

import (
	"context"
	"testing"
	"time"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/testdb"
	"census-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, repo UserRepository, username string, manager *models.User) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "x", Role: domain.RoleCity, ManageLocation: "01"}
	if manager != nil {
		u.ManagerID = &manager.ID
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserCreateDuplicate(t *testing.T) {
	repo := NewUserRepository(testdb.Open(t))
	createUser(t, repo, "root", nil)

	err := repo.Create(context.Background(), &models.User{Username: "root", Password: "x", Role: "A1", ManageLocation: "0"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserDefaultsInactive(t *testing.T) {
	repo := NewUserRepository(testdb.Open(t))
	createUser(t, repo, "u1", nil)

	got, err := repo.GetByUsername(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.False(t, got.SurveyTime.IsSet())

	_, err = repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserChildIDsAndSetActive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.Open(t))
	root := createUser(t, repo, "root", nil)
	a := createUser(t, repo, "a", root)
	b := createUser(t, repo, "b", root)
	c := createUser(t, repo, "c", a)

	ids, err := repo.ChildIDs(ctx, []uint{root.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, ids)

	ids, err = repo.ChildIDs(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, ids)

	n, err := repo.SetActive(ctx, []uint{a.ID, c.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.SetActive(ctx, []uint{a.ID, c.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "matched rows are counted even without change")

	n, err = repo.SetActive(ctx, nil, true)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserDeleteReparentsChildren(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.Open(t))
	root := createUser(t, repo, "root", nil)
	mid := createUser(t, repo, "mid", root)
	leaf := createUser(t, repo, "leaf", mid)

	deleted, err := repo.DeleteByUsername(ctx, "mid")
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := repo.GetByID(ctx, leaf.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, root.ID, *got.ManagerID)

	deleted, err = repo.DeleteByUsername(ctx, "mid")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete is a no-op")
}

func TestUserListByManagerPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.Open(t))
	root := createUser(t, repo, "root", nil)
	for _, name := range []string{"c", "a", "b"} {
		createUser(t, repo, name, root)
	}

	users, total, err := repo.ListByManager(ctx, root.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].Username)

	users, _, err = repo.ListByManager(ctx, root.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "c", users[0].Username)
}

func TestUserSurveyTimeAndFinish(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.Open(t))
	createUser(t, repo, "u", nil)

	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	n, err := repo.SetSurveyTime(ctx, "u", start, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.SetFinished(ctx, "u", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByUsername(ctx, "u")
	require.NoError(t, err)
	require.True(t, got.SurveyTime.IsSet())
	assert.True(t, got.SurveyTime.Start.Equal(start))
	assert.True(t, got.IsFinish)

	n, err = repo.SetFinished(ctx, "ghost", true)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.Open(t))
	u := createUser(t, repo, "u", nil)

	err := repo.Transaction(ctx, func(tx UserRepository) error {
		if _, err := tx.SetActive(ctx, []uint{u.ID}, true); err != nil {
			return err
		}
		return domain.ErrNothingUpdated
	})
	assert.ErrorIs(t, err, domain.ErrNothingUpdated)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestRoleSeedAndChildRoles(t *testing.T) {
	ctx := context.Background()
	repo := NewRoleRepository(testdb.Open(t))
	require.NoError(t, repo.Seed(ctx, domain.DefaultRoleGraph))
	require.NoError(t, repo.Seed(ctx, domain.DefaultRoleGraph), "seeding twice is harmless")

	children, err := repo.ChildRoles(ctx, domain.RoleCountry)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleCity}, children)

	children, err = repo.ChildRoles(ctx, domain.RoleCivilGroup)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestRefreshTokenPurge(t *testing.T) {
	ctx := context.Background()
	repo := NewRefreshTokenRepository(testdb.Open(t))
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &models.RefreshToken{UserID: 1, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.RefreshToken{UserID: 1, TokenHash: "old", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.RefreshToken{UserID: 1, TokenHash: "revoked", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.RevokeByTokenHash(ctx, "revoked"))

	_, err := repo.GetByTokenHash(ctx, "revoked")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := repo.CountActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
