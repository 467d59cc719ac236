package services

import (
	"context"
	"os"
	"testing"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/adapters/persistence/testdb"
	"census-backend/internal/config"
	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/password"
	"census-backend/internal/pkg/session"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	rootUser     = "admin"
	rootPassword = "admin123456"
)

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	ctx         context.Context
	users       repositories.UserRepository
	locations   repositories.LocationRepository
	surveys     repositories.SurveyRepository
	tokens      repositories.RefreshTokenRepository
	permissions *PermissionService
	userSvc     *UserService
	locationSvc *LocationService
	surveySvc   *SurveyService
	authSvc     *AuthService
	revocations session.RevocationStore
}

// newFixture seeds the role graph, country "0" and the active root user.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	log := zap.NewNop()
	ctx := context.Background()

	root := config.RootConfig{Username: rootUser, Password: rootPassword, Location: "0", Country: "Việt Nam"}
	require.NoError(t, config.NewSeeder(db, root, log).Run(ctx))

	f := &fixture{
		ctx:         ctx,
		users:       repositories.NewUserRepository(db),
		locations:   repositories.NewLocationRepository(db),
		surveys:     repositories.NewSurveyRepository(db),
		tokens:      repositories.NewRefreshTokenRepository(db),
		revocations: session.NewMemoryStore(),
	}
	roles := repositories.NewRoleRepository(db)
	f.permissions = NewPermissionService(f.users, roles, f.locations)
	f.userSvc = NewUserService(f.users, roles, f.permissions, log)
	f.locationSvc = NewLocationService(f.locations, f.users, f.permissions, log)
	f.surveySvc = NewSurveyService(f.surveys, f.locations, f.users, f.permissions, log)

	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:           "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessTokenMins:  15,
		RefreshTokenDays: 7,
	}}
	f.authSvc = NewAuthService(f.users, f.tokens, f.revocations, cfg, log)
	return f
}

func strPtr(s string) *string { return &s }

// seedTree builds two coded branches down to civil groups:
// 01 Hà Nội / 0101 Ba Đình / 010101 Phúc Xá / 01010101 Tổ 1
// 79 Hồ Chí Minh / 7901 Quận 1 / 790101 Bến Nghé / 79010101 Tổ 5
func (f *fixture) seedTree(t *testing.T) {
	t.Helper()
	for _, branch := range [][]struct{ parent, code, name string }{
		{{"0", "01", "Hà Nội"}, {"01", "0101", "Ba Đình"}, {"0101", "010101", "Phúc Xá"}, {"010101", "01010101", "Tổ 1"}},
		{{"0", "79", "Hồ Chí Minh"}, {"79", "7901", "Quận 1"}, {"7901", "790101", "Bến Nghé"}, {"790101", "79010101", "Tổ 5"}},
	} {
		for _, n := range branch {
			_, err := f.locationSvc.create(f.ctx, n.parent, n.name, strPtr(n.code))
			require.NoError(t, err)
		}
	}
}

// createUser creates and activates username under manager.
func (f *fixture) createUser(t *testing.T, manager, username, role, location string) *models.User {
	t.Helper()
	_, err := f.userSvc.Create(f.ctx, manager, &CreateUserInput{
		Username:       username,
		Password:       "password123",
		Role:           role,
		ManageLocation: location,
	})
	require.NoError(t, err)
	_, err = f.userSvc.SetActive(f.ctx, manager, username, true)
	require.NoError(t, err)

	user, err := f.users.GetByUsername(f.ctx, username)
	require.NoError(t, err)
	return user
}

// seedHanoiChain creates hanoi (A2, 01) under root and badinh (A3, 0101) under hanoi.
func (f *fixture) seedHanoiChain(t *testing.T) {
	t.Helper()
	f.createUser(t, rootUser, "hanoi", domain.RoleCity, "01")
	f.createUser(t, "hanoi", "badinh", domain.RoleDistrict, "0101")
}
