package config

import (
	"context"
	"testing"

	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/adapters/persistence/testdb"
	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestSeederCreatesRootOnce(t *testing.T) {
	password.Cost = bcrypt.MinCost
	defer func() { password.Cost = password.DefaultCost }()

	db := testdb.Open(t)
	ctx := context.Background()
	root := RootConfig{Username: "admin", Password: "admin123456", Location: "0", Country: "Việt Nam"}

	require.NoError(t, NewSeeder(db, root, zap.NewNop()).Run(ctx))
	require.NoError(t, NewSeeder(db, root, zap.NewNop()).Run(ctx))

	users := repositories.NewUserRepository(db)
	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCountry, admin.Role)
	assert.Nil(t, admin.ManagerID)
	assert.True(t, admin.Active)
	assert.True(t, password.Verify("admin123456", admin.Password))

	country, err := repositories.NewLocationRepository(db).GetByCode(ctx, domain.LevelCountry, "0")
	require.NoError(t, err)
	assert.Equal(t, "Việt Nam", country.Name)

	children, err := repositories.NewRoleRepository(db).ChildRoles(ctx, domain.RoleWard)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleCivilGroup}, children)
}

func TestSeederRejectsNonCountryRoot(t *testing.T) {
	db := testdb.Open(t)
	root := RootConfig{Username: "admin", Password: "admin123456", Location: "01"}
	assert.Error(t, NewSeeder(db, root, zap.NewNop()).Run(context.Background()))
}

func TestBuildDSNCountsMatchedRows(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "3306", DBName: "census"})
	assert.Equal(t, "u:p@tcp(h:3306)/census?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true", dsn)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("ACCESS_TOKEN_MINUTES", "")
	t.Setenv("ROOT_LOCATION", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*60, cfg.JWT.AccessTokenMins)
	assert.Equal(t, "0", cfg.Root.Location)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestLoadRejectsBadMode(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	assert.Error(t, err)
}
