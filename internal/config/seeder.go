package config

import (
	"context"
	"errors"
	"fmt"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	roles     repositories.RoleRepository
	locations repositories.LocationRepository
	users     repositories.UserRepository
	root      RootConfig
	log       *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, root RootConfig, log *zap.Logger) *Seeder {
	return &Seeder{
		roles:     repositories.NewRoleRepository(db),
		locations: repositories.NewLocationRepository(db),
		users:     repositories.NewUserRepository(db),
		root:      root,
		log:       log,
	}
}

// Run executes all seeders. Each step is idempotent.
func (s *Seeder) Run(ctx context.Context) error {
	s.log.Info("🌱 Running database seeders...")

	if err := s.roles.Seed(ctx, domain.DefaultRoleGraph); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	if domain.LevelOf(s.root.Location) != domain.LevelCountry {
		return fmt.Errorf("ROOT_LOCATION %q is not a country code", s.root.Location)
	}
	if _, err := s.locations.EnsureCountry(ctx, s.root.Location, s.root.Country); err != nil {
		return fmt.Errorf("seed country: %w", err)
	}

	if err := s.seedRootUser(ctx); err != nil {
		return fmt.Errorf("seed root user: %w", err)
	}

	s.log.Info("✅ Database seeding completed")
	return nil
}

// seedRootUser creates the only account without a manager.
func (s *Seeder) seedRootUser(ctx context.Context) error {
	exists, err := s.users.ExistsByUsername(ctx, s.root.Username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := password.Hash(s.root.Password)
	if err != nil {
		return err
	}

	root := &models.User{
		Username:       s.root.Username,
		Password:       hashed,
		Role:           domain.RoleCountry,
		ManageLocation: s.root.Location,
		Active:         true,
	}
	if err := s.users.Create(ctx, root); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil
		}
		return err
	}

	s.log.Info("✅ Root user created", zap.String("username", root.Username))
	return nil
}
