package repositories

import (
	"context"
	"time"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ChildIDs(ctx context.Context, managerIDs []uint) ([]uint, error)
	ListByManager(ctx context.Context, managerID uint, offset, limit int) ([]*models.User, int64, error)
	DeleteByUsername(ctx context.Context, username string) (bool, error)
	SetActive(ctx context.Context, ids []uint, active bool) (int64, error)
	SetSurveyTime(ctx context.Context, username string, start, end time.Time) (int64, error)
	SetFinished(ctx context.Context, username string, finished bool) (int64, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Transaction(ctx context.Context, fn func(UserRepository) error) error
}

// RoleRepository defines the role graph store
type RoleRepository interface {
	ChildRoles(ctx context.Context, role string) ([]string, error)
	Seed(ctx context.Context, graph domain.RoleGraph) error
}

// LocationRepository defines the location directory. Every method takes the
// level whose table it reads or writes.
type LocationRepository interface {
	EnsureCountry(ctx context.Context, code, name string) (*models.LocationNode, error)
	ListByLevel(ctx context.Context, level domain.Level) ([]*models.LocationNode, error)
	GetByCode(ctx context.Context, level domain.Level, code string) (*models.LocationNode, error)
	FindByName(ctx context.Context, level domain.Level, name string) ([]*models.LocationNode, error)
	FindChildByName(ctx context.Context, level domain.Level, parentsCode, name string) (*models.LocationNode, error)
	FindByCodeOrName(ctx context.Context, level domain.Level, value string) (*models.LocationNode, error)
	SiblingExists(ctx context.Context, level domain.Level, parentsCode, name string, code *string) (bool, error)
	CodeExists(ctx context.Context, level domain.Level, code string) (bool, error)
	Create(ctx context.Context, parent *models.LocationNode, level domain.Level, node *models.LocationNode) error
	ListChildren(ctx context.Context, parent *models.LocationNode, level domain.Level) ([]*models.LocationNode, error)
	ListUnassigned(ctx context.Context, level domain.Level, parentsCode string) ([]*models.LocationNode, error)
	AssignCode(ctx context.Context, level domain.Level, name, parentsCode, code string) error
}

// SurveyRepository defines the survey record store
type SurveyRepository interface {
	Create(ctx context.Context, survey *models.Survey) error
	ExistsByIdentity(ctx context.Context, identityNumber string) (bool, error)
	GetByIdentity(ctx context.Context, identityNumber string) (*models.Survey, error)
	ListByUnit(ctx context.Context, level domain.Level, code string) ([]*models.Survey, error)
	DeleteByIdentity(ctx context.Context, identityNumber string) (bool, error)
	OccupationCounts(ctx context.Context, level domain.Level, codes []string) ([]models.OccupationCountRow, error)
	ListDobs(ctx context.Context, level domain.Level, codes []string, gender string) ([]string, error)
	SearchCandidates(ctx context.Context, terms []string, level domain.Level, code string) ([]models.SearchCandidate, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}
