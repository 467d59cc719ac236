package repositories

import (
	"context"
	"errors"
	"time"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/core/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
func (r *userRepository) Transaction(ctx context.Context, fn func(UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userRepository{db: tx})
	})
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	return translate(err, nil, domain.ErrUsernameTaken)
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translate(err, domain.ErrUserNotFound, nil)
	}
	return &user, nil
}

// GetByUsername gets a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err, domain.ErrUserNotFound, nil)
	}
	return &user, nil
}

// ExistsByUsername checks if username exists
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ChildIDs returns the ids of every user directly managed by one of managerIDs.
func (r *userRepository) ChildIDs(ctx context.Context, managerIDs []uint) ([]uint, error) {
	var ids []uint
	if len(managerIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("manager_id IN ?", managerIDs).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// ListByManager lists direct subordinates with pagination
func (r *userRepository) ListByManager(ctx context.Context, managerID uint, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{}).Where("manager_id = ?", managerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("username ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// DeleteByUsername hard deletes a user and hands its subordinates to its own
// manager so the manager forest stays connected. Missing users return false.
func (r *userRepository) DeleteByUsername(ctx context.Context, username string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("manager_id = ?", user.ID).
			Update("manager_id", user.ManagerID).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.User{}, user.ID)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// SetActive sets the active flag on every id and returns the matched row count.
func (r *userRepository) SetActive(ctx context.Context, ids []uint, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Update("active", active)
	return res.RowsAffected, res.Error
}

// SetSurveyTime upserts the declare window.
func (r *userRepository) SetSurveyTime(ctx context.Context, username string, start, end time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Updates(map[string]interface{}{
			"survey_time_start": start,
			"survey_time_end":   end,
		})
	return res.RowsAffected, res.Error
}

// SetFinished flags the user's declaration as complete or reopens it.
func (r *userRepository) SetFinished(ctx context.Context, username string, finished bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("is_finish", finished)
	return res.RowsAffected, res.Error
}

// UpdatePassword stores a new password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}
