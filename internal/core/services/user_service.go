package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/metrics"
	"census-backend/internal/pkg/pagination"
	"census-backend/internal/pkg/password"

	"go.uber.org/zap"
)

// UserService handles the user directory: creation under a manager, the
// manager forest and per-user survey rights.
type UserService struct {
	userRepo    repositories.UserRepository
	roleRepo    repositories.RoleRepository
	permissions *PermissionService
	log         *zap.Logger
	now         func() time.Time
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	permissions *PermissionService,
	log *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		permissions: permissions,
		log:         log,
		now:         time.Now,
	}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ManageLocation string `json:"manage_location"`
}

// DeclareWindowInput carries epoch seconds.
type DeclareWindowInput struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Create creates a user managed by creatorUsername. The new account starts
// inactive until its manager grants survey rights.
func (s *UserService) Create(ctx context.Context, creatorUsername string, input *CreateUserInput) (*models.UserResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrWeakPassword
	}

	creator, err := s.userRepo.GetByUsername(ctx, creatorUsername)
	if err != nil {
		return nil, err
	}

	allowed, err := s.permissions.CanCreateUserWithRole(ctx, creator.Role, input.Role)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrRoleNotAssignable
	}

	if domain.UnitOf(input.ManageLocation) == domain.LevelInvalid {
		return nil, domain.ErrInvalidCode
	}
	if !domain.ValidChildCode(creator.ManageLocation, input.ManageLocation) {
		return nil, domain.ErrLocationOutOfScope
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       input.Username,
		Email:          input.Email,
		Password:       hashed,
		Role:           input.Role,
		ManageLocation: input.ManageLocation,
		ManagerID:      &creator.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	metrics.RecordUserCreated(user.Role)
	s.log.Info("✅ User created",
		zap.String("username", user.Username),
		zap.String("role", user.Role),
		zap.String("manager", creator.Username),
	)
	return user.ToResponse(), nil
}

// Delete removes target if acting is its direct manager. Subordinates move up
// to acting. A missing target reports false.
func (s *UserService) Delete(ctx context.Context, actingUsername, targetUsername string) (bool, error) {
	acting, err := s.userRepo.GetByUsername(ctx, actingUsername)
	if err != nil {
		return false, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, targetUsername)
	if err != nil || !exists {
		return false, err
	}

	if err := s.requireDirectManager(ctx, acting, targetUsername); err != nil {
		return false, err
	}

	deleted, err := s.userRepo.DeleteByUsername(ctx, targetUsername)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("🗑️ User deleted", zap.String("username", targetUsername), zap.String("by", actingUsername))
	}
	return deleted, nil
}

// SetActive grants or revokes survey rights on target and every descendant.
func (s *UserService) SetActive(ctx context.Context, actingUsername, targetUsername string, active bool) (int64, error) {
	acting, err := s.userRepo.GetByUsername(ctx, actingUsername)
	if err != nil {
		return 0, err
	}
	if err := s.requireDirectManager(ctx, acting, targetUsername); err != nil {
		return 0, err
	}
	return s.SetActiveCascading(ctx, targetUsername, active)
}

// SetActiveCascading sets active on target and all of its descendants in one
// transaction. Zero matched rows is a conflict.
func (s *UserService) SetActiveCascading(ctx context.Context, targetUsername string, active bool) (int64, error) {
	var touched int64
	err := s.userRepo.Transaction(ctx, func(tx repositories.UserRepository) error {
		target, err := tx.GetByUsername(ctx, targetUsername)
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrNothingUpdated
		}
		if err != nil {
			return err
		}

		ids, err := descendants(ctx, tx, target.ID)
		if err != nil {
			return err
		}

		n, err := tx.SetActive(ctx, ids, active)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNothingUpdated
		}
		touched = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("✅ Survey rights updated",
		zap.String("username", targetUsername),
		zap.Bool("active", active),
		zap.Int64("users", touched),
	)
	return touched, nil
}

// descendants returns rootID followed by every user below it, breadth first.
func descendants(ctx context.Context, repo repositories.UserRepository, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	seen := map[uint]bool{rootID: true}
	frontier := []uint{rootID}

	for len(frontier) > 0 {
		children, err := repo.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			frontier = append(frontier, id)
		}
	}
	return ids, nil
}

// ChildrenOf returns the ids of users directly managed by userID.
func (s *UserService) ChildrenOf(ctx context.Context, userID uint) ([]uint, error) {
	return s.userRepo.ChildIDs(ctx, []uint{userID})
}

// SetDeclareWindow opens a survey window on a direct subordinate.
func (s *UserService) SetDeclareWindow(ctx context.Context, actingUsername, targetUsername string, input *DeclareWindowInput) error {
	acting, err := s.userRepo.GetByUsername(ctx, actingUsername)
	if err != nil {
		return err
	}
	if err := s.requireDirectManager(ctx, acting, targetUsername); err != nil {
		return err
	}

	start := time.Unix(input.Start, 0)
	end := time.Unix(input.End, 0)
	if err := domain.ValidateDeclareWindow(start, end, s.now()); err != nil {
		return err
	}

	n, err := s.userRepo.SetSurveyTime(ctx, targetUsername, start, end)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNothingUpdated
	}
	return nil
}

// MarkFinished lets a user flag its own declaration as complete.
func (s *UserService) MarkFinished(ctx context.Context, username string, finished bool) error {
	n, err := s.userRepo.SetFinished(ctx, username, finished)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, username string, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return domain.ErrOldPasswordWrong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hashed)
}

// ListChildren is the manager's progress view over direct subordinates.
func (s *UserService) ListChildren(ctx context.Context, username string, params *pagination.Params) (*pagination.Page, error) {
	manager, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.ListByManager(ctx, manager.ID, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, u.ToResponse())
	}
	return pagination.NewPage(items, params, total), nil
}

// ChildRoles returns the roles role may assign.
func (s *UserService) ChildRoles(ctx context.Context, role string) ([]string, error) {
	roles, err := s.roleRepo.ChildRoles(ctx, role)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []string{}
	}
	return roles, nil
}

// GetByUsername loads the acting user for other services.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) requireDirectManager(ctx context.Context, acting *models.User, targetUsername string) error {
	allowed, err := s.permissions.CanManageOtherUser(ctx, acting, targetUsername)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrNotDirectManager
	}
	return nil
}
