package services

import (
	"context"
	"errors"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/metrics"
)

// PermissionService loads what the authorization decisions need and records
// each outcome.
type PermissionService struct {
	userRepo     repositories.UserRepository
	roleRepo     repositories.RoleRepository
	locationRepo repositories.LocationRepository
}

func NewPermissionService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	locationRepo repositories.LocationRepository,
) *PermissionService {
	return &PermissionService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		locationRepo: locationRepo,
	}
}

// CanCreateUserWithRole reports whether actingRole may hand out targetRole.
func (p *PermissionService) CanCreateUserWithRole(ctx context.Context, actingRole, targetRole string) (bool, error) {
	children, err := p.roleRepo.ChildRoles(ctx, actingRole)
	if err != nil {
		return false, err
	}
	allowed := domain.CanCreateUserWithRole(children, targetRole)
	metrics.RecordAuthorizationDecision("user", "create", allowed)
	return allowed, nil
}

// CanManageOtherUser is true only when acting is target's direct manager.
// A missing target is a denial, not an error.
func (p *PermissionService) CanManageOtherUser(ctx context.Context, acting *models.User, targetUsername string) (bool, error) {
	target, err := p.userRepo.GetByUsername(ctx, targetUsername)
	exists := true
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return false, err
		}
		exists = false
	}

	var managerID *uint
	if exists {
		managerID = target.ManagerID
	}
	allowed := domain.CanManageOtherUser(acting.ID, managerID, exists)
	metrics.RecordAuthorizationDecision("user", "manage", allowed)
	return allowed, nil
}

// CanCreateLocationUnder reports whether name was provisioned directly under
// acting's managed location in the table that code belongs to.
func (p *PermissionService) CanCreateLocationUnder(ctx context.Context, acting *models.User, name, code string) (bool, error) {
	level := domain.UnitOf(code)
	if level == domain.LevelInvalid || level == domain.LevelCountry {
		metrics.RecordAuthorizationDecision("location", "assign_code", false)
		return false, nil
	}

	nodes, err := p.locationRepo.FindByName(ctx, level, name)
	if err != nil {
		return false, err
	}
	candidates := make([]domain.ProvisionedName, 0, len(nodes))
	for _, n := range nodes {
		candidates = append(candidates, domain.ProvisionedName{Name: n.Name, ParentsCode: n.ParentsCode})
	}

	allowed := domain.CanCreateLocationUnder(acting.ManageLocation, name, candidates)
	metrics.RecordAuthorizationDecision("location", "assign_code", allowed)
	return allowed, nil
}

// CanAccessUnit reports whether acting's scope covers code.
func (p *PermissionService) CanAccessUnit(acting *models.User, code, action string) bool {
	allowed := domain.Covers(acting.ManageLocation, code)
	metrics.RecordAuthorizationDecision("survey", action, allowed)
	return allowed
}
