package services

import (
	"context"
	"fmt"
	"strings"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/core/domain"

	"go.uber.org/zap"
)

// LocationService handles the location directory.
type LocationService struct {
	locationRepo repositories.LocationRepository
	userRepo     repositories.UserRepository
	permissions  *PermissionService
	log          *zap.Logger
}

func NewLocationService(
	locationRepo repositories.LocationRepository,
	userRepo repositories.UserRepository,
	permissions *PermissionService,
	log *zap.Logger,
) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		userRepo:     userRepo,
		permissions:  permissions,
		log:          log,
	}
}

// CreateLocationInput provisions a child under ParentCode. Code may be left
// empty and assigned later.
type CreateLocationInput struct {
	ParentCode string  `json:"parent_code"`
	Name       string  `json:"name"`
	Code       *string `json:"code"`
}

// AssignCodeInput names a provisioned child of the caller's location.
type AssignCodeInput struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func toResponses(nodes []*models.LocationNode) []*models.LocationResponse {
	out := make([]*models.LocationResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ToResponse())
	}
	return out
}

// ListTopLevel returns every coded country and city.
func (s *LocationService) ListTopLevel(ctx context.Context) ([]*models.LocationResponse, error) {
	var all []*models.LocationNode
	for _, level := range []domain.Level{domain.LevelCountry, domain.LevelCity} {
		nodes, err := s.locationRepo.ListByLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		all = append(all, nodes...)
	}
	return toResponses(all), nil
}

func (s *LocationService) getNode(ctx context.Context, code string) (*models.LocationNode, domain.Level, error) {
	level := domain.UnitOf(code)
	if level == domain.LevelInvalid {
		return nil, level, domain.ErrInvalidCode
	}
	node, err := s.locationRepo.GetByCode(ctx, level, code)
	return node, level, err
}

// GetByCode returns one node.
func (s *LocationService) GetByCode(ctx context.Context, code string) (*models.LocationResponse, error) {
	node, _, err := s.getNode(ctx, code)
	if err != nil {
		return nil, err
	}
	return node.ToResponse(), nil
}

// ListChildren returns the direct children of parentCode in insertion order.
// A civil group has no children, which yields an empty list.
func (s *LocationService) ListChildren(ctx context.Context, parentCode string) ([]*models.LocationResponse, error) {
	parent, level, err := s.getNode(ctx, parentCode)
	if err != nil {
		return nil, err
	}
	childLevel := domain.ChildLevel(level)
	if childLevel == domain.LevelInvalid {
		return []*models.LocationResponse{}, nil
	}
	nodes, err := s.locationRepo.ListChildren(ctx, parent, childLevel)
	if err != nil {
		return nil, err
	}
	return toResponses(nodes), nil
}

// ListUnassigned returns names provisioned under parentCode without a code.
func (s *LocationService) ListUnassigned(ctx context.Context, parentCode string) ([]*models.LocationResponse, error) {
	_, level, err := s.getNode(ctx, parentCode)
	if err != nil {
		return nil, err
	}
	childLevel := domain.ChildLevel(level)
	if childLevel == domain.LevelInvalid {
		return []*models.LocationResponse{}, nil
	}
	nodes, err := s.locationRepo.ListUnassigned(ctx, childLevel, parentCode)
	if err != nil {
		return nil, err
	}
	return toResponses(nodes), nil
}

// Create provisions a child location under a parent the caller administers.
func (s *LocationService) Create(ctx context.Context, actingUsername string, input *CreateLocationInput) (*models.LocationResponse, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if input.Code != nil && *input.Code == "" {
		input.Code = nil
	}

	acting, err := s.userRepo.GetByUsername(ctx, actingUsername)
	if err != nil {
		return nil, err
	}
	if !domain.Covers(acting.ManageLocation, input.ParentCode) {
		return nil, domain.ErrLocationOutOfScope
	}

	node, err := s.create(ctx, input.ParentCode, input.Name, input.Code)
	if err != nil {
		return nil, err
	}

	s.log.Info("✅ Location created",
		zap.String("parent", input.ParentCode),
		zap.String("name", node.Name),
		zap.String("code", node.CodeValue()),
		zap.String("by", actingUsername),
	)
	return node.ToResponse(), nil
}

// create is the directory operation: conflict on a sibling with the same name
// or code, otherwise insert and link under the parent.
func (s *LocationService) create(ctx context.Context, parentCode, name string, code *string) (*models.LocationNode, error) {
	parent, level, err := s.getNode(ctx, parentCode)
	if err != nil {
		return nil, err
	}
	childLevel := domain.ChildLevel(level)
	if childLevel == domain.LevelInvalid {
		return nil, domain.ErrNoChildLevel
	}
	if code != nil && !domain.ValidChildCode(parentCode, *code) {
		return nil, domain.ErrCodeOutsideParent
	}

	exists, err := s.locationRepo.SiblingExists(ctx, childLevel, parentCode, name, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrLocationExists
	}

	node := &models.LocationNode{Name: name, Code: code}
	if err := s.locationRepo.Create(ctx, parent, childLevel, node); err != nil {
		return nil, err
	}
	return node, nil
}

// AssignCode gives a code, once, to a name provisioned directly under the
// caller's managed location.
func (s *LocationService) AssignCode(ctx context.Context, actingUsername string, input *AssignCodeInput) error {
	acting, err := s.userRepo.GetByUsername(ctx, actingUsername)
	if err != nil {
		return err
	}

	allowed, err := s.permissions.CanCreateLocationUnder(ctx, acting, input.Name, input.Code)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrLocationOutOfScope
	}
	if !domain.ValidChildCode(acting.ManageLocation, input.Code) {
		return domain.ErrCodeOutsideParent
	}

	level := domain.UnitOf(input.Code)
	if err := s.locationRepo.AssignCode(ctx, level, input.Name, acting.ManageLocation, input.Code); err != nil {
		return err
	}

	s.log.Info("✅ Location code assigned",
		zap.String("name", input.Name),
		zap.String("code", input.Code),
		zap.String("by", actingUsername),
	)
	return nil
}
