package repositories

import (
	"context"
	"errors"
	"fmt"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const nodeColumns = "n.id, n.code, n.name, n.parents_code, n.created_at, n.updated_at"

// locationRepository implements LocationRepository over one table per level.
type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) table(ctx context.Context, level domain.Level) (*gorm.DB, error) {
	name := level.Collection()
	if name == "" {
		return nil, domain.ErrInvalidCode
	}
	return r.db.WithContext(ctx).Table(name), nil
}

// EnsureCountry returns the country node with code, creating it when absent.
func (r *locationRepository) EnsureCountry(ctx context.Context, code, name string) (*models.LocationNode, error) {
	node, err := r.GetByCode(ctx, domain.LevelCountry, code)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, domain.ErrLocationNotFound) {
		return nil, err
	}

	node = &models.LocationNode{ID: uuid.NewString(), Code: &code, Name: name}
	if err := r.db.WithContext(ctx).Table(domain.CollectionCountry).Create(node).Error; err != nil {
		return nil, err
	}
	return node, nil
}

// ListByLevel returns every coded node of a level ordered by code.
func (r *locationRepository) ListByLevel(ctx context.Context, level domain.Level) ([]*models.LocationNode, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return nil, err
	}
	var nodes []*models.LocationNode
	err = q.Where("code IS NOT NULL").Order("code").Find(&nodes).Error
	return nodes, err
}

// GetByCode gets a node by code
func (r *locationRepository) GetByCode(ctx context.Context, level domain.Level, code string) (*models.LocationNode, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return nil, err
	}
	var node models.LocationNode
	if err := q.Where("code = ?", code).First(&node).Error; err != nil {
		return nil, translate(err, domain.ErrLocationNotFound, nil)
	}
	return &node, nil
}

// FindByName returns every node of a level carrying name, coded or not.
func (r *locationRepository) FindByName(ctx context.Context, level domain.Level, name string) ([]*models.LocationNode, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return nil, err
	}
	var nodes []*models.LocationNode
	err = q.Where("name = ?", name).Find(&nodes).Error
	return nodes, err
}

// FindChildByName resolves a coded node by name under a parent code.
func (r *locationRepository) FindChildByName(ctx context.Context, level domain.Level, parentsCode, name string) (*models.LocationNode, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return nil, err
	}
	var node models.LocationNode
	err = q.Where("parents_code = ? AND name = ? AND code IS NOT NULL", parentsCode, name).First(&node).Error
	if err != nil {
		return nil, translate(err, domain.ErrLocationNotFound, nil)
	}
	return &node, nil
}

// FindByCodeOrName resolves a coded node whose code or name equals value.
func (r *locationRepository) FindByCodeOrName(ctx context.Context, level domain.Level, value string) (*models.LocationNode, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return nil, err
	}
	var node models.LocationNode
	err = q.Where("code IS NOT NULL AND (code = ? OR name = ?)", value, value).
		Order("code").
		First(&node).Error
	if err != nil {
		return nil, translate(err, domain.ErrLocationNotFound, nil)
	}
	return &node, nil
}

// SiblingExists reports whether a node under parentsCode already uses name or code.
func (r *locationRepository) SiblingExists(ctx context.Context, level domain.Level, parentsCode, name string, code *string) (bool, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return false, err
	}
	q = q.Where("parents_code = ?", parentsCode)
	if code != nil {
		q = q.Where("name = ? OR code = ?", name, *code)
	} else {
		q = q.Where("name = ?", name)
	}
	var count int64
	err = q.Count(&count).Error
	return count > 0, err
}

// CodeExists checks the whole level table, not just one parent.
func (r *locationRepository) CodeExists(ctx context.Context, level domain.Level, code string) (bool, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return false, err
	}
	var count int64
	err = q.Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// Create inserts node into the level table and appends it to parent's child
// list in the same transaction.
func (r *locationRepository) Create(ctx context.Context, parent *models.LocationNode, level domain.Level, node *models.LocationNode) error {
	name := level.Collection()
	if name == "" {
		return domain.ErrNoChildLevel
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	node.ParentsCode = parent.CodeValue()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(name).Create(node).Error; err != nil {
			return translate(err, nil, domain.ErrLocationExists)
		}

		var position int64
		if err := tx.Model(&models.LocationLink{}).
			Where("parent_id = ?", parent.ID).
			Count(&position).Error; err != nil {
			return err
		}

		link := models.LocationLink{
			ParentID:   parent.ID,
			ChildID:    node.ID,
			ChildLevel: name,
			Position:   int(position),
		}
		return tx.Create(&link).Error
	})
}

// ListChildren joins parent's child list into the child table, in insertion order.
func (r *locationRepository) ListChildren(ctx context.Context, parent *models.LocationNode, level domain.Level) ([]*models.LocationNode, error) {
	name := level.Collection()
	if name == "" {
		return []*models.LocationNode{}, nil
	}
	nodes := []*models.LocationNode{}
	err := r.db.WithContext(ctx).
		Table(fmt.Sprintf("%s AS n", name)).
		Select(nodeColumns).
		Joins("JOIN location_links l ON l.child_id = n.id").
		Where("l.parent_id = ?", parent.ID).
		Order("l.position ASC").
		Find(&nodes).Error
	return nodes, err
}

// ListUnassigned returns provisioned names under parentsCode that have no code yet.
func (r *locationRepository) ListUnassigned(ctx context.Context, level domain.Level, parentsCode string) ([]*models.LocationNode, error) {
	q, err := r.table(ctx, level)
	if err != nil {
		return nil, err
	}
	nodes := []*models.LocationNode{}
	err = q.Where("parents_code = ? AND code IS NULL", parentsCode).Order("name").Find(&nodes).Error
	return nodes, err
}

// AssignCode sets code once on the node matched by (name, parentsCode).
func (r *locationRepository) AssignCode(ctx context.Context, level domain.Level, name, parentsCode, code string) error {
	table := level.Collection()
	if table == "" {
		return domain.ErrInvalidCode
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Table(table).Where("code = ?", code).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return domain.ErrCodeTaken
		}

		var node models.LocationNode
		err := tx.Table(table).
			Where("name = ? AND parents_code = ?", name, parentsCode).
			Order("code IS NOT NULL").
			First(&node).Error
		if err != nil {
			return translate(err, domain.ErrLocationNotFound, nil)
		}
		if node.Code != nil {
			return domain.ErrCodeAlreadySet
		}

		res := tx.Table(table).
			Where("id = ? AND code IS NULL", node.ID).
			Update("code", code)
		if res.Error != nil {
			return translate(res.Error, nil, domain.ErrCodeTaken)
		}
		if res.RowsAffected == 0 {
			return domain.ErrCodeAlreadySet
		}
		return nil
	})
}
