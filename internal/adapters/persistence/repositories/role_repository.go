package repositories

import (
	"context"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// ChildRoles returns the roles that role may assign. Unknown roles have none.
func (r *roleRepository) ChildRoles(ctx context.Context, role string) ([]string, error) {
	var children []string
	err := r.db.WithContext(ctx).
		Model(&models.RoleChild{}).
		Where("parent = ?", role).
		Order("child").
		Pluck("child", &children).Error
	return children, err
}

// Seed inserts the graph's roles and edges, leaving existing rows alone.
func (r *roleRepository) Seed(ctx context.Context, graph domain.RoleGraph) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, children := range graph {
			role := models.Role{Name: name, Description: roleDescriptions[name]}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
				return err
			}
			for _, child := range children {
				edge := models.RoleChild{Parent: name, Child: child}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

var roleDescriptions = map[string]string{
	domain.RoleCountry:    "Country administrator",
	domain.RoleCity:       "City administrator",
	domain.RoleDistrict:   "District administrator",
	domain.RoleWard:       "Ward administrator",
	domain.RoleCivilGroup: "Civil group collector",
}
