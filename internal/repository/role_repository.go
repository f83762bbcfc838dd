package repository

import (
	"context"

	"gorm.io/gorm"

	"admissions/internal/model"
)

// RoleRepository defines role persistence operations.
type RoleRepository interface {
	FindByName(ctx context.Context, name model.RoleName) (*model.RoleRecord, error)
	Ensure(ctx context.Context, name model.RoleName) (*model.RoleRecord, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(ctx context.Context, name model.RoleName) (*model.RoleRecord, error) {
	var role model.RoleRecord
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Ensure returns the role row, creating it if missing.
func (r *roleRepository) Ensure(ctx context.Context, name model.RoleName) (*model.RoleRecord, error) {
	role := model.RoleRecord{Name: name}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
