//go:generate mockery --name RoleRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, role *model.Role) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*model.Role, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*model.Role, error)
	FindByNames(ctx context.Context, db *gorm.DB, names []string) ([]model.Role, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]*model.Role, error)
	Update(ctx context.Context, tx *gorm.DB, role *model.Role) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	FirstOrCreate(ctx context.Context, tx *gorm.DB, role *model.Role) error
}

type gormRoleRepository struct{}

func NewGormRoleRepository() RoleRepository {
	return &gormRoleRepository{}
}

func (r *gormRoleRepository) Create(ctx context.Context, tx *gorm.DB, role *model.Role) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(role)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("gormRoleRepository.Create: %w", model.ErrConflict)
		}
		logger.Error("Error creating role in DB", "error", result.Error, "name", role.Name)
		return fmt.Errorf("gormRoleRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormRoleRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*model.Role, error) {
	logger := middleware.GetLogger(ctx)
	var role model.Role
	if err := db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding role by ID in DB", "error", err, "role_id", id)
		return nil, fmt.Errorf("gormRoleRepository.FindByID: %w", err)
	}
	return &role, nil
}

func (r *gormRoleRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*model.Role, error) {
	logger := middleware.GetLogger(ctx)
	var role model.Role
	if err := db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding role by name in DB", "error", err, "name", name)
		return nil, fmt.Errorf("gormRoleRepository.FindByName: %w", err)
	}
	return &role, nil
}

// FindByNames は存在するロールだけを返します (存在しない名前は無視)
func (r *gormRoleRepository) FindByNames(ctx context.Context, db *gorm.DB, names []string) ([]model.Role, error) {
	logger := middleware.GetLogger(ctx)
	roles := []model.Role{}
	if len(names) == 0 {
		return roles, nil
	}
	if err := db.WithContext(ctx).Where("name IN ?", names).Order("id").Find(&roles).Error; err != nil {
		logger.Error("Error finding roles by names in DB", "error", err)
		return nil, fmt.Errorf("gormRoleRepository.FindByNames: %w", err)
	}
	return roles, nil
}

func (r *gormRoleRepository) FindAll(ctx context.Context, db *gorm.DB) ([]*model.Role, error) {
	logger := middleware.GetLogger(ctx)
	var roles []*model.Role
	if err := db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		logger.Error("Error finding roles in DB", "error", err)
		return nil, fmt.Errorf("gormRoleRepository.FindAll: %w", err)
	}
	return roles, nil
}

func (r *gormRoleRepository) Update(ctx context.Context, tx *gorm.DB, role *model.Role) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(role).Select("name", "description").Updates(role)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("gormRoleRepository.Update: %w", model.ErrConflict)
		}
		logger.Error("Error updating role in DB", "error", result.Error, "role_id", role.ID)
		return fmt.Errorf("gormRoleRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete は roles_users の紐付けを消してからロールを削除します
func (r *gormRoleRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Exec("DELETE FROM roles_users WHERE role_id = ?", id).Error; err != nil {
		logger.Error("Error deleting role links in DB", "error", err, "role_id", id)
		return fmt.Errorf("gormRoleRepository.Delete: %w", err)
	}
	result := tx.WithContext(ctx).Delete(&model.Role{}, id)
	if result.Error != nil {
		logger.Error("Error deleting role in DB", "error", result.Error, "role_id", id)
		return fmt.Errorf("gormRoleRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// FirstOrCreate は name で探し、なければ作ります (roles seed 用)
func (r *gormRoleRepository) FirstOrCreate(ctx context.Context, tx *gorm.DB, role *model.Role) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where(model.Role{Name: role.Name}).Attrs(model.Role{Description: role.Description}).FirstOrCreate(role)
	if result.Error != nil {
		logger.Error("Error seeding role in DB", "error", result.Error, "name", role.Name)
		return fmt.Errorf("gormRoleRepository.FirstOrCreate: %w", result.Error)
	}
	return nil
}
