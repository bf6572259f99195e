//go:generate mockery --name UserRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*model.User, error)
	FindByLogin(ctx context.Context, db *gorm.DB, login string) (*model.User, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]*model.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *model.User) error
	ReplaceRoles(ctx context.Context, tx *gorm.DB, user *model.User, roles []model.Role) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type gormUserRepository struct{}

func NewGormUserRepository() UserRepository {
	return &gormUserRepository{}
}

func (r *gormUserRepository) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)
	// Roles を一緒に渡した場合は roles_users も作られる (ロール自体は作らない)
	result := tx.WithContext(ctx).Omit("Roles.*").Create(user)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("gormUserRepository.Create: %w", model.ErrConflict)
		}
		logger.Error("Error creating user in DB",
			"error", result.Error,
			"username", user.Username,
		)
		return fmt.Errorf("gormUserRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormUserRepository) findOne(ctx context.Context, db *gorm.DB, op string, query string, args ...interface{}) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var user model.User
	result := db.WithContext(ctx).Preload("Roles").Where(query, args...).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding user in DB", "error", result.Error, "op", op)
		return nil, fmt.Errorf("gormUserRepository.%s: %w", op, result.Error)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*model.User, error) {
	return r.findOne(ctx, db, "FindByID", "id = ?", id)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*model.User, error) {
	return r.findOne(ctx, db, "FindByEmail", "email = ?", email)
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*model.User, error) {
	return r.findOne(ctx, db, "FindByUsername", "username = ?", username)
}

// FindByLogin はメールアドレスかユーザー名のどちらかで検索します
func (r *gormUserRepository) FindByLogin(ctx context.Context, db *gorm.DB, login string) (*model.User, error) {
	return r.findOne(ctx, db, "FindByLogin", "email = ? OR username = ?", login, login)
}

func (r *gormUserRepository) FindAll(ctx context.Context, db *gorm.DB) ([]*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var users []*model.User
	result := db.WithContext(ctx).Preload("Roles").Order("id").Find(&users)
	if result.Error != nil {
		logger.Error("Error finding users in DB", "error", result.Error)
		return nil, fmt.Errorf("gormUserRepository.FindAll: %w", result.Error)
	}
	return users, nil
}

// Update はユーザーのカラムを保存します (Roles は ReplaceRoles で扱う)
func (r *gormUserRepository) Update(ctx context.Context, tx *gorm.DB, user *model.User) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(user).Select("email", "password", "name", "username", "active", "confirmed_at").Updates(user)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("gormUserRepository.Update: %w", model.ErrConflict)
		}
		logger.Error("Error updating user in DB", "error", result.Error, "user_id", user.ID)
		return fmt.Errorf("gormUserRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ReplaceRoles は roles_users の行を roles に置き換えます
func (r *gormUserRepository) ReplaceRoles(ctx context.Context, tx *gorm.DB, user *model.User, roles []model.Role) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Model(user).Association("Roles").Replace(roles); err != nil {
		logger.Error("Error replacing user roles in DB", "error", err, "user_id", user.ID)
		return fmt.Errorf("gormUserRepository.ReplaceRoles: %w", err)
	}
	user.Roles = roles
	return nil
}

// Delete はロールの紐付けを外してからユーザーを削除します
// 所有する単語の user_id は呼び出し側 (同じトランザクション) で外しておくこと
func (r *gormUserRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	logger := middleware.GetLogger(ctx)
	user := &model.User{ID: id}
	if err := tx.WithContext(ctx).Model(user).Association("Roles").Clear(); err != nil {
		logger.Error("Error clearing user roles in DB", "error", err, "user_id", id)
		return fmt.Errorf("gormUserRepository.Delete: %w", err)
	}
	result := tx.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		logger.Error("Error deleting user in DB", "error", result.Error, "user_id", id)
		return fmt.Errorf("gormUserRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
