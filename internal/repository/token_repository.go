//go:generate mockery --name TokenRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"

	"gorm.io/gorm"
)

// TokenRepository はメールアドレス確認トークンを扱います
type TokenRepository interface {
	CreateConfirmationToken(ctx context.Context, tx *gorm.DB, token *model.UserConfirmationToken) error
	FindConfirmationToken(ctx context.Context, db *gorm.DB, token string) (*model.UserConfirmationToken, error)
	DeleteConfirmationToken(ctx context.Context, tx *gorm.DB, token string) error
	DeleteConfirmationTokensByUser(ctx context.Context, tx *gorm.DB, userID uint) error
}

type gormTokenRepository struct{}

func NewGormTokenRepository() TokenRepository {
	return &gormTokenRepository{}
}

func (r *gormTokenRepository) CreateConfirmationToken(ctx context.Context, tx *gorm.DB, token *model.UserConfirmationToken) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(token).Error; err != nil {
		logger.Error("Failed to create confirmation token", "error", err, "user_id", token.UserID)
		return fmt.Errorf("gormTokenRepository.CreateConfirmationToken: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) FindConfirmationToken(ctx context.Context, db *gorm.DB, tokenStr string) (*model.UserConfirmationToken, error) {
	logger := middleware.GetLogger(ctx)
	var token model.UserConfirmationToken
	if err := db.WithContext(ctx).Where("token = ?", tokenStr).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Failed to find confirmation token", "error", err)
		return nil, fmt.Errorf("gormTokenRepository.FindConfirmationToken: %w", err)
	}
	return &token, nil
}

func (r *gormTokenRepository) DeleteConfirmationToken(ctx context.Context, tx *gorm.DB, tokenStr string) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("token = ?", tokenStr).Delete(&model.UserConfirmationToken{})
	if result.Error != nil {
		logger.Error("Failed to delete confirmation token", "error", result.Error)
		return fmt.Errorf("gormTokenRepository.DeleteConfirmationToken: %w", result.Error)
	}
	return nil
}

// DeleteConfirmationTokensByUser はユーザー削除時に残ったトークンを片付けます
func (r *gormTokenRepository) DeleteConfirmationTokensByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserConfirmationToken{})
	if result.Error != nil {
		logger.Error("Failed to delete confirmation tokens by user", "error", result.Error, "user_id", userID)
		return fmt.Errorf("gormTokenRepository.DeleteConfirmationTokensByUser: %w", result.Error)
	}
	return nil
}
