//go:generate mockery --name WordAdminRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"

	"gorm.io/gorm"
)

// WordAdminRepository は管理画面用の単語 CRUD です (所有者の制限なし)
type WordAdminRepository interface {
	FindAllWithOwner(ctx context.Context, db *gorm.DB) ([]*model.Word, error)
	FindByID(ctx context.Context, db *gorm.DB, id uint) (*model.Word, error)
	Create(ctx context.Context, tx *gorm.DB, word *model.Word) error
	Update(ctx context.Context, tx *gorm.DB, word *model.Word) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uint) error
	ClearOwner(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type gormWordAdminRepository struct{}

func NewGormWordAdminRepository() WordAdminRepository {
	return &gormWordAdminRepository{}
}

func (r *gormWordAdminRepository) FindAllWithOwner(ctx context.Context, db *gorm.DB) ([]*model.Word, error) {
	logger := middleware.GetLogger(ctx)
	var words []*model.Word
	if err := db.WithContext(ctx).Preload("User").Order("id").Find(&words).Error; err != nil {
		logger.Error("Error finding words with owner in DB", "error", err)
		return nil, fmt.Errorf("gormWordAdminRepository.FindAllWithOwner: %w", err)
	}
	return words, nil
}

func (r *gormWordAdminRepository) FindByID(ctx context.Context, db *gorm.DB, id uint) (*model.Word, error) {
	logger := middleware.GetLogger(ctx)
	var word model.Word
	if err := db.WithContext(ctx).Preload("User").First(&word, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding word by ID in DB", "error", err, "word_id", id)
		return nil, fmt.Errorf("gormWordAdminRepository.FindByID: %w", err)
	}
	return &word, nil
}

func (r *gormWordAdminRepository) Create(ctx context.Context, tx *gorm.DB, word *model.Word) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Omit("User").Create(word).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("gormWordAdminRepository.Create: %w", model.ErrConflict)
		}
		logger.Error("Error creating word in DB", "error", err, "word", word.Word)
		return fmt.Errorf("gormWordAdminRepository.Create: %w", err)
	}
	return nil
}

func (r *gormWordAdminRepository) Update(ctx context.Context, tx *gorm.DB, word *model.Word) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(word).
		Select("word", "assoc", "hint", "translation", "user_id").
		Omit("User").
		Updates(word)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("gormWordAdminRepository.Update: %w", model.ErrConflict)
		}
		logger.Error("Error updating word in DB", "error", result.Error, "word_id", word.ID)
		return fmt.Errorf("gormWordAdminRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormWordAdminRepository) DeleteByID(ctx context.Context, tx *gorm.DB, id uint) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Delete(&model.Word{}, id)
	if result.Error != nil {
		logger.Error("Error deleting word in DB", "error", result.Error, "word_id", id)
		return fmt.Errorf("gormWordAdminRepository.DeleteByID: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ClearOwner は userID が所有する単語の user_id を NULL にします (ユーザー削除時)
func (r *gormWordAdminRepository) ClearOwner(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.Word{}).Where("user_id = ?", userID).Update("user_id", nil)
	if result.Error != nil {
		logger.Error("Error clearing word owner in DB", "error", result.Error, "user_id", userID)
		return 0, fmt.Errorf("gormWordAdminRepository.ClearOwner: %w", result.Error)
	}
	return result.RowsAffected, nil
}
