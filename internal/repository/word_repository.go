//go:generate mockery --name WordRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"

	"gorm.io/gorm"
)

// WordRepository は単語画面が使う4つのクエリだけを持ちます
// (管理画面の CRUD は WordAdminRepository)
type WordRepository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]*model.Word, error)
	FindByOwner(ctx context.Context, db *gorm.DB, userID uint) ([]*model.Word, error)
	CreateOwned(ctx context.Context, tx *gorm.DB, word *model.Word, userID uint) error
	DeleteByOwnerAndID(ctx context.Context, tx *gorm.DB, userID, wordID uint) (int64, error)
}

type gormWordRepository struct{}

func NewGormWordRepository() WordRepository {
	return &gormWordRepository{}
}

// FindAll は全ユーザーの単語を返します (admin 用)。並びは id 順
func (r *gormWordRepository) FindAll(ctx context.Context, db *gorm.DB) ([]*model.Word, error) {
	logger := middleware.GetLogger(ctx)
	var words []*model.Word
	result := db.WithContext(ctx).Preload("User").Order("id").Find(&words)
	if result.Error != nil {
		logger.Error("Error finding all words in DB", "error", result.Error)
		return nil, fmt.Errorf("gormWordRepository.FindAll: %w", result.Error)
	}
	return words, nil
}

func (r *gormWordRepository) FindByOwner(ctx context.Context, db *gorm.DB, userID uint) ([]*model.Word, error) {
	logger := middleware.GetLogger(ctx)
	var words []*model.Word
	result := db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&words)
	if result.Error != nil {
		logger.Error("Error finding words by owner in DB",
			"error", result.Error,
			"user_id", userID,
		)
		return nil, fmt.Errorf("gormWordRepository.FindByOwner: %w", result.Error)
	}
	return words, nil
}

// CreateOwned は userID を所有者にして単語を作成します
func (r *gormWordRepository) CreateOwned(ctx context.Context, tx *gorm.DB, word *model.Word, userID uint) error {
	logger := middleware.GetLogger(ctx)
	word.UserID = &userID
	result := tx.WithContext(ctx).Omit("User").Create(word)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("gormWordRepository.CreateOwned: %w", model.ErrConflict)
		}
		logger.Error("Error creating word in DB",
			"error", result.Error,
			"user_id", userID,
			"word", word.Word,
		)
		return fmt.Errorf("gormWordRepository.CreateOwned: %w", result.Error)
	}
	return nil
}

// DeleteByOwnerAndID は id と所有者の両方が一致する行だけを削除し、削除件数を返します
// 他人の単語や存在しない id は 0 件になるだけでエラーにしない
func (r *gormWordRepository) DeleteByOwnerAndID(ctx context.Context, tx *gorm.DB, userID, wordID uint) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("id = ? AND user_id = ?", wordID, userID).Delete(&model.Word{})
	if result.Error != nil {
		logger.Error("Error deleting word in DB",
			"error", result.Error,
			"user_id", userID,
			"word_id", wordID,
		)
		return 0, fmt.Errorf("gormWordRepository.DeleteByOwnerAndID: %w", result.Error)
	}
	return result.RowsAffected, nil
}
