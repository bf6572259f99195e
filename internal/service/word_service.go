//go:generate mockery --name WordService --output ./mocks --outpkg mocks --case=underscore
// internal/service/word_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"

	"gorm.io/gorm"
)

type WordService interface {
	ListWords(ctx context.Context, user *model.User) ([]*model.Word, error)
	ListOwnWords(ctx context.Context, userID uint) ([]*model.Word, error)
	AddWord(ctx context.Context, userID uint, form *model.WordForm) (*model.Word, error)
	RemoveWord(ctx context.Context, userID, wordID uint) error
}

type wordService struct {
	db       *gorm.DB
	wordRepo repository.WordRepository
}

func NewWordService(db *gorm.DB, wordRepo repository.WordRepository) WordService {
	return &wordService{
		db:       db,
		wordRepo: wordRepo,
	}
}

// ListWords は admin なら全件、それ以外は自分の単語だけを返します
func (s *wordService) ListWords(ctx context.Context, user *model.User) ([]*model.Word, error) {
	logger := middleware.GetLogger(ctx)
	if user == nil {
		return nil, model.NewAppError("UNAUTHORIZED", "ログインが必要です。", "", model.ErrUnauthorized)
	}

	var words []*model.Word
	var err error
	if user.IsAdmin() {
		words, err = s.wordRepo.FindAll(ctx, s.db)
	} else {
		words, err = s.wordRepo.FindByOwner(ctx, s.db, user.ID)
	}
	if err != nil {
		logger.Error("Error listing words", "error", err, "user_id", user.ID)
		return nil, errInternal("単語一覧の取得に失敗しました。", err)
	}
	if words == nil {
		words = []*model.Word{}
	}
	return words, nil
}

// ListOwnWords は削除画面用。admin でも自分の単語だけ
func (s *wordService) ListOwnWords(ctx context.Context, userID uint) ([]*model.Word, error) {
	words, err := s.wordRepo.FindByOwner(ctx, s.db, userID)
	if err != nil {
		return nil, errInternal("単語一覧の取得に失敗しました。", err)
	}
	if words == nil {
		words = []*model.Word{}
	}
	return words, nil
}

// AddWord は userID を所有者にして単語を1件追加します
func (s *wordService) AddWord(ctx context.Context, userID uint, form *model.WordForm) (*model.Word, error) {
	logger := middleware.GetLogger(ctx)

	word := &model.Word{
		Word:        strings.TrimSpace(form.Word),
		Assoc:       strings.TrimSpace(form.Assoc),
		Hint:        strings.TrimSpace(form.Hint),
		Translation: strings.TrimSpace(form.Translation),
	}
	if word.Word == "" || word.Assoc == "" || word.Hint == "" || word.Translation == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "すべての項目を入力してください。", "", model.ErrInvalidInput)
	}

	if err := s.wordRepo.CreateOwned(ctx, s.db, word, userID); err != nil {
		// word は全ユーザーで一意
		if errors.Is(err, model.ErrConflict) {
			logger.Warn("Duplicate word", "word", word.Word, "user_id", userID)
			return nil, model.NewAppError("DUPLICATE_WORD", "この単語は既に登録されています。", "word", model.ErrConflict)
		}
		return nil, errInternal("単語の追加に失敗しました。", err)
	}

	logger.Info("Word added", "word_id", word.ID, "user_id", userID)
	return word, nil
}

// RemoveWord は自分の単語を削除します。存在しない/他人の id は何もしない
func (s *wordService) RemoveWord(ctx context.Context, userID, wordID uint) error {
	logger := middleware.GetLogger(ctx)

	deleted, err := s.wordRepo.DeleteByOwnerAndID(ctx, s.db, userID, wordID)
	if err != nil {
		return errInternal("単語の削除に失敗しました。", err)
	}
	if deleted == 0 {
		logger.Info("Remove matched no owned word", "word_id", wordID, "user_id", userID)
		return nil
	}
	logger.Info("Word removed", "word_id", wordID, "user_id", userID)
	return nil
}
