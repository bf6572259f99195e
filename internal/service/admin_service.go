//go:generate mockery --name AdminService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"

	"gorm.io/gorm"
)

// WordExportHeader は単語CSVのヘッダー行
var WordExportHeader = []string{"id", "word", "assoc", "hint", "translation", "user_id", "username"}

// AdminService は管理画面 (ロール・ユーザー・単語の CRUD) と CLI の管理操作です
type AdminService interface {
	ListRoles(ctx context.Context) ([]*model.Role, error)
	GetRole(ctx context.Context, id uint) (*model.Role, error)
	CreateRole(ctx context.Context, form *model.RoleForm) (*model.Role, error)
	UpdateRole(ctx context.Context, id uint, form *model.RoleForm) (*model.Role, error)
	DeleteRole(ctx context.Context, id uint) error
	SeedRoles(ctx context.Context) ([]*model.Role, error)

	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	CreateUser(ctx context.Context, form *model.AdminUserForm) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, form *model.AdminUserForm) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	GrantRole(ctx context.Context, login, roleName string) (*model.User, error)

	ListWords(ctx context.Context) ([]*model.Word, error)
	GetWord(ctx context.Context, id uint) (*model.Word, error)
	CreateWord(ctx context.Context, form *model.AdminWordForm) (*model.Word, error)
	UpdateWord(ctx context.Context, id uint, form *model.AdminWordForm) (*model.Word, error)
	DeleteWord(ctx context.Context, id uint) error
	ExportWordsCSV(ctx context.Context, w io.Writer) error
}

type adminService struct {
	db        *gorm.DB
	roleRepo  repository.RoleRepository
	userRepo  repository.UserRepository
	wordRepo  repository.WordAdminRepository
	tokenRepo repository.TokenRepository
	cfg       *config.Config
}

func NewAdminService(
	db *gorm.DB,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	wordRepo repository.WordAdminRepository,
	tokenRepo repository.TokenRepository,
	cfg *config.Config,
) AdminService {
	return &adminService{
		db:        db,
		roleRepo:  roleRepo,
		userRepo:  userRepo,
		wordRepo:  wordRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
	}
}

func notFound(what string) *model.AppError {
	return model.NewAppError("NOT_FOUND", what+"が見つかりません。", "", model.ErrNotFound)
}

// mapRepoErr はリポジトリのエラーを画面向けの AppError にします
func mapRepoErr(err error, what, conflictField, conflictMessage string) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return notFound(what)
	case errors.Is(err, model.ErrConflict):
		return model.NewAppError("DUPLICATE_ENTRY", conflictMessage, conflictField, model.ErrConflict)
	default:
		return errInternal("サーバー内部でエラーが発生しました。", err)
	}
}

// --- Role ---

func (s *adminService) ListRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := s.roleRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, errInternal("ロール一覧の取得に失敗しました。", err)
	}
	return roles, nil
}

func (s *adminService) GetRole(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, mapRepoErr(err, "ロール", "", "")
	}
	return role, nil
}

func (s *adminService) CreateRole(ctx context.Context, form *model.RoleForm) (*model.Role, error) {
	logger := middleware.GetLogger(ctx)
	role := &model.Role{Name: strings.TrimSpace(form.Name), Description: form.Description}
	if err := s.roleRepo.Create(ctx, s.db, role); err != nil {
		return nil, mapRepoErr(err, "ロール", "name", "このロール名は既に使用されています。")
	}
	logger.Info("Role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *adminService) UpdateRole(ctx context.Context, id uint, form *model.RoleForm) (*model.Role, error) {
	logger := middleware.GetLogger(ctx)
	role := &model.Role{ID: id, Name: strings.TrimSpace(form.Name), Description: form.Description}
	if err := s.roleRepo.Update(ctx, s.db, role); err != nil {
		return nil, mapRepoErr(err, "ロール", "name", "このロール名は既に使用されています。")
	}
	logger.Info("Role updated", "role_id", id)
	return role, nil
}

func (s *adminService) DeleteRole(ctx context.Context, id uint) error {
	logger := middleware.GetLogger(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.roleRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return mapRepoErr(err, "ロール", "", "")
	}
	logger.Info("Role deleted", "role_id", id)
	return nil
}

// SeedRoles は admin と user ロールを (なければ) 作成します
func (s *adminService) SeedRoles(ctx context.Context) ([]*model.Role, error) {
	seeds := []*model.Role{
		{Name: model.RoleAdmin, Description: "管理者"},
		{Name: model.RoleUser, Description: "一般ユーザー"},
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, role := range seeds {
			if err := s.roleRepo.FirstOrCreate(ctx, tx, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errInternal("ロールの初期化に失敗しました。", err)
	}
	return seeds, nil
}

// --- User ---

func (s *adminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, errInternal("ユーザー一覧の取得に失敗しました。", err)
	}
	return users, nil
}

func (s *adminService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, mapRepoErr(err, "ユーザー", "", "")
	}
	return user, nil
}

const duplicateUserMessage = "このメールアドレスまたはユーザー名は既に使用されています。"

func (s *adminService) CreateUser(ctx context.Context, form *model.AdminUserForm) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	if form.Password == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "パスワードは必須項目です。", "password", model.ErrInvalidInput)
	}

	var created *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles, err := s.roleRepo.FindByNames(ctx, tx, form.Roles)
		if err != nil {
			return err
		}
		hashed, err := HashPassword(form.Password, s.cfg.Auth.PasswordSalt)
		if err != nil {
			return err
		}
		user := &model.User{
			Email:    strings.TrimSpace(form.Email),
			Username: strings.TrimSpace(form.Username),
			Name:     form.Name,
			Password: hashed,
			Active:   form.Active,
			Roles:    roles,
		}
		if form.Confirmed {
			now := time.Now()
			user.ConfirmedAt = &now
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err, "ユーザー", "email,username", duplicateUserMessage)
	}
	logger.Info("User created by admin", "user_id", created.ID, "roles", created.RoleNames())
	return created, nil
}

// UpdateUser は項目・ロール集合を更新します。Password が空なら変更しない
func (s *adminService) UpdateUser(ctx context.Context, id uint, form *model.AdminUserForm) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		user.Email = strings.TrimSpace(form.Email)
		user.Username = strings.TrimSpace(form.Username)
		user.Name = form.Name
		user.Active = form.Active
		switch {
		case form.Confirmed && user.ConfirmedAt == nil:
			now := time.Now()
			user.ConfirmedAt = &now
		case !form.Confirmed:
			user.ConfirmedAt = nil
		}
		if form.Password != "" {
			hashed, err := HashPassword(form.Password, s.cfg.Auth.PasswordSalt)
			if err != nil {
				return err
			}
			user.Password = hashed
		}
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}

		roles, err := s.roleRepo.FindByNames(ctx, tx, form.Roles)
		if err != nil {
			return err
		}
		if err := s.userRepo.ReplaceRoles(ctx, tx, user, roles); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err, "ユーザー", "email,username", duplicateUserMessage)
	}
	logger.Info("User updated by admin", "user_id", id, "roles", updated.RoleNames())
	return updated, nil
}

// DeleteUser はロールの紐付け・確認トークンを消し、所有する単語を所有者なしにしてから削除します
func (s *adminService) DeleteUser(ctx context.Context, id uint) error {
	logger := middleware.GetLogger(ctx)
	var orphaned int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		orphaned, err = s.wordRepo.ClearOwner(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.tokenRepo.DeleteConfirmationTokensByUser(ctx, tx, id); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return mapRepoErr(err, "ユーザー", "", "")
	}
	logger.Info("User deleted by admin", "user_id", id, "orphaned_words", orphaned)
	return nil
}

// GrantRole はユーザーにロールを追加します (CLI 用)
func (s *adminService) GrantRole(ctx context.Context, login, roleName string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var granted *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByLogin(ctx, tx, login)
		if err != nil {
			return fmt.Errorf("user %q: %w", login, err)
		}
		role, err := s.roleRepo.FindByName(ctx, tx, roleName)
		if err != nil {
			return fmt.Errorf("role %q: %w", roleName, err)
		}
		if user.HasRole(role.Name) {
			granted = user
			return nil
		}
		if err := s.userRepo.ReplaceRoles(ctx, tx, user, append(user.Roles, *role)); err != nil {
			return err
		}
		granted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Role granted", "user_id", granted.ID, "role", roleName)
	return granted, nil
}

// --- Word ---

func (s *adminService) ListWords(ctx context.Context) ([]*model.Word, error) {
	words, err := s.wordRepo.FindAllWithOwner(ctx, s.db)
	if err != nil {
		return nil, errInternal("単語一覧の取得に失敗しました。", err)
	}
	return words, nil
}

func (s *adminService) GetWord(ctx context.Context, id uint) (*model.Word, error) {
	word, err := s.wordRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, mapRepoErr(err, "単語", "", "")
	}
	return word, nil
}

// resolveOwner はユーザー名から所有者IDを引きます。空なら所有者なし
func (s *adminService) resolveOwner(ctx context.Context, tx *gorm.DB, username string) (*uint, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	user, err := s.userRepo.FindByUsername(ctx, tx, username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("VALIDATION_ERROR", "指定された所有者は存在しません。", "owner", model.ErrInvalidInput)
		}
		return nil, err
	}
	return &user.ID, nil
}

func (s *adminService) saveWord(ctx context.Context, id uint, form *model.AdminWordForm) (*model.Word, error) {
	var saved *model.Word
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerID, err := s.resolveOwner(ctx, tx, form.OwnerUsername)
		if err != nil {
			return err
		}
		word := &model.Word{
			ID:          id,
			Word:        strings.TrimSpace(form.Word),
			Assoc:       form.Assoc,
			Hint:        form.Hint,
			Translation: form.Translation,
			UserID:      ownerID,
		}
		if id == 0 {
			err = s.wordRepo.Create(ctx, tx, word)
		} else {
			err = s.wordRepo.Update(ctx, tx, word)
		}
		if err != nil {
			return err
		}
		saved = word
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, mapRepoErr(err, "単語", "word", "この単語は既に登録されています。")
	}
	return saved, nil
}

func (s *adminService) CreateWord(ctx context.Context, form *model.AdminWordForm) (*model.Word, error) {
	word, err := s.saveWord(ctx, 0, form)
	if err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Word created by admin", "word_id", word.ID)
	return word, nil
}

func (s *adminService) UpdateWord(ctx context.Context, id uint, form *model.AdminWordForm) (*model.Word, error) {
	word, err := s.saveWord(ctx, id, form)
	if err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Word updated by admin", "word_id", id)
	return word, nil
}

func (s *adminService) DeleteWord(ctx context.Context, id uint) error {
	if err := s.wordRepo.DeleteByID(ctx, s.db, id); err != nil {
		return mapRepoErr(err, "単語", "", "")
	}
	middleware.GetLogger(ctx).Info("Word deleted by admin", "word_id", id)
	return nil
}

// ExportWordsCSV は単語一覧を所有者名付きの CSV で書き出します
func (s *adminService) ExportWordsCSV(ctx context.Context, w io.Writer) error {
	words, err := s.wordRepo.FindAllWithOwner(ctx, s.db)
	if err != nil {
		return errInternal("単語一覧の取得に失敗しました。", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(WordExportHeader); err != nil {
		return fmt.Errorf("ExportWordsCSV: %w", err)
	}
	for _, word := range words {
		userID := ""
		if word.UserID != nil {
			userID = strconv.FormatUint(uint64(*word.UserID), 10)
		}
		record := []string{
			strconv.FormatUint(uint64(word.ID), 10),
			word.Word,
			word.Assoc,
			word.Hint,
			word.Translation,
			userID,
			word.OwnerName(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("ExportWordsCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("ExportWordsCSV: %w", err)
	}
	middleware.GetLogger(ctx).Info("Words exported", "count", len(words))
	return nil
}
