//go:generate mockery --name AuthService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService は登録・ログイン・セッションを扱います
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	ConfirmAccount(ctx context.Context, tokenString string) error
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)
	Logout(ctx context.Context, tokenString string) error
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
}

type authService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	roleRepo  repository.RoleRepository
	tokenRepo repository.TokenRepository
	sessions  repository.SessionRepository
	mailer    Mailer
	cfg       *config.Config
}

// NewAuthService は AuthService の新しいインスタンスを生成します
func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tokenRepo repository.TokenRepository,
	sessions repository.SessionRepository,
	mailer Mailer,
	cfg *config.Config,
) AuthService {
	return &authService{
		db:        db,
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		tokenRepo: tokenRepo,
		sessions:  sessions,
		mailer:    mailer,
		cfg:       cfg,
	}
}

func errInternal(message string, err error) *model.AppError {
	return model.NewAppError("INTERNAL_SERVER_ERROR", message, "", err)
}

// Register は新しいユーザーを作成します。
// 確認必須の設定なら無効状態で作成し、確認メールを送る
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	if !s.cfg.Auth.RegisterEnabled {
		logger.Warn("Registration attempted while disabled")
		return nil, model.NewAppError("REGISTRATION_DISABLED", "現在、新規登録は受け付けていません。", "", model.ErrForbidden)
	}

	var newUser *model.User
	var confirmToken string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Emailでの重複チェック
		_, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			logger.Warn("Email already exists", "email", req.Email)
			return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return errInternal("サーバー内部でエラーが発生しました。", err)
		}

		// ユーザー名での重複チェック
		_, err = s.userRepo.FindByUsername(ctx, tx, req.Username)
		if err == nil {
			logger.Warn("Username already exists", "username", req.Username)
			return model.NewAppError("DUPLICATE_USERNAME", "そのユーザー名は既に使用されています。", "username", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return errInternal("サーバー内部でエラーが発生しました。", err)
		}

		hashedPassword, err := HashPassword(req.Password, s.cfg.Auth.PasswordSalt)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return errInternal("パスワードの処理中にエラーが発生しました。", err)
		}

		user := &model.User{
			Email:    req.Email,
			Username: req.Username,
			Name:     req.Name,
			Password: hashedPassword,
			Active:   !s.cfg.Auth.ConfirmRequired,
		}
		if user.Active {
			now := time.Now()
			user.ConfirmedAt = &now
		}

		// 既定の user ロールがあれば付与する (roles seed 前は付けない)
		if role, err := s.roleRepo.FindByName(ctx, tx, model.RoleUser); err == nil {
			user.Roles = []model.Role{*role}
		} else if !errors.Is(err, model.ErrNotFound) {
			return errInternal("サーバー内部でエラーが発生しました。", err)
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			// チェック後に別リクエストが同じ値で登録した場合
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Conflict during user creation (race condition)", "error", err)
				return model.NewAppError("DUPLICATE_ENTRY", "指定されたメールアドレスまたはユーザー名は既に使用されています。", "email,username", model.ErrConflict)
			}
			return errInternal("ユーザーの作成に失敗しました。", err)
		}
		newUser = user

		if s.cfg.Auth.ConfirmRequired {
			confirmToken, err = s.generateAndSaveConfirmationToken(ctx, tx, user.ID)
			if err != nil {
				return err
			}
			if err := s.sendConfirmationEmail(ctx, user.Email, confirmToken); err != nil {
				return model.NewAppError("EMAIL_SEND_FAILED", "確認メールの送信に失敗しました。時間をおいて再度お試しください。", "", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("User registered", "user_id", newUser.ID, "username", newUser.Username, "active", newUser.Active)
	return newUser, nil
}

// ConfirmAccount はトークンを検証し、アカウントを有効化します
func (s *authService) ConfirmAccount(ctx context.Context, tokenString string) error {
	logger := middleware.GetLogger(ctx)
	expired := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.tokenRepo.FindConfirmationToken(ctx, tx, tokenString)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Confirmation token not found")
				return model.NewAppError("INVALID_TOKEN", "このリンクは無効か、既に使用されています。", "token", model.ErrInvalidInput)
			}
			return errInternal("エラーが発生しました。", err)
		}

		if time.Now().After(token.ExpiresAt) {
			logger.Warn("Confirmation token expired", "user_id", token.UserID, "expires_at", token.ExpiresAt)
			// 期限切れトークンの削除はコミットさせる
			expired = true
			return s.tokenRepo.DeleteConfirmationToken(ctx, tx, tokenString)
		}

		user, err := s.userRepo.FindByID(ctx, tx, token.UserID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("NOT_FOUND", "アカウントが見つかりません。", "", model.ErrNotFound)
			}
			return errInternal("アカウントの有効化に失敗しました。", err)
		}

		now := time.Now()
		user.Active = true
		user.ConfirmedAt = &now
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return errInternal("アカウントの有効化に失敗しました。", err)
		}

		if err := s.tokenRepo.DeleteConfirmationToken(ctx, tx, tokenString); err != nil {
			// トークン削除の失敗は有効化を取り消すほどではない
			logger.Error("Failed to delete used confirmation token", "error", err)
		}

		logger.Info("Account confirmed", "user_id", user.ID)
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return errInternal("エラーが発生しました。", err)
	}
	if expired {
		return model.NewAppError("INVALID_TOKEN", "このリンクの有効期限が切れています。", "token", model.ErrInvalidInput)
	}
	return nil
}

// Login はメールアドレスかユーザー名で認証し、セッションを発行します
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	logger := middleware.GetLogger(ctx).With("login", req.Login)

	user, err := s.userRepo.FindByLogin(ctx, s.db, req.Login)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, invalidCredentials()
		}
		logger.Error("Login failed: db error on FindByLogin", "error", err)
		return nil, errInternal("サーバー内部エラー", err)
	}

	if !CheckPassword(user.Password, req.Password, s.cfg.Auth.PasswordSalt) {
		logger.Warn("Login failed: password mismatch", "user_id", user.ID)
		return nil, invalidCredentials()
	}

	if !user.Active {
		logger.Warn("Login failed: account not active", "user_id", user.ID)
		return nil, model.NewAppError("ACCOUNT_NOT_ACTIVE", "アカウントが有効化されていません。登録時に送信されたメールをご確認ください。", "", model.ErrForbidden)
	}

	now := time.Now()
	sessionID := uuid.NewString()
	expiresAt := now.Add(s.cfg.Auth.SessionTTL)

	claims := &model.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    s.cfg.App.Name,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.SecretKey))
	if err != nil {
		logger.Error("Failed to sign session token", "error", err, "user_id", user.ID)
		return nil, errInternal("トークンの生成に失敗しました。", err)
	}

	if err := s.sessions.Save(ctx, sessionID, user.ID, s.cfg.Auth.SessionTTL); err != nil {
		return nil, errInternal("セッションの保存に失敗しました。", err)
	}

	logger.Info("Login successful", "user_id", user.ID)
	return &model.Session{
		Token:     signedToken,
		ID:        sessionID,
		User:      user,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout はセッションを失効させます。無効なトークンでもエラーにしない
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	logger := middleware.GetLogger(ctx)
	if tokenString == "" {
		return nil
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		logger.Debug("Logout with unparseable token, nothing to revoke", "error", err)
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return errInternal("ログアウトに失敗しました。", err)
	}
	logger.Info("Logout", "user_id", claims.Subject)
	return nil
}

// Authenticate はセッショントークンからロール付きのユーザーを返します
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, unauthorized(err)
	}

	alive, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, errInternal("セッションの確認に失敗しました。", err)
	}
	if !alive {
		logger.Debug("Session revoked or expired", "session_id", claims.ID)
		return nil, unauthorized(errors.New("session revoked"))
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, unauthorized(err)
	}

	user, err := s.userRepo.FindByID(ctx, s.db, uint(userID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, unauthorized(err)
		}
		return nil, errInternal("サーバー内部エラー", err)
	}
	if !user.Active {
		return nil, unauthorized(errors.New("account not active"))
	}
	return user, nil
}

// --- ヘルパー関数 ---

func (s *authService) parseToken(tokenString string) (*model.SessionClaims, error) {
	claims := &model.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Auth.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parseToken: %w", err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("parseToken: missing jti or sub")
	}
	return claims, nil
}

func invalidCredentials() *model.AppError {
	return model.NewAppError("AUTHENTICATION_FAILED", "ログイン名またはパスワードが正しくありません。", "", model.ErrInvalidCredentials)
}

func unauthorized(err error) *model.AppError {
	return model.NewAppError("UNAUTHORIZED", "ログインが必要です。", "", fmt.Errorf("%w: %v", model.ErrUnauthorized, err))
}

func (s *authService) generateAndSaveConfirmationToken(ctx context.Context, tx *gorm.DB, userID uint) (string, error) {
	logger := middleware.GetLogger(ctx)
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		logger.Error("Failed to generate random bytes for token", "error", err)
		return "", errInternal("トークンの生成に失敗しました。", err)
	}
	tokenString := hex.EncodeToString(tokenBytes)

	confirmationToken := &model.UserConfirmationToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.Auth.ConfirmTokenTTL),
	}
	if err := s.tokenRepo.CreateConfirmationToken(ctx, tx, confirmationToken); err != nil {
		return "", errInternal("トークンの保存に失敗しました。", err)
	}
	return tokenString, nil
}

func (s *authService) sendConfirmationEmail(ctx context.Context, email, token string) error {
	logger := middleware.GetLogger(ctx)
	confirmURL := fmt.Sprintf("%s/confirm?token=%s", s.cfg.App.BaseURL, url.QueryEscape(token))
	subject := fmt.Sprintf("【%s】メールアドレスの確認をお願いします", s.cfg.App.Name)
	body := fmt.Sprintf("%s にご登録いただきありがとうございます。\n\n以下のリンクを開いてアカウントを有効化してください:\n%s\n\nこのリンクの有効期限は%sです。",
		s.cfg.App.Name, confirmURL, s.cfg.Auth.ConfirmTokenTTL)

	logger.Info("Sending confirmation email", "to", email)
	return s.mailer.Send(ctx, email, subject, body)
}
