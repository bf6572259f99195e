package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"
	"go_vocab_builder/internal/repository/mocks"
	servicemocks "go_vocab_builder/internal/service/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	cfg      *config.Config
	mailer   *servicemocks.Mailer
	sessions *mocks.SessionRepository
	service  AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctx = testContext()
	s.db = setupTestDB(s.T())
	s.cfg = testConfig()
	s.mailer = servicemocks.NewMailer(s.T())
	s.sessions = mocks.NewSessionRepository(s.T())
	s.rebuild()
}

// rebuild は cfg を変更した後にサービスを作り直します
func (s *AuthServiceTestSuite) rebuild() {
	s.service = NewAuthService(
		s.db,
		repository.NewGormUserRepository(),
		repository.NewGormRoleRepository(),
		repository.NewGormTokenRepository(),
		s.sessions,
		s.mailer,
		s.cfg,
	)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) register(email, username string) *model.User {
	user, err := s.service.Register(s.ctx, &model.RegisterRequest{
		Email:    email,
		Username: username,
		Name:     username,
		Password: "password123",
	})
	s.Require().NoError(err)
	return user
}

func (s *AuthServiceTestSuite) countUsers() int64 {
	var n int64
	s.Require().NoError(s.db.Model(&model.User{}).Count(&n).Error)
	return n
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	s.Require().NoError(repository.NewGormRoleRepository().Create(s.ctx, s.db, &model.Role{Name: model.RoleUser}))

	user := s.register("alice@example.com", "alice")

	s.NotZero(user.ID)
	s.True(user.Active)
	s.NotNil(user.ConfirmedAt)
	s.NotEqual("password123", user.Password)
	s.Equal([]string{model.RoleUser}, user.RoleNames())
	s.mailer.AssertNotCalled(s.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestRegister_Duplicate() {
	s.register("alice@example.com", "alice")

	tests := []struct {
		name     string
		email    string
		username string
		wantCode string
	}{
		{name: "メールアドレスが重複", email: "alice@example.com", username: "other", wantCode: "DUPLICATE_EMAIL"},
		{name: "ユーザー名が重複", email: "other@example.com", username: "alice", wantCode: "DUPLICATE_USERNAME"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Register(s.ctx, &model.RegisterRequest{
				Email: tt.email, Username: tt.username, Password: "password123",
			})
			s.Require().Error(err)
			s.ErrorIs(err, model.ErrConflict)
			var appErr *model.AppError
			s.Require().True(errors.As(err, &appErr))
			s.Equal(tt.wantCode, appErr.Detail.Code)
			s.Equal(int64(1), s.countUsers())
		})
	}
}

func (s *AuthServiceTestSuite) TestRegister_Disabled() {
	s.cfg.Auth.RegisterEnabled = false
	s.rebuild()

	_, err := s.service.Register(s.ctx, &model.RegisterRequest{Email: "a@example.com", Username: "a", Password: "password123"})
	s.ErrorIs(err, model.ErrForbidden)
	s.Zero(s.countUsers())
}

func (s *AuthServiceTestSuite) TestRegister_ConfirmRequired() {
	s.cfg.Auth.ConfirmRequired = true
	s.rebuild()

	var sentBody string
	s.mailer.On("Send", s.ctx, "alice@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sentBody = args.String(3) }).
		Return(nil).Once()

	user := s.register("alice@example.com", "alice")
	s.False(user.Active)
	s.Nil(user.ConfirmedAt)

	var token model.UserConfirmationToken
	s.Require().NoError(s.db.Where("user_id = ?", user.ID).First(&token).Error)
	s.Contains(sentBody, "/confirm?token="+token.Token)

	// 確認前はログインできない
	_, err := s.service.Login(s.ctx, &model.LoginRequest{Login: "alice", Password: "password123"})
	s.ErrorIs(err, model.ErrForbidden)

	s.Require().NoError(s.service.ConfirmAccount(s.ctx, token.Token))

	confirmed, err := repository.NewGormUserRepository().FindByID(s.ctx, s.db, user.ID)
	s.Require().NoError(err)
	s.True(confirmed.Active)
	s.NotNil(confirmed.ConfirmedAt)

	// トークンは使い捨て
	err = s.service.ConfirmAccount(s.ctx, token.Token)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *AuthServiceTestSuite) TestRegister_MailFailureRollsBack() {
	s.cfg.Auth.ConfirmRequired = true
	s.rebuild()

	s.mailer.On("Send", s.ctx, "alice@example.com", mock.Anything, mock.Anything).Return(errors.New("ses down")).Once()

	_, err := s.service.Register(s.ctx, &model.RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "password123"})
	s.Require().Error(err)
	s.Zero(s.countUsers())
}

func (s *AuthServiceTestSuite) TestConfirmAccount_Expired() {
	user := s.register("alice@example.com", "alice")
	s.Require().NoError(s.db.Create(&model.UserConfirmationToken{
		Token: "expired", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	err := s.service.ConfirmAccount(s.ctx, "expired")
	s.ErrorIs(err, model.ErrInvalidInput)

	var n int64
	s.Require().NoError(s.db.Model(&model.UserConfirmationToken{}).Count(&n).Error)
	s.Zero(n)
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.register("alice@example.com", "alice")

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
	}{
		{name: "ユーザー名でログイン", login: "alice", password: "password123"},
		{name: "メールアドレスでログイン", login: "alice@example.com", password: "password123"},
		{name: "パスワード違い", login: "alice", password: "wrong-password", wantErr: model.ErrInvalidCredentials},
		{name: "存在しないユーザー", login: "nobody", password: "password123", wantErr: model.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			if tt.wantErr == nil {
				s.sessions.On("Save", s.ctx, mock.AnythingOfType("string"), mock.AnythingOfType("uint"), time.Hour).Return(nil).Once()
			}
			session, err := s.service.Login(s.ctx, &model.LoginRequest{Login: tt.login, Password: tt.password})
			if tt.wantErr != nil {
				s.ErrorIs(err, tt.wantErr)
				s.Nil(session)
				return
			}
			s.Require().NoError(err)
			s.NotEmpty(session.Token)
			s.NotEmpty(session.ID)
			s.Equal("alice", session.User.Username)
			s.WithinDuration(time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)
		})
	}
}

func (s *AuthServiceTestSuite) TestAuthenticate() {
	user := s.register("alice@example.com", "alice")

	s.sessions.On("Save", s.ctx, mock.AnythingOfType("string"), user.ID, time.Hour).Return(nil).Once()
	session, err := s.service.Login(s.ctx, &model.LoginRequest{Login: "alice", Password: "password123"})
	s.Require().NoError(err)

	s.Run("有効なセッション", func() {
		s.sessions.On("Exists", s.ctx, session.ID).Return(true, nil).Once()
		got, err := s.service.Authenticate(s.ctx, session.Token)
		s.Require().NoError(err)
		s.Equal(user.ID, got.ID)
	})

	s.Run("失効したセッション", func() {
		s.sessions.On("Exists", s.ctx, session.ID).Return(false, nil).Once()
		_, err := s.service.Authenticate(s.ctx, session.Token)
		s.ErrorIs(err, model.ErrUnauthorized)
	})

	s.Run("セッションストア障害は未認証扱いにしない", func() {
		s.sessions.On("Exists", s.ctx, session.ID).Return(false, errors.New("connection refused")).Once()
		_, err := s.service.Authenticate(s.ctx, session.Token)
		s.Require().Error(err)
		s.NotErrorIs(err, model.ErrUnauthorized)
	})

	s.Run("改ざんされたトークン", func() {
		_, err := s.service.Authenticate(s.ctx, session.Token+"x")
		s.ErrorIs(err, model.ErrUnauthorized)
	})

	s.Run("別の鍵で署名されたトークン", func() {
		claims := &model.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
			ID: "forged", Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		s.Require().NoError(err)
		_, err = s.service.Authenticate(s.ctx, forged)
		s.ErrorIs(err, model.ErrUnauthorized)
	})

	s.Run("期限切れのトークン", func() {
		claims := &model.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
			ID: "old", Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.SecretKey))
		s.Require().NoError(err)
		_, err = s.service.Authenticate(s.ctx, expired)
		s.ErrorIs(err, model.ErrUnauthorized)
	})

	s.Run("無効化されたユーザー", func() {
		s.Require().NoError(s.db.Model(&model.User{}).Where("id = ?", user.ID).Update("active", false).Error)
		s.sessions.On("Exists", s.ctx, session.ID).Return(true, nil).Once()
		_, err := s.service.Authenticate(s.ctx, session.Token)
		s.ErrorIs(err, model.ErrUnauthorized)
	})
}

func (s *AuthServiceTestSuite) TestLogout() {
	s.register("alice@example.com", "alice")
	s.sessions.On("Save", s.ctx, mock.AnythingOfType("string"), mock.AnythingOfType("uint"), time.Hour).Return(nil).Once()
	session, err := s.service.Login(s.ctx, &model.LoginRequest{Login: "alice", Password: "password123"})
	s.Require().NoError(err)

	s.sessions.On("Revoke", s.ctx, session.ID).Return(nil).Once()
	s.NoError(s.service.Logout(s.ctx, session.Token))

	// 空・壊れたトークンは何もしない
	s.NoError(s.service.Logout(s.ctx, ""))
	s.NoError(s.service.Logout(s.ctx, strings.Repeat("x", 10)))
}
