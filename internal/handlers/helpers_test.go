package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"
	"go_vocab_builder/internal/routes"
	"go_vocab_builder/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testOrigin = "http://localhost:8080"

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testApp はルーター全体を sqlite の上で動かすテスト用のアプリケーションです
type testApp struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
	cfg     *config.Config
	admin   service.AdminService
}

type appOption func(*routes.Dependencies)

func withSessions(sessions repository.SessionRepository) appOption {
	return func(d *routes.Dependencies) { d.Sessions = sessions }
}

func withMetrics(m *middleware.Metrics) appOption {
	return func(d *routes.Dependencies) { d.Metrics = m }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	db, err := repository.NewDB("sqlite://file:"+uuid.NewString()+"?mode=memory&cache=shared", testLogger)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		App: config.AppConfig{Name: "vocab_builder", BaseURL: testOrigin},
		Auth: config.AuthConfig{
			SecretKey:       "handler-test-secret",
			PasswordSalt:    "handler-test-salt",
			SessionTTL:      time.Hour,
			CookieName:      "session",
			RegisterEnabled: true,
			ConfirmTokenTTL: time.Hour,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{testOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		},
	}

	deps := routes.Dependencies{DB: db, Config: cfg, Logger: testLogger}
	for _, opt := range opts {
		opt(&deps)
	}
	handler, err := routes.NewRouter(deps)
	require.NoError(t, err)

	admin := service.NewAdminService(
		db,
		repository.NewGormRoleRepository(),
		repository.NewGormUserRepository(),
		repository.NewGormWordAdminRepository(),
		repository.NewGormTokenRepository(),
		cfg,
	)
	_, err = admin.SeedRoles(testContext())
	require.NoError(t, err)

	return &testApp{t: t, handler: handler, db: db, cfg: cfg, admin: admin}
}

func testContext() context.Context {
	return middleware.WithLogger(context.Background(), testLogger)
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.postFrom(testOrigin, path, form, cookie)
}

func (a *testApp) postFrom(origin, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", origin)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// signup は /register 経由でユーザーを作ります
func (a *testApp) signup(username string) {
	a.t.Helper()
	rec := a.post("/register", url.Values{
		"email":    {username + "@example.com"},
		"username": {username},
		"name":     {strings.ToUpper(username)},
		"password": {"password123"},
	}, nil)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
}

// login はログインしてセッションCookieを返します
func (a *testApp) login(username string) *http.Cookie {
	a.t.Helper()
	rec := a.post("/login", url.Values{"login": {username}, "password": {"password123"}}, nil)
	require.Equal(a.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == a.cfg.Auth.CookieName && c.Value != "" {
			return c
		}
	}
	a.t.Fatalf("login %s: no session cookie", username)
	return nil
}

// signupAdmin は登録後に admin ロールを付与してログインします
func (a *testApp) signupAdmin(username string) *http.Cookie {
	a.t.Helper()
	a.signup(username)
	_, err := a.admin.GrantRole(testContext(), username, model.RoleAdmin)
	require.NoError(a.t, err)
	return a.login(username)
}

func (a *testApp) addWord(cookie *http.Cookie, word, assoc, hint, translation string) *httptest.ResponseRecorder {
	return a.post("/words-add", url.Values{
		"word":        {word},
		"assoc":       {assoc},
		"hint":        {hint},
		"translation": {translation},
	}, cookie)
}

func (a *testApp) findWord(word string) *model.Word {
	a.t.Helper()
	var w model.Word
	require.NoError(a.t, a.db.Where("word = ?", word).First(&w).Error)
	return &w
}
