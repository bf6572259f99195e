package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testContext() context.Context {
	return middleware.WithLogger(context.Background(), testLogger)
}

// setupTestDB はテストごとに独立したインメモリ sqlite を用意します
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB("sqlite://file:"+uuid.NewString()+"?mode=memory&cache=shared", testLogger)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "vocab_builder", BaseURL: "http://localhost:8080"},
		Auth: config.AuthConfig{
			SecretKey:       "test-secret-key",
			PasswordSalt:    "test-salt",
			SessionTTL:      time.Hour,
			CookieName:      "session",
			RegisterEnabled: true,
			ConfirmTokenTTL: time.Hour,
		},
	}
}
