package repository_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

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

func testContext() context.Context {
	return middleware.WithLogger(context.Background(), testLogger)
}

func createUser(t *testing.T, db *gorm.DB, username string, roles ...model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Email:    username + "@example.com",
		Username: username,
		Password: "not-a-real-hash",
		Active:   true,
		Roles:    roles,
	}
	require.NoError(t, repository.NewGormUserRepository().Create(testContext(), db, user))
	return user
}

func createRole(t *testing.T, db *gorm.DB, name string) model.Role {
	t.Helper()
	role := &model.Role{Name: name}
	require.NoError(t, repository.NewGormRoleRepository().Create(testContext(), db, role))
	return *role
}
