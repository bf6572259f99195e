package repository_test

import (
	"testing"

	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	repo := repository.NewGormUserRepository()

	createUser(t, db, "alice")

	tests := []struct {
		name string
		user *model.User
	}{
		{name: "メールアドレスが重複", user: &model.User{Email: "alice@example.com", Username: "alice2"}},
		{name: "ユーザー名が重複", user: &model.User{Email: "other@example.com", Username: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, db, tt.user)
			assert.ErrorIs(t, err, model.ErrConflict)
		})
	}

	users, err := repo.FindAll(ctx, db)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGormUserRepository_FindByLogin(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	repo := repository.NewGormUserRepository()

	admin := createRole(t, db, model.RoleAdmin)
	created := createUser(t, db, "alice", admin)

	byEmail, err := repo.FindByLogin(ctx, db, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.True(t, byEmail.IsAdmin())

	byName, err := repo.FindByLogin(ctx, db, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.FindByLogin(ctx, db, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGormUserRepository_ReplaceRolesAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	userRepo := repository.NewGormUserRepository()
	roleRepo := repository.NewGormRoleRepository()

	admin := createRole(t, db, model.RoleAdmin)
	userRole := createRole(t, db, model.RoleUser)
	alice := createUser(t, db, "alice", userRole)

	require.NoError(t, userRepo.ReplaceRoles(ctx, db, alice, []model.Role{admin}))

	reloaded, err := userRepo.FindByID(ctx, db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleAdmin}, reloaded.RoleNames())

	roles, err := roleRepo.FindByNames(ctx, db, []string{model.RoleUser, "missing"})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, model.RoleUser, roles[0].Name)

	require.NoError(t, userRepo.Delete(ctx, db, alice.ID))
	_, err = userRepo.FindByID(ctx, db, alice.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	var links int64
	require.NoError(t, db.Table("roles_users").Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, userRepo.Delete(ctx, db, alice.ID), model.ErrNotFound)
}

func TestGormRoleRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	repo := repository.NewGormRoleRepository()

	admin := createRole(t, db, model.RoleAdmin)
	alice := createUser(t, db, "alice", admin)

	err := repo.Create(ctx, db, &model.Role{Name: model.RoleAdmin})
	assert.ErrorIs(t, err, model.ErrConflict)

	seeded := &model.Role{Name: model.RoleAdmin, Description: "ignored"}
	require.NoError(t, repo.FirstOrCreate(ctx, db, seeded))
	assert.Equal(t, admin.ID, seeded.ID)

	require.NoError(t, repo.Delete(ctx, db, admin.ID))

	reloaded, err := repository.NewGormUserRepository().FindByID(ctx, db, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Roles)

	_, err = repo.FindByName(ctx, db, model.RoleAdmin)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
