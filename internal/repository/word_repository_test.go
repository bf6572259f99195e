package repository_test

import (
	"testing"

	"go_vocab_builder/internal/model"
	"go_vocab_builder/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordsOf(words []*model.Word) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		result = append(result, w.Word)
	}
	return result
}

func TestGormWordRepository_FindByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	repo := repository.NewGormWordRepository()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, repo.CreateOwned(ctx, db, &model.Word{Word: "casa", Assoc: "house", Hint: "Spanish", Translation: "house"}, alice.ID))
	require.NoError(t, repo.CreateOwned(ctx, db, &model.Word{Word: "perro", Assoc: "dog", Hint: "Spanish", Translation: "dog"}, alice.ID))
	require.NoError(t, repo.CreateOwned(ctx, db, &model.Word{Word: "Hund", Assoc: "dog", Hint: "German", Translation: "dog"}, bob.ID))

	aliceWords, err := repo.FindByOwner(ctx, db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"casa", "perro"}, wordsOf(aliceWords))
	for _, w := range aliceWords {
		assert.True(t, w.OwnedBy(alice.ID))
	}

	bobWords, err := repo.FindByOwner(ctx, db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hund"}, wordsOf(bobWords))

	all, err := repo.FindAll(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"casa", "perro", "Hund"}, wordsOf(all))
	assert.Equal(t, "alice", all[0].OwnerName())
	assert.Equal(t, "bob", all[2].OwnerName())
}

func TestGormWordRepository_CreateOwned_DuplicateAcrossUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	repo := repository.NewGormWordRepository()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, repo.CreateOwned(ctx, db, &model.Word{Word: "casa", Assoc: "a", Hint: "h", Translation: "t"}, alice.ID))

	err := repo.CreateOwned(ctx, db, &model.Word{Word: "casa", Assoc: "b", Hint: "h", Translation: "t"}, bob.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConflict)

	all, err := repo.FindAll(ctx, db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormWordRepository_DeleteByOwnerAndID(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	repo := repository.NewGormWordRepository()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	word := &model.Word{Word: "casa", Assoc: "house", Hint: "Spanish", Translation: "house"}
	require.NoError(t, repo.CreateOwned(ctx, db, word, alice.ID))

	tests := []struct {
		name        string
		userID      uint
		wordID      uint
		wantDeleted int64
	}{
		{name: "他人の単語は削除されない", userID: bob.ID, wordID: word.ID, wantDeleted: 0},
		{name: "存在しないIDは何もしない", userID: alice.ID, wordID: word.ID + 100, wantDeleted: 0},
		{name: "所有者なら削除できる", userID: alice.ID, wordID: word.ID, wantDeleted: 1},
		{name: "2回目は0件", userID: alice.ID, wordID: word.ID, wantDeleted: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted, err := repo.DeleteByOwnerAndID(ctx, db, tt.userID, tt.wordID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)
		})
	}

	remaining, err := repo.FindAll(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestGormWordAdminRepository_ClearOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	wordRepo := repository.NewGormWordRepository()
	adminRepo := repository.NewGormWordAdminRepository()

	alice := createUser(t, db, "alice")
	require.NoError(t, wordRepo.CreateOwned(ctx, db, &model.Word{Word: "casa", Assoc: "a", Hint: "h", Translation: "t"}, alice.ID))
	require.NoError(t, wordRepo.CreateOwned(ctx, db, &model.Word{Word: "gato", Assoc: "a", Hint: "h", Translation: "t"}, alice.ID))

	cleared, err := adminRepo.ClearOwner(ctx, db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	words, err := adminRepo.FindAllWithOwner(ctx, db)
	require.NoError(t, err)
	require.Len(t, words, 2)
	for _, w := range words {
		assert.Nil(t, w.UserID)
		assert.Empty(t, w.OwnerName())
	}
}

func TestGormWordAdminRepository_UpdateConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext()
	repo := repository.NewGormWordAdminRepository()

	first := &model.Word{Word: "casa"}
	second := &model.Word{Word: "gato"}
	require.NoError(t, repo.Create(ctx, db, first))
	require.NoError(t, repo.Create(ctx, db, second))

	second.Word = "casa"
	err := repo.Update(ctx, db, second)
	assert.ErrorIs(t, err, model.ErrConflict)

	err = repo.Update(ctx, db, &model.Word{ID: 999, Word: "perro"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = repo.DeleteByID(ctx, db, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
