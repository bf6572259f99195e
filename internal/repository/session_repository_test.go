package repository_test

import (
	"testing"
	"time"

	"go_vocab_builder/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := testContext()
	repo := repository.NewRedisSessionRepository(client)

	require.NoError(t, repo.Save(ctx, "sid-1", 42, time.Hour))

	ok, err := repo.Exists(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Revoke(ctx, "sid-1"))
	ok, err = repo.Exists(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Revoke は冪等
	require.NoError(t, repo.Revoke(ctx, "sid-1"))
}

func TestRedisSessionRepository_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := testContext()
	repo := repository.NewRedisSessionRepository(client)

	require.NoError(t, repo.Save(ctx, "sid-2", 1, time.Minute))
	mr.FastForward(2 * time.Minute)

	ok, err := repo.Exists(ctx, "sid-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionRepository_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	_, err := repository.NewRedisSessionRepository(client).Exists(testContext(), "sid")
	assert.Error(t, err)
}

func TestStatelessSessionRepository(t *testing.T) {
	ctx := testContext()
	repo := repository.NewStatelessSessionRepository()

	require.NoError(t, repo.Save(ctx, "sid", 1, time.Hour))
	ok, err := repo.Exists(ctx, "anything")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, repo.Revoke(ctx, "sid"))
}
