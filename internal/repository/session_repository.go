//go:generate mockery --name SessionRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_vocab_builder/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "vocab:session:"

// SessionRepository はログイン中のセッションID (JWT の jti) を管理します
type SessionRepository interface {
	Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

type redisSessionRepository struct {
	client redis.UniversalClient
}

// NewRedisSessionRepository は Redis にセッションを保存します。ログアウトで即失効できる
func NewRedisSessionRepository(client redis.UniversalClient) SessionRepository {
	return &redisSessionRepository{client: client}
}

func (r *redisSessionRepository) Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	logger := middleware.GetLogger(ctx)
	if err := r.client.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl).Err(); err != nil {
		logger.Error("Failed to save session to redis", "error", err, "user_id", userID)
		return fmt.Errorf("redisSessionRepository.Save: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	logger := middleware.GetLogger(ctx)
	err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to look up session in redis", "error", err)
		return false, fmt.Errorf("redisSessionRepository.Exists: %w", err)
	}
	return true, nil
}

func (r *redisSessionRepository) Revoke(ctx context.Context, sessionID string) error {
	logger := middleware.GetLogger(ctx)
	if err := r.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		logger.Error("Failed to revoke session in redis", "error", err)
		return fmt.Errorf("redisSessionRepository.Revoke: %w", err)
	}
	return nil
}

// statelessSessionRepository は Redis 未設定時に使います。
// セッションの有効性は JWT の署名と期限だけで決まり、ログアウトは Cookie 削除のみ
type statelessSessionRepository struct{}

func NewStatelessSessionRepository() SessionRepository {
	return statelessSessionRepository{}
}

func (statelessSessionRepository) Save(context.Context, string, uint, time.Duration) error {
	return nil
}

func (statelessSessionRepository) Exists(context.Context, string) (bool, error) {
	return true, nil
}

func (statelessSessionRepository) Revoke(context.Context, string) error {
	return nil
}
