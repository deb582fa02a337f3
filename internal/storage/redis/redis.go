package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-social-client/internal/models"
	"github.com/pribylovaa/go-social-client/internal/storage"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "social:session:"

// Backend хранит сессию профиля как Redis Hash с полями
// access, refresh, user_id, username, avatar.
type Backend struct {
	rdb *redis.Client
	key string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "social:session:".
func New(ctx context.Context, redisURL, prefix, profile string) (*Backend, error) {
	const op = "storage.redis.New"

	if prefix == "" {
		prefix = defaultPrefix
	}
	if profile == "" {
		profile = "default"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{rdb: rdb, key: prefix + profile}, nil
}

func (b *Backend) Load(ctx context.Context) (*models.StoredSession, error) {
	const op = "storage.redis.Load"

	m, err := b.rdb.HGetAll(ctx, b.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(m) == 0 || (m["access"] == "" && m["refresh"] == "") {
		return nil, storage.ErrNotFound
	}

	return &models.StoredSession{
		Access:      m["access"],
		Refresh:     m["refresh"],
		SubjectID:   m["user_id"],
		SubjectName: m["username"],
		AvatarRef:   m["avatar"],
	}, nil
}

// Save перезаписывает hash целиком в одной транзакции (DEL + HSET),
// чтобы не оставалось полей от предыдущей сессии.
func (b *Backend) Save(ctx context.Context, s *models.StoredSession) error {
	const op = "storage.redis.Save"

	kv := map[string]string{
		"access":   s.Access,
		"refresh":  s.Refresh,
		"user_id":  s.SubjectID,
		"username": s.SubjectName,
		"avatar":   s.AvatarRef,
	}

	pipe := b.rdb.TxPipeline()
	pipe.Del(ctx, b.key)
	pipe.HSet(ctx, b.key, kv)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *Backend) Clear(ctx context.Context) error {
	const op = "storage.redis.Clear"

	if err := b.rdb.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *Backend) Close() error { return b.rdb.Close() }

var _ storage.Backend = (*Backend)(nil)
