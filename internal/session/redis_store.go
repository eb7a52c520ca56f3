package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

const sessionKeyPrefix = "portal:session:"

// RedisStore keeps sessions in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	sealer *Sealer
}

// NewRedisStore constructs the store.
func NewRedisStore(client *redis.Client, sealer *Sealer) *RedisStore {
	return &RedisStore{client: client, sealer: sealer}
}

func (s *RedisStore) Save(ctx context.Context, sess domain.Session, ttl time.Duration) error {
	payload, err := encode(s.sealer, sess)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decode(s.sealer, raw)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
