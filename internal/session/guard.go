package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInflight means an update for the same key is already being submitted.
var ErrInflight = errors.New("an update for this ticket is already in progress")

// InflightGuard serializes update submissions per key. The returned release
// func must be called once the submission finishes.
type InflightGuard interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// GuardKey builds the key for a session's submission on a ticket.
func GuardKey(sessionID string, ticketID int64) string {
	return fmt.Sprintf("%s:%d", sessionID, ticketID)
}

const inflightKeyPrefix = "portal:inflight:"

// releaseScript deletes the key only when it still holds our token, so an
// expired guard taken over by another submission is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard implements InflightGuard with SETNX and a TTL.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard constructs the guard.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, inflightKeyPrefix+key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire inflight guard: %w", err)
	}
	if !ok {
		return nil, ErrInflight
	}
	return func() {
		_ = releaseScript.Run(context.Background(), g.client, []string{inflightKeyPrefix + key}, token).Err()
	}, nil
}

// MemoryGuard implements InflightGuard in process.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryGuard constructs the guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, ErrInflight
	}
	g.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}
