package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-portal/internal/domain"
)

func sampleSession(id string) domain.Session {
	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return domain.Session{
		ID:        id,
		Token:     "upstream-token",
		Role:      domain.RoleUser,
		UserID:    42,
		Username:  "ann",
		Team:      "QA",
		CreatedAt: created,
		ExpiresAt: created.Add(time.Hour),
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSealerRoundTrip(t *testing.T) {
	sealer := NewSealer("passphrase")

	sealed, err := sealer.Seal("secret-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "secret-token")

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", plain)

	_, err = NewSealer("other").Open(sealed)
	assert.ErrorIs(t, err, ErrUnseal)

	_, err = sealer.Open("bm90LXNlYWxlZA==")
	assert.ErrorIs(t, err, ErrUnseal)
}

func TestRedisStore(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, NewSealer("k"))
	ctx := context.Background()

	sess := sampleSession("abc")
	require.NoError(t, store.Save(ctx, sess, time.Minute))

	raw, err := mr.Get(sessionKeyPrefix + "abc")
	require.NoError(t, err)
	assert.NotContains(t, raw, "upstream-token")

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, sess, *loaded)

	mr.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, sess, time.Minute))
	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	store, err := OpenSQLiteStore(path, NewSealer("k"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := sampleSession("default")
	require.NoError(t, store.Save(ctx, sess, time.Hour))

	loaded, err := store.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, sess, *loaded)

	sess.Username = "ann-renamed"
	require.NoError(t, store.Save(ctx, sess, time.Hour))
	loaded, err = store.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "ann-renamed", loaded.Username)

	now = now.Add(2 * time.Hour)
	_, err = store.Load(ctx, "default")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisGuard(t *testing.T) {
	mr, client := newRedis(t)
	guard := NewRedisGuard(client, 30*time.Second)
	ctx := context.Background()
	key := GuardKey("abc", 7)

	release, err := guard.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = guard.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrInflight)

	release()
	assert.False(t, mr.Exists(inflightKeyPrefix+key))

	release, err = guard.Acquire(ctx, key)
	require.NoError(t, err)
	mr.FastForward(time.Minute)

	other, err := guard.Acquire(ctx, key)
	require.NoError(t, err)
	release()
	assert.True(t, mr.Exists(inflightKeyPrefix+key), "stale release must not drop a newer guard")
	other()
}

func TestMemoryGuard(t *testing.T) {
	guard := NewMemoryGuard()
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "k")
	require.NoError(t, err)
	_, err = guard.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrInflight)

	_, err = guard.Acquire(ctx, "other")
	assert.NoError(t, err)

	release()
	release()
	_, err = guard.Acquire(ctx, "k")
	assert.NoError(t, err)
}
