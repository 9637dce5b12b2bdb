package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/ld-shop/internal/domain/models"
)

// fakeRedis - map вместо сервера redis
type fakeRedis struct {
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = append([]byte(nil), value.([]byte)...)
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, 600, false, testKey)
	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)), store, "ld_session")

	s := m.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetIdentity(models.Identity{ID: 9, Username: "redis-user", Role: models.RoleUser})

	req := roundTrip(t, s)
	require.Len(t, rdb.data, 1)
	for _, ttl := range rdb.ttl {
		assert.Equal(t, 600*time.Second, ttl)
	}

	restored := m.Get(req)
	id, ok := restored.Identity()
	require.True(t, ok)
	assert.Equal(t, int64(9), id.ID)

	rr := httptest.NewRecorder()
	require.NoError(t, restored.Destroy(rr))
	assert.Empty(t, rdb.data, "Destroy removes the redis record")
}

func TestRedisStore_ExpiredRecord(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, 600, false, testKey)
	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)), store, "ld_session")

	s := m.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetIdentity(models.Identity{ID: 1, Username: "x", Role: models.RoleUser})
	req := roundTrip(t, s)

	for k := range rdb.data {
		delete(rdb.data, k)
	}

	restored := m.Get(req)
	_, ok := restored.Identity()
	assert.False(t, ok, "Missing redis record means an empty session")
}
