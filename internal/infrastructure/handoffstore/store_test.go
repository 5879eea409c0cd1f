package handoffstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_TakeOnce(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess", []byte("first")))
	require.NoError(t, s.Put(ctx, "sess", []byte("second")))

	v, ok, err := s.Take(ctx, "sess")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(v))

	_, ok, err = s.Take(ctx, "sess")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ConcurrentTakeYieldsOneWinner(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "sess", []byte("x")))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := s.Take(ctx, "sess"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemoryStore_Expires(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "sess", []byte("x")))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := s.Take(ctx, "sess")
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeRedis struct {
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDelFunc func(ctx context.Context, key string) *redis.StringCmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return f.SetFunc(ctx, key, value, expiration)
}

func (f *fakeRedis) GetDel(ctx context.Context, key string) *redis.StringCmd {
	return f.GetDelFunc(ctx, key)
}

func TestRedisStore(t *testing.T) {
	data := map[string][]byte{}
	f := &fakeRedis{
		SetFunc: func(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
			assert.Equal(t, 15*time.Minute, ttl)
			data[key] = value.([]byte)
			return redis.NewStatusResult("OK", nil)
		},
		GetDelFunc: func(_ context.Context, key string) *redis.StringCmd {
			v, ok := data[key]
			if !ok {
				return redis.NewStringResult("", redis.Nil)
			}
			delete(data, key)
			return redis.NewStringResult(string(v), nil)
		},
	}
	s := NewRedisStore(f, "donation:handoff:", 15*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess", []byte(`{"a":1}`)))
	assert.Contains(t, data, "donation:handoff:sess")

	v, ok, err := s.Take(ctx, "sess")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(v))

	_, ok, err = s.Take(ctx, "sess")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Error(t *testing.T) {
	f := &fakeRedis{GetDelFunc: func(context.Context, string) *redis.StringCmd {
		return redis.NewStringResult("", errors.New("connection refused"))
	}}
	_, _, err := NewRedisStore(f, "", time.Minute).Take(context.Background(), "sess")
	assert.Error(t, err)
}
