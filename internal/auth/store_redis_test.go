package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestRedisStore(t *testing.T) (*RedisTokenStore, *miniredis.Miniredis) {
	t.Helper()

	m := miniredis.RunT(t)
	cl := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { cl.Close() })
	return NewRedisTokenStore(cl), m
}

func TestRedisTokenStore(t *testing.T) {
	ctx := context.Background()
	s, m := newTestRedisStore(t)

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	exp := now.Add(30 * time.Minute)
	require.NoError(t, s.Put(ctx, "k", &oauth2.Token{AccessToken: "ya29.r", TokenType: "Bearer", Expiry: exp}))

	assert.Equal(t, 30*time.Minute, m.TTL("k"))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ya29.r", got.AccessToken)
	assert.Equal(t, "Bearer", got.TokenType)
	assert.True(t, exp.Equal(got.Expiry))

	m.FastForward(31 * time.Minute)
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisTokenStore_Missing(t *testing.T) {
	s, _ := newTestRedisStore(t)

	got, err := s.Get(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisTokenStore_NotStored(t *testing.T) {
	ctx := context.Background()
	s, m := newTestRedisStore(t)

	require.NoError(t, s.Put(ctx, "no-expiry", &oauth2.Token{AccessToken: "t"}))
	require.NoError(t, s.Put(ctx, "expired", &oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(-time.Minute)}))

	assert.False(t, m.Exists("no-expiry"))
	assert.False(t, m.Exists("expired"))
}

func TestRedisTokenStore_Broken(t *testing.T) {
	ctx := context.Background()
	s, m := newTestRedisStore(t)

	require.NoError(t, m.Set("k", "{not json"))
	_, err := s.Get(ctx, "k")
	assert.Error(t, err)
}

func TestCachingTokenSource_Redis(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)

	base := &countingSource{}
	first := NewCachingTokenSource(ctx, base, s, CacheKey("sa@x", "", []string{ScopeSpreadsheets}))
	_, err := first.Token()
	require.NoError(t, err)

	// Another process sharing the redis gets the stored token.
	second := NewCachingTokenSource(ctx, base, s, CacheKey("sa@x", "", []string{ScopeSpreadsheets}))
	tok, err := second.Token()
	require.NoError(t, err)
	assert.True(t, second.Hit)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, 1, base.n)
}
