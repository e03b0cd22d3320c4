package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

var _ TokenStore = (*RedisTokenStore)(nil)

// RedisTokenStore shares issued tokens between invocations and hosts.
type RedisTokenStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisTokenStore(client redis.UniversalClient) *RedisTokenStore {
	return &RedisTokenStore{client: client, now: time.Now}
}

type storedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	Expiry      time.Time `json:"expiry"`
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (*oauth2.Token, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Get: %w", err)
	}

	var st storedToken
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return &oauth2.Token{
		AccessToken: st.AccessToken,
		TokenType:   st.TokenType,
		Expiry:      st.Expiry,
	}, nil
}

func (s *RedisTokenStore) Put(ctx context.Context, key string, t *oauth2.Token) error {
	ttl := ttlOf(t, s.now())
	if ttl == 0 {
		return nil
	}

	b, err := json.Marshal(storedToken{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.Expiry,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	if err := s.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", err)
	}
	return nil
}
