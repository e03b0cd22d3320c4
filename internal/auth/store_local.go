package auth

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
)

var _ TokenStore = (*LocalTokenStore)(nil)

type LocalTokenStore struct {
	cache *cache.Cache
	now   func() time.Time
}

func NewLocalTokenStore() *LocalTokenStore {
	return &LocalTokenStore{
		cache: cache.New(cache.NoExpiration, 1*time.Minute),
		now:   time.Now,
	}
}

func (s *LocalTokenStore) Get(ctx context.Context, key string) (*oauth2.Token, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	t := *v.(*oauth2.Token)
	return &t, nil
}

func (s *LocalTokenStore) Put(ctx context.Context, key string, t *oauth2.Token) error {
	ttl := ttlOf(t, s.now())
	if ttl == 0 {
		return nil
	}
	c := *t
	s.cache.Set(key, &c, ttl)
	return nil
}
