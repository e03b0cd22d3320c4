package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*CachingTokenSource)(nil)

// CachingTokenSource serves stored tokens while they have at least MinTTL left.
type CachingTokenSource struct {
	ctx    context.Context
	base   oauth2.TokenSource
	store  TokenStore
	key    string
	MinTTL time.Duration

	mu  sync.Mutex
	now func() time.Time
	// Hit reports whether the last Token call was served from the store.
	Hit bool
}

func NewCachingTokenSource(ctx context.Context, base oauth2.TokenSource, store TokenStore, key string) *CachingTokenSource {
	return &CachingTokenSource{
		ctx:    ctx,
		base:   base,
		store:  store,
		key:    key,
		MinTTL: 5 * time.Minute,
		now:    time.Now,
	}
}

func (s *CachingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Get(s.ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("store.Get: %w", err)
	}
	if t != nil && t.AccessToken != "" && t.Expiry.Sub(s.now()) >= s.MinTTL {
		s.Hit = true
		return t, nil
	}

	s.Hit = false
	t, err = s.base.Token()
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(s.ctx, s.key, t); err != nil {
		return nil, fmt.Errorf("store.Put: %w", err)
	}
	return t, nil
}
