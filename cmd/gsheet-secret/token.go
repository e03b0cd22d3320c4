package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"
	"github.com/tckz/duckdb-gsheet-playground/internal/auth"
	"github.com/tckz/duckdb-gsheet-playground/internal/gsheet"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// localTokens lives as long as the process. Without --redis every caching source
// reads and writes here, so the Sheets API client reuses the token registered as
// the secret instead of going back to the token endpoint.
var localTokens = auth.NewLocalTokenStore()

type issued struct {
	oauth2.TokenSource
	token *oauth2.Token
	close func()
}

func (is *issued) Close() {
	if is.close != nil {
		is.close()
	}
}

func obtainToken(ctx context.Context, cfg *config) (*issued, error) {
	if cfg.TokenFile != "" {
		tok, err := auth.ReadTokenFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("auth.ReadTokenFile: %w", err)
		}
		logger.Infof("token read from %s", cfg.TokenFile)
		t := &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}
		return &issued{TokenSource: oauth2.StaticTokenSource(t), token: t}, nil
	}

	src, err := auth.NewTokenSource(ctx, auth.Options{
		CredentialsFile: cfg.Credentials,
		Scopes:          []string{auth.ScopeSpreadsheets},
		Impersonate:     cfg.Impersonate,
		Lifetime:        cfg.Lifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("auth.NewTokenSource: %w", err)
	}

	store, closeStore := newTokenStore(cfg)
	closeAll := func() {
		closeStore()
		src.Close()
	}

	var ts oauth2.TokenSource = src
	var cts *auth.CachingTokenSource
	if key := src.CacheKey(); key != "" {
		cts = auth.NewCachingTokenSource(ctx, src, store, key)
		ts = cts
	}

	t, err := auth.IssueToken(ts)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("auth.IssueToken: %w", err)
	}

	logger.Infof("token issued: subject=%s, expires %s, cached=%t",
		src.Subject(), humanize.Time(t.Expiry), cts != nil && cts.Hit)

	return &issued{TokenSource: ts, token: t, close: closeAll}, nil
}

func newTokenStore(cfg *config) (auth.TokenStore, func()) {
	if cfg.Redis == "" {
		return localTokens, func() {}
	}
	cl := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Redis},
		DialTimeout:  time.Second * 2,
		ReadTimeout:  time.Second * 2,
		WriteTimeout: time.Second * 2,
	})
	return auth.NewRedisTokenStore(cl), func() { cl.Close() }
}

func newVerifier(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*gsheet.Verifier, error) {
	v, err := gsheet.NewVerifier(ctx, ts, opts...)
	if err != nil {
		return nil, fmt.Errorf("gsheet.NewVerifier: %w", err)
	}
	return v, nil
}
