package auth

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type Options struct {
	// CredentialsFile is a service account JSON key. Empty means Application Default Credentials.
	CredentialsFile string
	Scopes          []string
	// TokenURL overrides the token endpoint of the key file.
	TokenURL string
	// Impersonate is the email of a service account to mint the token for.
	Impersonate string
	Lifetime    time.Duration
}

func (o Options) scopes() []string {
	if len(o.Scopes) == 0 {
		return []string{ScopeSpreadsheets}
	}
	return o.Scopes
}

// Source is a token source together with the identity it issues tokens for.
type Source struct {
	oauth2.TokenSource
	// Issuer is the email of the credential in use, empty when unknown (ADC user credentials).
	Issuer string
	// Target is the impersonated service account, empty without impersonation.
	Target string
	Scopes []string

	closer io.Closer
}

// Subject is the email the issued tokens belong to.
func (s *Source) Subject() string {
	if s.Target != "" {
		return s.Target
	}
	return s.Issuer
}

// CacheKey is empty when the issuer is unknown and tokens must not be shared.
func (s *Source) CacheKey() string {
	if s.Issuer == "" {
		return ""
	}
	return CacheKey(s.Issuer, s.Target, s.Scopes)
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func NewTokenSource(ctx context.Context, o Options) (*Source, error) {
	if o.Impersonate != "" {
		base, issuer, err := baseTokenSource(ctx, o, ScopeCloudPlatform)
		if err != nil {
			return nil, err
		}
		ts, err := NewImpersonatedTokenSource(ctx, base, o.Impersonate, o.scopes(), o.Lifetime)
		if err != nil {
			return nil, err
		}
		return &Source{
			TokenSource: oauth2.ReuseTokenSource(nil, ts),
			Issuer:      issuer,
			Target:      o.Impersonate,
			Scopes:      o.scopes(),
			closer:      ts,
		}, nil
	}

	ts, issuer, err := baseTokenSource(ctx, o, o.scopes()...)
	if err != nil {
		return nil, err
	}
	return &Source{TokenSource: ts, Issuer: issuer, Scopes: o.scopes()}, nil
}

// baseTokenSource returns a source for the key file, or ADC, along with its email.
func baseTokenSource(ctx context.Context, o Options, scopes ...string) (oauth2.TokenSource, string, error) {
	if o.CredentialsFile == "" {
		creds, err := google.FindDefaultCredentials(ctx, scopes...)
		if err != nil {
			return nil, "", fmt.Errorf("google.FindDefaultCredentials: %w", err)
		}
		var issuer string
		if sa, err := ParseServiceAccount(creds.JSON, "ADC"); err == nil {
			issuer = sa.Email
		}
		return creds.TokenSource, issuer, nil
	}

	sa, err := LoadServiceAccount(o.CredentialsFile, scopes...)
	if err != nil {
		return nil, "", err
	}
	if o.TokenURL != "" {
		sa.TokenURL = o.TokenURL
	}
	return sa.TokenSource(ctx), sa.Email, nil
}

// IssueToken refreshes synchronously. No retry; the caller sees whatever the identity library returns.
func IssueToken(ts oauth2.TokenSource) (*oauth2.Token, error) {
	t, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("ts.Token: %w", err)
	}
	if t.AccessToken == "" {
		return nil, ErrEmptyToken
	}
	return t, nil
}

var _ io.Closer = (*Source)(nil)
