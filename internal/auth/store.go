package auth

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/oauth2"
)

type TokenStore interface {
	// Get returns nil when nothing is stored for key.
	Get(ctx context.Context, key string) (*oauth2.Token, error)
	Put(ctx context.Context, key string, t *oauth2.Token) error
}

// CacheKey identifies tokens by issuing credential, impersonation target and scope set.
// Scope order does not matter. Lifetime is not part of the key; a stored token is
// judged by its own expiry.
func CacheKey(issuer, target string, scopes []string) string {
	ss := lo.Uniq(scopes)
	slices.Sort(ss)
	return "gsheet-token:" + issuer + ":" + target + ":" + strings.Join(ss, ",")
}

// ttlOf is how long t may stay in a store. Zero means it must not be stored.
func ttlOf(t *oauth2.Token, now time.Time) time.Duration {
	if t.Expiry.IsZero() {
		return 0
	}
	d := t.Expiry.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

