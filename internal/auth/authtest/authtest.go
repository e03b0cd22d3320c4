// Package authtest provides a fake OAuth2 token endpoint and throwaway service account keys.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const ClientEmail = "sheets-reader@example-project.iam.gserviceaccount.com"

// TokenServer answers the JWT bearer grant with a fixed access token.
type TokenServer struct {
	*httptest.Server
	AccessToken string
	ExpiresIn   int
	// Scopes holds the scope claim of the last assertion.
	Scopes atomic.Value
	Calls  atomic.Int64
}

func NewTokenServer(t *testing.T, accessToken string) *TokenServer {
	t.Helper()

	ts := &TokenServer{AccessToken: accessToken, ExpiresIn: 3600}
	ts.Scopes.Store("")
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.Calls.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
			http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
			return
		}
		ts.Scopes.Store(scopeClaim(r.PostForm.Get("assertion")))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": ts.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   ts.ExpiresIn,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func scopeClaim(assertion string) string {
	parts := strings.Split(assertion, ".")
	if len(parts) != 3 {
		return ""
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	var claims struct {
		Scope string `json:"scope"`
	}
	if err := json.Unmarshal(b, &claims); err != nil {
		return ""
	}
	return claims.Scope
}

// ServiceAccountKey returns JSON key material with a freshly generated RSA key.
func ServiceAccountKey(t *testing.T, tokenURL string) []byte {
	t.Helper()

	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(pk)
	if err != nil {
		t.Fatalf("x509.MarshalPKCS8PrivateKey: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	b, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "example-project",
		"private_key_id": "0123456789abcdef",
		"private_key":    string(pemKey),
		"client_email":   ClientEmail,
		"client_id":      "1234567890",
		"token_uri":      tokenURL,
	})
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	return b
}

// WriteServiceAccountKey writes a key to a temp dir and returns its path.
func WriteServiceAccountKey(t *testing.T, tokenURL string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(p, ServiceAccountKey(t, tokenURL), 0o600); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	return p
}
