package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

const (
	// ScopeSpreadsheets is the only permission the gsheets extension needs.
	ScopeSpreadsheets  = "https://www.googleapis.com/auth/spreadsheets"
	ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"
)

var (
	ErrNotServiceAccount = errors.New("credential is not a service account key")
	ErrEmptyToken        = errors.New("empty access token")
)

// ServiceAccount is a JSON key file parsed for the JWT bearer flow.
type ServiceAccount struct {
	*jwt.Config
}

// LoadServiceAccount reads a key file and prepares it for scopes.
func LoadServiceAccount(path string, scopes ...string) (*ServiceAccount, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}
	return ParseServiceAccount(b, path, scopes...)
}

// ParseServiceAccount validates key material. name is only used in error messages.
func ParseServiceAccount(b []byte, name string, scopes ...string) (*ServiceAccount, error) {
	conf, err := google.JWTConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrNotServiceAccount, err)
	}
	if conf.Email == "" {
		return nil, fmt.Errorf("%s: client_email is missing: %w", name, ErrNotServiceAccount)
	}
	if len(conf.PrivateKey) == 0 {
		return nil, fmt.Errorf("%s: private_key is missing: %w", name, ErrNotServiceAccount)
	}
	return &ServiceAccount{Config: conf}, nil
}

// ReadTokenFile returns the first line of path, the layout the gsheets extension
// itself accepts for pre-issued tokens.
func ReadTokenFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 64*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("sc.Scan: %w", err)
		}
		return "", fmt.Errorf("%s: %w", path, ErrEmptyToken)
	}

	token := strings.TrimSpace(sc.Text())
	if token == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyToken)
	}
	return token, nil
}

// WriteTokenFile writes token as a single line with owner-only permission.
func WriteTokenFile(path, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}
	return nil
}
