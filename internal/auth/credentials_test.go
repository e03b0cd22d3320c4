package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckz/duckdb-gsheet-playground/internal/auth/authtest"
)

func TestParseServiceAccount(t *testing.T) {
	key := authtest.ServiceAccountKey(t, "https://oauth2.example.test/token")

	sa, err := ParseServiceAccount(key, "credentials.json", ScopeSpreadsheets)
	require.NoError(t, err)
	assert.Equal(t, authtest.ClientEmail, sa.Email)
	assert.Equal(t, "https://oauth2.example.test/token", sa.TokenURL)
	assert.Equal(t, []string{ScopeSpreadsheets}, sa.Scopes)
	assert.NotEmpty(t, sa.PrivateKey)
}

func TestParseServiceAccount_Rejected(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{
			name: "authorized user",
			in:   `{"type":"authorized_user","client_id":"x","client_secret":"s","refresh_token":"y"}`,
		},
		{
			name: "no email",
			in:   `{"type":"service_account","private_key":"k"}`,
		},
		{
			name: "no key",
			in:   `{"type":"service_account","client_email":"a@b"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseServiceAccount([]byte(tt.in), "test.json")
			assert.ErrorIs(t, err, ErrNotServiceAccount)
			assert.ErrorContains(t, err, "test.json")
		})
	}
}

func TestParseServiceAccount_Malformed(t *testing.T) {
	_, err := ParseServiceAccount([]byte(`{`), "broken.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestLoadServiceAccount_Missing(t *testing.T) {
	_, err := LoadServiceAccount(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTokenFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token.txt")

	require.NoError(t, WriteTokenFile(p, "ya29.abc"))
	got, err := ReadTokenFile(p)
	require.NoError(t, err)
	assert.Equal(t, "ya29.abc", got)

	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestReadTokenFile_FirstLineOnly(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token.txt")
	require.NoError(t, os.WriteFile(p, []byte("first\nsecond\n"), 0o600))

	got, err := ReadTokenFile(p)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestReadTokenFile_Empty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token.txt")
	require.NoError(t, os.WriteFile(p, []byte("\nsecond\n"), 0o600))

	_, err := ReadTokenFile(p)
	assert.ErrorIs(t, err, ErrEmptyToken)

	require.NoError(t, os.WriteFile(p, nil, 0o600))
	_, err = ReadTokenFile(p)
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestWriteTokenFile_Empty(t *testing.T) {
	err := WriteTokenFile(filepath.Join(t.TempDir(), "token.txt"), "")
	assert.ErrorIs(t, err, ErrEmptyToken)
}
