package gsheet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

func newTestVerifier(t *testing.T, h http.HandlerFunc) *Verifier {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	v, err := NewVerifier(context.Background(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return v
}

func TestVerifier_Verify(t *testing.T) {
	var gotAuth, gotPath string
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"properties":{"title":"Budget"},"sheets":[{"properties":{"title":"Sheet1"}},{"properties":{"title":"2024"}}]}`))
	})

	ss, err := v.Verify(context.Background(), "abc", "2024")
	require.NoError(t, err)
	assert.Equal(t, "Budget", ss.Title)
	assert.Equal(t, []string{"Sheet1", "2024"}, ss.Sheets)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "/v4/spreadsheets/abc", gotPath)

	_, err = v.Verify(context.Background(), "abc", "2025")
	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.Contains(t, err.Error(), "Sheet1, 2024")
}

func TestVerifier_APIError(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
	})

	_, err := v.Verify(context.Background(), "abc", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission")
}

func TestVerifier_DefaultSheet(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"properties":{"title":"Export"},"sheets":[{"properties":{"title":"Data"}}]}`))
	})

	_, err := v.Verify(context.Background(), "abc", "")
	assert.ErrorIs(t, err, ErrSheetNotFound)
	assert.ErrorContains(t, err, `"Sheet1"`)
	assert.ErrorContains(t, err, "available: Data")

	ss, err := v.Verify(context.Background(), "abc", "Data")
	require.NoError(t, err)
	assert.Equal(t, []string{"Data"}, ss.Sheets)
}
