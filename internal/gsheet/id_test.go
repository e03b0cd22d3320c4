package gsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSheetID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", want: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"},
		{in: "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0", want: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"},
		{in: "docs.google.com/spreadsheets/d/abc-DEF_123", want: "abc-DEF_123"},
		{in: "https://example.com/d/abc", wantErr: true},
		{in: "https://docs.google.com/document/d/abc/edit", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExtractSheetID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSheetRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
