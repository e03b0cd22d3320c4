package gsheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var ErrSheetNotFound = errors.New("sheet not found")

// DefaultSheet is the tab read_gsheet reads when no sheet is named.
const DefaultSheet = "Sheet1"

// Verifier checks a spreadsheet and tab exist before a query is sent to DuckDB,
// whose extension only reports a bare API error.
type Verifier struct {
	srv *sheets.Service
}

func NewVerifier(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*Verifier, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets.NewService: %w", err)
	}
	return &Verifier{srv: srv}, nil
}

type Spreadsheet struct {
	ID     string
	Title  string
	Sheets []string
}

func (v *Verifier) Describe(ctx context.Context, id string) (*Spreadsheet, error) {
	ss, err := v.srv.Spreadsheets.Get(id).
		Fields("properties.title", "sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("Spreadsheets.Get: %w", err)
	}

	res := &Spreadsheet{
		ID: id,
		Sheets: lo.FilterMap(ss.Sheets, func(s *sheets.Sheet, _ int) (string, bool) {
			if s.Properties == nil {
				return "", false
			}
			return s.Properties.Title, true
		}),
	}
	if ss.Properties != nil {
		res.Title = ss.Properties.Title
	}
	return res, nil
}

// Verify fails with the available tab names when sheet is not one of them.
// Empty sheet stands for DefaultSheet.
func (v *Verifier) Verify(ctx context.Context, id, sheet string) (*Spreadsheet, error) {
	ss, err := v.Describe(ctx, id)
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	if !lo.Contains(ss.Sheets, sheet) {
		return ss, fmt.Errorf("%q in %s (available: %s): %w", sheet, id, strings.Join(ss.Sheets, ", "), ErrSheetNotFound)
	}
	return ss, nil
}
