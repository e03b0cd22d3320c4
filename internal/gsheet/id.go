package gsheet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidSheetRef = errors.New("invalid Google Sheets URL or ID")

var sheetIDRe = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ExtractSheetID accepts a spreadsheet URL or a bare ID.
func ExtractSheetID(input string) (string, error) {
	if input == "" {
		return "", ErrInvalidSheetRef
	}
	if !strings.Contains(input, "/") {
		return input, nil
	}
	if strings.Contains(input, "docs.google.com/spreadsheets/d/") {
		if m := sheetIDRe.FindStringSubmatch(input); len(m) > 1 {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%q: %w", input, ErrInvalidSheetRef)
}
