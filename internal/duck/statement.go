package duck

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultSecretName = "gsheet_secret"
	DefaultSecretType = "gsheet"
	DefaultExtension  = "gsheets"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrQuoteInToken      = errors.New("token contains a single quote")
	ErrEmptyToken        = errors.New("empty token")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdent(kind, s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("%s %q: %w", kind, s, ErrInvalidIdentifier)
	}
	return nil
}

// quote renders s as a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

type Secret struct {
	Name  string
	Type  string
	Token string
}

func (s Secret) withDefaults() Secret {
	if s.Name == "" {
		s.Name = DefaultSecretName
	}
	if s.Type == "" {
		s.Type = DefaultSecretType
	}
	return s
}

// CreateSecretStatement embeds the token as-is. Tokens that would need escaping are refused.
func CreateSecretStatement(s Secret) (string, error) {
	s = s.withDefaults()
	if err := checkIdent("secret name", s.Name); err != nil {
		return "", err
	}
	if err := checkIdent("secret type", s.Type); err != nil {
		return "", err
	}
	if s.Token == "" {
		return "", ErrEmptyToken
	}
	if strings.ContainsRune(s.Token, '\'') {
		return "", ErrQuoteInToken
	}
	return fmt.Sprintf("create or replace secret %s (TYPE %s, token '%s')", s.Name, s.Type, s.Token), nil
}

type Extension struct {
	Name string
	// Path of a local extension binary. Empty installs Name from Repository.
	Path       string
	Repository string
}

func (e Extension) name() string {
	if e.Name == "" {
		return DefaultExtension
	}
	return e.Name
}

func (e Extension) InstallStatement() (string, error) {
	if e.Path != "" {
		return "install " + quote(e.Path), nil
	}
	if err := checkIdent("extension", e.name()); err != nil {
		return "", err
	}
	if e.Repository != "" {
		if err := checkIdent("repository", e.Repository); err != nil {
			return "", err
		}
		return fmt.Sprintf("install %s from %s", e.name(), e.Repository), nil
	}
	return "install " + e.name(), nil
}

func (e Extension) LoadStatement() (string, error) {
	if err := checkIdent("extension", e.name()); err != nil {
		return "", err
	}
	return "load " + e.name(), nil
}

// Read addresses one tab of a spreadsheet through read_gsheet.
type Read struct {
	// URL is a spreadsheet URL or bare ID.
	URL      string
	Sheet    string
	NoHeader bool
}

func ReadGSheetStatement(r Read) string {
	var b strings.Builder
	b.WriteString("select * from read_gsheet(")
	b.WriteString(quote(r.URL))
	if r.Sheet != "" {
		b.WriteString(", sheet:=")
		b.WriteString(quote(r.Sheet))
	}
	if r.NoHeader {
		b.WriteString(", header:=false")
	}
	b.WriteString(");")
	return b.String()
}
