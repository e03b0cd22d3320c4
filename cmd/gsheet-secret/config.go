package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/tckz/duckdb-gsheet-playground/internal/gsheet"
)

// config is read from the environment (and .env) first; flags override it.
type config struct {
	Credentials   string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	TokenFile     string        `env:"GSHEET_TOKEN_FILE"`
	Impersonate   string        `env:"GSHEET_IMPERSONATE"`
	Lifetime      time.Duration `env:"GSHEET_TOKEN_LIFETIME, default=1h"`
	SecretName    string        `env:"GSHEET_SECRET_NAME, default=gsheet_secret"`
	SecretType    string        `env:"GSHEET_SECRET_TYPE, default=gsheet"`
	ExtensionName string        `env:"GSHEET_EXTENSION_NAME, default=gsheets"`
	ExtensionPath string        `env:"GSHEET_EXTENSION_PATH"`
	ExtensionRepo string        `env:"GSHEET_EXTENSION_REPOSITORY"`
	Database      string        `env:"GSHEET_DATABASE"`
	Redis         string        `env:"REDIS_ADDR"`
	LogLevel      string        `env:"LOG_LEVEL, default=info"`
	LogFormat     string        `env:"LOG_FORMAT, default=json"`

	URL      string
	Sheets   sheetList
	NoHeader bool
	Verify   bool
	Format   string
	Out      string
	Parallel int
	Timeout  time.Duration
}

func loadConfig(ctx context.Context, fs *flag.FlagSet, args []string) (*config, error) {
	var c config
	if err := envconfig.Process(ctx, &c); err != nil {
		return nil, fmt.Errorf("envconfig.Process: %w", err)
	}

	fs.StringVar(&c.Credentials, "credentials", c.Credentials, "path/to/service-account.json (default: $GOOGLE_APPLICATION_CREDENTIALS, then ADC)")
	fs.StringVar(&c.TokenFile, "token-file", c.TokenFile, "use the first line of this file as the token instead of issuing one")
	fs.StringVar(&c.Impersonate, "impersonate", c.Impersonate, "service account email to issue the token for")
	fs.DurationVar(&c.Lifetime, "lifetime", c.Lifetime, "lifetime of an impersonated token")
	fs.StringVar(&c.SecretName, "secret", c.SecretName, "name of the secret to register")
	fs.StringVar(&c.SecretType, "secret-type", c.SecretType, "TYPE of the secret")
	fs.StringVar(&c.ExtensionName, "extension", c.ExtensionName, "name of the extension to load")
	fs.StringVar(&c.ExtensionPath, "extension-path", c.ExtensionPath, "path/to/gsheets.duckdb_extension; empty installs by name")
	fs.StringVar(&c.ExtensionRepo, "extension-repository", c.ExtensionRepo, "repository to install from when no path is given, e.g. community")
	fs.StringVar(&c.Database, "db", c.Database, "path/to/database file; empty means in-memory")
	fs.StringVar(&c.Redis, "redis", c.Redis, "addr:port of redis to share issued tokens")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug|info|warn|error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "json|console")

	fs.StringVar(&c.URL, "url", "", "spreadsheet URL or ID")
	fs.Var(&c.Sheets, "sheet", "sheet (tab) name; repeatable")
	fs.BoolVar(&c.NoHeader, "no-header", false, "treat the first row as data")
	fs.BoolVar(&c.Verify, "verify", true, "check the spreadsheet and sheet exist via Sheets API before querying")
	fs.StringVar(&c.Format, "format", "table", "table|csv|tsv|json")
	fs.StringVar(&c.Out, "out", "/dev/stdout", "path/to/output")
	fs.IntVar(&c.Parallel, "parallel", 4, "max sheets read at once")
	fs.DurationVar(&c.Timeout, "timeout", 0, "overall timeout [0 = none]")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.URL == "" {
		return nil, fmt.Errorf("*** --url must be specified")
	}
	if _, err := gsheet.ExtractSheetID(c.URL); err != nil {
		return nil, fmt.Errorf("--url: %w", err)
	}
	if c.Parallel < 1 {
		c.Parallel = 1
	}
	return &c, nil
}

type sheetList []string

func (l *sheetList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *sheetList) Set(v string) error {
	if v == "" {
		return fmt.Errorf("empty sheet name")
	}
	*l = append(*l, v)
	return nil
}
