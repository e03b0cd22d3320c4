package duck

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

type Config struct {
	// Path of the database file. Empty opens an in-memory database.
	Path string
	// AllowUnsignedExtensions is required for locally built extension binaries.
	AllowUnsignedExtensions bool
	// MaxConns bounds concurrent queries. Zero leaves the driver default.
	MaxConns int
	Logger   *zap.SugaredLogger
}

func (c Config) dsn() string {
	v := url.Values{}
	if c.AllowUnsignedExtensions {
		v.Set("allow_unsigned_extensions", "true")
	}
	if len(v) == 0 {
		return c.Path
	}
	return c.Path + "?" + v.Encode()
}

// Session is a DuckDB database. Extensions and temporary secrets are shared by every
// connection of the pool because they belong to the database instance.
type Session struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func Open(ctx context.Context, c Config) (*Session, error) {
	db, err := sql.Open("duckdb", c.dsn())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if c.MaxConns > 0 {
		db.SetMaxOpenConns(c.MaxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.PingContext: %w", err)
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Session{db: db, logger: logger}, nil
}

func (s *Session) Close() error {
	return s.db.Close()
}

func (s *Session) LoadExtension(ctx context.Context, e Extension) error {
	install, err := e.InstallStatement()
	if err != nil {
		return err
	}
	load, err := e.LoadStatement()
	if err != nil {
		return err
	}

	s.logger.Debugf("exec: %s", install)
	if _, err := s.db.ExecContext(ctx, install); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	s.logger.Debugf("exec: %s", load)
	if _, err := s.db.ExecContext(ctx, load); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	s.logger.Infof("extension loaded: %s", e.name())
	return nil
}

// CreateSecret registers the token. The statement is never logged since it carries the token.
func (s *Session) CreateSecret(ctx context.Context, sec Secret) error {
	stmt, err := CreateSecretStatement(sec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create secret: %w", err)
	}
	sec = sec.withDefaults()
	s.logger.Infof("secret registered: name=%s, type=%s", sec.Name, sec.Type)
	return nil
}

// Query runs stmt and hands the rows to the caller, who must close them.
func (s *Session) Query(ctx context.Context, stmt string) (*sql.Rows, error) {
	s.logger.Debugf("query: %s", stmt)
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext: %w", err)
	}
	return rows, nil
}
