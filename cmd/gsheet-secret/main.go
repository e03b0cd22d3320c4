package main

// Issues an access token for a service account, registers it in DuckDB as a secret of
// the gsheets extension and reads sheets through read_gsheet.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tckz/duckdb-gsheet-playground/internal/duck"
	"github.com/tckz/duckdb-gsheet-playground/internal/log"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	cfg, err := loadConfig(ctx, flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Must(log.NewLogger()).Sugar().Fatal(err)
	}

	logger = log.Must(log.NewLogger(
		log.WithLogLevel(cfg.LogLevel),
		log.WithEncoding(cfg.LogFormat),
		log.WithFields(zap.String("app", myName), zap.String("run", uuid.NewString())),
	)).Sugar()
	defer logger.Sync()

	logger.Infof("ver=%s, args=%s", version, os.Args)

	if cfg.Timeout > 0 {
		var c context.CancelFunc
		ctx, c = context.WithTimeout(ctx, cfg.Timeout)
		defer c()
	}

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("*** run: %v", err)
	}
	logger.Infof("done")
}

func run(ctx context.Context, cfg *config) error {
	// Checked up front so a bad format does not cost a token.
	if err := duck.CheckFormat(cfg.Format); err != nil {
		return err
	}

	sess, err := duck.Open(ctx, duck.Config{
		Path:                    cfg.Database,
		AllowUnsignedExtensions: true,
		MaxConns:                cfg.Parallel,
		Logger:                  logger,
	})
	if err != nil {
		return fmt.Errorf("duck.Open: %w", err)
	}
	defer sess.Close()

	if err := sess.LoadExtension(ctx, duck.Extension{
		Name:       cfg.ExtensionName,
		Path:       cfg.ExtensionPath,
		Repository: cfg.ExtensionRepo,
	}); err != nil {
		return fmt.Errorf("LoadExtension: %w", err)
	}

	ts, err := obtainToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer ts.Close()

	if err := sess.CreateSecret(ctx, duck.Secret{
		Name:  cfg.SecretName,
		Type:  cfg.SecretType,
		Token: ts.token.AccessToken,
	}); err != nil {
		return fmt.Errorf("CreateSecret: %w", err)
	}

	w, err := os.Create(cfg.Out)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	defer w.Close()

	r := &reader{
		sess:      sess,
		statement: duck.ReadGSheetStatement,
		format:    cfg.Format,
		parallel:  cfg.Parallel,
	}
	if cfg.Verify {
		v, err := newVerifier(ctx, ts)
		if err != nil {
			return err
		}
		r.verifier = v
	}

	return r.ReadAll(ctx, w, readsOf(cfg))
}

func readsOf(cfg *config) []duck.Read {
	if len(cfg.Sheets) == 0 {
		return []duck.Read{{URL: cfg.URL, NoHeader: cfg.NoHeader}}
	}
	reads := make([]duck.Read, 0, len(cfg.Sheets))
	for _, s := range cfg.Sheets {
		reads = append(reads, duck.Read{URL: cfg.URL, Sheet: s, NoHeader: cfg.NoHeader})
	}
	return reads
}
