package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/tckz/duckdb-gsheet-playground/internal/auth"
	"github.com/tckz/duckdb-gsheet-playground/internal/log"
	"go.uber.org/zap"
)

// Issues a spreadsheets-scoped token. Without --credentials the issuer is taken from
// GOOGLE_APPLICATION_CREDENTIALS or ADC, which may be a user or a service account.
// The --out file can be passed to gsheet-secret --token-file.

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optCredentials = flag.String("credentials", "", "path/to/service-account.json")
	optScopes      = flag.String("scopes", auth.ScopeSpreadsheets, "comma separated scopes")
	optImpersonate = flag.String("impersonate", "", "service account email to issue the token for")
	optLifetime    = flag.Duration("lifetime", 0, "lifetime of an impersonated token [0 = server default]")
	optOut         = flag.String("out", "", "write the token to this file instead of stdout")
	optLogLevel    = flag.String("log-level", "info", "info|warn|error")
)

func main() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
	logger.Debugf("ver=%s, args=%s", version, os.Args)

	ctx := context.Background()

	src, err := auth.NewTokenSource(ctx, auth.Options{
		CredentialsFile: *optCredentials,
		Scopes:          splitScopes(*optScopes),
		Impersonate:     *optImpersonate,
		Lifetime:        *optLifetime,
	})
	if err != nil {
		logger.Fatalf("*** auth.NewTokenSource: %v", err)
	}
	defer src.Close()

	t, err := auth.IssueToken(src)
	if err != nil {
		logger.Fatalf("*** auth.IssueToken: %v", err)
	}
	logger.Infof("subject=%s, expires %s", src.Subject(), humanize.Time(t.Expiry))

	if *optOut == "" {
		fmt.Println(t.AccessToken)
		return
	}
	if err := auth.WriteTokenFile(*optOut, t.AccessToken); err != nil {
		logger.Fatalf("*** auth.WriteTokenFile: %v", err)
	}
}

func splitScopes(s string) []string {
	var scopes []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			scopes = append(scopes, e)
		}
	}
	return scopes
}
