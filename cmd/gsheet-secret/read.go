package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/tckz/duckdb-gsheet-playground/internal/duck"
	"github.com/tckz/duckdb-gsheet-playground/internal/gsheet"
	"golang.org/x/sync/errgroup"
)

type reader struct {
	sess      *duck.Session
	verifier  *gsheet.Verifier
	statement func(duck.Read) string
	format    string
	parallel  int
}

// ReadAll runs every read, at most parallel at a time, and writes results in the
// order given. A failed read does not stop the others; all failures are returned.
func (r *reader) ReadAll(ctx context.Context, w io.Writer, reads []duck.Read) error {
	bufs := make([]bytes.Buffer, len(reads))

	var mu sync.Mutex
	var merr *multierror.Error

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.parallel)
	for i, rd := range reads {
		i, rd := i, rd
		eg.Go(func() error {
			n, err := r.read(ctx, &bufs[i], rd)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, fmt.Errorf("sheet=%q: %w", rd.Sheet, err))
				mu.Unlock()
				return nil
			}
			logger.Infof("sheet=%q rows=%d", rd.Sheet, n)
			return nil
		})
	}
	eg.Wait()

	for i := range bufs {
		if _, err := bufs[i].WriteTo(w); err != nil {
			return fmt.Errorf("WriteTo: %w", err)
		}
	}
	return merr.ErrorOrNil()
}

func (r *reader) read(ctx context.Context, w io.Writer, rd duck.Read) (int, error) {
	if r.verifier != nil {
		id, err := gsheet.ExtractSheetID(rd.URL)
		if err != nil {
			return 0, err
		}
		ss, err := r.verifier.Verify(ctx, id, rd.Sheet)
		if err != nil {
			return 0, err
		}
		logger.Debugf("verified: title=%q, sheets=%v", ss.Title, ss.Sheets)
	}

	rows, err := r.sess.Query(ctx, r.statement(rd))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	enc, err := duck.NewEncoder(r.format, rows, w)
	if err != nil {
		return 0, err
	}
	return duck.EncodeAll(enc)
}
