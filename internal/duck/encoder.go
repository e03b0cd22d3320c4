package duck

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type RowEncoder interface {
	// Next writes one row. It returns true once rows are exhausted.
	Next() (bool, error)
	Flush() error
}

var Formats = []string{"table", "csv", "tsv", "json"}

func CheckFormat(format string) error {
	if !lo.Contains(Formats, format) {
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

func NewEncoder(format string, rows *sql.Rows, w io.Writer) (RowEncoder, error) {
	switch format {
	case "table":
		return NewTableEncoder(rows, w), nil
	case "csv":
		return NewCSVEncoder(rows, csv.NewWriter(w)), nil
	case "tsv":
		cw := csv.NewWriter(w)
		cw.Comma = '\t'
		return NewCSVEncoder(rows, cw), nil
	case "json":
		return NewJSONEncoder(rows, w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// EncodeAll drains rows through enc and returns the number of rows written.
func EncodeAll(enc RowEncoder) (int, error) {
	n := 0
	for {
		done, err := enc.Next()
		if err != nil {
			return n, err
		}
		if done {
			break
		}
		n++
	}
	if err := enc.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

type row struct {
	cols []string
	vals []any
}

// scanRow reads the next row. Columns are resolved before advancing, so r.cols is
// set even when done is true.
func scanRow(rows *sql.Rows, cols []string) (r *row, done bool, err error) {
	if cols == nil {
		c, err := rows.Columns()
		if err != nil {
			return nil, false, fmt.Errorf("rows.Columns: %w", err)
		}
		cols = c
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("rows.Next: %w", err)
		}
		return &row{cols: cols}, true, nil
	}

	vals := make([]any, len(cols))
	ptrs := lo.Map(vals, func(_ any, i int) any { return &vals[i] })
	if err := rows.Scan(ptrs...); err != nil {
		return nil, false, fmt.Errorf("rows.Scan: %w", err)
	}
	return &row{cols: cols, vals: vals}, false, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case []byte:
		return string(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%v", v)
}

var _ RowEncoder = (*CSVEncoder)(nil)

type CSVEncoder struct {
	w    *csv.Writer
	rows *sql.Rows
	cols []string
}

func NewCSVEncoder(rows *sql.Rows, w *csv.Writer) *CSVEncoder {
	return &CSVEncoder{
		w:    w,
		rows: rows,
	}
}

func (e *CSVEncoder) Flush() error {
	e.w.Flush()
	return e.w.Error()
}

func (e *CSVEncoder) Next() (bool, error) {
	first := e.cols == nil

	r, done, err := scanRow(e.rows, e.cols)
	if err != nil {
		return false, err
	}

	if first {
		// Header is written even for an empty result.
		if err := e.w.Write(r.cols); err != nil {
			return false, fmt.Errorf("csv.Write.header: %w", err)
		}
		e.cols = r.cols
	}
	if done {
		return true, nil
	}

	if err := e.w.Write(lo.Map(r.vals, func(v any, _ int) string { return formatValue(v) })); err != nil {
		return false, fmt.Errorf("csv.Write: %w", err)
	}
	return false, nil
}

var _ RowEncoder = (*JSONEncoder)(nil)

// JSONEncoder writes one object per line. Keys follow the column order of the
// result; duplicate column names are written as they are.
type JSONEncoder struct {
	w    io.Writer
	rows *sql.Rows
	cols []string
	buf  bytes.Buffer
}

func NewJSONEncoder(rows *sql.Rows, w io.Writer) *JSONEncoder {
	return &JSONEncoder{
		rows: rows,
		w:    w,
	}
}

func (e *JSONEncoder) Flush() error {
	return nil
}

func (e *JSONEncoder) Next() (bool, error) {
	r, done, err := scanRow(e.rows, e.cols)
	if err != nil || done {
		return done, err
	}
	e.cols = r.cols

	e.buf.Reset()
	e.buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		v := r.vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		k, err := json.Marshal(c)
		if err != nil {
			return false, fmt.Errorf("json.Marshal: column=%s, %w", c, err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("json.Marshal: column=%s, %w", c, err)
		}
		e.buf.Write(k)
		e.buf.WriteByte(':')
		e.buf.Write(b)
	}
	e.buf.WriteString("}\n")

	if _, err := e.buf.WriteTo(e.w); err != nil {
		return false, fmt.Errorf("Write: %w", err)
	}
	return false, nil
}

var _ RowEncoder = (*TableEncoder)(nil)

// TableEncoder buffers every row and renders a box table on Flush.
type TableEncoder struct {
	tw   *tablewriter.Table
	rows *sql.Rows
	cols []string
}

func NewTableEncoder(rows *sql.Rows, w io.Writer) *TableEncoder {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	return &TableEncoder{
		tw:   tw,
		rows: rows,
	}
}

func (e *TableEncoder) Flush() error {
	e.tw.Render()
	return nil
}

func (e *TableEncoder) Next() (bool, error) {
	first := e.cols == nil

	r, done, err := scanRow(e.rows, e.cols)
	if err != nil {
		return false, err
	}
	if first {
		e.cols = r.cols
		e.tw.SetHeader(r.cols)
	}
	if done {
		return true, nil
	}
	e.tw.Append(lo.Map(r.vals, func(v any, _ int) string { return formatValue(v) }))
	return false, nil
}
