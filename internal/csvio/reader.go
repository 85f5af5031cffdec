// Package csvio adapts the ledger to delimited text: transaction rows in,
// account snapshot rows out.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fastprodman/txledger/internal/services/ledger"
)

var ErrMissingColumn = errors.New("missing required column")

const (
	colType   = "type"
	colClient = "client"
	colTx     = "tx"
	colAmount = "amount"
)

// Record is one data row of the input with its 1-based line number.
type Record struct {
	Line int
	Raw  ledger.RawTransaction
}

// Reader streams transaction rows from CSV with a "type,client,tx,amount"
// header. Column order follows the header; the amount column is optional.
type Reader struct {
	csv       *csv.Reader
	cols      map[string]int
	headerErr error
	eof       bool
}

// NewReader consumes the header line of r.
//
// Empty input yields a Reader that is immediately at io.EOF. A header that
// is malformed or lacks a required column does not fail here: every data
// row is then reported as a parse error by Next. Only I/O errors are
// returned.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Reader{csv: cr, eof: true}, nil
	}

	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &Reader{csv: cr, headerErr: fmt.Errorf("header: %w", err)}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	rd := &Reader{csv: cr, cols: cols}

	var missing []string

	for _, name := range []string{colType, colClient, colTx} {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		rd.headerErr = fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return rd, nil
}

// HeaderError reports why the header cannot be used, or nil when it can.
func (r *Reader) HeaderError() error {
	return r.headerErr
}

// Next returns the next record. At the end of input it returns io.EOF.
//
// A malformed row, or any row under an unusable header, yields an error
// wrapping ledger.ErrParse; the caller may skip it and call Next again. Any
// other error is fatal for the stream.
func (r *Reader) Next() (Record, error) {
	if r.eof {
		return Record{}, io.EOF
	}

	fields, err := r.csv.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return Record{Line: perr.Line}, fmt.Errorf("%w: line %d: %w", ledger.ErrParse, perr.Line, err)
		}

		return Record{}, err
	}

	line, _ := r.csv.FieldPos(0)

	if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
		return Record{Line: line}, fmt.Errorf("%w: line %d: blank row", ledger.ErrParse, line)
	}

	if r.headerErr != nil {
		return Record{Line: line}, fmt.Errorf("%w: line %d: %w", ledger.ErrParse, line, r.headerErr)
	}

	rec := Record{
		Line: line,
		Raw: ledger.RawTransaction{
			Type:   r.field(fields, colType),
			Client: r.field(fields, colClient),
			Tx:     r.field(fields, colTx),
			Amount: r.field(fields, colAmount),
		},
	}

	for _, name := range []string{colType, colClient, colTx} {
		if r.cols[name] >= len(fields) {
			return rec, fmt.Errorf("%w: line %d: missing %s field", ledger.ErrParse, line, name)
		}
	}

	return rec, nil
}

// field returns the trimmed value of column name, or "" when the row is
// shorter than the header or the column does not exist.
func (r *Reader) field(fields []string, name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(fields) {
		return ""
	}

	return strings.TrimSpace(fields[i])
}
