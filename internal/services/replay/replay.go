package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/fastprodman/txledger/internal/csvio"
	"github.com/fastprodman/txledger/internal/repos/snapshots"
	"github.com/fastprodman/txledger/internal/services/ledger"
	"github.com/google/uuid"
)

const defaultMaxSamples = 20

// Archiver persists a finished run. A nil Archiver disables archiving.
type Archiver interface {
	Save(ctx context.Context, run snapshots.Run) error
}

// Report summarizes the rejected records of one run.
type Report struct {
	Processed int
	Rejected  int
	ByReason  map[string]int
	// Samples holds the first rejection diagnostics, in input order.
	Samples []string
}

// String renders the report for humans, one reason per line.
func (r Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "processed %d records, rejected %d", r.Processed, r.Rejected)

	for _, reason := range slices.Sorted(maps.Keys(r.ByReason)) {
		fmt.Fprintf(&b, "\n  %s: %d", reason, r.ByReason[reason])
	}

	return b.String()
}

type Result struct {
	// RunID is uuid.Nil unless the run was archived.
	RunID  uuid.UUID
	Rows   []ledger.Row
	Report Report
}

type ReplayService struct {
	archive    Archiver
	maxSamples int
}

func New(archive Archiver) *ReplayService {
	return &ReplayService{archive: archive, maxSamples: defaultMaxSamples}
}

// Run replays every record of r in order and returns the final snapshot.
//
// Record-level failures are logged, counted and skipped. Only reading the
// stream, a canceled ctx or archiving can fail the run.
func (s *ReplayService) Run(ctx context.Context, source string, r io.Reader) (Result, error) {
	reader, err := csvio.NewReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", source, err)
	}

	herr := reader.HeaderError()
	if herr != nil {
		slog.Warn("unusable header, every record will be rejected", "source", source, "error", herr)
	}

	engine := ledger.NewEngine()
	report := Report{ByReason: make(map[string]int)}

	for {
		err = ctx.Err()
		if err != nil {
			return Result{}, fmt.Errorf("replay %s: %w", source, err)
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if !errors.Is(err, ledger.ErrParse) {
				return Result{}, fmt.Errorf("read %s: %w", source, err)
			}

			s.reject(&report, rec.Line, err)

			continue
		}

		t, err := rec.Raw.Normalize()
		if err != nil {
			s.reject(&report, rec.Line, err)

			continue
		}

		err = engine.Process(t)
		if err != nil {
			s.reject(&report, rec.Line, err)

			continue
		}

		report.Processed++
	}

	res := Result{Rows: engine.Snapshot(), Report: report}

	slog.Info("replay finished",
		"source", source,
		"accounts", len(res.Rows),
		"processed", report.Processed,
		"rejected", report.Rejected,
	)

	if s.archive == nil {
		return res, nil
	}

	run := snapshots.Run{
		ID:        uuid.New(),
		Source:    source,
		Processed: report.Processed,
		Rejected:  report.Rejected,
		Accounts:  res.Rows,
	}

	err = s.archive.Save(ctx, run)
	if err != nil {
		return Result{}, fmt.Errorf("archive %s: %w", source, err)
	}

	res.RunID = run.ID

	slog.Info("snapshot archived", "source", source, "run_id", run.ID)

	return res, nil
}

func (s *ReplayService) reject(report *Report, line int, err error) {
	reason := ledger.Reason(err)

	report.Rejected++
	report.ByReason[reason]++

	attrs := []any{"line", line, "reason", reason, "error", err}

	var rej *ledger.RejectionError
	if errors.As(err, &rej) {
		attrs = append(attrs, "type", rej.Kind.String(), "client", rej.ClientID, "tx", rej.TxID)
	}

	slog.Warn("record rejected", attrs...)

	if len(report.Samples) < s.maxSamples {
		report.Samples = append(report.Samples, fmt.Sprintf("line %d: %v", line, err))
	}
}
