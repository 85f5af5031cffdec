// Command txengine replays a transactions CSV and prints the final account
// balances as CSV on stdout.
//
//	txengine [-report] <transactions.csv>
//
// Rejected records are logged to stderr and never stop the run. Set PG_DSN
// to also archive the snapshot in Postgres.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/txledger/internal/csvio"
	"github.com/fastprodman/txledger/internal/infra/logging"
	"github.com/fastprodman/txledger/internal/infra/pgutils"
	"github.com/fastprodman/txledger/internal/services/archive"
	"github.com/fastprodman/txledger/internal/services/replay"
	"github.com/fastprodman/txledger/pkg/envconf"
	"github.com/fastprodman/txledger/pkg/shutdownqueue"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage: txengine [-report] <transactions.csv>")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "txengine: %v\n", err)

		if errors.Is(err, errUsage) {
			os.Exit(exitUsage)
		}

		os.Exit(exitFailure)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (retErr error) {
	fs := flag.NewFlagSet("txengine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	report := fs.Bool("report", false, "print a summary of rejected records to stderr")

	err := fs.Parse(args)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() != 1 {
		return errUsage
	}

	path := fs.Arg(0)

	cfg := new(engineConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.Setup(stderr, cfg.LogLevel, cfg.LogFormat)

	cleanup := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := cleanup.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	cleanup.Add(func(context.Context) error { return f.Close() })

	var archiver replay.Archiver

	if cfg.Postgres.Enabled() {
		db, err := pgutils.OpenDB(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}

		cleanup.Add(func(context.Context) error { return db.Close() })

		archiver = archive.New(db)
	}

	res, err := replay.New(archiver).Run(ctx, path, bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	out := bufio.NewWriter(stdout)

	err = csvio.WriteSnapshot(out, res.Rows)
	if err == nil {
		err = out.Flush()
	}

	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if *report {
		printReport(stderr, res.Report)
	}

	slog.Debug("txengine done", "source", path)

	return nil
}

func printReport(w io.Writer, r replay.Report) {
	fmt.Fprintln(w, r.String())

	for _, s := range r.Samples {
		fmt.Fprintf(w, "  %s\n", s)
	}

	if hidden := r.Rejected - len(r.Samples); hidden > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", hidden)
	}
}
