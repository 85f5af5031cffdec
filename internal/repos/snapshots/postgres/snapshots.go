package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/fastprodman/txledger/internal/repos/snapshots"
	"github.com/fastprodman/txledger/internal/services/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ snapshots.Snapshots = (*snapshotsRepo)(nil)

type snapshotsRepo struct{ db *sql.DB }

func New(db *sql.DB) *snapshotsRepo {
	return &snapshotsRepo{db: db}
}

func (r *snapshotsRepo) InsertRun(tx *sql.Tx, run snapshots.Run) error {
	_, err := tx.Exec(`
		INSERT INTO replay_runs (id, source, processed, rejected)
		VALUES ($1, $2, $3, $4)
	`, run.ID, run.Source, run.Processed, run.Rejected)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return snapshots.ErrDuplicateRun
			}
		}

		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

func (r *snapshotsRepo) InsertAccounts(tx *sql.Tx, runID uuid.UUID, rows []ledger.Row) error {
	stmt, err := tx.Prepare(`
		INSERT INTO account_snapshots (run_id, client_id, available, held, locked)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert accounts: %w", err)
	}
	//nolint:errcheck
	defer stmt.Close()

	// held is NUMERIC(20,0) and travels as decimal text.
	for _, row := range rows {
		_, err = stmt.Exec(runID, int32(row.ClientID), row.Available, strconv.FormatUint(row.Held, 10), row.Locked)
		if err != nil {
			return fmt.Errorf("insert account %d: %w", row.ClientID, err)
		}
	}

	return nil
}

func (r *snapshotsRepo) GetRun(ctx context.Context, runID uuid.UUID) (snapshots.Run, error) {
	run := snapshots.Run{ID: runID}

	err := r.db.QueryRowContext(ctx, `
		SELECT source, processed, rejected, created_at
		FROM replay_runs
		WHERE id = $1
	`, runID).Scan(&run.Source, &run.Processed, &run.Rejected, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshots.Run{}, snapshots.ErrRunNotFound
		}

		return snapshots.Run{}, fmt.Errorf("get run: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, available, held::TEXT, locked
		FROM account_snapshots
		WHERE run_id = $1
		ORDER BY client_id
	`, runID)
	if err != nil {
		return snapshots.Run{}, fmt.Errorf("query accounts: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	for rows.Next() {
		var (
			clientID int32
			held     string
			row      ledger.Row
		)

		err = rows.Scan(&clientID, &row.Available, &held, &row.Locked)
		if err != nil {
			return snapshots.Run{}, fmt.Errorf("scan account: %w", err)
		}

		row.ClientID = uint16(clientID)

		row.Held, err = strconv.ParseUint(held, 10, 64)
		if err != nil {
			return snapshots.Run{}, fmt.Errorf("client %d: parse held: %w", clientID, err)
		}

		run.Accounts = append(run.Accounts, row)
	}

	err = rows.Err()
	if err != nil {
		return snapshots.Run{}, fmt.Errorf("iterate accounts: %w", err)
	}

	return run, nil
}
