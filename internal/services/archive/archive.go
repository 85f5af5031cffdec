package archive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/txledger/internal/infra/pgutils"
	"github.com/fastprodman/txledger/internal/repos/snapshots"
	pgsnapshots "github.com/fastprodman/txledger/internal/repos/snapshots/postgres"
	"github.com/google/uuid"
)

// ArchiveService stores final replay snapshots. The replay engine never
// reads them back; they exist for inspection only.
type ArchiveService struct {
	db        *sql.DB
	snapshots snapshots.Snapshots
}

func New(dbx *sql.DB) *ArchiveService {
	return &ArchiveService{
		db:        dbx,
		snapshots: pgsnapshots.New(dbx),
	}
}

// Save writes the run header and all account rows in a single transaction.
func (s *ArchiveService) Save(ctx context.Context, run snapshots.Run) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.snapshots.InsertRun(tx, run)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		err = s.snapshots.InsertAccounts(tx, run.ID, run.Accounts)
		if err != nil {
			return fmt.Errorf("insert accounts: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	return nil
}

// Get returns an archived run with its accounts ordered by client id.
func (s *ArchiveService) Get(ctx context.Context, runID uuid.UUID) (snapshots.Run, error) {
	run, err := s.snapshots.GetRun(ctx, runID)
	if err != nil {
		return snapshots.Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}

	return run, nil
}
