package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastprodman/txledger/internal/services/ledger"
	"github.com/google/uuid"
)

var (
	ErrDuplicateRun = errors.New("duplicate run")
	ErrRunNotFound  = errors.New("run not found")
)

// Run is the archived outcome of one replay.
type Run struct {
	ID        uuid.UUID
	Source    string
	Processed int
	Rejected  int
	CreatedAt time.Time
	Accounts  []ledger.Row
}

type Snapshots interface {
	InsertRun(tx *sql.Tx, run Run) error
	InsertAccounts(tx *sql.Tx, runID uuid.UUID, rows []ledger.Row) error
	GetRun(ctx context.Context, runID uuid.UUID) (Run, error)
}
