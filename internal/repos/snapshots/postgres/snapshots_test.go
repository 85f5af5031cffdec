package snapshots

import (
	"database/sql"
	"errors"
	"math"
	"testing"

	"github.com/fastprodman/txledger/internal/infra/pgtestutil"
	"github.com/fastprodman/txledger/internal/repos/snapshots"
	"github.com/fastprodman/txledger/internal/services/ledger"
	"github.com/google/uuid"
)

func insertRun(t *testing.T, db *sql.DB, repo *snapshotsRepo, run snapshots.Run) error {
	t.Helper()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = repo.InsertRun(tx, run)
	if err == nil {
		err = repo.InsertAccounts(tx, run.ID, run.Accounts)
	}

	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if cerr := tx.Commit(); cerr != nil {
		t.Fatalf("commit: %v", cerr)
	}

	return nil
}

func TestSnapshots_InsertAndGet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	run := snapshots.Run{
		ID:        uuid.New(),
		Source:    "sample.csv",
		Processed: 10,
		Rejected:  2,
		Accounts: []ledger.Row{
			{ClientID: 1, Available: 2_000_000},
			{ClientID: 6, Available: -500_000, Held: 1_000_000},
			{ClientID: 65535, Locked: true},
		},
	}

	if err := insertRun(t, db, repo, run); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	got, err := repo.GetRun(t.Context(), run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}

	if got.Source != run.Source || got.Processed != run.Processed || got.Rejected != run.Rejected {
		t.Fatalf("run header mismatch: got %+v", got)
	}

	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at not populated")
	}

	if len(got.Accounts) != len(run.Accounts) {
		t.Fatalf("accounts len: got %d, want %d", len(got.Accounts), len(run.Accounts))
	}

	for i := range run.Accounts {
		if got.Accounts[i] != run.Accounts[i] {
			t.Fatalf("account %d: got %+v, want %+v", i, got.Accounts[i], run.Accounts[i])
		}
	}
}

func TestSnapshots_HeldAboveInt64(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	// Two disputed deposits of the maximum amount.
	row := ledger.Row{ClientID: 1, Available: -math.MaxInt64, Held: math.MaxUint64 - 1}
	run := snapshots.Run{ID: uuid.New(), Source: "big.csv", Accounts: []ledger.Row{row}}

	if err := insertRun(t, db, repo, run); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	got, err := repo.GetRun(t.Context(), run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}

	if len(got.Accounts) != 1 || got.Accounts[0] != row {
		t.Fatalf("accounts: got %+v, want [%+v]", got.Accounts, row)
	}
}

func TestSnapshots_DuplicateRun(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	run := snapshots.Run{ID: uuid.New(), Source: "a.csv"}

	if err := insertRun(t, db, repo, run); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := insertRun(t, db, repo, run)
	if !errors.Is(err, snapshots.ErrDuplicateRun) {
		t.Fatalf("second insert: got %v, want ErrDuplicateRun", err)
	}
}

func TestSnapshots_GetUnknownRun(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := New(db).GetRun(t.Context(), uuid.New())
	if !errors.Is(err, snapshots.ErrRunNotFound) {
		t.Fatalf("got %v, want ErrRunNotFound", err)
	}
}
