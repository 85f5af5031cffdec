package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processAll(t *testing.T, e *Engine, txs ...Transaction) {
	t.Helper()

	for _, tx := range txs {
		require.NoError(t, e.Process(tx), "process %s tx %d", tx.Kind, tx.TxID)
	}
}

func rowFor(t *testing.T, e *Engine, clientID uint16) Row {
	t.Helper()

	for _, r := range e.Snapshot() {
		if r.ClientID == clientID {
			return r
		}
	}

	t.Fatalf("no snapshot row for client %d", clientID)

	return Row{}
}

func rowText(r Row) string {
	locked := "false"
	if r.Locked {
		locked = "true"
	}

	return r.AvailableText() + "," + r.HeldText() + "," + r.TotalText() + "," + locked
}

func TestEngine_Scenarios(t *testing.T) {
	t.Parallel()

	t.Run("deposit_then_withdrawal", func(t *testing.T) {
		t.Parallel()

		e := NewEngine()
		processAll(t, e,
			Deposit(1, 1, amt(t, "1.0")),
			Withdrawal(1, 2, amt(t, "0.5")),
		)

		assert.Equal(t, "0.5000,0.0000,0.5000,false", rowText(rowFor(t, e, 1)))
	})

	t.Run("open_dispute", func(t *testing.T) {
		t.Parallel()

		e := NewEngine()
		processAll(t, e,
			Deposit(3, 10, amt(t, "100.0")),
			Deposit(3, 11, amt(t, "100.0")),
			Dispute(3, 10),
		)

		assert.Equal(t, "100.0000,100.0000,200.0000,false", rowText(rowFor(t, e, 3)))
	})

	t.Run("chargeback_locks", func(t *testing.T) {
		t.Parallel()

		e := NewEngine()
		processAll(t, e,
			Deposit(5, 20, amt(t, "50.0")),
			Dispute(5, 20),
			Chargeback(5, 20),
		)

		assert.Equal(t, "0.0000,0.0000,0.0000,true", rowText(rowFor(t, e, 5)))

		err := e.Process(Deposit(5, 21, amt(t, "10.0")))
		require.ErrorIs(t, err, ErrAccountLocked)
		assert.Equal(t, "0.0000,0.0000,0.0000,true", rowText(rowFor(t, e, 5)))
	})
}

func TestEngine_DuplicateTransactionIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		next Transaction
	}{
		{"deposit_same_client", Deposit(1, 1, 10_000)},
		{"deposit_other_client", Deposit(2, 1, 10_000)},
		{"withdrawal_same_client", Withdrawal(1, 1, 1)},
		{"withdrawal_other_client", Withdrawal(2, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine()
			processAll(t, e, Deposit(1, 1, 10_000), Deposit(2, 2, 10_000))

			before := e.Snapshot()

			err := e.Process(tt.next)
			require.ErrorIs(t, err, ErrDuplicateTransaction)
			assert.Equal(t, before, e.Snapshot())
		})
	}
}

func TestEngine_DisputesDoNotConsumeIDs(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	processAll(t, e,
		Deposit(1, 1, 10_000),
		Dispute(1, 1),
		Resolve(1, 1),
		Dispute(1, 1),
		Resolve(1, 1),
		Deposit(1, 2, 10_000),
	)

	r := rowFor(t, e, 1)
	assert.Equal(t, int64(20_000), r.Available)
	assert.Zero(t, r.Held)
}

func TestEngine_RejectedRecordStillConsumesID(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	processAll(t, e, Deposit(1, 1, 10_000))

	require.ErrorIs(t, e.Process(Withdrawal(1, 2, 20_000)), ErrInsufficientFunds)
	require.ErrorIs(t, e.Process(Deposit(1, 2, 10_000)), ErrDuplicateTransaction)
}

func TestEngine_UnknownAccount(t *testing.T) {
	t.Parallel()

	txs := []Transaction{
		Withdrawal(9, 1, 1),
		Dispute(9, 1),
		Resolve(9, 1),
		Chargeback(9, 1),
	}

	for _, tx := range txs {
		e := NewEngine()

		err := e.Process(tx)
		require.ErrorIs(t, err, ErrAccountNotFound, tx.Kind.String())
		assert.Zero(t, e.Len(), "%s must not create an account", tx.Kind)
	}
}

func TestEngine_DisputeIsScopedToClient(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	processAll(t, e, Deposit(1, 1, 10_000), Deposit(2, 2, 10_000))

	require.ErrorIs(t, e.Process(Dispute(2, 1)), ErrDepositNotFound)

	// A withdrawal id is not a deposit.
	processAll(t, e, Withdrawal(1, 3, 5_000))
	require.ErrorIs(t, e.Process(Dispute(1, 3)), ErrDepositNotFound)

	assert.Equal(t, int64(5_000), rowFor(t, e, 1).Available)
	assert.Equal(t, int64(10_000), rowFor(t, e, 2).Available)
}

func TestEngine_RejectionErrorCarriesIDs(t *testing.T) {
	t.Parallel()

	e := NewEngine()

	err := e.Process(Dispute(7, 42))

	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, KindDispute, rej.Kind)
	assert.Equal(t, uint16(7), rej.ClientID)
	assert.Equal(t, uint32(42), rej.TxID)
	assert.Equal(t, "account_not_found", Reason(err))
	assert.Contains(t, err.Error(), "client 7")
	assert.Contains(t, err.Error(), "tx 42")
}

func TestEngine_FailedFirstDepositCreatesNoAccount(t *testing.T) {
	t.Parallel()

	e := NewEngine()

	err := e.Process(Deposit(1, 1, math.MaxUint64))
	require.ErrorIs(t, err, ErrBalanceOverflow)
	assert.Zero(t, e.Len())
}

func TestEngine_SnapshotOrderedByClient(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	processAll(t, e,
		Deposit(30, 1, 1),
		Deposit(2, 2, 1),
		Deposit(17, 3, 1),
	)

	rows := e.Snapshot()
	require.Len(t, rows, 3)
	assert.Equal(t, []uint16{2, 17, 30}, []uint16{rows[0].ClientID, rows[1].ClientID, rows[2].ClientID})
}

func TestEngine_InstancesAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := NewEngine(), NewEngine()
	processAll(t, a, Deposit(1, 1, 10_000))
	processAll(t, b, Deposit(1, 1, 20_000))

	assert.Equal(t, int64(10_000), rowFor(t, a, 1).Available)
	assert.Equal(t, int64(20_000), rowFor(t, b, 1).Available)
}

func TestReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "parse_error", Reason(ErrParse))
	assert.Equal(t, "duplicate_transaction", Reason(reject(Deposit(1, 1, 1), ErrDuplicateTransaction)))
	assert.Equal(t, "unknown", Reason(errors.New("boom")))
}
