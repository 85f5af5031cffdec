package ledger

import (
	"errors"
	"fmt"

	"github.com/fastprodman/txledger/internal/amount"
)

var (
	// ErrParse is shared with the amount codec so a malformed amount and a
	// malformed record are the same kind of rejection.
	ErrParse = amount.ErrParse

	ErrAccountLocked        = errors.New("account locked")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAccountNotFound      = errors.New("account not found")
	ErrDepositNotFound      = errors.New("deposit not found")
	ErrInvalidDepositState  = errors.New("invalid deposit state")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrBalanceOverflow      = errors.New("balance overflow")
)

// reasons lists every record-level sentinel with a stable label used in
// reports and logs.
var reasons = []struct {
	err   error
	label string
}{
	{ErrParse, "parse_error"},
	{ErrAccountLocked, "account_locked"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrAccountNotFound, "account_not_found"},
	{ErrDepositNotFound, "deposit_not_found"},
	{ErrInvalidDepositState, "invalid_deposit_state"},
	{ErrDuplicateTransaction, "duplicate_transaction"},
	{ErrBalanceOverflow, "balance_overflow"},
}

// Reason returns the label of the first known sentinel err wraps,
// or "unknown".
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}

	return "unknown"
}

// RejectionError identifies the record the engine refused to apply.
type RejectionError struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32
	Err      error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected (client %d, tx %d): %v", e.Kind, e.ClientID, e.TxID, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(t Transaction, err error) error {
	return &RejectionError{Kind: t.Kind, ClientID: t.ClientID, TxID: t.TxID, Err: err}
}
