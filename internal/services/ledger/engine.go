package ledger

import (
	"fmt"
)

// Engine replays transactions against per-client accounts. It must receive
// transactions in input order and is not safe for concurrent use: dispute
// handling and duplicate detection depend on that order.
type Engine struct {
	accounts map[uint16]*Account
	// usedTxIDs spans all clients. Only deposits and withdrawals consume ids.
	usedTxIDs map[uint32]struct{}
}

func NewEngine() *Engine {
	return &Engine{
		accounts:  make(map[uint16]*Account),
		usedTxIDs: make(map[uint32]struct{}),
	}
}

// Process applies t to exactly one account or rejects it. A rejection is
// returned as *RejectionError and leaves every account unchanged.
//
// The tx id of a deposit or withdrawal is consumed as soon as it passes the
// duplicate check, even if the account then refuses the operation.
func (e *Engine) Process(t Transaction) error {
	if t.Kind.carriesAmount() {
		if _, used := e.usedTxIDs[t.TxID]; used {
			return reject(t, ErrDuplicateTransaction)
		}

		e.usedTxIDs[t.TxID] = struct{}{}
	}

	var err error

	switch t.Kind {
	case KindDeposit:
		err = e.deposit(t)
	case KindWithdrawal:
		err = e.withAccount(t, func(acc *Account) error { return acc.Withdraw(t.Amount) })
	case KindDispute:
		err = e.withAccount(t, func(acc *Account) error { return acc.StartDispute(t.TxID) })
	case KindResolve:
		err = e.withAccount(t, func(acc *Account) error { return acc.ResolveDispute(t.TxID) })
	case KindChargeback:
		err = e.withAccount(t, func(acc *Account) error { return acc.Chargeback(t.TxID) })
	default:
		err = fmt.Errorf("%w: unknown transaction kind %d", ErrParse, t.Kind)
	}

	if err != nil {
		return reject(t, err)
	}

	return nil
}

// deposit creates the account on first use. A rejected first deposit does
// not leave an empty account behind.
func (e *Engine) deposit(t Transaction) error {
	acc, ok := e.accounts[t.ClientID]
	if !ok {
		acc = NewAccount()
	}

	err := acc.Deposit(t.TxID, t.Amount)
	if err != nil {
		return err
	}

	if !ok {
		e.accounts[t.ClientID] = acc
	}

	return nil
}

func (e *Engine) withAccount(t Transaction, op func(*Account) error) error {
	acc, ok := e.accounts[t.ClientID]
	if !ok {
		return fmt.Errorf("client %d: %w", t.ClientID, ErrAccountNotFound)
	}

	return op(acc)
}

// Account returns the account of clientID. Callers must not mutate it.
func (e *Engine) Account(clientID uint16) (*Account, bool) {
	acc, ok := e.accounts[clientID]

	return acc, ok
}

// Len returns the number of accounts.
func (e *Engine) Len() int {
	return len(e.accounts)
}
