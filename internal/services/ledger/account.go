package ledger

import (
	"fmt"
	"math"

	"github.com/fastprodman/txledger/internal/amount"
)

// DepositState is the dispute lifecycle of a single deposit:
// Valid -> InDispute -> {Valid, ChargedBack}. ChargedBack is terminal.
type DepositState uint8

const (
	DepositValid DepositState = iota
	DepositInDispute
	DepositChargedBack
)

func (s DepositState) String() string {
	switch s {
	case DepositValid:
		return "valid"
	case DepositInDispute:
		return "in_dispute"
	case DepositChargedBack:
		return "charged_back"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

type disputeEvent uint8

const (
	eventDispute disputeEvent = iota
	eventResolve
	eventChargeback
)

func (ev disputeEvent) String() string {
	switch ev {
	case eventDispute:
		return "dispute"
	case eventResolve:
		return "resolve"
	case eventChargeback:
		return "chargeback"
	default:
		return fmt.Sprintf("event(%d)", uint8(ev))
	}
}

// transition is the whole dispute lifecycle table.
func (s DepositState) transition(ev disputeEvent) (DepositState, bool) {
	switch s {
	case DepositValid:
		if ev == eventDispute {
			return DepositInDispute, true
		}
	case DepositInDispute:
		switch ev {
		case eventResolve:
			return DepositValid, true
		case eventChargeback:
			return DepositChargedBack, true
		case eventDispute:
		}
	case DepositChargedBack:
	}

	return s, false
}

type deposit struct {
	amount amount.Amount
	state  DepositState
}

// Account is the ledger of one client. The zero value is not usable,
// use NewAccount.
//
// held always equals the sum of the deposits currently in dispute.
// available may go negative when a deposit that was partly withdrawn
// gets disputed.
type Account struct {
	available int64
	held      uint64
	locked    bool
	deposits  map[uint32]*deposit
}

func NewAccount() *Account {
	return &Account{deposits: make(map[uint32]*deposit)}
}

func (a *Account) Available() int64 { return a.available }
func (a *Account) Held() uint64     { return a.held }
func (a *Account) Locked() bool     { return a.locked }

// Total is available plus held.
func (a *Account) Total() int64 {
	return a.available + int64(a.held)
}

// DepositState returns the lifecycle state of deposit txID.
func (a *Account) DepositState(txID uint32) (DepositState, bool) {
	d, ok := a.deposits[txID]
	if !ok {
		return 0, false
	}

	return d.state, true
}

// Deposit credits amt to available and records txID as a valid deposit.
// Uniqueness of txID is the caller's concern.
func (a *Account) Deposit(txID uint32, amt amount.Amount) error {
	if a.locked {
		return ErrAccountLocked
	}

	// total = available + held must stay representable.
	if amt > amount.MaxAmount || a.Total() > math.MaxInt64-int64(amt) {
		return fmt.Errorf("deposit %s: %w", amt, ErrBalanceOverflow)
	}

	a.deposits[txID] = &deposit{amount: amt, state: DepositValid}
	a.available += int64(amt)

	return nil
}

func (a *Account) Withdraw(amt amount.Amount) error {
	if a.locked {
		return ErrAccountLocked
	}

	if amt > amount.MaxAmount || a.available < int64(amt) {
		return fmt.Errorf("withdraw %s from %s: %w", amt, amount.FormatSigned(a.available), ErrInsufficientFunds)
	}

	a.available -= int64(amt)

	return nil
}

// StartDispute moves the deposit's amount from available to held.
func (a *Account) StartDispute(txID uint32) error {
	d, next, err := a.prepare(txID, eventDispute)
	if err != nil {
		return err
	}

	if a.available < math.MinInt64+int64(d.amount) {
		return fmt.Errorf("dispute tx %d: %w", txID, ErrBalanceOverflow)
	}

	d.state = next
	a.available -= int64(d.amount)
	a.held += uint64(d.amount)

	return nil
}

// ResolveDispute moves the deposit's amount from held back to available.
func (a *Account) ResolveDispute(txID uint32) error {
	d, next, err := a.prepare(txID, eventResolve)
	if err != nil {
		return err
	}

	d.state = next
	a.available += int64(d.amount)
	a.held -= uint64(d.amount)

	return nil
}

// Chargeback removes the deposit's amount from held and locks the account.
func (a *Account) Chargeback(txID uint32) error {
	d, next, err := a.prepare(txID, eventChargeback)
	if err != nil {
		return err
	}

	d.state = next
	a.held -= uint64(d.amount)
	a.locked = true

	return nil
}

// prepare looks up txID and checks that ev is allowed from its current state.
// It does not mutate anything.
func (a *Account) prepare(txID uint32, ev disputeEvent) (*deposit, DepositState, error) {
	d, ok := a.deposits[txID]
	if !ok {
		return nil, 0, fmt.Errorf("%s tx %d: %w", ev, txID, ErrDepositNotFound)
	}

	next, ok := d.state.transition(ev)
	if !ok {
		return nil, 0, fmt.Errorf("%s tx %d in state %s: %w", ev, txID, d.state, ErrInvalidDepositState)
	}

	return d, next, nil
}
