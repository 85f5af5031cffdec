package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fastprodman/txledger/internal/amount"
)

type Kind uint8

const (
	KindDeposit Kind = iota + 1
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// carriesAmount reports whether records of this kind must have an amount.
func (k Kind) carriesAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// ParseKind maps a record type name to a Kind. Matching ignores case and
// surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return KindDeposit, nil
	case "withdrawal":
		return KindWithdrawal, nil
	case "dispute":
		return KindDispute, nil
	case "resolve":
		return KindResolve, nil
	case "chargeback":
		return KindChargeback, nil
	default:
		return 0, fmt.Errorf("%w: unknown transaction type %q", ErrParse, s)
	}
}

// Transaction is one validated input record. Amount is zero for dispute,
// resolve and chargeback records.
type Transaction struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32
	Amount   amount.Amount
}

func Deposit(clientID uint16, txID uint32, amt amount.Amount) Transaction {
	return Transaction{Kind: KindDeposit, ClientID: clientID, TxID: txID, Amount: amt}
}

func Withdrawal(clientID uint16, txID uint32, amt amount.Amount) Transaction {
	return Transaction{Kind: KindWithdrawal, ClientID: clientID, TxID: txID, Amount: amt}
}

func Dispute(clientID uint16, txID uint32) Transaction {
	return Transaction{Kind: KindDispute, ClientID: clientID, TxID: txID}
}

func Resolve(clientID uint16, txID uint32) Transaction {
	return Transaction{Kind: KindResolve, ClientID: clientID, TxID: txID}
}

func Chargeback(clientID uint16, txID uint32) Transaction {
	return Transaction{Kind: KindChargeback, ClientID: clientID, TxID: txID}
}

// RawTransaction holds the untyped fields of one input row.
// An empty Amount means the field was absent.
type RawTransaction struct {
	Type   string
	Client string
	Tx     string
	Amount string
}

// Normalize validates raw and converts it into a Transaction. Every field is
// trimmed first. Deposits and withdrawals require an amount, the other kinds
// must not carry one.
func (raw RawTransaction) Normalize() (Transaction, error) {
	kind, err := ParseKind(raw.Type)
	if err != nil {
		return Transaction{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(raw.Client), 10, 16)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: client %q: %w", ErrParse, raw.Client, err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(raw.Tx), 10, 32)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: tx %q: %w", ErrParse, raw.Tx, err)
	}

	t := Transaction{Kind: kind, ClientID: uint16(client), TxID: uint32(tx)}

	text := strings.TrimSpace(raw.Amount)

	switch {
	case kind.carriesAmount() && text == "":
		return Transaction{}, fmt.Errorf("%w: %s tx %d has no amount", ErrParse, kind, tx)
	case !kind.carriesAmount() && text != "":
		return Transaction{}, fmt.Errorf("%w: %s tx %d must not carry an amount", ErrParse, kind, tx)
	case text != "":
		t.Amount, err = amount.Parse(text)
		if err != nil {
			return Transaction{}, fmt.Errorf("%s tx %d: %w", kind, tx, err)
		}
	}

	return t, nil
}
