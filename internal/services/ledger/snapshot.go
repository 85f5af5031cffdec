package ledger

import (
	"maps"
	"slices"

	"github.com/fastprodman/txledger/internal/amount"
)

// Row is the final state of one account.
type Row struct {
	ClientID  uint16
	Available int64
	Held      uint64
	Locked    bool
}

func (r Row) Total() int64 {
	return r.Available + int64(r.Held)
}

func (r Row) AvailableText() string { return amount.FormatSigned(r.Available) }
func (r Row) HeldText() string      { return amount.Format(amount.Amount(r.Held)) }
func (r Row) TotalText() string     { return amount.FormatSigned(r.Total()) }

// Snapshot returns one row per account ordered by client id.
func (e *Engine) Snapshot() []Row {
	rows := make([]Row, 0, len(e.accounts))

	for _, id := range slices.Sorted(maps.Keys(e.accounts)) {
		acc := e.accounts[id]
		rows = append(rows, Row{
			ClientID:  id,
			Available: acc.available,
			Held:      acc.held,
			Locked:    acc.locked,
		})
	}

	return rows
}
