package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fastprodman/txledger/internal/services/ledger"
)

var snapshotHeader = []string{"client", "available", "held", "total", "locked"}

// WriteSnapshot writes the header and one line per row.
func WriteSnapshot(w io.Writer, rows []ledger.Row) error {
	cw := csv.NewWriter(w)

	err := cw.Write(snapshotHeader)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(snapshotHeader))

	for _, row := range rows {
		record[0] = strconv.FormatUint(uint64(row.ClientID), 10)
		record[1] = row.AvailableText()
		record[2] = row.HeldText()
		record[3] = row.TotalText()
		record[4] = strconv.FormatBool(row.Locked)

		err = cw.Write(record)
		if err != nil {
			return fmt.Errorf("write client %d: %w", row.ClientID, err)
		}
	}

	cw.Flush()

	err = cw.Error()
	if err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	return nil
}
