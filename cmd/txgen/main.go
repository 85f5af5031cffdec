// Command txgen writes a synthetic transactions CSV for load testing
// txengine.
//
// Every client first receives its deposits, then its withdrawals. The first
// -disputes deposits of each client then go through dispute, resolve,
// dispute and chargeback waves, so every client with disputes ends locked.
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/fastprodman/txledger/internal/amount"
)

type params struct {
	Clients     uint
	Deposits    uint
	Withdrawals uint
	Disputes    uint
	Amount      amount.Amount
}

var errParams = errors.New("invalid parameters")

func (p params) validate() error {
	if p.Clients > math.MaxUint16+1 {
		return fmt.Errorf("%w: at most %d clients", errParams, math.MaxUint16+1)
	}

	if p.Disputes > p.Deposits {
		return fmt.Errorf("%w: disputes (%d) exceed deposits (%d)", errParams, p.Disputes, p.Deposits)
	}

	if p.Withdrawals+p.Disputes > p.Deposits {
		return fmt.Errorf("%w: withdrawals plus disputes exceed deposits", errParams)
	}

	if uint64(p.Clients)*uint64(p.Deposits+p.Withdrawals) > math.MaxUint32+1 {
		return fmt.Errorf("%w: transaction ids would overflow", errParams)
	}

	return nil
}

func main() {
	p := params{Amount: 100 * amount.Scale}

	flag.UintVar(&p.Clients, "clients", 5_000, "number of clients")
	flag.UintVar(&p.Deposits, "deposits", 8_000, "deposits per client")
	flag.UintVar(&p.Withdrawals, "withdrawals", 2_000, "withdrawals per client")
	flag.UintVar(&p.Disputes, "disputes", 300, "disputed deposits per client")
	flag.TextVar(&p.Amount, "amount", p.Amount, "amount of every deposit and withdrawal")
	output := flag.String("o", "transactions.csv", "output file, - for stdout")
	flag.Parse()

	err := writeFile(*output, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "txgen: %v\n", err)
		os.Exit(1)
	}
}

func writeFile(path string, p params) (retErr error) {
	if path == "-" {
		return generate(os.Stdout, p)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	defer func() {
		cerr := f.Close()
		if cerr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("close output: %w", cerr))
		}
	}()

	return generate(f, p)
}

func generate(w io.Writer, p params) error {
	err := p.validate()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	rec := make([]string, 4)
	write := func(kind string, client uint, tx uint32, amt string) error {
		rec[0], rec[1], rec[2], rec[3] = kind, strconv.FormatUint(uint64(client), 10), strconv.FormatUint(uint64(tx), 10), amt
		return cw.Write(rec)
	}

	err = cw.Write([]string{"type", "client", "tx", "amount"})
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	amt := amount.Format(p.Amount)

	var next uint32

	// Deposit ids are contiguous per client: client c owns
	// [c*Deposits, (c+1)*Deposits).
	for c := range p.Clients {
		for range p.Deposits {
			err = write("deposit", c, next, amt)
			if err != nil {
				return fmt.Errorf("write deposit: %w", err)
			}

			next++
		}
	}

	for c := range p.Clients {
		for range p.Withdrawals {
			err = write("withdrawal", c, next, amt)
			if err != nil {
				return fmt.Errorf("write withdrawal: %w", err)
			}

			next++
		}
	}

	for _, kind := range []string{"dispute", "resolve", "dispute", "chargeback"} {
		for c := range p.Clients {
			for d := range p.Disputes {
				tx := uint32(c*p.Deposits + d)
				err = write(kind, c, tx, "")
				if err != nil {
					return fmt.Errorf("write %s: %w", kind, err)
				}
			}
		}
	}

	cw.Flush()

	err = cw.Error()
	if err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return bw.Flush()
}
