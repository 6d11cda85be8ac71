package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/franco-bianco/solanatrades-go/trades"
)

// CSV appends trades to one file per day, <dir>/<date>.csv. Blocks of the
// same day share a file, so writes are serialized.
type CSV struct {
	dir string
	mu  sync.Mutex
}

func NewCSV(dir string) *CSV {
	return &CSV{dir: dir}
}

func (c *CSV) Write(_ context.Context, batch trades.Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", c.dir, err)
	}
	path := filepath.Join(c.dir, batch.Date+".csv")

	info, err := os.Stat(path)
	writeHeader := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Columns); err != nil {
			return err
		}
	}
	for _, row := range newRows(batch) {
		if err := w.Write(row.record()); err != nil {
			return fmt.Errorf("write trade %s: %w", row.Signature, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func (c *CSV) Close() error {
	return nil
}

// record renders r in Columns order.
func (r Row) record() []string {
	return []string{
		r.BlockDate,
		strconv.FormatInt(r.BlockTime, 10),
		strconv.FormatInt(r.BlockSlot, 10),
		r.Signature,
		r.TxID,
		r.Signer,
		r.PoolAddress,
		r.BaseMint,
		r.QuoteMint,
		r.BaseVault,
		r.QuoteVault,
		strconv.FormatFloat(r.BaseAmount, 'f', -1, 64),
		strconv.FormatFloat(r.QuoteAmount, 'f', -1, 64),
		strconv.FormatBool(r.IsInnerInstruction),
		strconv.FormatInt(int64(r.InstructionIndex), 10),
		r.InstructionType,
		strconv.FormatInt(int64(r.InnerInstructionIndex), 10),
		r.OuterProgram,
		r.InnerProgram,
		strconv.FormatInt(r.TxnFeeLamports, 10),
		strconv.FormatInt(r.SignerLamportsChange, 10),
	}
}
