package sink

import (
	"context"
	"fmt"
	"os"

	"github.com/hamba/avro/v2/ocf"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solanatrades-go/trades"
)

// TradeSchema is the Avro schema of a stored trade.
const TradeSchema = `{
	"type": "record",
	"name": "TradeData",
	"fields": [
		{ "name": "block_date", "type": "string" },
		{ "name": "block_time", "type": "long" },
		{ "name": "block_slot", "type": "long" },
		{ "name": "signature", "type": "string" },
		{ "name": "tx_id", "type": "string" },
		{ "name": "signer", "type": "string" },
		{ "name": "pool_address", "type": "string" },
		{ "name": "base_mint", "type": "string" },
		{ "name": "quote_mint", "type": "string" },
		{ "name": "base_vault", "type": "string" },
		{ "name": "quote_vault", "type": "string" },
		{ "name": "base_amount", "type": "double" },
		{ "name": "quote_amount", "type": "double" },
		{ "name": "is_inner_instruction", "type": "boolean" },
		{ "name": "instruction_index", "type": "int" },
		{ "name": "instruction_type", "type": "string" },
		{ "name": "inner_instruction_index", "type": "int" },
		{ "name": "outer_program", "type": "string" },
		{ "name": "inner_program", "type": "string" },
		{ "name": "txn_fee_lamports", "type": "long" },
		{ "name": "signer_lamports_change", "type": "long" }
	]
}`

// Avro writes one object container file per slot under <dir>/<date>/.
// Every slot owns its own file, so concurrent writes need no locking.
type Avro struct {
	dir    string
	logger *logrus.Logger
}

func NewAvro(dir string, logger *logrus.Logger) *Avro {
	if logger == nil {
		logger = logrus.New()
	}
	return &Avro{dir: dir, logger: logger}
}

func (a *Avro) Write(_ context.Context, batch trades.Batch) error {
	path, err := slotPath(a.dir, batch, ".avro")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	enc, err := ocf.NewEncoder(TradeSchema, f)
	if err != nil {
		return fmt.Errorf("avro encoder: %w", err)
	}
	for _, row := range newRows(batch) {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encode trade %s: %w", row.Signature, err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	a.logger.WithFields(logrus.Fields{"slot": batch.Slot, "trades": len(batch.Trades), "path": path}).Debug("avro written")
	return f.Close()
}

func (a *Avro) Close() error {
	return nil
}
