package sink

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solanatrades-go/trades"
)

const createTradesTable = `
	CREATE TABLE IF NOT EXISTS trades (
		block_date String,
		block_time Int64,
		block_slot Int64,
		signature String,
		tx_id String,
		signer String,
		pool_address String,
		base_mint String,
		quote_mint String,
		base_vault String,
		quote_vault String,
		base_amount Float64,
		quote_amount Float64,
		is_inner_instruction Bool,
		instruction_index Int32,
		instruction_type String,
		inner_instruction_index Int32,
		outer_program String,
		inner_program String,
		txn_fee_lamports Int64,
		signer_lamports_change Int64
	) ENGINE = ReplacingMergeTree
	PARTITION BY block_date
	ORDER BY (block_slot, signature, instruction_index, inner_instruction_index, pool_address)
`

// ClickHouseConfig holds connection settings for the trades database.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouse inserts every batch into the trades table.
type ClickHouse struct {
	conn   driver.Conn
	logger *logrus.Logger
}

func NewClickHouse(ctx context.Context, cfg ClickHouseConfig, logger *logrus.Logger) (*ClickHouse, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.Database == "" {
		cfg.Database = "default"
	}
	if cfg.Username == "" {
		cfg.Username = "default"
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, createTradesTable); err != nil {
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}

	logger.WithField("addr", cfg.Addr).Info("connected to ClickHouse")
	return &ClickHouse{conn: conn, logger: logger}, nil
}

func (c *ClickHouse) Write(ctx context.Context, batch trades.Batch) error {
	b, err := c.conn.PrepareBatch(ctx, "INSERT INTO trades")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, row := range newRows(batch) {
		if err := b.AppendStruct(&row); err != nil {
			_ = b.Abort()
			return fmt.Errorf("append trade %s: %w", row.Signature, err)
		}
	}
	if err := b.Send(); err != nil {
		return fmt.Errorf("failed to insert slot %d: %w", batch.Slot, err)
	}
	return nil
}

func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
