package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/zappabad/tradedesk/internal/trade"
)

var ErrNotTerminal = errors.New("order is not terminal")

// Store is the order-history journal. Only terminal orders are recorded.
type Store struct {
	db *sql.DB
}

// Open opens the journal at path, creating it if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS orders (
  client_id TEXT PRIMARY KEY,
  id TEXT NOT NULL,
  side TEXT NOT NULL,
  asset TEXT NOT NULL,
  mode TEXT NOT NULL,
  requested_amount TEXT NOT NULL,
  filled_amount TEXT NOT NULL,
  price TEXT NOT NULL,
  total_value TEXT NOT NULL,
  platform_fee TEXT NOT NULL,
  status TEXT NOT NULL,
  simulated INTEGER NOT NULL DEFAULT 0,
  failure_reason TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  completed_at INTEGER
);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate history: %w", err)
		}
	}
	return nil
}

// Record upserts a terminal order keyed by its client id.
func (s *Store) Record(ctx context.Context, o trade.Order) error {
	if !o.Status.IsTerminal() {
		return ErrNotTerminal
	}

	var completed sql.NullInt64
	if o.CompletedAt != nil {
		completed = sql.NullInt64{Int64: o.CompletedAt.UnixMilli(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO orders (client_id, id, side, asset, mode, requested_amount, filled_amount, price,
  total_value, platform_fee, status, simulated, failure_reason, created_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(client_id) DO UPDATE SET
  id=excluded.id, status=excluded.status, filled_amount=excluded.filled_amount, price=excluded.price,
  total_value=excluded.total_value, platform_fee=excluded.platform_fee, simulated=excluded.simulated,
  failure_reason=excluded.failure_reason, completed_at=excluded.completed_at;`,
		o.ClientID, o.ID, o.Side.String(), o.Asset, o.Mode.String(),
		o.RequestedAmount.String(), o.FilledAmount.String(), o.Price.String(),
		o.TotalValue.String(), o.PlatformFee.String(), o.Status.String(),
		o.Simulated, o.FailureReason, o.CreatedAt.UnixMilli(), completed,
	)
	if err != nil {
		return fmt.Errorf("record order %s: %w", o.ClientID, err)
	}
	return nil
}

// Recent returns up to n orders, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]trade.Order, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT client_id, id, side, asset, mode, requested_amount, filled_amount, price,
  total_value, platform_fee, status, simulated, failure_reason, created_at, completed_at
FROM orders ORDER BY created_at DESC, rowid DESC LIMIT ?;`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []trade.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(rows *sql.Rows) (trade.Order, error) {
	var (
		o                                    trade.Order
		side, mode, status                   string
		requested, filled, price, total, fee string
		simulated                            bool
		created                              int64
		completed                            sql.NullInt64
	)
	err := rows.Scan(&o.ClientID, &o.ID, &side, &o.Asset, &mode, &requested, &filled, &price,
		&total, &fee, &status, &simulated, &o.FailureReason, &created, &completed)
	if err != nil {
		return trade.Order{}, err
	}

	if err := o.Side.UnmarshalText([]byte(side)); err != nil {
		return trade.Order{}, err
	}
	if err := o.Mode.UnmarshalText([]byte(mode)); err != nil {
		return trade.Order{}, err
	}
	if err := o.Status.UnmarshalText([]byte(status)); err != nil {
		return trade.Order{}, err
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&o.RequestedAmount, requested},
		{&o.FilledAmount, filled},
		{&o.Price, price},
		{&o.TotalValue, total},
		{&o.PlatformFee, fee},
	} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return trade.Order{}, fmt.Errorf("decode amount %q: %w", f.src, err)
		}
		*f.dst = d
	}

	o.Simulated = simulated
	o.CreatedAt = time.UnixMilli(created).UTC()
	if completed.Valid {
		t := time.UnixMilli(completed.Int64).UTC()
		o.CompletedAt = &t
	}
	return o, nil
}
