// Package storage persists the trading journal: one row per cycle with
// the decision that was made, and one row per order placed or canceled.
// The journal is an audit trail, not state — the trader never reads it
// back to decide anything.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// Journal writes cycle and order records to a local SQLite database.
type Journal struct {
	db *sql.DB
}

// NewJournal opens (or creates) the journal database with WAL mode.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cycles (
			id TEXT PRIMARY KEY,
			ts INTEGER NOT NULL,
			mode TEXT NOT NULL,
			decision TEXT NOT NULL,
			sell_price TEXT,
			buy_price TEXT,
			coin_total TEXT NOT NULL,
			currency_total TEXT NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create cycles table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS order_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			action TEXT NOT NULL,
			order_id TEXT NOT NULL,
			side TEXT NOT NULL,
			price TEXT NOT NULL,
			amount TEXT NOT NULL,
			ok INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("create order_events table: %w", err)
	}

	return &Journal{db: db}, nil
}

// CycleRecord is one completed (or aborted) trading cycle.
type CycleRecord struct {
	ID            string // uuid, links order events to their cycle
	TsUnixMicro   int64
	Mode          string // scalp | sell_all | buy_all
	Decision      string
	SellPrice     string // empty when discovery found no price
	BuyPrice      string
	CoinTotal     string
	CurrencyTotal string
}

// OrderEvent is one place or cancel call issued during a cycle.
type OrderEvent struct {
	CycleID     string
	TsUnixMicro int64
	Action      string // "place" | "cancel"
	OrderID     string
	Side        string
	Price       string
	Amount      string
	OK          bool
}

// RecordCycle appends a cycle row.
func (j *Journal) RecordCycle(ctx context.Context, rec CycleRecord) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO cycles (id, ts, mode, decision, sell_price, buy_price, coin_total, currency_total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TsUnixMicro, rec.Mode, rec.Decision,
		rec.SellPrice, rec.BuyPrice, rec.CoinTotal, rec.CurrencyTotal,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// RecordOrderEvent appends an order event row.
func (j *Journal) RecordOrderEvent(ctx context.Context, ev OrderEvent) error {
	ok := 0
	if ev.OK {
		ok = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO order_events (cycle_id, ts, action, order_id, side, price, amount, ok)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.CycleID, ev.TsUnixMicro, ev.Action, ev.OrderID, ev.Side, ev.Price, ev.Amount, ok,
	)
	if err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

// LastCycles returns up to n most recent cycle rows, newest first.
func (j *Journal) LastCycles(ctx context.Context, n int) ([]CycleRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, ts, mode, decision, sell_price, buy_price, coin_total, currency_total
		 FROM cycles ORDER BY ts DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		if err := rows.Scan(&rec.ID, &rec.TsUnixMicro, &rec.Mode, &rec.Decision,
			&rec.SellPrice, &rec.BuyPrice, &rec.CoinTotal, &rec.CurrencyTotal); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CycleOrderEvents returns the order events of one cycle in issue order.
func (j *Journal) CycleOrderEvents(ctx context.Context, cycleID string) ([]OrderEvent, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT cycle_id, ts, action, order_id, side, price, amount, ok
		 FROM order_events WHERE cycle_id = ? ORDER BY seq ASC`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("query order events: %w", err)
	}
	defer rows.Close()

	var out []OrderEvent
	for rows.Next() {
		var ev OrderEvent
		var ok int
		if err := rows.Scan(&ev.CycleID, &ev.TsUnixMicro, &ev.Action, &ev.OrderID,
			&ev.Side, &ev.Price, &ev.Amount, &ok); err != nil {
			return nil, fmt.Errorf("scan order event: %w", err)
		}
		ev.OK = ok == 1
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
