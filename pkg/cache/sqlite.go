package cache

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/helioquant/helios/pkg/common"
	"github.com/helioquant/helios/pkg/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS strategy_state (
	strategy_id TEXT NOT NULL,
	key         TEXT NOT NULL,
	value       TEXT NOT NULL,
	PRIMARY KEY (strategy_id, key)
);
CREATE TABLE IF NOT EXISTS position_records (
	position_id TEXT NOT NULL,
	key         TEXT NOT NULL,
	value       TEXT NOT NULL,
	PRIMARY KEY (position_id, key)
);`

// SQLite is a durable Cache. Session-scoped queries (orders, positions,
// accounts) are served from memory; strategy state and position records are
// written through to the database so they survive the session.
type SQLite struct {
	*Memory
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{Memory: NewMemory(), db: db}, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

func (c *SQLite) UpsertPosition(position *ledger.Position) {
	c.Memory.UpsertPosition(position)

	for key, value := range position.ToRecord() {
		// Best effort write-through; the in-memory view stays authoritative
		// for the running session.
		_, _ = c.db.Exec(`
			INSERT INTO position_records (position_id, key, value) VALUES (?, ?, ?)
			ON CONFLICT (position_id, key) DO UPDATE SET value = excluded.value`,
			position.ID.String(), key, value)
	}
}

func (c *SQLite) UpdateStrategy(id common.StrategyID, state StrategyState) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM strategy_state WHERE strategy_id = ?`, id.String()); err != nil {
		return err
	}
	for key, value := range state {
		if _, err := tx.Exec(`
			INSERT INTO strategy_state (strategy_id, key, value) VALUES (?, ?, ?)`,
			id.String(), key, value); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return c.Memory.UpdateStrategy(id, state)
}

func (c *SQLite) LoadStrategy(id common.StrategyID) (StrategyState, error) {
	rows, err := c.db.Query(`SELECT key, value FROM strategy_state WHERE strategy_id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	state := make(StrategyState)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		state[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(state) == 0 {
		return nil, ErrStrategyStateNotFound
	}
	return state, nil
}

// LoadPositionRecord restores a persisted position record by id, for
// historical query after the in-memory session is gone.
func (c *SQLite) LoadPositionRecord(id common.PositionID) (ledger.Record, error) {
	rows, err := c.db.Query(`SELECT key, value FROM position_records WHERE position_id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	rec := make(ledger.Record)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		rec[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("no record for position %s", id)
	}
	return rec, nil
}
