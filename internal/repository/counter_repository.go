package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// counterKey is the single row in the counters table holding the last
// ticket code issued system-wide.
const counterKey = "last_ticket_code"

// defaultCode seeds the counter on first use. The first code actually
// issued is its successor.
const defaultCode = "A000"

// CounterRepo persists the last-issued ticket code. The counter is the
// single serialization point for issuance: AdvanceTo is a
// compare-and-swap, so two callers extending from the same snapshot can
// never both succeed.
type CounterRepo struct{ DB *sql.DB }

func NewCounterRepo(db *sql.DB) *CounterRepo { return &CounterRepo{DB: db} }

// ReadLast returns the last ticket code issued. When the row does not
// exist yet it is created with the default value, which is then
// returned; a concurrent creation is harmless (INSERT IGNORE) and
// resolved by re-reading.
func (r *CounterRepo) ReadLast(ctx context.Context) (string, error) {
	var code string
	err := r.DB.QueryRowContext(ctx,
		"SELECT value FROM counters WHERE name=? LIMIT 1", counterKey).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO counters (name, value) VALUES (?,?)", counterKey, defaultCode); err != nil {
			return "", err
		}
		err = r.DB.QueryRowContext(ctx,
			"SELECT value FROM counters WHERE name=? LIMIT 1", counterKey).Scan(&code)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(code), nil
}

// AdvanceTo moves the counter from the observed snapshot to the next
// code. When another caller advanced the counter first the conditional
// update affects no rows and ErrConflict is returned; the caller must
// re-read and retry with a fresh snapshot.
func (r *CounterRepo) AdvanceTo(ctx context.Context, oldCode, newCode string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE counters SET value=? WHERE name=? AND value=?", newCode, counterKey, oldCode)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
