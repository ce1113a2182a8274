// Package store persists extracted transactions in a SQLite table keyed by
// confirmation number. Inserting a duplicate confirmation number is a
// silent no-op, which is what makes ingestion idempotent across overlapping
// runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"steam-ledger/internal/logging"
	"steam-ledger/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS steam_trades (
	name TEXT,
	amount INTEGER,
	date TIMESTAMP,
	confirmation_number TEXT UNIQUE
)`

// Store is a SQLite-backed transaction ledger.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if necessary) the database at path. Parent
// directories are created as needed. ":memory:" is accepted for tests.
func Open(path string, logger logging.Logger) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_loc=UTC")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	return &Store{db: db, logger: logger}, nil
}

// EnsureSchema creates the trades table if it is absent; otherwise it is a
// no-op.
func (s *Store) EnsureSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// InsertIgnore bulk-inserts transactions, skipping rows whose confirmation
// number already exists. The call is atomic: all rows of one call commit
// together, with duplicates independently ignored rather than failing the
// call. Returns how many rows were actually inserted.
func (s *Store) InsertIgnore(transactions []models.Transaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO steam_trades
		(name, amount, date, confirmation_number)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, t := range transactions {
		result, err := stmt.Exec(t.Title, t.Amount, t.Date.UTC(), t.Number)
		if err != nil {
			return 0, fmt.Errorf("insert transaction %s: %w", t.Number, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert transaction %s: %w", t.Number, err)
		}
		inserted += rows
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

// MaxDate returns the latest stored transaction date, or ok=false when the
// table is empty. This is the incremental-scan watermark.
func (s *Store) MaxDate() (time.Time, bool, error) {
	var date time.Time
	err := s.db.QueryRow(`SELECT date FROM steam_trades ORDER BY date DESC LIMIT 1`).Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query max date: %w", err)
	}
	return date, true, nil
}

// All returns every stored transaction ordered by date then confirmation
// number. Used by the export command.
func (s *Store) All() ([]models.Transaction, error) {
	rows, err := s.db.Query(`SELECT name, amount, date, confirmation_number
		FROM steam_trades ORDER BY date, confirmation_number`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.Title, &t.Amount, &t.Date, &t.Number); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
