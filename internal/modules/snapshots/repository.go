// Package snapshots persists completed valuation runs so past analyses can be
// retrieved and compared without refetching statements.
package snapshots

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/halessi/dcf/internal/database"
	"github.com/halessi/dcf/internal/domain"
)

// Run modes stored in the repository.
const (
	ModeSingle      = "single"
	ModeHistorical  = "historical"
	ModeSensitivity = "sensitivity"
	ModeEnhanced    = "enhanced"
	ModeWatchlist   = "watchlist"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS valuation_runs (
		id         TEXT PRIMARY KEY,
		ticker     TEXT NOT NULL,
		mode       TEXT NOT NULL,
		params     TEXT NOT NULL,
		payload    BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_ticker_created ON valuation_runs(ticker, created_at DESC)`,
}

// Payload is the msgpack-encoded result body of a stored run. Exactly one
// field is populated, matching the run mode.
type Payload struct {
	Historical  domain.HistoricalSeries  `msgpack:"historical,omitempty"`
	Sensitivity domain.SensitivitySeries `msgpack:"sensitivity,omitempty"`
}

// Run is one stored valuation run.
type Run struct {
	ID        string          `json:"id"`
	Ticker    string          `json:"ticker"`
	Mode      string          `json:"mode"`
	Params    json.RawMessage `json:"params"`
	Payload   Payload         `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Repository stores valuation runs in SQLite. Result payloads are msgpack
// blobs; parameters stay JSON so they remain queryable by eye.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new snapshots repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate applies the run-store schema. The statements run in a single
// transaction so a partial migration never persists.
func (r *Repository) Migrate() error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, stmt := range migrations {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to apply snapshots schema: %w", err)
			}
		}
		return nil
	})
}

// Save stores a run and returns its generated ID.
func (r *Repository) Save(ticker, mode string, params interface{}, payload Payload) (string, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run params: %w", err)
	}

	blob, err := msgpack.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode run payload: %w", err)
	}

	id := uuid.New().String()
	_, err = r.db.Exec(
		"INSERT INTO valuation_runs (id, ticker, mode, params, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, ticker, mode, string(paramsJSON), blob, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	return id, nil
}

// Get retrieves one run by ID. Returns (nil, nil) when it does not exist.
func (r *Repository) Get(id string) (*Run, error) {
	row := r.db.QueryRow(
		"SELECT id, ticker, mode, params, payload, created_at FROM valuation_runs WHERE id = ?",
		id,
	)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return run, nil
}

// List returns the most recent runs, optionally filtered by ticker.
func (r *Repository) List(ticker string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT id, ticker, mode, params, payload, created_at FROM valuation_runs"
	args := []interface{}{}
	if ticker != "" {
		query += " WHERE ticker = ?"
		args = append(args, ticker)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// DeleteOlderThan removes runs created before the cutoff and reports how many
// were deleted. Used by the retention job.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM valuation_runs WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var paramsJSON string
	var blob []byte
	var createdAt int64

	if err := row.Scan(&run.ID, &run.Ticker, &run.Mode, &paramsJSON, &blob, &createdAt); err != nil {
		return nil, err
	}

	if err := msgpack.Unmarshal(blob, &run.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode run payload: %w", err)
	}

	run.Params = json.RawMessage(paramsJSON)
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &run, nil
}
