// Package settings provides SQLite-backed persistence for per-category
// filter settings. Reads return whole-value snapshots so concurrent edits
// never produce torn reads in the pipeline.
package settings

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/models"
)

// Store wraps a SQLite database holding one row per category.
type Store struct {
	db *sql.DB
}

// Open opens or creates the settings database at dbPath.
// An empty dbPath defaults to $TMPDIR/cryptohawk/settings.db.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "cryptohawk", "settings.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS filter_settings (
			category   TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	return err
}

// Get returns the settings snapshot for a category. Unconfigured categories
// and read errors yield the safe inactive default; the pipeline never sees
// an error from here.
func (s *Store) Get(cat models.Category) models.FilterSettings {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM filter_settings WHERE category = ?`, string(cat)).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.FilterSettings{}
	}
	if err != nil {
		logger.Warn("settings: failed to read category %q: %v", cat, err)
		return models.FilterSettings{}
	}
	var st models.FilterSettings
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		logger.Warn("settings: corrupt payload for category %q: %v", cat, err)
		return models.FilterSettings{}
	}
	return st
}

// Put persists the settings for a category, replacing any previous value.
func (s *Store) Put(cat models.Category, st models.FilterSettings) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO filter_settings (category, payload, updated_at)
		VALUES (?,?,?)`,
		string(cat), string(payload), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// All returns every configured category's settings.
func (s *Store) All() (map[models.Category]models.FilterSettings, error) {
	rows, err := s.db.Query(`SELECT category, payload FROM filter_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Category]models.FilterSettings)
	for rows.Next() {
		var cat, payload string
		if err := rows.Scan(&cat, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}
		var st models.FilterSettings
		if err := json.Unmarshal([]byte(payload), &st); err != nil {
			return nil, fmt.Errorf("corrupt payload for category %q: %w", cat, err)
		}
		out[models.Category(cat)] = st
	}
	return out, rows.Err()
}
