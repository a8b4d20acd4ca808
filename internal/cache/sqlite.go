package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the persistent Store backend. Entries survive restarts,
// which keeps the first request after startup from hitting the plan service
// when a fresh enough entry is already on disk.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates a SQLite cache database at the given path.
// now may be nil, in which case time.Now is used.
func NewSQLiteStore(dbPath string, now func() time.Time) (*SQLiteStore, error) {
	if now == nil {
		now = time.Now
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	s := &SQLiteStore{db: db, now: now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		key         TEXT PRIMARY KEY,
		category    TEXT NOT NULL,
		captured_at INTEGER NOT NULL,
		payload     BLOB NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(key string, category Category, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO entries (key, category, captured_at, payload)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   category = excluded.category,
		   captured_at = excluded.captured_at,
		   payload = excluded.payload`,
		key, string(category), s.now().UnixNano(), payload,
	)
	if err != nil {
		return fmt.Errorf("cache save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadFresh(key string) ([]byte, error) {
	var category string
	var capturedAt int64
	var payload []byte
	err := s.db.QueryRow(
		`SELECT category, captured_at, payload FROM entries WHERE key = ?`, key,
	).Scan(&category, &capturedAt, &payload)
	if err != nil {
		// Absent row and broken row alike read as a miss.
		return nil, ErrMiss
	}
	if s.now().Sub(time.Unix(0, capturedAt)) > TTL(Category(category)) {
		return nil, ErrMiss
	}
	return payload, nil
}

func (s *SQLiteStore) LoadForce(key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM entries WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		return nil, ErrMiss
	}
	return payload, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
