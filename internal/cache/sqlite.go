package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deepblue-labs/datachat/internal/envelope"
)

// SQLite is a Store backed by a local SQLite database, so CLI invocations
// share cached analyses across processes. Same TTL semantics as Memory.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration

	now func() time.Time // test hook
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	key        TEXT PRIMARY KEY,
	result     BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// NewSQLite opens (and if needed initializes) the cache database at path.
func NewSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLite) Get(key string) (*envelope.Envelope, bool) {
	var (
		blob    []byte
		created int64
	)
	err := s.db.QueryRow(
		"SELECT result, created_at FROM analysis_cache WHERE key = ?", key,
	).Scan(&blob, &created)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache read failed", "error", err)
		return nil, false
	}

	if s.now().Sub(time.Unix(created, 0)) >= s.ttl {
		if _, err := s.db.Exec("DELETE FROM analysis_cache WHERE key = ?", key); err != nil {
			slog.Warn("expired cache entry cleanup failed", "error", err)
		}
		return nil, false
	}

	var env envelope.Envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		slog.Warn("cache entry undecodable, dropping", "error", err)
		return nil, false
	}
	return &env, true
}

func (s *SQLite) Put(key string, result *envelope.Envelope) {
	blob, err := json.Marshal(result)
	if err != nil {
		slog.Warn("cache entry marshal failed", "error", err)
		return
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO analysis_cache (key, result, created_at) VALUES (?, ?, ?)",
		key, blob, s.now().Unix(),
	)
	if err != nil {
		slog.Warn("cache write failed", "error", err)
	}
}

func (s *SQLite) InvalidateAll() error {
	_, err := s.db.Exec("DELETE FROM analysis_cache")
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }
