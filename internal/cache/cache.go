// Package cache memoizes final analysis envelopes keyed on dataset identity
// plus query text. Entries are immutable snapshots with lazy TTL expiry;
// concurrent misses may race to write the same key and the last writer wins.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/deepblue-labs/datachat/internal/dataset"
	"github.com/deepblue-labs/datachat/internal/envelope"
)

// DefaultTTL is how long a cached analysis stays servable.
const DefaultTTL = time.Hour

// Entry is one cached analysis result.
type Entry struct {
	Key       string
	Result    *envelope.Envelope
	CreatedAt time.Time
}

// Store is the cache abstraction injected into the orchestrator.
type Store interface {
	// Get returns the cached envelope for key, treating expired entries
	// as absent.
	Get(key string) (*envelope.Envelope, bool)

	// Put stores the envelope under key with the current time.
	Put(key string, result *envelope.Envelope)

	// InvalidateAll clears every entry.
	InvalidateAll() error

	Close() error
}

// Key derives the cache key for a dataset/query pair. Two datasets with the
// same shape, ordered column names and dtypes hash identically regardless of
// cell values; any difference in those, or in the query bytes, changes the
// key.
func Key(t *dataset.Table, query string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%dx%d\n", t.NumRows(), t.NumCols())
	names := t.ColumnNames()
	for i, typ := range t.DTypes() {
		fmt.Fprintf(h, "%s:%s\n", names[i], typ)
	}
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}
