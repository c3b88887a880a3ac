package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepblue-labs/datachat/internal/envelope"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLite(t)

	env := envelope.Parse(`{"bar":{"categories":["East","West"],"data":[100,150]}}`)
	s.Put("k", env)

	got, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, envelope.KindBar, got.Kind)
	assert.Equal(t, []any{"East", "West"}, got.Bar.Categories)
}

func TestSQLiteMiss(t *testing.T) {
	s := newTestSQLite(t)
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestSQLiteExpiry(t *testing.T) {
	s := newTestSQLite(t)
	base := time.Now()
	s.now = func() time.Time { return base }
	s.Put("k", envelope.NewAnswer("cached"))

	s.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, ok := s.Get("k")
	assert.True(t, ok)

	s.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestSQLiteFallbackRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	s.Put("k", envelope.NewFallback("raw model text"))

	got, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, envelope.KindFallback, got.Kind)
	assert.Equal(t, "raw model text", got.Fallback.Raw)
}

func TestSQLiteInvalidateAll(t *testing.T) {
	s := newTestSQLite(t)
	s.Put("a", envelope.NewAnswer("1"))
	s.Put("b", envelope.NewAnswer("2"))

	require.NoError(t, s.InvalidateAll())
	_, ok := s.Get("a")
	assert.False(t, ok)
	_, ok = s.Get("b")
	assert.False(t, ok)
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s1, err := NewSQLite(path, time.Hour)
	require.NoError(t, err)
	s1.Put("k", envelope.NewAnswer("persisted"))
	require.NoError(t, s1.Close())

	s2, err := NewSQLite(path, time.Hour)
	require.NoError(t, err)
	defer s2.Close()

	got, ok := s2.Get("k")
	require.True(t, ok)
	assert.Equal(t, "persisted", got.Answer.Text)
}
