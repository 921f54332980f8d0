package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/pkg/pathutil"
)

func TestGetMissesWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "cache"), DefaultMaxAge)

	src := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(src, []byte("function main() {}"), 0o644))

	_, ok := m.Get(src)
	require.False(t, ok)
}

func TestSetThenGetHits(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "cache"), DefaultMaxAge)

	src := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(src, []byte("function main() {}"), 0o644))

	payload, err := json.Marshal(map[string]string{"hello": "world"})
	require.NoError(t, err)
	m.Set(src, payload)

	got, ok := m.Get(src)
	require.True(t, ok)
	require.JSONEq(t, string(payload), string(got))
}

func TestGetMissesWhenContentChanges(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "cache"), DefaultMaxAge)

	src := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(src, []byte("function main() {}"), 0o644))
	m.Set(src, json.RawMessage(`{"a":1}`))

	require.NoError(t, os.WriteFile(src, []byte("function main() { return 1; }"), 0o644))

	_, ok := m.Get(src)
	require.False(t, ok)
}

func TestGetMissesWhenExpired(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "cache"), -time.Second)

	src := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(src, []byte("function main() {}"), 0o644))
	m.Set(src, json.RawMessage(`{"a":1}`))

	_, ok := m.Get(src)
	require.False(t, ok)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "cache"), DefaultMaxAge)

	src := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(src, []byte("function main() {}"), 0o644))
	m.Set(src, json.RawMessage(`{"a":1}`))

	m.Invalidate(src)
	_, ok := m.Get(src)
	require.False(t, ok)
}

func TestClearRemovesAllEntries(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "cache"), DefaultMaxAge)

	for i := 0; i < 3; i++ {
		src := filepath.Join(dir, string(rune('a'+i))+".ts")
		require.NoError(t, os.WriteFile(src, []byte("function f() {}"), 0o644))
		m.Set(src, json.RawMessage(`{}`))
	}

	require.NoError(t, m.Clear())
	stats := m.Stats()
	require.Equal(t, 0, stats.EntryCount)
}

func TestPruneExpiredRemovesOldEntriesOnly(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")

	fresh := New(cacheDir, DefaultMaxAge)
	freshSrc := filepath.Join(dir, "fresh.ts")
	require.NoError(t, os.WriteFile(freshSrc, []byte("function f() {}"), 0o644))
	fresh.Set(freshSrc, json.RawMessage(`{}`))

	staleSrc := filepath.Join(dir, "stale.ts")
	require.NoError(t, os.WriteFile(staleSrc, []byte("function g() {}"), 0o644))
	fresh.Set(staleSrc, json.RawMessage(`{}`))

	// Backdate the second entry past DefaultMaxAge so only it is expired.
	normalized, err := pathutil.Normalize(staleSrc)
	require.NoError(t, err)
	stalePath := fresh.entryPath(normalized)
	raw, err := os.ReadFile(stalePath)
	require.NoError(t, err)
	var entry Entry
	require.NoError(t, json.Unmarshal(raw, &entry))
	entry.Timestamp = time.Now().Add(-2 * DefaultMaxAge).UnixMilli()
	raw, err = json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(stalePath, raw, 0o644))

	removed, err := fresh.PruneExpired()
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, ok := fresh.Get(freshSrc)
	require.True(t, ok)
}

func TestStatsReportsHitsAndMisses(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "cache"), DefaultMaxAge)

	src := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(src, []byte("function main() {}"), 0o644))
	m.Set(src, json.RawMessage(`{}`))

	_, _ = m.Get(src)
	_, _ = m.Get(filepath.Join(dir, "missing.ts"))

	stats := m.Stats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
}
