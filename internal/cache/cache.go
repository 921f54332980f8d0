// Package cache implements the Cache Manager (spec.md §4.5): a per-file,
// content-keyed disk store of analysis artifacts so a subsequent run can
// skip re-parsing and re-resolving a file that has not changed.
//
// Storage is redesigned from the teacher's in-process sync.Map
// (internal/cache/metrics_cache.go), which does not survive process
// restarts and so cannot satisfy this component's cross-run persistence
// requirement; the TTL-via-timestamp-compare and Stats()/health-status
// style are kept.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/tscallgraph/internal/debug"
	"github.com/standardbeagle/tscallgraph/pkg/pathutil"
)

// DefaultMaxAge is the spec-mandated default entry lifetime.
const DefaultMaxAge = 7 * 24 * time.Hour

// Entry is the on-disk shape of one cached file's analysis payload.
type Entry struct {
	FileHash  string          `json:"fileHash"`
	Timestamp int64           `json:"timestamp"` // ms since epoch
	Analysis  json.RawMessage `json:"analysis"`
}

// Manager is a disk-based per-file cache rooted at Dir. All operations are
// fail-soft: a corrupt, unreadable, or locked entry is treated as a miss,
// never as an error the caller must handle. Correctness always comes from
// re-analysis, never from the cache.
type Manager struct {
	dir    string
	maxAge time.Duration

	hits      int64
	misses    int64
	evictions int64
}

// New returns a Manager rooted at dir with the given max entry age. dir is
// created lazily on first Set.
func New(dir string, maxAge time.Duration) *Manager {
	return &Manager{dir: dir, maxAge: maxAge}
}

func (m *Manager) entryPath(normalized string) string {
	sum := md5.Sum([]byte(normalized))
	return filepath.Join(m.dir, hex.EncodeToString(sum[:])+".json")
}

func contentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached analysis payload for path, or a miss if absent,
// expired, or the file's content has changed since the entry was written.
func (m *Manager) Get(path string) (json.RawMessage, bool) {
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}

	raw, err := os.ReadFile(m.entryPath(normalized))
	if err != nil {
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		debug.Trace("cache: corrupt entry for %s: %v", path, err)
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}

	age := time.Since(time.UnixMilli(entry.Timestamp))
	if age > m.maxAge {
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}

	current, err := os.ReadFile(path)
	if err != nil || contentHash(current) != entry.FileHash {
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&m.hits, 1)
	return entry.Analysis, true
}

// Set overwrites the cached entry for path with payload. Write failures are
// logged via internal/debug and swallowed, never surfaced: spec.md §4.5
// requires set to be best-effort.
func (m *Manager) Set(path string, payload json.RawMessage) {
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		debug.Trace("cache: set skipped, cannot normalize %s: %v", path, err)
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		debug.Trace("cache: set skipped, cannot read %s: %v", path, err)
		return
	}
	entry := Entry{
		FileHash:  contentHash(content),
		Timestamp: time.Now().UnixMilli(),
		Analysis:  payload,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		debug.Trace("cache: set skipped, cannot marshal entry for %s: %v", path, err)
		return
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		debug.Trace("cache: set skipped, cannot create cache dir: %v", err)
		return
	}
	if err := os.WriteFile(m.entryPath(normalized), raw, 0o644); err != nil {
		debug.Trace("cache: set failed for %s: %v", path, err)
	}
}

// Invalidate deletes the entry for path, ignoring absence.
func (m *Manager) Invalidate(path string) {
	normalized, err := pathutil.Normalize(path)
	if err != nil {
		return
	}
	if err := os.Remove(m.entryPath(normalized)); err != nil && !os.IsNotExist(err) {
		debug.Trace("cache: invalidate failed for %s: %v", path, err)
	}
	atomic.AddInt64(&m.evictions, 1)
}

// Clear empties the cache directory entirely.
func (m *Manager) Clear() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(m.dir, e.Name())); err != nil {
			debug.Trace("cache: clear failed to remove %s: %v", e.Name(), err)
		}
	}
	return nil
}

// Stats is the snapshot Stats() returns: counts, aggregate size, and the
// oldest surviving entry's timestamp.
type Stats struct {
	Hits            int64
	Misses          int64
	Evictions       int64
	EntryCount      int
	TotalBytes      int64
	OldestTimestamp time.Time
	Status          string
}

// Stats reports cache-wide counters and a coarse health tier, mirroring the
// teacher's getHealthStatus bucketing.
func (m *Manager) Stats() Stats {
	entries, err := os.ReadDir(m.dir)
	s := Stats{
		Hits:      atomic.LoadInt64(&m.hits),
		Misses:    atomic.LoadInt64(&m.misses),
		Evictions: atomic.LoadInt64(&m.evictions),
	}
	if err != nil {
		s.Status = healthStatus(s.Hits, s.Misses)
		return s
	}
	var oldest time.Time
	for _, e := range entries {
		info, statErr := e.Info()
		if statErr != nil {
			continue
		}
		s.EntryCount++
		s.TotalBytes += info.Size()
		if oldest.IsZero() || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}
	s.OldestTimestamp = oldest
	s.Status = healthStatus(s.Hits, s.Misses)
	return s
}

func healthStatus(hits, misses int64) string {
	total := hits + misses
	if total == 0 {
		return "unknown"
	}
	hitRate := float64(hits) / float64(total)
	switch {
	case hitRate >= 0.95:
		return "excellent"
	case hitRate >= 0.85:
		return "good"
	case hitRate >= 0.70:
		return "fair"
	default:
		return "poor"
	}
}

// PruneExpired removes every entry older than maxAge and every entry that
// cannot be parsed as a valid cache Entry.
func (m *Manager) PruneExpired() (removed int, err error) {
	entries, readErr := os.ReadDir(m.dir)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return 0, nil
		}
		return 0, readErr
	}
	for _, e := range entries {
		full := filepath.Join(m.dir, e.Name())
		raw, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			_ = os.Remove(full)
			removed++
			continue
		}
		if time.Since(time.UnixMilli(entry.Timestamp)) > m.maxAge {
			_ = os.Remove(full)
			removed++
		}
	}
	return removed, nil
}
