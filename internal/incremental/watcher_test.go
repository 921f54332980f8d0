package incremental

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/cache"
)

func TestWatcherEmitsChangeOnWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.ts")
	require.NoError(t, os.WriteFile(path, []byte("function main() {}"), 0o644))

	cacheMgr := cache.New(filepath.Join(root, ".cache"), cache.DefaultMaxAge)
	cacheMgr.Set(path, []byte(`{}`))

	w, err := New(cacheMgr, 50*time.Millisecond, ".ts")
	require.NoError(t, err)
	require.NoError(t, w.Start(root))
	defer w.Stop()

	var mu sync.Mutex
	var received []Change
	done := make(chan struct{})
	w.OnFilesChanged = func(changes []Change) {
		mu.Lock()
		received = append(received, changes...)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	}

	require.NoError(t, os.WriteFile(path, []byte("function main() { return 1; }"), 0o644))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file-change notification")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, received)
	require.Equal(t, path, received[0].Path)

	_, ok := cacheMgr.Get(path)
	require.False(t, ok)
}

func TestWatcherIgnoresUnwatchedExtensions(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "readme.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	w, err := New(nil, 50*time.Millisecond, ".ts")
	require.NoError(t, err)
	require.NoError(t, w.Start(root))
	defer w.Stop()

	called := false
	w.OnFilesChanged = func(changes []Change) { called = true }

	require.NoError(t, os.WriteFile(path, []byte("hello again"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.False(t, called)
}
