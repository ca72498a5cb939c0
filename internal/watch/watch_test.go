package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	reasons []string
	calls   chan string
}

func newRecorder() *recorder { return &recorder{calls: make(chan string, 16)} }

func (r *recorder) rebuild(_ context.Context, reason string) {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
	r.calls <- reason
}

func (r *recorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case reason := <-r.calls:
		return reason
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
		return ""
	}
}

func run(t *testing.T, opts Options, rebuild RebuildFunc) {
	t.Helper()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(opts, rebuild)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	run(t, Options{Dirs: []string{dir}, Debounce: 200 * time.Millisecond}, rec.rebuild)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.md"), []byte{byte('a' + i)}, 0o644))
	}
	require.Equal(t, ReasonChange, rec.wait(t))

	select {
	case <-rec.calls:
		t.Fatal("burst of writes caused more than one rebuild")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_NewSubdirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	run(t, Options{Dirs: []string{dir}, Debounce: 50 * time.Millisecond}, rec.rebuild)

	sub := filepath.Join(dir, "guides")
	require.NoError(t, os.Mkdir(sub, 0o755))
	rec.wait(t)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "setup.md"), []byte("x"), 0o644))
	require.Equal(t, ReasonChange, rec.wait(t))
}

func TestWatcher_WatchesSingleFile(t *testing.T) {
	dir := t.TempDir()
	sidebar := filepath.Join(dir, "sidebars.json")
	require.NoError(t, os.WriteFile(sidebar, []byte("{}"), 0o644))

	rec := newRecorder()
	run(t, Options{Files: []string{sidebar}, Debounce: 50 * time.Millisecond}, rec.rebuild)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(sidebar, []byte(`{"docs":[]}`), 0o644))
	require.Equal(t, ReasonChange, rec.wait(t))
}

func TestWatcher_Refresh(t *testing.T) {
	rec := newRecorder()
	run(t, Options{Refresh: 100 * time.Millisecond}, rec.rebuild)
	require.Equal(t, ReasonRefresh, rec.wait(t))
}

func TestWatcher_MissingDir(t *testing.T) {
	w, err := New(Options{Dirs: []string{filepath.Join(t.TempDir(), "nope")}}, func(context.Context, string) {})
	require.NoError(t, err)
	require.Error(t, w.Run(context.Background()))
}

func TestNew_RequiresRebuild(t *testing.T) {
	_, err := New(Options{}, nil)
	require.Error(t, err)
}

func TestShouldIgnore(t *testing.T) {
	cases := map[string]bool{
		"docs/intro.md":     false,
		"docs/.intro.md":    true,
		"docs/intro.md~":    true,
		"docs/.intro.swp":   true,
		"docs/intro.md.swx": true,
		"docs/#intro.md#":   true,
		"docs/Thumbs.db":    true,
		"sidebars.js":       false,
	}
	for path, want := range cases {
		require.Equal(t, want, ShouldIgnore(path), path)
	}
}
