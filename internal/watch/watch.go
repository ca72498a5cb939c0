// Package watch triggers rebuilds when content changes on disk or a refresh
// interval elapses.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/util/sets"
)

// Rebuild reasons passed to RebuildFunc.
const (
	ReasonChange  = "change"
	ReasonRefresh = "refresh"
)

// RebuildFunc runs one rebuild. Calls never overlap.
type RebuildFunc func(ctx context.Context, reason string)

// Options configure a Watcher.
type Options struct {
	// Dirs are watched recursively; directories created later are added.
	Dirs []string
	// Files are watched through their parent directory.
	Files []string
	// Debounce delays a rebuild until changes have settled.
	Debounce time.Duration
	// Refresh rebuilds on a fixed interval when positive.
	Refresh time.Duration
	Logger  *slog.Logger
}

// Watcher coalesces filesystem events and timer ticks into rebuilds.
type Watcher struct {
	opts    Options
	rebuild RebuildFunc
	logger  *slog.Logger
	files   sets.Set[string]
	pending chan string

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher. Nothing is watched until Run.
func New(opts Options, rebuild RebuildFunc) (*Watcher, error) {
	if rebuild == nil {
		return nil, fmt.Errorf("watch: rebuild func is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		opts:    opts,
		rebuild: rebuild,
		logger:  logger,
		files:   sets.New[string](),
		pending: make(chan string, 1),
	}
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files.Add(abs)
	}
	return w, nil
}

// Run watches until ctx is done. It returns after the running rebuild, if
// any, has finished.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range w.opts.Dirs {
		if err := w.addDirsRecursive(fsw, dir); err != nil {
			return err
		}
	}
	for f := range w.files {
		if err := fsw.Add(filepath.Dir(f)); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(f), logfields.Error(err))
		}
	}

	var sched gocron.Scheduler
	if w.opts.Refresh > 0 {
		sched, err = w.startRefresh()
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Warn("Refresh scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer wg.Wait()
	defer w.stopTimer()

	w.logger.Info("Watching for changes", logfields.Count(len(w.opts.Dirs)+len(w.files)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) startRefresh() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Refresh),
		gocron.NewTask(w.request, ReasonRefresh),
		gocron.WithName("refresh-build"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create refresh job: %w", err)
	}
	s.Start()
	return s, nil
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.pending:
			w.logger.Info("Rebuilding", slog.String("reason", reason))
			w.rebuild(ctx, reason)
		}
	}
}

// request queues a rebuild; a queued request absorbs later ones.
func (w *Watcher) request(reason string) {
	select {
	case w.pending <- reason:
	default:
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() { w.request(ReasonChange) })
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ShouldIgnore(ev.Name) {
		return
	}
	if !w.inScope(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fsw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

// inScope drops events from directories watched only for a single file.
func (w *Watcher) inScope(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return true
	}
	if w.files.Has(abs) {
		return true
	}
	for _, dir := range w.opts.Dirs {
		d, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if abs == d || strings.HasPrefix(abs, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// ShouldIgnore reports editor swap files, hidden files and OS metadata.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
