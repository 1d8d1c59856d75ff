// Package watch reloads the taxonomy when fixture files on disk change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lifecat/internal/logging"
)

// DefaultDebounce is how long the directory must stay quiet before a
// burst of changes triggers one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange after fixture files under a directory change.
// Editors often write a file in several steps, so events are batched.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(ctx context.Context)
	log      *slog.Logger

	mu      sync.Mutex
	pending time.Time // zero when nothing is pending
	fired   int
}

// New creates a watcher for dir. A zero debounce selects DefaultDebounce.
func New(dir string, debounce time.Duration, onChange func(ctx context.Context)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		log:      logging.New("watch"),
	}
}

// Run watches until ctx is cancelled. It returns an error only when the
// watcher cannot be set up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// fsnotify is not recursive; add every directory below the root.
	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching fixtures", "dir", w.dir)

	tick := time.NewTicker(max(w.debounce/5, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case now := <-tick.C:
			if w.due(now) {
				w.log.Info("fixture change detected, reloading")
				w.onChange(ctx)
			}
		}
	}
}

// Fired returns how many times OnChange has been triggered.
func (w *Watcher) Fired() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := fw.Add(ev.Name); err != nil {
				w.log.Warn("watch new directory failed", "path", ev.Name, "error", err)
			}
			w.mark()
			return
		}
	}
	if !relevant(ev) {
		return
	}
	w.log.Debug("fixture event", "op", ev.Op.String(), "path", ev.Name)
	w.mark()
}

func (w *Watcher) mark() {
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// due reports whether a pending change has been quiet for the debounce
// period, and clears it if so.
func (w *Watcher) due(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
		return false
	}
	w.pending = time.Time{}
	w.fired++
	return true
}

// relevant keeps writes, creates, removes and renames of fixture files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
