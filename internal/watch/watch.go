// Package watch re-runs a reload function whenever watched files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
)

const (
	defaultDebounce = 250 * time.Millisecond
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
)

// ErrNothingToWatch is returned by Run when there are no files to watch and
// no external trigger.
var ErrNothingToWatch = errors.New("watch: nothing to watch")

// Config configures a Runner.
type Config struct {
	// Files are watched for writes, creates and renames.
	Files []string
	// Reload is called once at start and again after every change.
	Reload func(ctx context.Context) error
	Logger *slog.Logger
	// ExternalTrigger is set when something other than the watched files
	// calls Trigger, such as a config watcher. Without it Run needs files.
	ExternalTrigger bool

	// Debounce coalesces bursts of events into one reload.
	Debounce time.Duration
	// Attempts and Delay control retries of a failed reload after a change.
	Attempts uint
	Delay    time.Duration
}

// Runner calls Reload when a watched file changes or Trigger is called.
type Runner struct {
	cfg     Config
	trigger chan struct{}
	changed chan struct{}

	mu    sync.RWMutex
	files map[string]struct{}
}

// New creates a Runner. Files are resolved to absolute paths.
func New(cfg Config) (*Runner, error) {
	if cfg.Reload == nil {
		return nil, fmt.Errorf("watch: reload function is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}

	files, err := resolve(cfg.Files)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:     cfg,
		files:   files,
		trigger: make(chan struct{}, 1),
		changed: make(chan struct{}, 1),
	}, nil
}

// resolve turns paths into a set of absolute paths, skipping empty ones.
func resolve(paths []string) (map[string]struct{}, error) {
	files := make(map[string]struct{}, len(paths))
	for _, f := range paths {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		files[abs] = struct{}{}
	}
	return files, nil
}

// SetFiles replaces the watched file set. A running Runner starts watching
// the new files' directories and stops watching ones no longer needed.
// It does not trigger a reload.
func (r *Runner) SetFiles(paths []string) error {
	files, err := resolve(paths)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.files = files
	r.mu.Unlock()

	select {
	case r.changed <- struct{}{}:
	default:
	}
	return nil
}

// Files returns the watched files, sorted.
func (r *Runner) Files() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.files))
	for f := range r.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Trigger schedules a reload. It never blocks.
func (r *Runner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run performs the initial reload, then watches until ctx is done.
// A failing initial reload is returned; later failures are logged.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.Files()) == 0 && !r.cfg.ExternalTrigger {
		return ErrNothingToWatch
	}
	if err := r.cfg.Reload(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]struct{})
	if err := r.syncDirs(watcher, dirs); err != nil {
		return err
	}
	r.cfg.Logger.Info("watching for changes", "files", len(r.Files()))

	timer := time.NewTimer(r.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(ev) {
				continue
			}
			r.cfg.Logger.Debug("file changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(r.cfg.Debounce)

		case <-r.trigger:
			timer.Reset(r.cfg.Debounce)

		case <-r.changed:
			if err := r.syncDirs(watcher, dirs); err != nil {
				r.cfg.Logger.Error("failed to update watched files", "error", err)
				continue
			}
			r.cfg.Logger.Info("watched files updated", "files", r.Files())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.cfg.Logger.Warn("watcher error", "error", err)

		case <-timer.C:
			if err := r.reload(ctx); err != nil && ctx.Err() == nil {
				r.cfg.Logger.Error("reload failed", "error", err)
			}
		}
	}
}

func (r *Runner) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.files[abs]
	return ok
}

// syncDirs makes the watcher cover the parent directory of every watched
// file, and nothing else. Parent directories are watched so files replaced
// by rename are still seen. dirs holds the directories currently watched.
func (r *Runner) syncDirs(w *fsnotify.Watcher, dirs map[string]struct{}) error {
	want := make(map[string]struct{})
	for _, f := range r.Files() {
		want[filepath.Dir(f)] = struct{}{}
	}
	for d := range want {
		if _, ok := dirs[d]; ok {
			continue
		}
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch: failed to watch %s: %w", d, err)
		}
		dirs[d] = struct{}{}
	}
	for d := range dirs {
		if _, ok := want[d]; !ok {
			_ = w.Remove(d)
			delete(dirs, d)
		}
	}
	return nil
}

func (r *Runner) reload(ctx context.Context) error {
	return retry.Do(
		func() error {
			return r.cfg.Reload(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(r.cfg.Attempts),
		retry.Delay(r.cfg.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.cfg.Logger.Warn("reload attempt failed", "attempt", n+1, "error", err)
		}),
	)
}
