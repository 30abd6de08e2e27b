package news2

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"fuzzynews/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Reloader serves calculations from a Scorer built from a configuration
// file and replaces it whenever the file changes. A rebuilt Scorer only
// takes over when the new configuration is valid; in-flight calls finish on
// the Scorer they started with.
type Reloader struct {
	path string
	cur  atomic.Pointer[Scorer]
	log  *slog.Logger
}

// NewReloader loads path and builds the first Scorer.
func NewReloader(path string) (*Reloader, error) {
	r := &Reloader{path: filepath.Clean(path), log: logging.New("reload")}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Current returns the active Scorer.
func (r *Reloader) Current() *Scorer { return r.cur.Load() }

// Calculate scores m with the active Scorer.
func (r *Reloader) Calculate(ctx context.Context, m Measurements) (*Result, error) {
	return r.Current().Calculate(ctx, m)
}

// Reload rebuilds the Scorer from the file. On error the active Scorer is
// kept.
func (r *Reloader) Reload() error {
	cfg, err := LoadConfigFile(r.path)
	if err != nil {
		return err
	}
	s, err := New(cfg)
	if err != nil {
		return fmt.Errorf("build scorer from %s: %w", r.path, err)
	}
	r.cur.Store(s)
	return nil
}

// Watch reloads on every write to the configuration file until ctx is done.
// The parent directory is watched so editors that replace the file by
// rename are seen too.
func (r *Reloader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch %s: %w", r.path, err)
	}
	r.log.Info("watching config", "path", r.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != r.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := r.Reload(); err != nil {
				r.log.Error("config reload failed, keeping previous rule base", "error", err)
				continue
			}
			r.log.Info("config reloaded", "path", r.path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher error", "error", err)
		}
	}
}
