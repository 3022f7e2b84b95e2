package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

type WatchOptions struct {
	Debounce time.Duration
	Verbose  bool

	// OnReload, when set, observes the result of every reload attempt.
	OnReload func(err error)
}

// Watcher reloads a VectorStore whenever its vector file changes on disk.
// It requires an OS-backed filesystem.
type Watcher struct {
	store  *VectorStore
	path   string
	opts   WatchOptions
	logger *zap.Logger
}

func NewWatcher(store *VectorStore, path string, opts WatchOptions) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		store:  store,
		path:   path,
		opts:   opts,
		logger: store.logger.With(zap.String("path", path)),
	}
}

// Run watches until ctx is done. Failed reloads are logged and the store
// keeps serving the previous vectors. The file must exist on the host
// filesystem; stores backed by an in-memory filesystem get ErrFileAccess.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := w.osPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("%w: watch %s: %w", ErrFileAccess, target, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file by rename are seen.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	// A nil channel blocks, so no reload is pending until the first event.
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isReloadEvent(event, target) {
				continue
			}
			if debounce == nil {
				debounce = time.After(w.opts.Debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-debounce:
			debounce = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	err := w.store.LoadVectors(ctx, w.path, w.opts.Verbose)
	if err != nil {
		w.logger.Error("reload word vectors", zap.Error(err))
	} else {
		w.logger.Info("reloaded word vectors")
	}
	if w.opts.OnReload != nil {
		w.opts.OnReload(err)
	}
}

func (w *Watcher) osPath() (string, error) {
	// billy resolves every path, absolute or not, beneath its root.
	abs, err := filepath.Abs(filepath.Join(w.store.Filesystem().Root(), w.path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", w.path, err)
	}
	return abs, nil
}

func isReloadEvent(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
