package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"skl2pmml/internal/logging"
)

// watcher re-converts input documents when their files change. Editors often
// save through several events, so changes are debounced per file.
type watcher struct {
	mu       sync.Mutex
	fs       *fsnotify.Watcher
	inputs   map[string]string // cleaned absolute path -> path as given
	pending  map[string]time.Time
	debounce time.Duration
	convert  func(ctx context.Context, input string)
}

func newWatcher(inputs []string, debounce time.Duration, convert func(context.Context, string)) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:       fw,
		inputs:   make(map[string]string),
		pending:  make(map[string]time.Time),
		debounce: debounce,
		convert:  convert,
	}

	// Watch directories: a rename-on-save replaces the file we would be watching
	dirs := make(map[string]bool)
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.inputs[abs] = input
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.BootDebug("Watching %s", dir)
	}
	return w, nil
}

// run dispatches events until ctx is done, then closes the watcher.
func (w *watcher) run(ctx context.Context) error {
	defer w.fs.Close()

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logging.Get(logging.CategoryBoot).Warn("Watch error: %v", err)

		case <-ticker.C:
			w.flush(ctx, time.Now())
		}
	}
}

// handle records a change to a watched input.
func (w *watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inputs[abs]; ok {
		w.pending[abs] = time.Now()
	}
}

// flush converts the inputs whose last change is older than the debounce window.
func (w *watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var settled []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			settled = append(settled, w.inputs[path])
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, input := range settled {
		w.convert(ctx, input)
	}
}
