// Package watch reports changes to a single dictionary file. It watches the
// file's directory so that editors replacing the file by rename are seen, and
// debounces bursts of events (editors often trigger several writes per save).
package watch

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 50 * time.Millisecond

// ErrWatching is returned by Watch when the watcher already has a file.
var ErrWatching = errors.New("watch: watcher already in use")

// ErrStopped is returned by Watch after Stop.
var ErrStopped = errors.New("watch: watcher stopped")

// Watcher watches a single file for changes.
type Watcher struct {
	fw       *fsnotify.Watcher
	done     chan struct{}
	stopped  bool
	watching bool
	timers   []*time.Timer
	mu       sync.Mutex
}

// New creates a watcher.
func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring path. onChange is called with the absolute path once
// the file has been quiet for the debounce interval after a change. A Watcher
// reads a single event stream, so Watch may succeed only once.
func (w *Watcher) Watch(path string, onChange func(path string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if w.watching {
		return ErrWatching
	}
	if err := w.fw.Add(filepath.Dir(absPath)); err != nil {
		return err
	}
	w.watching = true

	var timer *time.Timer
	fire := func() {
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			onChange(absPath)
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				w.mu.Lock()
				if w.stopped {
					w.mu.Unlock()
					return
				}
				if timer == nil {
					timer = time.AfterFunc(debounceInterval, fire)
					w.timers = append(w.timers, timer)
				} else {
					timer.Reset(debounceInterval)
				}
				w.mu.Unlock()

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources. Pending callbacks are
// dropped. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	for _, t := range w.timers {
		t.Stop()
	}
	close(w.done)
	return w.fw.Close()
}
