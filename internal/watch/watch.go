// Package watch reports when the dictionary table files change on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 200 * time.Millisecond

// Event names the table files touched since the previous event.
type Event struct {
	Paths []string
}

// Watcher watches the directories holding a set of files, since editors and
// package managers usually replace files rather than write them in place.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]bool
	debounce  time.Duration

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		files:     make(map[string]bool),
		debounce:  debounce,
		pending:   make(map[string]bool),
		events:    make(chan Event, 1),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}
	return w, nil
}

// Events delivers one coalesced event per burst of changes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(event.Name)
	if !w.files[path] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	select {
	case w.events <- Event{Paths: paths}:
	case <-w.done:
	}
}
