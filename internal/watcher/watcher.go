package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Getabako/instagram-workflow-template/internal/calendar"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Event is a background image that appeared or changed in the images folder.
type Event struct {
	Day   int
	Index int
	Path  string
}

// Watcher monitors the images folder for generated backgrounds
type Watcher struct {
	Debounce time.Duration
	Logger   Logger

	dir     string
	watcher *fsnotify.Watcher
	events  chan Event

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// New creates a watcher for dir. The directory must exist.
func New(dir string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}
	return &Watcher{
		Debounce: DefaultDebounce,
		dir:      dir,
		watcher:  fsWatcher,
		events:   make(chan Event, 100),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Events returns the event channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.shutdown()
	w.infof("watching %s", w.dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			day, index, ok := calendar.ParseImageName(filepath.Base(event.Name))
			if !ok {
				continue
			}
			w.schedule(Event{Day: day, Index: index, Path: event.Name})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.Logger != nil {
				w.Logger.Errorf("watcher", "fsnotify: %v", err)
			}
		}
	}
}

func (w *Watcher) schedule(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, exists := w.pending[ev.Path]; exists {
		timer.Stop()
	}
	w.pending[ev.Path] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		delete(w.pending, ev.Path)
		select {
		case w.events <- ev:
			w.infof("background ready: %s", filepath.Base(ev.Path))
		default:
			if w.Logger != nil {
				w.Logger.Errorf("watcher", "event queue full, dropped %s", ev.Path)
			}
		}
	})
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		for _, timer := range w.pending {
			timer.Stop()
		}
		w.pending = nil
		close(w.events)
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}

// Close stops the watcher. Run returns shortly after.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) infof(format string, args ...interface{}) {
	if w.Logger != nil {
		w.Logger.Infof("watcher", format, args...)
	}
}
