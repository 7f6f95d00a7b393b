// Package watcher provides file watching for configuration live reload.
//
// Files are watched through their parent directories so that editors which
// replace a file by renaming a temporary copy over it are still seen. Bursts
// of events for one file are coalesced and delivered after a quiet period.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.RWMutex

	// Watched files, and how many of them live in each directory
	files map[string]struct{}
	dirs  map[string]int

	handlers []Handler

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	debounce     time.Duration
	pendingMu    sync.Mutex
	pendingFiles map[string]pendingEvent

	log logrus.FieldLogger
}

// pendingEvent stores a pending event with its operation for debouncing.
type pendingEvent struct {
	Op   Operation
	Time time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for watch errors.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New creates a new file watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:        make(map[string]struct{}),
		dirs:         make(map[string]int),
		debounce:     100 * time.Millisecond,
		pendingFiles: make(map[string]pendingEvent),
		log:          logrus.WithField("component", "config-watcher"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Watch adds a file to the watch list. The file need not exist yet.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[absPath]; ok {
		return nil
	}
	dir := filepath.Dir(absPath)
	if w.fsw != nil && w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
	}
	w.files[absPath] = struct{}{}
	w.dirs[dir]++
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[absPath]; !ok {
		return nil
	}
	delete(w.files, absPath)
	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if w.fsw != nil {
			_ = w.fsw.Remove(dir)
		}
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start begins watching files for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating fsnotify watcher")
	}
	for dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return errors.Wrapf(err, "watching %s", dir)
		}
	}
	w.fsw = fsw
	w.done = make(chan struct{})

	w.wg.Add(1)
	go w.eventLoop(fsw, w.done)

	if w.debounce > 0 {
		w.wg.Add(1)
		go w.debounceLoop(w.done)
	}
	return nil
}

// Stop stops watching files. Pending debounced events are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.fsw == nil {
		w.mu.Unlock()
		return
	}
	close(w.done)
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	w.wg.Wait()
	_ = fsw.Close()
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsw != nil
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

func (w *Watcher) eventLoop(fsw *fsnotify.Watcher, done <-chan struct{}) {
	defer w.wg.Done()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.RLock()
	_, watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return
	}

	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	event := Event{Path: path, Op: op, Time: time.Now()}
	if w.debounce > 0 {
		w.queueEvent(event)
	} else {
		w.emitEvent(event)
	}
}

// convertOp maps an fsnotify op to an Operation. Chmod alone is ignored.
func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// queueEvent queues an event for debounced delivery.
// It coalesces events:
// - create + write => create
// - write + write => write (latest time)
// - any + remove => remove
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	existing, exists := w.pendingFiles[event.Path]
	if !exists {
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
		return
	}

	switch event.Op {
	case OpRemove, OpCreate:
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	case OpWrite:
		// Write doesn't override create or remove
		w.pendingFiles[event.Path] = pendingEvent{Op: existing.Op, Time: event.Time}
	default:
		w.pendingFiles[event.Path] = pendingEvent{Op: event.Op, Time: event.Time}
	}
}

func (w *Watcher) debounceLoop(done <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			w.processPendingEvents()
		}
	}
}

// processPendingEvents emits events that have been stable for the debounce period.
func (w *Watcher) processPendingEvents() {
	w.pendingMu.Lock()
	stableThreshold := time.Now().Add(-w.debounce)

	var toEmit []Event
	for path, pending := range w.pendingFiles {
		if pending.Time.Before(stableThreshold) {
			toEmit = append(toEmit, Event{Path: path, Op: pending.Op, Time: pending.Time})
			delete(w.pendingFiles, path)
		}
	}
	w.pendingMu.Unlock()

	for _, event := range toEmit {
		w.emitEvent(event)
	}
}

// emitEvent calls all handlers with the event.
func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		w.safeCallHandler(handler, event)
	}
}

// safeCallHandler calls a handler with panic recovery.
func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.log.WithFields(logrus.Fields{"path": event.Path, "panic": r}).Error("config change handler panicked")
		}
	}()
	handler(event)
}
