// Package watch wraps fsnotify with recursive directory watches, glob
// exclusion and event debouncing.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/routelint/internal/debug"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	default:
		return "rename"
	}
}

// Event is one debounced change. Only the last event per path survives a
// debounce window.
type Event struct {
	Path string
	Type EventType
}

// Options configures a FileWatcher.
type Options struct {
	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration
	// Exclude holds doublestar patterns. A directory is skipped when its
	// base name or its slash path relative to the tree root matches.
	Exclude []string
	// Filter selects the file events to deliver. Nil accepts everything.
	Filter func(path string) bool
}

// FileWatcher monitors directories and delivers batches of file events.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	opts      Options
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	roots   []string
	rootsMu sync.Mutex

	startOnce sync.Once
	stopOnce  sync.Once

	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex
}

// New creates a watcher that calls onBatch with each debounced batch.
// onBatch runs on a timer goroutine and must not call Stop.
func New(opts Options, onBatch func([]Event)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		watcher: watcher,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
	}
	fw.debouncer = newEventDebouncer(opts.Debounce, func(events []Event) {
		fw.incrementStats(int64(len(events)), 0)
		onBatch(events)
	})
	return fw, nil
}

// AddDir watches a single directory without descending into it.
func (fw *FileWatcher) AddDir(dir string) error {
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	debug.LogWatch("watching directory %s\n", dir)
	return nil
}

// AddTree watches root and every directory beneath it that is not
// excluded. Directories created later are picked up automatically.
func (fw *FileWatcher) AddTree(root string) error {
	fw.rootsMu.Lock()
	fw.roots = append(fw.roots, filepath.Clean(root))
	fw.rootsMu.Unlock()

	// symlink cycles would otherwise walk forever
	visitedDirs := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && fw.shouldIgnoreDirectory(path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

// Start begins delivering events. Calling it more than once is a no-op.
func (fw *FileWatcher) Start() {
	fw.startOnce.Do(func() {
		fw.wg.Add(1)
		go fw.processEvents()
	})
}

// Stop shuts the watcher down and waits for its goroutine. Pending events
// are dropped.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		fw.cancel()
		fw.debouncer.stop()
		err = fw.watcher.Close()
		fw.wg.Wait()
	})
	return err
}

func (fw *FileWatcher) shouldIgnoreDirectory(path string) bool {
	base := filepath.Base(path)
	rel := fw.relToRoot(path)
	for _, pattern := range fw.opts.Exclude {
		dirPattern := strings.TrimSuffix(pattern, "/**")
		if matched, _ := doublestar.Match(dirPattern, base); matched {
			return true
		}
		if rel != "" {
			if matched, _ := doublestar.Match(dirPattern, rel); matched {
				return true
			}
		}
	}
	return false
}

func (fw *FileWatcher) relToRoot(path string) string {
	fw.rootsMu.Lock()
	defer fw.rootsMu.Unlock()
	for _, root := range fw.roots {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return ""
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.incrementStats(0, 1)
			debug.LogWatch("watcher error: %v\n", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received %v for %s\n", event.Op, path)

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			fw.handleNewDirectory(path)
		}
	}

	if fw.opts.Filter != nil && !fw.opts.Filter(path) {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = EventCreate
	case event.Op&fsnotify.Remove != 0:
		eventType = EventRemove
	case event.Op&fsnotify.Rename != 0:
		eventType = EventRename
	case event.Op&fsnotify.Write != 0:
		eventType = EventWrite
	default:
		return
	}
	fw.debouncer.addEvent(path, eventType)
}

func (fw *FileWatcher) handleNewDirectory(path string) {
	if fw.relToRoot(path) == "" || fw.shouldIgnoreDirectory(path) {
		return
	}
	if err := fw.watcher.Add(path); err != nil {
		log.Printf("Warning: failed to add watch for new directory %s: %v", path, err)
		return
	}
	debug.LogWatch("added watch for new directory %s\n", path)
}

func (fw *FileWatcher) incrementStats(events int64, errors int64) {
	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()

	fw.eventsProcessed += events
	fw.errorCount += errors
	fw.lastEventTime = time.Now()
}

// Stats contains statistics about file watching operations
type Stats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// Stats returns current watch statistics
func (fw *FileWatcher) Stats() Stats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()

	return Stats{
		EventsProcessed: fw.eventsProcessed,
		ErrorCount:      fw.errorCount,
		LastEventTime:   fw.lastEventTime,
		IsActive:        fw.ctx.Err() == nil,
	}
}

// eventDebouncer batches file events to avoid excessive processing
type eventDebouncer struct {
	events   map[string]EventType
	mutex    sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	deliver  func([]Event)
}

func newEventDebouncer(debounce time.Duration, deliver func([]Event)) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		deliver:  deliver,
	}
}

func (d *eventDebouncer) addEvent(path string, eventType EventType) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopped {
		return
	}

	// a write never hides a create, remove or rename in the same window
	if prev, ok := d.events[path]; !ok || eventType != EventWrite || prev == EventWrite {
		d.events[path] = eventType
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]EventType)
}

func (d *eventDebouncer) flush() {
	d.mutex.Lock()
	if d.stopped || len(d.events) == 0 {
		d.mutex.Unlock()
		return
	}
	events := make([]Event, 0, len(d.events))
	for path, eventType := range d.events {
		events = append(events, Event{Path: path, Type: eventType})
	}
	d.events = make(map[string]EventType)
	d.mutex.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	debug.LogWatch("delivering %d debounced events\n", len(events))
	d.deliver(events)
}
