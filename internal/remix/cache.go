package remix

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/routelint/internal/debug"
	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/routes"
	"github.com/standardbeagle/routelint/internal/watch"
	"github.com/standardbeagle/routelint/pkg/pathutil"
)

type entry struct {
	tree  *routes.Tree
	err   error
	stale bool
}

// Cache holds one route tree per project root. Trees load lazily on first
// use; concurrent loads of the same root are allowed and the last one
// stored wins. Invalidate marks a root stale and the next lookup reloads
// it, swapping the new tree in atomically.
type Cache struct {
	loader *Loader

	mu      sync.RWMutex
	entries map[string]*atomic.Pointer[entry]
	// noConfig holds directories whose whole ancestry has no Remix config
	noConfig map[string]struct{}

	watchEnabled bool
	debounce     time.Duration
	onInvalidate func(root string)
	watchers     map[string]*watch.FileWatcher
	watchMu      sync.Mutex
	closed       bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithWatch makes the cache watch each loaded project's config files and
// routes directory and invalidate the project when routes are added,
// removed or renamed, or a config file changes.
func WithWatch(debounce time.Duration) CacheOption {
	return func(c *Cache) {
		c.watchEnabled = true
		c.debounce = debounce
	}
}

// WithOnInvalidate registers a callback run after a watched project is
// invalidated.
func WithOnInvalidate(fn func(root string)) CacheOption {
	return func(c *Cache) {
		c.onInvalidate = fn
	}
}

// NewCache creates an empty cache backed by loader.
func NewCache(loader *Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader:   loader,
		entries:  make(map[string]*atomic.Pointer[entry]),
		noConfig: make(map[string]struct{}),
		watchers: make(map[string]*watch.FileWatcher),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RootFor returns the project root that owns file, discovering it on disk
// if no known root contains the file.
func (c *Cache) RootFor(file string) (string, bool) {
	file = filepath.Clean(file)
	if root, ok := c.knownRoot(file); ok {
		return root, true
	}

	root, checked, ok := FindProjectRoot(filepath.Dir(file), c.isNoConfig)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		for _, dir := range checked {
			c.noConfig[dir] = struct{}{}
		}
		return "", false
	}
	if _, exists := c.entries[root]; !exists {
		c.entries[root] = &atomic.Pointer[entry]{}
	}
	return root, true
}

// knownRoot picks the longest registered root containing file.
func (c *Cache) knownRoot(file string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	best := ""
	for root := range c.entries {
		if len(root) > len(best) && pathutil.HasDirPrefix(file, root) {
			best = root
		}
	}
	return best, best != ""
}

func (c *Cache) isNoConfig(dir string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.noConfig[dir]
	return ok
}

// Tree returns the route tree of the project containing file. It returns
// (nil, nil) when the file is not inside a Remix project and the cached
// load error when the project's routes could not be read.
func (c *Cache) Tree(file string) (*routes.Tree, error) {
	root, ok := c.RootFor(file)
	if !ok {
		return nil, nil
	}
	return c.TreeForRoot(root)
}

// TreeForRoot returns the route tree of a project root, loading it if it
// is missing or stale.
func (c *Cache) TreeForRoot(root string) (*routes.Tree, error) {
	root = filepath.Clean(root)
	ptr := c.pointer(root)

	if e := ptr.Load(); e != nil && !e.stale {
		return e.tree, e.err
	}

	old := ptr.Load()
	tree, err := c.loader.Load(root)
	next := &entry{tree: tree, err: err}
	if err == nil && old != nil && old.tree != nil && old.tree.Fingerprint == tree.Fingerprint {
		// unchanged structure, keep handing out the same tree
		next.tree = old.tree
	}
	ptr.Store(next)

	if c.watchEnabled {
		c.startWatch(root, next.tree)
	}
	return next.tree, next.err
}

func (c *Cache) pointer(root string) *atomic.Pointer[entry] {
	c.mu.RLock()
	ptr, ok := c.entries[root]
	c.mu.RUnlock()
	if ok {
		return ptr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ptr, ok = c.entries[root]; !ok {
		ptr = &atomic.Pointer[entry]{}
		c.entries[root] = ptr
	}
	return ptr
}

// Invalidate marks root stale. The current tree stays visible to readers
// that already hold it.
func (c *Cache) Invalidate(root string) {
	root = filepath.Clean(root)
	c.mu.RLock()
	ptr, ok := c.entries[root]
	c.mu.RUnlock()
	if !ok {
		return
	}
	for {
		old := ptr.Load()
		if old == nil || old.stale {
			return
		}
		if ptr.CompareAndSwap(old, &entry{tree: old.tree, err: old.err, stale: true}) {
			debug.LogRoutes("invalidated route tree for %s\n", root)
			return
		}
	}
}

// InvalidateAll marks every known root stale and forgets negative lookups.
func (c *Cache) InvalidateAll() {
	for _, root := range c.Roots() {
		c.Invalidate(root)
	}
	c.mu.Lock()
	c.noConfig = make(map[string]struct{})
	c.mu.Unlock()
}

// Roots lists the known project roots, sorted.
func (c *Cache) Roots() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for root := range c.entries {
		out = append(out, root)
	}
	sort.Strings(out)
	return out
}

// Close stops every watcher the cache started.
func (c *Cache) Close() error {
	c.watchMu.Lock()
	watchers := c.watchers
	c.watchers = make(map[string]*watch.FileWatcher)
	c.closed = true
	c.watchMu.Unlock()

	var errs []error
	for root, w := range watchers {
		if err := w.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop watcher for %s: %w", root, err))
		}
	}
	return rlerrors.NewMultiError(errs).ErrorOrNil()
}

func (c *Cache) startWatch(root string, tree *routes.Tree) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if c.closed {
		return
	}
	if _, ok := c.watchers[root]; ok {
		return
	}

	w, err := Watch(root, tree, c.loader, c.debounce, func() {
		c.Invalidate(root)
		if c.onInvalidate != nil {
			c.onInvalidate(root)
		}
	})
	if err != nil {
		debug.LogRoutes("cannot watch %s: %v\n", root, err)
		return
	}
	c.watchers[root] = w
}
