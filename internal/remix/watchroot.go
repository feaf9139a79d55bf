package remix

import (
	"path/filepath"
	"time"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/routes"
	"github.com/standardbeagle/routelint/internal/watch"
	"github.com/standardbeagle/routelint/pkg/pathutil"
)

// Watch observes the files a project's route tree is built from and calls
// onChange, with no payload, whenever the tree should be considered
// stale. tree may be nil when the last load failed; the default app
// directory is watched then. The returned watcher is running; stop it
// with Stop.
func Watch(root string, tree *routes.Tree, loader *Loader, debounce time.Duration, onChange func()) (*watch.FileWatcher, error) {
	root = filepath.Clean(root)
	appDir := filepath.Join(root, DefaultAppDirectory)
	if tree != nil {
		appDir = tree.AppDirectory
	}
	routesDir := filepath.Join(appDir, routesPrefix)
	manifest := ""
	if loader != nil {
		manifest = loader.ManifestPath(root)
	}

	relevant := func(p string) bool {
		p = filepath.Clean(p)
		dir := filepath.Dir(p)
		switch {
		case manifest != "" && p == manifest:
			return true
		case dir == root:
			return isConfigName(filepath.Base(p))
		case dir == appDir:
			return p == routesDir || isRootModuleName(filepath.Base(p))
		default:
			return pathutil.HasDirPrefix(p, routesDir)
		}
	}

	w, err := watch.New(watch.Options{Debounce: debounce, Filter: relevant}, func(events []watch.Event) {
		if structuralChange(events, routesDir) {
			debug.LogWatch("route structure of %s changed (%d events)\n", root, len(events))
			onChange()
		}
	})
	if err != nil {
		return nil, err
	}

	dirs := []string{root}
	if isDir(appDir) && appDir != root {
		dirs = append(dirs, appDir)
	}
	if manifest != "" && filepath.Dir(manifest) != root {
		dirs = append(dirs, filepath.Dir(manifest))
	}
	for _, dir := range dirs {
		if err := w.AddDir(dir); err != nil {
			debug.LogWatch("cannot watch %s: %v\n", dir, err)
		}
	}
	if isDir(routesDir) {
		if err := w.AddTree(routesDir); err != nil {
			debug.LogWatch("cannot watch %s: %v\n", routesDir, err)
		}
	}
	w.Start()
	return w, nil
}

// structuralChange reports whether a batch can change the route tree.
// Editing an existing route module cannot; adding, removing or renaming
// one can, and so can any change outside the routes directory that made
// it through the filter (config files, the manifest, the root module).
func structuralChange(events []watch.Event, routesDir string) bool {
	for _, e := range events {
		if !pathutil.HasDirPrefix(e.Path, routesDir) || e.Path == routesDir {
			return true
		}
		if e.Type != watch.EventWrite {
			return true
		}
	}
	return false
}

func isConfigName(name string) bool {
	if name == "package.json" {
		return true
	}
	for _, list := range [][]string{ClassicConfigFiles, ViteConfigFiles} {
		for _, n := range list {
			if n == name {
				return true
			}
		}
	}
	return false
}

func isRootModuleName(name string) bool {
	switch name {
	case "root.tsx", "root.ts", "root.jsx", "root.js":
		return true
	}
	return false
}
