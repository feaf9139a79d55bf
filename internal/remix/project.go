// Package remix discovers Remix projects on disk and builds their route
// trees from the file conventions, a JSON manifest, and the project's
// remix.config.js or vite.config.ts.
package remix

import (
	"os"
	"path/filepath"
	"strings"
)

// ClassicConfigFiles are the compiler config files of a classic Remix app.
var ClassicConfigFiles = []string{"remix.config.js", "remix.config.cjs", "remix.config.mjs"}

// ViteConfigFiles are Vite configs that count only when they load the
// Remix plugin.
var ViteConfigFiles = []string{"vite.config.ts", "vite.config.mts", "vite.config.js", "vite.config.mjs"}

// remixVitePlugin is the import that marks a Vite config as a Remix app.
const remixVitePlugin = "@remix-run/dev"

// ConfigFile returns the Remix config file in dir, if there is one.
// Classic configs win over Vite configs.
func ConfigFile(dir string) (string, bool) {
	for _, name := range ClassicConfigFiles {
		p := filepath.Join(dir, name)
		if isFile(p) {
			return p, true
		}
	}
	for _, name := range ViteConfigFiles {
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(p)
		if err == nil && strings.Contains(string(data), remixVitePlugin) {
			return p, true
		}
	}
	return "", false
}

// FindProjectRoot walks up from start to the nearest directory holding a
// Remix config. visited, when not nil, reports directories already known
// to have no config anywhere above them; the walk stops at the first one.
func FindProjectRoot(start string, visited func(dir string) bool) (string, []string, bool) {
	dir := filepath.Clean(start)
	var checked []string
	for {
		if visited != nil && visited(dir) {
			return "", checked, false
		}
		if _, ok := ConfigFile(dir); ok {
			return dir, checked, true
		}
		checked = append(checked, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", checked, false
		}
		dir = parent
	}
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
