package testhelpers

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// RemixConfigV1 is a minimal classic config using the nested folder route
// convention.
const RemixConfigV1 = `/** @type {import('@remix-run/dev').AppConfig} */
module.exports = {
  ignoredRouteFiles: ["**/.*"],
};
`

// RemixConfigV2 opts a classic app into flat routes.
const RemixConfigV2 = `module.exports = {
  ignoredRouteFiles: ["**/.*"],
  future: { v2_routeConvention: true },
};
`

// RouteModule is a route component body with no links.
const RouteModule = `export default function Route() {
  return <div />;
}
`

// AppBuilder writes a throwaway Remix project to disk. File contents
// default to RouteModule so tests only spell out what they check.
type AppBuilder struct {
	files map[string]string
}

// NewAppBuilder starts a project with the given remix.config.js content.
// Pass "" to leave the config out.
func NewAppBuilder(config string) *AppBuilder {
	b := &AppBuilder{files: make(map[string]string)}
	if config != "" {
		b.files["remix.config.js"] = config
	}
	b.files["app/root.tsx"] = RouteModule
	return b
}

// WithRoutes adds route modules below app/routes with the default body.
func (b *AppBuilder) WithRoutes(names ...string) *AppBuilder {
	for _, name := range names {
		b.files["app/routes/"+name] = RouteModule
	}
	return b
}

// WithFile adds or replaces a file, path relative to the project root
// with forward slashes.
func (b *AppBuilder) WithFile(path, content string) *AppBuilder {
	b.files[path] = content
	return b
}

// Without removes a file added earlier.
func (b *AppBuilder) Without(path string) *AppBuilder {
	delete(b.files, path)
	return b
}

// Build writes the project into a new temp directory and returns its
// root. The directory is removed when the test ends.
func (b *AppBuilder) Build(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	b.BuildIn(t, root)
	return root
}

// BuildIn writes the project into dir.
func (b *AppBuilder) BuildIn(t testing.TB, dir string) {
	t.Helper()
	paths := make([]string, 0, len(b.files))
	for p := range b.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(p)), b.files[p])
	}
}

// WriteFile writes content, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
