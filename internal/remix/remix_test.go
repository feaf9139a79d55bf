package remix

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/routes"
	"github.com/standardbeagle/routelint/testhelpers"
)

func paths(t *testing.T, tree *routes.Tree) []string {
	t.Helper()
	require.NotNil(t, tree)
	return routes.Paths(tree)
}

func valid(t *testing.T, tree *routes.Tree, p string) bool {
	t.Helper()
	ok, err := routes.Validate(tree, p)
	require.NoError(t, err)
	return ok
}

func TestCreateRoutePathV1(t *testing.T) {
	tests := map[string]string{
		"index":              "",
		"foo":                "foo",
		"foo/index":          "foo",
		"foo/bar":            "foo/bar",
		"foo.bar":            "foo/bar",
		"$id":                ":id",
		"users/$userId/edit": "users/:userId/edit",
		"files/$":            "files/*",
		"$":                  "*",
		"__auth":             "",
		"__auth/login":       "login",
		"[sitemap.xml]":      "sitemap.xml",
		"reports.[2024].q1":  "reports/2024/q1",
	}
	for in, want := range tests {
		assert.Equal(t, want, createRoutePathV1(in), in)
	}
}

func TestFlatRouteSegments(t *testing.T) {
	tests := []struct {
		name  string
		index bool
		want  string
	}{
		{"_index", true, ""},
		{"about", false, "about"},
		{"concerts.$city", false, "concerts/:city"},
		{"concerts._index", true, "concerts"},
		{"concerts_.mine", false, "concerts/mine"},
		{"_auth", false, ""},
		{"_auth.login", false, "login"},
		{"files.$", false, "files/*"},
		{"($lang).about", false, ":lang?/about"},
		{"[sitemap.xml]", false, "sitemap.xml"},
	}
	for _, tt := range tests {
		segs, raw, err := flatRouteSegments(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, flatRoutePath(segs, raw, tt.index), tt.name)
	}

	_, _, err := flatRouteSegments("bad:name")
	assert.Error(t, err)
}

func TestFindProjectRoot(t *testing.T) {
	root := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).Build(t)
	nested := filepath.Join(root, "app", "routes", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, _, ok := FindProjectRoot(nested, nil)
	require.True(t, ok)
	assert.Equal(t, root, got)

	plain := t.TempDir()
	_, checked, ok := FindProjectRoot(plain, nil)
	assert.False(t, ok)
	assert.Contains(t, checked, plain)

	_, checked, ok = FindProjectRoot(plain, func(dir string) bool { return dir == plain })
	assert.False(t, ok)
	assert.Empty(t, checked, "a known negative directory stops the walk")
}

func TestViteConfigNeedsRemixPlugin(t *testing.T) {
	dir := t.TempDir()
	testhelpers.WriteFile(t, filepath.Join(dir, "vite.config.ts"), `export default { plugins: [] };`)
	_, ok := ConfigFile(dir)
	assert.False(t, ok)

	testhelpers.WriteFile(t, filepath.Join(dir, "vite.config.ts"), `import { vitePlugin as remix } from "@remix-run/dev";
export default { plugins: [remix({ appDirectory: "src" })] };`)
	file, ok := ConfigFile(dir)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "vite.config.ts"), file)
}

func TestReadAppConfig(t *testing.T) {
	root := testhelpers.NewAppBuilder(`module.exports = {
  appDirectory: "src/",
  ignoredRouteFiles: ["**/.*", "**/*.test.tsx"],
  future: { v2_routeConvention: true },
  routes(defineRoutes) { return {}; },
};`).Build(t)

	cfg, err := ReadAppConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "src", cfg.AppDirectory)
	assert.Equal(t, []string{"**/.*", "**/*.test.tsx"}, cfg.IgnoredRouteFiles)
	assert.Equal(t, ConventionV2, cfg.Convention)
	assert.True(t, cfg.CustomRoutes)
}

func TestReadAppConfigDetectsVersion(t *testing.T) {
	root := testhelpers.NewAppBuilder(`module.exports = {};`).
		WithFile("package.json", `{"devDependencies": {"@remix-run/dev": "^2.8.1"}}`).
		Build(t)
	cfg, err := ReadAppConfig(root)
	require.NoError(t, err)
	require.NotNil(t, cfg.RemixVersion)
	assert.Equal(t, uint64(2), cfg.RemixVersion.Major())
	assert.Equal(t, ConventionV2, cfg.Convention)

	old := testhelpers.NewAppBuilder(`module.exports = {};`).
		WithFile("package.json", `{"dependencies": {"@remix-run/dev": "1.19.3"}}`).
		Build(t)
	cfg, err = ReadAppConfig(old)
	require.NoError(t, err)
	assert.Equal(t, ConventionV1, cfg.Convention)
}

func TestLoadNestedConvention(t *testing.T) {
	root := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).
		WithRoutes(
			"index.tsx",
			"foo.tsx",
			"foo/index.tsx",
			"foo/bar.tsx",
			"foo/$child.tsx",
			"__auth.tsx",
			"__auth/login.tsx",
			"docs/$.tsx",
			"reports/index.tsx",
			".hidden.tsx",
		).
		WithFile("app/routes/styles.css", "body {}").
		Build(t)

	tree, err := NewLoader(LoaderOptions{}).Load(root)
	require.NoError(t, err)
	assert.Equal(t, ConventionV1, tree.Source)
	assert.Equal(t, filepath.Join(root, "app"), tree.AppDirectory)

	assert.True(t, valid(t, tree, "/"))
	assert.True(t, valid(t, tree, "/foo"))
	assert.True(t, valid(t, tree, "/foo/bar"))
	assert.True(t, valid(t, tree, "/foo/dynamic"))
	assert.True(t, valid(t, tree, "/login"))
	assert.True(t, valid(t, tree, "/docs/any/depth"))
	assert.True(t, valid(t, tree, "/reports"))
	assert.False(t, valid(t, tree, "/baz"))
	assert.False(t, valid(t, tree, "/.hidden"))

	got, ok := routes.Locate(tree, "routes/foo/bar.tsx")
	assert.True(t, ok)
	assert.Equal(t, "/foo/bar", got)

	got, ok = routes.Locate(tree, "routes/reports/index.tsx")
	assert.True(t, ok)
	assert.Equal(t, "/reports", got)
}

func TestLoadNestedConventionConflicts(t *testing.T) {
	dup := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).
		WithRoutes("about.tsx", "about.jsx").
		Build(t)
	_, err := NewLoader(LoaderOptions{}).Load(dup)
	assert.Error(t, err)
	assert.True(t, rlerrors.IsConfigError(err))

	indexWithChildren := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).
		WithRoutes("index.tsx", "index/child.tsx").
		Build(t)
	_, err = NewLoader(LoaderOptions{}).Load(indexWithChildren)
	assert.ErrorContains(t, err, "index routes")
}

func TestLoadFlatConvention(t *testing.T) {
	root := testhelpers.NewAppBuilder(testhelpers.RemixConfigV2).
		WithRoutes(
			"_index.tsx",
			"concerts.tsx",
			"concerts._index.tsx",
			"concerts.$city.tsx",
			"concerts_.mine.tsx",
			"_auth.tsx",
			"_auth.login.tsx",
			"($lang).about.tsx",
		).
		WithFile("app/routes/dashboard/route.tsx", testhelpers.RouteModule).
		WithFile("app/routes/dashboard/chart.tsx", testhelpers.RouteModule).
		Build(t)

	tree, err := NewLoader(LoaderOptions{}).Load(root)
	require.NoError(t, err)
	assert.Equal(t, ConventionV2, tree.Source)

	for _, p := range []string{"/", "/concerts", "/concerts/berlin", "/concerts/mine", "/login", "/about", "/de/about", "/dashboard"} {
		assert.True(t, valid(t, tree, p), p)
	}
	for _, p := range []string{"/dashboard/chart", "/_auth", "/concerts/berlin/x"} {
		assert.False(t, valid(t, tree, p), p)
	}

	got, ok := routes.Locate(tree, "routes/concerts.$city.tsx")
	assert.True(t, ok)
	assert.Equal(t, "/concerts/:city", got)

	got, ok = routes.Locate(tree, "routes/dashboard/route.tsx")
	assert.True(t, ok)
	assert.Equal(t, "/dashboard", got)

	root2 := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).WithRoutes("a.b.tsx").Build(t)
	forced, err := NewLoader(LoaderOptions{Convention: ConventionV2}).Load(root2)
	require.NoError(t, err)
	assert.Equal(t, ConventionV2, forced.Source)
	assert.True(t, valid(t, forced, "/a/b"))
}

func TestLoadManifest(t *testing.T) {
	root := testhelpers.NewAppBuilder(`module.exports = { routes() {} };`).
		WithFile("routes.json", `[{"id":"root","path":"","file":"root.tsx","children":[
  {"id":"custom/home","index":true,"file":"custom/home.tsx"},
  {"id":"custom/pricing","path":"pricing","file":"custom/pricing.tsx"}]}]`).
		Build(t)

	tree, err := NewLoader(LoaderOptions{Manifest: "routes.json"}).Load(root)
	require.NoError(t, err)
	assert.Equal(t, ConventionManifest, tree.Source)
	assert.Equal(t, []string{"/", "/pricing"}, paths(t, tree))

	_, err = NewLoader(LoaderOptions{Manifest: "missing.json"}).Load(root)
	assert.True(t, rlerrors.IsConfigError(err))
}

func TestLoadErrors(t *testing.T) {
	_, err := NewLoader(LoaderOptions{}).Load(t.TempDir())
	assert.True(t, rlerrors.IsConfigError(err))

	noRoot := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).Without("app/root.tsx").Build(t)
	_, err = NewLoader(LoaderOptions{}).Load(noRoot)
	assert.ErrorContains(t, err, "no root route module")
}

func TestCacheLookupAndInvalidate(t *testing.T) {
	root := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).WithRoutes("index.tsx").Build(t)
	cache := NewCache(NewLoader(LoaderOptions{}))
	defer cache.Close()

	file := filepath.Join(root, "app", "routes", "index.tsx")
	tree, err := cache.Tree(file)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, []string{root}, cache.Roots())

	again, err := cache.Tree(filepath.Join(root, "app", "root.tsx"))
	require.NoError(t, err)
	assert.Same(t, tree, again, "lookups share the loaded tree")

	// unchanged structure keeps the same tree after invalidation
	cache.Invalidate(root)
	same, err := cache.Tree(file)
	require.NoError(t, err)
	assert.Same(t, tree, same)

	testhelpers.WriteFile(t, filepath.Join(root, "app", "routes", "pricing.tsx"), testhelpers.RouteModule)
	stale, _ := cache.Tree(file)
	assert.False(t, valid(t, stale, "/pricing"), "no reload without invalidation")

	cache.Invalidate(root)
	fresh, err := cache.Tree(file)
	require.NoError(t, err)
	assert.NotSame(t, tree, fresh)
	assert.True(t, valid(t, fresh, "/pricing"))
}

func TestCacheOutsideProject(t *testing.T) {
	cache := NewCache(NewLoader(LoaderOptions{}))
	defer cache.Close()

	dir := t.TempDir()
	tree, err := cache.Tree(filepath.Join(dir, "component.tsx"))
	assert.NoError(t, err)
	assert.Nil(t, tree)
	assert.True(t, cache.isNoConfig(dir))
	assert.Empty(t, cache.Roots())
}

func TestCacheRemembersLoadErrors(t *testing.T) {
	root := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).Without("app/root.tsx").Build(t)
	cache := NewCache(NewLoader(LoaderOptions{}))
	defer cache.Close()

	file := filepath.Join(root, "app", "routes", "x.tsx")
	_, err := cache.Tree(file)
	require.Error(t, err)

	testhelpers.WriteFile(t, filepath.Join(root, "app", "root.tsx"), testhelpers.RouteModule)
	_, err = cache.Tree(file)
	assert.Error(t, err, "the failure is cached until invalidated")

	cache.Invalidate(root)
	tree, err := cache.Tree(file)
	assert.NoError(t, err)
	assert.NotNil(t, tree)
}

func TestCacheLongestRootWins(t *testing.T) {
	outer := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).Build(t)
	inner := filepath.Join(outer, "packages", "web")
	testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).WithRoutes("inner.tsx").BuildIn(t, inner)

	cache := NewCache(NewLoader(LoaderOptions{}))
	defer cache.Close()

	innerFile := filepath.Join(inner, "app", "routes", "inner.tsx")
	_, err := cache.Tree(innerFile)
	require.NoError(t, err)
	_, err = cache.Tree(filepath.Join(outer, "app", "root.tsx"))
	require.NoError(t, err)

	root, ok := cache.RootFor(innerFile)
	require.True(t, ok)
	assert.Equal(t, inner, root)
}

func TestCacheWatchInvalidatesOnNewRoute(t *testing.T) {
	testhelpers.VerifyNoLeaks(t)

	root := testhelpers.NewAppBuilder(testhelpers.RemixConfigV1).WithRoutes("index.tsx").Build(t)
	var invalidations atomic.Int32
	cache := NewCache(NewLoader(LoaderOptions{}),
		WithWatch(20*time.Millisecond),
		WithOnInvalidate(func(string) { invalidations.Add(1) }))
	t.Cleanup(func() { cache.Close() })

	file := filepath.Join(root, "app", "routes", "index.tsx")
	_, err := cache.Tree(file)
	require.NoError(t, err)

	// editing an existing module does not touch the tree
	testhelpers.WriteFile(t, file, testhelpers.RouteModule+"\n// edited\n")
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), invalidations.Load())

	testhelpers.WriteFile(t, filepath.Join(root, "app", "routes", "pricing.tsx"), testhelpers.RouteModule)
	require.Eventually(t, func() bool { return invalidations.Load() > 0 }, 5*time.Second, 20*time.Millisecond)

	tree, err := cache.Tree(file)
	require.NoError(t, err)
	assert.True(t, valid(t, tree, "/pricing"))
}
