package remix

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/routelint/internal/debug"
	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/routes"
)

// LoaderOptions override what is read from the project's own config.
type LoaderOptions struct {
	// Manifest is a `remix routes --json` output file, relative to the
	// project root. When set, the file conventions are not scanned.
	Manifest string
	// Convention forces ConventionV1 or ConventionV2.
	Convention string
	// IgnoredRouteFiles are added to the config's own patterns.
	IgnoredRouteFiles []string
}

// Loader builds route trees for project roots.
type Loader struct {
	opts LoaderOptions
}

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions) *Loader {
	return &Loader{opts: opts}
}

// Options returns the loader's options.
func (l *Loader) Options() LoaderOptions {
	return l.opts
}

// Load reads the Remix config in root and builds the route tree. Every
// failure is a *errors.ConfigError carrying the root.
func (l *Loader) Load(root string) (*routes.Tree, error) {
	cfg, err := ReadAppConfig(root)
	if err != nil {
		return nil, rlerrors.NewConfigError("remix config", "", err).WithRoot(root)
	}
	appDir := filepath.Join(root, cfg.AppDirectory)

	if l.opts.Manifest != "" {
		tree, err := l.loadManifest(root, appDir)
		if err != nil {
			return nil, rlerrors.NewConfigError("routes.manifest", l.opts.Manifest, err).WithRoot(root)
		}
		return tree, nil
	}
	if cfg.CustomRoutes {
		debug.LogRoutes("%s defines routes(); only file convention routes are checked unless a manifest is configured\n", cfg.File)
	}

	rootFile, ok := findRootModule(appDir)
	if !ok {
		return nil, rlerrors.NewConfigError("appDirectory", cfg.AppDirectory,
			fmt.Errorf("no root route module in %s", appDir)).WithRoot(root)
	}

	convention := cfg.Convention
	if l.opts.Convention != "" {
		convention = l.opts.Convention
	}
	ignored := append(append([]string(nil), cfg.IgnoredRouteFiles...), l.opts.IgnoredRouteFiles...)

	var children []*routes.Route
	switch convention {
	case ConventionV2:
		children, err = flatRoutes(appDir, ignored)
	case ConventionV1:
		children, err = nestedRoutes(appDir, ignored)
	default:
		err = fmt.Errorf("unknown route convention %q", convention)
	}
	if err != nil {
		return nil, rlerrors.NewConfigError("routes", convention, err).WithRoot(root)
	}

	rootRoute := routes.NewRoute(routes.RootID, "", rootFile, false)
	rootRoute.Children = children
	tree := routes.NewTree(root, appDir, convention, []*routes.Route{rootRoute})
	debug.LogRoutes("loaded %d routes for %s (%s, fingerprint %x)\n", tree.Count(), root, convention, tree.Fingerprint)
	return tree, nil
}

func (l *Loader) loadManifest(root, appDir string) (*routes.Tree, error) {
	p := l.ManifestPath(root)
	f, err := os.Open(p)
	if err != nil {
		return nil, rlerrors.NewFileError("open", p, err)
	}
	defer f.Close()

	rs, err := routes.DecodeManifest(f)
	if err != nil {
		return nil, err
	}
	return routes.NewTree(root, appDir, ConventionManifest, rs), nil
}

// ManifestPath returns the absolute manifest path for root, or "" when no
// manifest is configured.
func (l *Loader) ManifestPath(root string) string {
	if l.opts.Manifest == "" {
		return ""
	}
	if filepath.IsAbs(l.opts.Manifest) {
		return l.opts.Manifest
	}
	return filepath.Join(root, l.opts.Manifest)
}

func findRootModule(appDir string) (string, bool) {
	for _, ext := range []string{".tsx", ".ts", ".jsx", ".js"} {
		if isFile(filepath.Join(appDir, "root"+ext)) {
			return "root" + ext, true
		}
	}
	return "", false
}
