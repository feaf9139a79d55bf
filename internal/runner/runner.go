// Package runner wires a loaded configuration to a route cache and a
// linter, and lints sets of files concurrently. The CLI and the MCP server
// both drive the linter through it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/routelint/internal/config"
	"github.com/standardbeagle/routelint/internal/debug"
	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/lint"
	"github.com/standardbeagle/routelint/internal/remix"
	"github.com/standardbeagle/routelint/internal/routes"
	"github.com/standardbeagle/routelint/internal/security"
)

// ErrNoProject is returned when no Remix config exists at or above a
// directory.
var ErrNoProject = errors.New("no Remix project found")

// Files above this size are screened for binary or minified content.
const validateAboveKB = 64

// Result is the outcome of one lint run.
type Result struct {
	Files    int
	Findings []lint.Finding
	Summary  lint.Summary
	// FileErrors holds files that could not be read or parsed, or that
	// look generated. They do not stop the run.
	FileErrors []error
	Duration   time.Duration
}

// Runner owns the route cache and linter built from a configuration.
type Runner struct {
	cfg       *config.Config
	cache     *remix.Cache
	linter    *lint.Linter
	scanner   *config.FileScanner
	validator *security.FileValidator

	watching      bool
	routesChanged chan struct{}
	runs          atomic.Int64
}

type options struct {
	logger lint.Logger
	watch  bool
}

// Option configures a Runner.
type Option func(*options)

// WithLogger sets where route config warnings go.
func WithLogger(logger lint.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithWatch makes the route cache follow route files on disk, as Watch
// needs. Without it trees are loaded once.
func WithWatch() Option {
	return func(o *options) { o.watch = true }
}

// New builds a runner for a validated configuration.
func New(cfg *config.Config, opts ...Option) *Runner {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &Runner{
		cfg:           cfg,
		scanner:       config.NewFileScanner(cfg),
		validator:     security.NewFileValidator(validateAboveKB, int64(cfg.Performance.MaxFileKB)),
		watching:      o.watch || cfg.Routes.Watch,
		routesChanged: make(chan struct{}, 1),
	}

	loader := remix.NewLoader(remix.LoaderOptions{
		Manifest:          cfg.Routes.Manifest,
		Convention:        cfg.Routes.Convention,
		IgnoredRouteFiles: cfg.Routes.IgnoredRouteFiles,
	})
	var cacheOpts []remix.CacheOption
	if r.watching {
		cacheOpts = append(cacheOpts,
			remix.WithWatch(r.debounce()),
			remix.WithOnInvalidate(func(root string) {
				debug.LogWatch("routes of %s changed, relinting\n", root)
				select {
				case r.routesChanged <- struct{}{}:
				default:
				}
			}))
	}
	r.cache = remix.NewCache(loader, cacheOpts...)

	r.linter = lint.New(r.cache,
		lint.WithSettings(cfg.Settings),
		lint.WithRules(cfg.Rules),
		lint.WithMatchers(cfg.Matchers),
		lint.WithLogger(o.logger),
	)
	return r
}

// Config returns the runner's configuration.
func (r *Runner) Config() *config.Config {
	return r.cfg
}

// Linter returns the underlying linter.
func (r *Runner) Linter() *lint.Linter {
	return r.linter
}

// Close stops route watchers and releases the parsers.
func (r *Runner) Close() error {
	err := r.cache.Close()
	r.linter.Close()
	return err
}

func (r *Runner) debounce() time.Duration {
	ms := r.cfg.Routes.DebounceMs
	if ms <= 0 {
		ms = config.DefaultDebounceMs
	}
	return time.Duration(ms) * time.Millisecond
}

// Files lists the source files below paths, or the project root.
func (r *Runner) Files(ctx context.Context, paths ...string) ([]string, error) {
	return r.scanner.Scan(ctx, paths...)
}

// Lint scans paths and lints every file found.
func (r *Runner) Lint(ctx context.Context, paths ...string) (*Result, error) {
	files, err := r.Files(ctx, paths...)
	if err != nil {
		return nil, err
	}
	return r.LintFiles(ctx, files)
}

// LintFiles lints files with at most cfg.Jobs() in flight. Read and
// parse failures are collected per file; an internal error aborts the run.
func (r *Runner) LintFiles(ctx context.Context, files []string) (*Result, error) {
	start := time.Now()
	perFile := make([][]lint.Finding, len(files))
	fileErrs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Jobs())
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.validator.Validate(file); err != nil {
				fileErrs[i] = rlerrors.NewFileError("validate", file, err)
				return nil
			}
			findings, err := r.linter.LintPath(file)
			if rlerrors.IsInternalError(err) {
				return fmt.Errorf("%s: %w", file, err)
			}
			perFile[i], fileErrs[i] = findings, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Files: len(files)}
	for i := range files {
		res.Findings = append(res.Findings, perFile[i]...)
		if fileErrs[i] != nil {
			res.FileErrors = append(res.FileErrors, fileErrs[i])
		}
	}
	lint.SortFindings(res.Findings)
	res.Summary = lint.Summarize(res.Findings)
	res.Duration = time.Since(start)
	r.runs.Add(1)
	debug.LogLint("linted %d files in %v: %d errors, %d warnings\n",
		res.Files, res.Duration, res.Summary.Errors, res.Summary.Warnings)
	return res, nil
}

// Runs counts completed lint runs.
func (r *Runner) Runs() int64 {
	return r.runs.Load()
}

// ProjectRoot finds the Remix project containing dir.
func ProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	root, _, ok := remix.FindProjectRoot(abs, nil)
	if !ok {
		return "", fmt.Errorf("%s: %w", dir, ErrNoProject)
	}
	return root, nil
}

// Routes returns the route tree of the project containing dir.
func (r *Runner) Routes(dir string) (*routes.Tree, error) {
	root, err := ProjectRoot(dir)
	if err != nil {
		return nil, err
	}
	return r.cache.TreeForRoot(root)
}

// Reload drops every cached route tree so the next lookup reads the route
// files again.
func (r *Runner) Reload() {
	r.cache.InvalidateAll()
}

// Check validates a single path as if written in file. An empty file
// checks against the project containing dir with no current route.
func (r *Runner) Check(dir, file, path string) (*lint.PathCheck, error) {
	if file == "" {
		root, err := ProjectRoot(dir)
		if err != nil {
			return nil, err
		}
		file, _ = remix.ConfigFile(root)
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	return r.linter.CheckPath(abs, path)
}
