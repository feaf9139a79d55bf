package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/standardbeagle/routelint/internal/config"
	"github.com/standardbeagle/routelint/internal/debug"
	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/lint"
	"github.com/standardbeagle/routelint/internal/runner"
	"github.com/standardbeagle/routelint/internal/version"

	"github.com/urfave/cli/v2"
)

// Exit codes. Findings at error severity exit 1; anything that stops a run
// from completing exits 2.
const (
	exitFindings = 1
	exitFailure  = 2
)

// loadConfigWithOverrides loads the configuration for the project containing
// start and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context, start string) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = projectDir(start)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.LoadWithRoot(c.String("config"), absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI flag overrides
	if c.IsSet("preset") {
		preset, err := lint.Presets(c.String("preset"))
		if err != nil {
			return nil, err
		}
		cfg.Preset = preset.Name
		cfg.Rules = preset.Rules
		cfg.Settings = preset.Settings
	}
	if c.IsSet("strict") {
		cfg.Settings.StrictMode = c.Bool("strict")
	}
	if c.IsSet("enforce-in-route-components") {
		cfg.Settings.EnforceInRouteComponents = c.Bool("enforce-in-route-components")
	}
	if c.IsSet("allow-links-to-self") {
		cfg.Settings.AllowLinksToSelf = c.Bool("allow-links-to-self")
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if c.IsSet("jobs") {
		cfg.Performance.Jobs = c.Int("jobs")
	}
	if c.IsSet("manifest") {
		cfg.Routes.Manifest = c.String("manifest")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// projectDir returns the Remix project containing start, or start's own
// directory when there is none.
func projectDir(start string) string {
	if start == "" {
		start = "."
	}
	if info, err := os.Stat(start); err == nil && !info.IsDir() {
		start = filepath.Dir(start)
	}
	if root, err := runner.ProjectRoot(start); err == nil {
		return root
	}
	return start
}

// warnLogger routes config warnings to the app's error writer.
func warnLogger(c *cli.Context) *log.Logger {
	return log.New(c.App.ErrWriter, "routelint: warning: ", 0)
}

// failure maps an error that stopped a command to its exit code.
func failure(err error) error {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return err
	}
	if rlerrors.IsInternalError(err) {
		return cli.Exit(fmt.Sprintf("internal error: %v", err), exitFailure)
	}
	return cli.Exit(err.Error(), exitFailure)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "routelint",
		Usage:                  "Check Remix <Link>, <NavLink>, <Form> and <a> paths against the app's routes",
		UsageText:              "routelint [global options] [path...]\n   routelint command [command options] [arguments...]",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		// main owns process exit so the app can run inside tests
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (.kdl or .toml); default is the project's .routelint.kdl or routelint.toml",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root (default: the Remix project containing the first path)",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Rule preset: recommended or strict",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Report attribute values that cannot be resolved statically",
			},
			&cli.BoolFlag{
				Name:  "enforce-in-route-components",
				Usage: "Report relative paths inside route modules too",
			},
			&cli.BoolFlag{
				Name:  "allow-links-to-self",
				Usage: `Let "", "." and "./" through no-relative-paths`,
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Read routes from a 'remix routes --json' manifest instead of the file system",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Lint only files matching glob patterns (e.g., --include 'app/**/*.tsx')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g., --exclude '**/stories/**')",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Files linted concurrently (default: CPUs - 1)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or compact",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Write debug information to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "Write debug information to a file in the temp directory",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.EnableDebug = "true"
			}
			if c.Bool("debug-log") {
				debug.EnableDebug = "true"
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "routelint: debug log: %s\n", path)
			} else if debug.IsDebugEnabled() {
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "lint",
				Aliases:   []string{"l"},
				Usage:     "Lint files or directories (the default command)",
				ArgsUsage: "[path...]",
				Action:    lintCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Lint, then lint again whenever sources or routes change",
				ArgsUsage: "[path...]",
				Action:    watchCommand,
			},
			{
				Name:      "routes",
				Usage:     "Show the route tree of the app containing a directory",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "files",
						Usage: "Show each route's module file",
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum depth to show (0 = unlimited)",
					},
				},
				Action: routesCommand,
			},
			{
				Name:      "check",
				Usage:     "Check a single route path",
				ArgsUsage: "PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Source file the path is written in; relative paths resolve against its route",
					},
				},
				Action: checkCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the lint tools over the Model Context Protocol on stdio",
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show the effective configuration",
						Action: configShowCommand,
					},
				},
			},
		},
		Action: lintCommand,
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	debug.CloseDebugLog()
	if err == nil {
		return
	}

	code := exitFailure
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "routelint: %s\n", msg)
	}
	os.Exit(code)
}
