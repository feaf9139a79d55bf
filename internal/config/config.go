package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/jsx"
	"github.com/standardbeagle/routelint/internal/lint"
)

// Config file names, looked up in the project root. The KDL file wins when
// both exist.
const (
	KDLFileName  = ".routelint.kdl"
	TOMLFileName = "routelint.toml"
)

// DefaultDebounceMs is the watch debounce used when none is configured.
const DefaultDebounceMs = 100

// DefaultMaxFileKB is the largest source file linted. Bigger files are
// almost always generated bundles.
const DefaultMaxFileKB = 1024

type Config struct {
	Version     int
	Project     Project
	Preset      string
	Settings    lint.Settings
	Rules       lint.Rules
	Matchers    []jsx.Matcher // added to the built-in routing matchers
	Routes      Routes
	Performance Performance
	Include     []string
	Exclude     []string
	// RespectGitignore skips files matched by the project's .gitignore
	RespectGitignore bool
	// Sources lists the config files that were applied, lowest precedence
	// first.
	Sources []string
}

type Project struct {
	Root string
}

// Routes controls how route trees are loaded.
type Routes struct {
	Manifest          string // `remix routes --json` output, relative to the project root
	Convention        string // "", "v1" or "v2"; empty follows the Remix config
	IgnoredRouteFiles []string
	Watch             bool
	DebounceMs        int
}

type Performance struct {
	Jobs      int // files linted concurrently; 0 = NumCPU-1
	MaxFileKB int // larger files are reported and skipped
}

// Default returns the configuration used when no config file exists.
func Default(root string) *Config {
	preset, _ := lint.Presets(lint.PresetRecommended)
	return &Config{
		Version:  1,
		Project:  Project{Root: root},
		Preset:   preset.Name,
		Settings: preset.Settings,
		Rules:    preset.Rules,
		Routes: Routes{
			DebounceMs: DefaultDebounceMs,
		},
		Performance: Performance{
			MaxFileKB: DefaultMaxFileKB,
		},
		Include:          DefaultInclude(),
		Exclude:          DefaultExclude(),
		RespectGitignore: true,
	}
}

// DefaultInclude matches every source file the JSX parser understands.
func DefaultInclude() []string {
	return []string{"**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts}"}
}

// DefaultExclude skips dependencies, build output and hidden directories.
func DefaultExclude() []string {
	return []string{
		"**/node_modules/**",
		"**/.*/**",
		"**/build/**",
		"**/public/build/**",
		"**/dist/**",
		"**/coverage/**",
		"**/*.d.ts",
		"**/*.min.js",
	}
}

// Load reads the configuration for the current directory.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot builds the configuration for rootDir: defaults, then the
// global ~/.routelint.kdl, then either the file at path or the project's
// own config file. Later layers override settings and rules; exclusions
// accumulate.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	absRoot, err := filepath.Abs(searchDir)
	if err != nil {
		absRoot = searchDir
	}

	cfg := Default(absRoot)

	// Step 1: global base config
	if homeDir, err := os.UserHomeDir(); err == nil && filepath.Clean(homeDir) != absRoot {
		if _, err := applyKDLFile(cfg, filepath.Join(homeDir, KDLFileName)); err != nil {
			return nil, err
		}
	}

	// Step 2: explicit file or project config
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	} else {
		found, err := applyKDLFile(cfg, filepath.Join(absRoot, KDLFileName))
		if err != nil {
			return nil, err
		}
		tomlPath := filepath.Join(absRoot, TOMLFileName)
		if !found {
			if _, err := applyTOMLFile(cfg, tomlPath); err != nil {
				return nil, err
			}
		} else if _, err := os.Stat(tomlPath); err == nil {
			debug.Printf("ignoring %s, %s takes precedence\n", tomlPath, KDLFileName)
		}
	}

	// Enrich exclusions with the project's build output directories
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// applyFile applies an explicitly named config file, picking the format
// from its extension.
func applyFile(cfg *Config, path string) error {
	var (
		found bool
		err   error
	)
	switch filepath.Ext(path) {
	case ".toml":
		found, err = applyTOMLFile(cfg, path)
	default:
		found, err = applyKDLFile(cfg, path)
	}
	if err != nil {
		return err
	}
	if !found {
		return newConfigError("config", path, os.ErrNotExist)
	}
	return nil
}

// applyPreset resets rules and settings to the named preset.
func applyPreset(cfg *Config, name string) error {
	preset, err := lint.Presets(name)
	if err != nil {
		return newConfigError("preset", name, err)
	}
	cfg.Preset = preset.Name
	cfg.Rules = preset.Rules
	cfg.Settings = preset.Settings
	return nil
}

// setRule parses and stores one rule severity.
func setRule(cfg *Config, rule, severity string) error {
	sev, err := lint.ParseSeverity(severity)
	if err != nil {
		return newConfigError("rules."+rule, severity, err)
	}
	cfg.Rules = cfg.Rules.Merge(lint.Rules{rule: sev})
	return nil
}

// appendUnique appends patterns that are not already present.
func appendUnique(dst []string, patterns ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, p := range dst {
		seen[p] = true
	}
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			dst = append(dst, p)
		}
	}
	return dst
}

// EnrichExclusionsWithBuildArtifacts detects build output directories from
// the project's Remix and package configuration and excludes them.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}
	detected := NewBuildArtifactDetector(c.Project.Root).DetectOutputDirectories()
	if len(detected) > 0 {
		c.Exclude = appendUnique(c.Exclude, detected...)
	}
}

// Jobs returns the configured concurrency, never less than one.
func (c *Config) Jobs() int {
	if c.Performance.Jobs > 0 {
		return c.Performance.Jobs
	}
	return max(1, runtime.NumCPU()-1)
}
