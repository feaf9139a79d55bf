package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/jsx"
)

// tomlFile mirrors the KDL layout. Pointers tell unset values apart from
// zero values so a file only overrides what it names.
type tomlFile struct {
	Version          *int              `toml:"version"`
	Preset           *string           `toml:"preset"`
	Settings         tomlSettings      `toml:"settings"`
	Rules            map[string]string `toml:"rules"`
	Matchers         []jsx.Matcher     `toml:"matchers"`
	Routes           tomlRoutes        `toml:"routes"`
	Performance      tomlPerformance   `toml:"performance"`
	Include          []string          `toml:"include"`
	Exclude          []string          `toml:"exclude"`
	RespectGitignore *bool             `toml:"respect_gitignore"`
}

type tomlSettings struct {
	StrictMode               *bool `toml:"strict_mode"`
	EnforceInRouteComponents *bool `toml:"enforce_in_route_components"`
	AllowLinksToSelf         *bool `toml:"allow_links_to_self"`
	ResolveConstants         *bool `toml:"resolve_constants"`
}

type tomlRoutes struct {
	Manifest          *string  `toml:"manifest"`
	Convention        *string  `toml:"convention"`
	IgnoredRouteFiles []string `toml:"ignored_route_files"`
	Watch             *bool    `toml:"watch"`
	DebounceMs        *int     `toml:"debounce_ms"`
}

type tomlPerformance struct {
	Jobs      *int `toml:"jobs"`
	MaxFileKB *int `toml:"max_file_kb"`
}

// applyTOMLFile applies the routelint.toml file at path to cfg. A missing
// file is not an error.
func applyTOMLFile(cfg *Config, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, newConfigError("config", path, err)
	}
	if err := parseTOML(cfg, content); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Sources = append(cfg.Sources, path)
	debug.Printf("applied config %s\n", path)
	return true, nil
}

func parseTOML(cfg *Config, content []byte) error {
	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return newConfigError("toml", "", fmt.Errorf("failed to parse TOML config: %w", err))
	}

	if f.Preset != nil {
		if err := applyPreset(cfg, *f.Preset); err != nil {
			return err
		}
	}
	if f.Version != nil {
		cfg.Version = *f.Version
	}

	setBool(&cfg.Settings.StrictMode, f.Settings.StrictMode)
	setBool(&cfg.Settings.EnforceInRouteComponents, f.Settings.EnforceInRouteComponents)
	setBool(&cfg.Settings.AllowLinksToSelf, f.Settings.AllowLinksToSelf)
	setBool(&cfg.Settings.ResolveConstants, f.Settings.ResolveConstants)

	for rule, severity := range f.Rules {
		if err := setRule(cfg, rule, severity); err != nil {
			return err
		}
	}

	for _, m := range f.Matchers {
		if m.Component == "" || m.Attribute == "" {
			return newConfigError("matchers", m.Component, fmt.Errorf("matcher needs a component and an attribute"))
		}
		if m.NativeAlternative == "" {
			m.NativeAlternative = "<a href>"
		}
		cfg.Matchers = jsx.MergeMatchers(cfg.Matchers, []jsx.Matcher{m})
	}

	if f.Routes.Manifest != nil {
		cfg.Routes.Manifest = *f.Routes.Manifest
	}
	if f.Routes.Convention != nil {
		cfg.Routes.Convention = *f.Routes.Convention
	}
	cfg.Routes.IgnoredRouteFiles = appendUnique(cfg.Routes.IgnoredRouteFiles, f.Routes.IgnoredRouteFiles...)
	setBool(&cfg.Routes.Watch, f.Routes.Watch)
	if f.Routes.DebounceMs != nil {
		cfg.Routes.DebounceMs = *f.Routes.DebounceMs
	}
	if f.Performance.Jobs != nil {
		cfg.Performance.Jobs = *f.Performance.Jobs
	}
	if f.Performance.MaxFileKB != nil {
		cfg.Performance.MaxFileKB = *f.Performance.MaxFileKB
	}

	if f.Include != nil {
		cfg.Include = appendUnique(nil, f.Include...)
	}
	cfg.Exclude = appendUnique(cfg.Exclude, f.Exclude...)
	setBool(&cfg.RespectGitignore, f.RespectGitignore)
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
