package config

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/lint"
)

// maxDebounceMs caps the watch debounce; longer delays make watch mode
// look broken.
const maxDebounceMs = 60_000

func newConfigError(field, value string, err error) error {
	return rlerrors.NewConfigError(field, value, err)
}

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return newConfigError("project", "", errors.New("project root cannot be empty"))
	}
	if err := v.validateRules(cfg.Rules); err != nil {
		return err
	}
	if err := v.validateMatchers(cfg); err != nil {
		return err
	}
	if err := v.validateRoutes(&cfg.Routes); err != nil {
		return err
	}
	if cfg.Performance.Jobs < 0 {
		return newConfigError("performance.jobs", fmt.Sprint(cfg.Performance.Jobs), errors.New("jobs cannot be negative"))
	}
	if cfg.Performance.MaxFileKB < 0 {
		return newConfigError("performance.max_file_kb", fmt.Sprint(cfg.Performance.MaxFileKB), errors.New("max_file_kb cannot be negative"))
	}
	if err := v.validatePatterns("include", cfg.Include); err != nil {
		return err
	}
	if err := v.validatePatterns("exclude", cfg.Exclude); err != nil {
		return err
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateRules(rules lint.Rules) error {
	for name, sev := range rules {
		if !lint.IsRule(name) {
			return newConfigError("rules", name, errors.New("unknown rule"))
		}
		if sev < lint.SeverityOff || sev > lint.SeverityError {
			return newConfigError("rules."+name, fmt.Sprint(int(sev)), errors.New("severity out of range"))
		}
	}
	return nil
}

func (v *Validator) validateMatchers(cfg *Config) error {
	for _, m := range cfg.Matchers {
		if m.Component == "" || m.Attribute == "" {
			return newConfigError("matchers", m.Component+" "+m.Attribute, errors.New("matcher needs a component and an attribute"))
		}
	}
	return nil
}

func (v *Validator) validateRoutes(r *Routes) error {
	switch r.Convention {
	case "", "v1", "v2":
	default:
		return newConfigError("routes.convention", r.Convention, errors.New(`convention must be "v1" or "v2"`))
	}
	if r.DebounceMs < 0 || r.DebounceMs > maxDebounceMs {
		return newConfigError("routes.debounce_ms", fmt.Sprint(r.DebounceMs),
			fmt.Errorf("debounce must be between 0 and %d", maxDebounceMs))
	}
	return v.validatePatterns("routes.ignored_route_files", r.IgnoredRouteFiles)
}

func (v *Validator) validatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return newConfigError(field, p, errors.New("invalid glob pattern"))
		}
	}
	return nil
}

// setSmartDefaults fills in values left at zero
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Routes.DebounceMs == 0 {
		cfg.Routes.DebounceMs = DefaultDebounceMs
	}
	if cfg.Performance.Jobs == 0 {
		cfg.Performance.Jobs = cfg.Jobs()
	}
	if cfg.Performance.MaxFileKB == 0 {
		cfg.Performance.MaxFileKB = DefaultMaxFileKB
	}
	if len(cfg.Include) == 0 {
		cfg.Include = DefaultInclude()
	}
	if cfg.Rules == nil {
		cfg.Rules = lint.Rules{}
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
