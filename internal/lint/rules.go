// Package lint checks the navigation attributes of JSX files against the
// route tree of the Remix app they belong to.
package lint

import (
	"fmt"
	"sort"
	"strings"
)

// Rule names.
const (
	RuleRequireValidPaths = "require-valid-paths"
	RuleNoRelativePaths   = "no-relative-paths"
	RuleNoURLs            = "no-urls"
	RuleUseLinkForRoutes  = "use-link-for-routes"
)

// AllRules lists every rule in report order.
var AllRules = []string{
	RuleRequireValidPaths,
	RuleNoRelativePaths,
	RuleNoURLs,
	RuleUseLinkForRoutes,
}

// Severity of a rule or finding.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "off"
	}
}

// MarshalText renders the severity as its name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names used in config files, plus the numeric
// levels 0, 1 and 2 and "warning".
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity parses "off", "warn" or "error".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return SeverityOff, nil
	case "warn", "warning", "1":
		return SeverityWarn, nil
	case "error", "2":
		return SeverityError, nil
	}
	return SeverityOff, fmt.Errorf("unknown severity %q (want off, warn or error)", s)
}

// Rules maps rule names to severities. Rules missing from the map are off.
type Rules map[string]Severity

// Enabled reports whether rule is on.
func (r Rules) Enabled(rule string) bool {
	return r[rule] != SeverityOff
}

// Merge returns a copy of r with the entries of other applied on top.
func (r Rules) Merge(other Rules) Rules {
	out := make(Rules, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// IsRule reports whether name is a known rule.
func IsRule(name string) bool {
	for _, r := range AllRules {
		if r == name {
			return true
		}
	}
	return false
}

// Preset names.
const (
	PresetRecommended = "recommended"
	PresetStrict      = "strict"
)

// Preset is a named bundle of rule severities and settings.
type Preset struct {
	Name     string
	Rules    Rules
	Settings Settings
}

// Presets returns the preset called name.
func Presets(name string) (Preset, error) {
	all := Rules{}
	for _, r := range AllRules {
		all[r] = SeverityError
	}
	switch name {
	case "", PresetRecommended:
		return Preset{Name: PresetRecommended, Rules: all, Settings: DefaultSettings()}, nil
	case PresetStrict:
		s := DefaultSettings()
		s.StrictMode = true
		s.EnforceInRouteComponents = true
		return Preset{Name: PresetStrict, Rules: all, Settings: s}, nil
	}
	return Preset{}, fmt.Errorf("unknown preset %q (want %s)", name, strings.Join(PresetNames(), " or "))
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	names := []string{PresetRecommended, PresetStrict}
	sort.Strings(names)
	return names
}
