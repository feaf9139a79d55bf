package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/jsx"
)

// LoadKDL loads .routelint.kdl from projectRoot on top of the defaults.
// It returns nil when the file does not exist.
func LoadKDL(projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)
	found, err := applyKDLFile(cfg, filepath.Join(projectRoot, KDLFileName))
	if err != nil || !found {
		return nil, err
	}
	return cfg, nil
}

// applyKDLFile applies the KDL file at path to cfg. A missing file is not
// an error.
func applyKDLFile(cfg *Config, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, newConfigError("config", path, err)
	}
	if err := parseKDL(cfg, string(content)); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Sources = append(cfg.Sources, path)
	debug.Printf("applied config %s\n", path)
	return true, nil
}

// parseKDL applies a .routelint.kdl document to cfg. Children written on
// one line need a terminating semicolon, including the last one:
//
//	preset "strict"
//	settings { strict_mode true; allow_links_to_self false; }
//	rules { no-urls "warn"; }
//	matchers { matcher "ButtonLink" "href" "<a href>"; }
//	routes { manifest "routes.json"; convention "v2"; watch true; debounce_ms 200; }
//	include "app/**/*.tsx"
//	exclude { "**/*.stories.tsx"; }
//	performance { jobs 4; max_file_kb 512; }
func parseKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return newConfigError("kdl", "", fmt.Errorf("failed to parse KDL config: %w", err))
	}

	// the preset resets rules and settings, so it goes first wherever it
	// is written
	for _, n := range doc.Nodes {
		if nodeName(n) == "preset" {
			if s, ok := firstStringArg(n); ok {
				if err := applyPreset(cfg, s); err != nil {
					return err
				}
			}
		}
	}

	includeSet := false
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "settings":
			for _, cn := range n.Children {
				b, ok := firstBoolArg(cn)
				if !ok {
					return newConfigError("settings."+nodeName(cn), argString(cn), fmt.Errorf("expected true or false"))
				}
				switch nodeName(cn) {
				case "strict_mode":
					cfg.Settings.StrictMode = b
				case "enforce_in_route_components":
					cfg.Settings.EnforceInRouteComponents = b
				case "allow_links_to_self":
					cfg.Settings.AllowLinksToSelf = b
				case "resolve_constants":
					cfg.Settings.ResolveConstants = b
				default:
					return newConfigError("settings", nodeName(cn), fmt.Errorf("unknown setting"))
				}
			}
		case "rules":
			for _, cn := range n.Children {
				s, _ := firstStringArg(cn)
				if err := setRule(cfg, nodeName(cn), s); err != nil {
					return err
				}
			}
		case "matchers":
			for _, cn := range n.Children {
				if nodeName(cn) != "matcher" {
					continue
				}
				args := collectStringArgs(cn)
				if len(args) < 2 {
					return newConfigError("matchers", argString(cn), fmt.Errorf("matcher needs a component and an attribute"))
				}
				m := jsx.Matcher{Component: args[0], Attribute: args[1], NativeAlternative: "<a href>"}
				if len(args) > 2 {
					m.NativeAlternative = args[2]
				}
				cfg.Matchers = jsx.MergeMatchers(cfg.Matchers, []jsx.Matcher{m})
			}
		case "routes":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "manifest":
					assignString(cn, func(v string) { cfg.Routes.Manifest = v })
				case "convention":
					assignString(cn, func(v string) { cfg.Routes.Convention = v })
				case "ignored_route_files":
					cfg.Routes.IgnoredRouteFiles = appendUnique(cfg.Routes.IgnoredRouteFiles, collectStringArgs(cn)...)
				case "watch":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Routes.Watch = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Routes.DebounceMs = v
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				v, ok := firstIntArg(cn)
				if !ok {
					continue
				}
				switch nodeName(cn) {
				case "jobs":
					cfg.Performance.Jobs = v
				case "max_file_kb":
					cfg.Performance.MaxFileKB = v
				}
			}
		case "include":
			// the first include in a file replaces the inherited list
			if !includeSet {
				cfg.Include = nil
				includeSet = true
			}
			cfg.Include = appendUnique(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = appendUnique(cfg.Exclude, collectStringArgs(n)...)
		case "respect_gitignore":
			if b, ok := firstBoolArg(n); ok {
				cfg.RespectGitignore = b
			}
		case "preset":
		default:
			debug.Printf("ignoring unknown config node %q\n", nodeName(n))
		}
	}
	return nil
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func argString(n *document.Node) string {
	if len(n.Arguments) == 0 {
		return ""
	}
	return fmt.Sprint(n.Arguments[0].Value)
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// inline form: exclude "a" "b"
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// block form: exclude { "a"; "b"; }, where each string is a child node name
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
func assignString(n *document.Node, set func(string)) {
	if s, ok := firstStringArg(n); ok {
		set(s)
	}
}
