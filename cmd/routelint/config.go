package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/standardbeagle/routelint/internal/lint"

	"github.com/urfave/cli/v2"
)

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c, ".")
	if err != nil {
		return failure(err)
	}
	w := c.App.Writer

	fmt.Fprintf(w, "routelint configuration\n")
	fmt.Fprintf(w, "=======================\n\n")

	fmt.Fprintf(w, "Project:\n")
	fmt.Fprintf(w, "  Root:               %s\n", cfg.Project.Root)
	if len(cfg.Sources) == 0 {
		fmt.Fprintf(w, "  Config files:       (defaults)\n")
	} else {
		fmt.Fprintf(w, "  Config files:       %s\n", strings.Join(cfg.Sources, ", "))
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Rules (preset %s):\n", cfg.Preset)
	for _, rule := range lint.AllRules {
		fmt.Fprintf(w, "  %-20s %s\n", rule, cfg.Rules[rule])
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Settings:\n")
	fmt.Fprintf(w, "  Strict mode:                 %t\n", cfg.Settings.StrictMode)
	fmt.Fprintf(w, "  Enforce in route components: %t\n", cfg.Settings.EnforceInRouteComponents)
	fmt.Fprintf(w, "  Allow links to self:         %t\n", cfg.Settings.AllowLinksToSelf)
	fmt.Fprintf(w, "  Resolve constants:           %t\n", cfg.Settings.ResolveConstants)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Routes:\n")
	fmt.Fprintf(w, "  Manifest:           %s\n", orNone(cfg.Routes.Manifest))
	fmt.Fprintf(w, "  Convention:         %s\n", orNone(cfg.Routes.Convention))
	fmt.Fprintf(w, "  Watch:              %t (debounce %d ms)\n", cfg.Routes.Watch, cfg.Routes.DebounceMs)
	fmt.Fprintf(w, "  Jobs:               %d\n", cfg.Jobs())
	fmt.Fprintf(w, "\n")

	if len(cfg.Matchers) > 0 {
		fmt.Fprintf(w, "Extra matchers (%d):\n", len(cfg.Matchers))
		for _, m := range cfg.Matchers {
			fmt.Fprintf(w, "  <%s %s>\n", m.Component, m.Attribute)
		}
		fmt.Fprintf(w, "\n")
	}

	writePatterns(w, "Include", cfg.Include)
	fmt.Fprintf(w, "\n")
	writePatterns(w, "Exclude", cfg.Exclude)
	return nil
}

func writePatterns(w io.Writer, title string, patterns []string) {
	fmt.Fprintf(w, "%s patterns (%d):\n", title, len(patterns))
	for _, p := range patterns {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
