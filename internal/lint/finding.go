package lint

import (
	"sort"
	"strings"
)

// Kind identifies what a finding reports.
type Kind string

const (
	KindInvalidPath       Kind = "invalidPath"
	KindIndeterminatePath Kind = "indeterminatePath"
	KindRelativePath      Kind = "relativePath"
	KindAmbiguousPath     Kind = "ambiguousPath"
	KindURLAsPath         Kind = "urlAsPath"
	KindAnchorForRoute    Kind = "anchorForRoute"
	KindIndeterminateURL  Kind = "indeterminateUrl"
)

var messageTemplates = map[Kind]string{
	KindInvalidPath:       `No route matches "{{toPathNormalized}}". Either create one, or point to a valid route.`,
	KindIndeterminatePath: "Unable to resolve route path statically. Consider providing a constant value.",
	KindRelativePath:      "Relative route path \"{{toPath}}\". Specify absolute paths when using `<{{component}} {{attribute}}>`.",
	KindAmbiguousPath:     "Ambiguous route path \"{{toPath}}\". Specify absolute paths when using `<{{component}} {{attribute}}>` outside of a route.",
	KindURLAsPath:         "`<{{component}} {{attribute}}>` does not support URLs, only paths. Consider using `{{nativeAlternative}}` instead.",
	KindAnchorForRoute:    "Use `<Link to>` when linking within the app. If you want for force a full page load, use `<Link to=... reloadDocument>`.",
	KindIndeterminateURL:  "Unable to resolve URL statically. Consider providing a constant value.",
}

// Message renders the template of kind with data. Unknown placeholders are
// left as written.
func Message(kind Kind, data map[string]string) string {
	tmpl, ok := messageTemplates[kind]
	if !ok {
		return string(kind)
	}
	if len(data) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Finding is one reported problem.
type Finding struct {
	Rule      string            `json:"rule"`
	Kind      Kind              `json:"kind"`
	Severity  Severity          `json:"severity"`
	File      string            `json:"file"`
	Line      int               `json:"line"`
	Column    int               `json:"column"`
	EndLine   int               `json:"endLine"`
	EndColumn int               `json:"endColumn"`
	Data      map[string]string `json:"data,omitempty"`
	Message   string            `json:"message"`
	// Suggestion is a known route path close to an invalid one.
	Suggestion string `json:"suggestion,omitempty"`
}

// SortFindings orders findings by file, then position, then rule.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Rule < b.Rule
	})
}

// Summary counts findings by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Summarize counts findings by severity.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarn:
			s.Warnings++
		}
	}
	return s
}
