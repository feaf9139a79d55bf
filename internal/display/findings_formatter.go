package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/standardbeagle/routelint/internal/lint"
	"github.com/standardbeagle/routelint/pkg/pathutil"
)

// FindingsFormatter formats lint findings for display
type FindingsFormatter struct {
	options FormatterOptions
}

// NewFindingsFormatter creates a new findings formatter
func NewFindingsFormatter(options FormatterOptions) *FindingsFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &FindingsFormatter{options: options}
}

// Format renders findings, which must already be sorted by file.
func (ff *FindingsFormatter) Format(findings []lint.Finding) string {
	switch ff.options.Format {
	case "json":
		return ff.formatJSON(findings)
	case "compact":
		return ff.formatCompact(findings)
	default:
		return ff.formatText(findings)
	}
}

// formatText groups findings under their file, one aligned row each
func (ff *FindingsFormatter) formatText(findings []lint.Finding) string {
	if len(findings) == 0 {
		return ""
	}
	var sb strings.Builder

	posWidth, sevWidth := 0, 0
	for _, f := range findings {
		posWidth = max(posWidth, len(position(f)))
		sevWidth = max(sevWidth, len(f.Severity.String()))
	}

	file := ""
	for _, f := range findings {
		if f.File != file {
			if file != "" {
				sb.WriteString("\n")
			}
			file = f.File
			sb.WriteString(pathutil.ToRelative(file, ff.options.BaseDir))
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s%-*s  %-*s  %s  %s\n", ff.options.Indent,
			posWidth, position(f), sevWidth, f.Severity, f.Message, f.Rule)
		if f.Suggestion != "" {
			fmt.Fprintf(&sb, "%s%*s  did you mean %q?\n", ff.options.Indent, posWidth+sevWidth+2, "", f.Suggestion)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(SummaryLine(lint.Summarize(findings)))
	sb.WriteString("\n")
	return sb.String()
}

// formatCompact writes one grep-style line per finding
func (ff *FindingsFormatter) formatCompact(findings []lint.Finding) string {
	var sb strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s [%s]\n",
			pathutil.ToRelative(f.File, ff.options.BaseDir), f.Line, f.Column, f.Severity, f.Message, f.Rule)
	}
	return sb.String()
}

type findingsJSON struct {
	Findings []lint.Finding `json:"findings"`
	Summary  lint.Summary   `json:"summary"`
}

func (ff *FindingsFormatter) formatJSON(findings []lint.Finding) string {
	if findings == nil {
		findings = []lint.Finding{}
	}
	data, err := json.MarshalIndent(findingsJSON{
		Findings: findings,
		Summary:  lint.Summarize(findings),
	}, "", ff.options.Indent)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data) + "\n"
}

// SummaryLine describes the totals, e.g. "3 problems (2 errors, 1 warning)".
func SummaryLine(s lint.Summary) string {
	total := s.Errors + s.Warnings
	if total == 0 {
		return "No problems found"
	}
	return fmt.Sprintf("%s (%s, %s)", plural(total, "problem"), plural(s.Errors, "error"), plural(s.Warnings, "warning"))
}

func position(f lint.Finding) string {
	return fmt.Sprintf("%d:%d", f.Line, f.Column)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
