package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/standardbeagle/routelint/internal/routes"
	"github.com/standardbeagle/routelint/pkg/pathutil"
)

// TreeFormatter formats route trees for display
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls tree and findings formatting
type FormatterOptions struct {
	Format    string // "text", "json", "compact"
	ShowFiles bool   // Show the route module of each route
	MaxDepth  int    // Maximum depth to display, 0 = unlimited
	Indent    string // Indentation string
	BaseDir   string // File paths are shown relative to this directory
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &TreeFormatter{options: options}
}

// Format formats a route tree for display
func (tf *TreeFormatter) Format(tree *routes.Tree) string {
	if tree == nil || len(tree.Routes) == 0 {
		return "No routes found"
	}

	switch tf.options.Format {
	case "json":
		return tf.formatJSON(tree)
	case "compact":
		return tf.formatCompact(tree)
	default:
		return tf.formatText(tree)
	}
}

// formatText draws the nesting with box characters
func (tf *TreeFormatter) formatText(tree *routes.Tree) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Routes for %s\n", pathutil.ToRelative(tree.Root, tf.options.BaseDir))
	fmt.Fprintf(&sb, "Source: %s, %d routes\n\n", tree.Source, tree.Count())

	for i, r := range tree.Routes {
		tf.formatNode(&sb, r, "/", "", i == len(tree.Routes)-1, true, 0)
	}
	return sb.String()
}

func (tf *TreeFormatter) formatNode(sb *strings.Builder, r *routes.Route, parentPath, prefix string, isLast, isRoot bool, depth int) {
	if tf.options.MaxDepth > 0 && depth > tf.options.MaxDepth {
		return
	}

	var branch string
	switch {
	case isRoot:
		branch = "→ "
	case isLast:
		branch = "└─→ "
	default:
		branch = "├─→ "
	}

	fullPath := joinRoutePath(parentPath, r.Path)
	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(routeLabel(r, fullPath))
	if tf.options.ShowFiles && r.File != "" {
		fmt.Fprintf(sb, " [%s]", r.File)
	}
	sb.WriteString("\n")

	var childPrefix string
	if isRoot || isLast {
		childPrefix = prefix + tf.options.Indent
	} else {
		childPrefix = prefix + "│" + strings.Repeat(" ", max(0, len(tf.options.Indent)-1))
	}
	for i, child := range r.Children {
		tf.formatNode(sb, child, fullPath, childPrefix, i == len(r.Children)-1, false, depth+1)
	}
}

// routeLabel names a route by the URL it renders, with its kind when
// that is not obvious from the path.
func routeLabel(r *routes.Route, fullPath string) string {
	switch r.Kind {
	case routes.KindIndex:
		return fullPath + " (index)"
	case routes.KindPathless:
		if r.ID == routes.RootID {
			return r.ID
		}
		return "(" + r.ID + ")"
	default:
		return fullPath
	}
}

func joinRoutePath(parent, p string) string {
	if p == "" {
		return parent
	}
	return strings.TrimSuffix(parent, "/") + "/" + strings.Trim(p, "/")
}

// formatCompact lists the distinct paths on one line
func (tf *TreeFormatter) formatCompact(tree *routes.Tree) string {
	return strings.Join(routes.Paths(tree), " ")
}

type treeJSON struct {
	Root        string          `json:"root"`
	AppDir      string          `json:"appDirectory"`
	Source      string          `json:"source"`
	Count       int             `json:"count"`
	Fingerprint string          `json:"fingerprint"`
	Paths       []string        `json:"paths"`
	Routes      []*routes.Route `json:"routes"`
}

func (tf *TreeFormatter) formatJSON(tree *routes.Tree) string {
	data, err := json.MarshalIndent(treeJSON{
		Root:        tree.Root,
		AppDir:      tree.AppDirectory,
		Source:      tree.Source,
		Count:       tree.Count(),
		Fingerprint: fmt.Sprintf("%016x", tree.Fingerprint),
		Paths:       routes.Paths(tree),
		Routes:      tree.Routes,
	}, "", tf.options.Indent)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}
