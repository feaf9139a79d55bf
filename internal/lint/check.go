package lint

import (
	"errors"
	"fmt"

	"github.com/standardbeagle/routelint/internal/routepath"
	"github.com/standardbeagle/routelint/internal/routes"
)

// ErrNoAppContext is returned by CheckPath for files outside any Remix app.
var ErrNoAppContext = errors.New("not part of a Remix app")

// PathCheck is the outcome of checking a single path as if it were
// written in File.
type PathCheck struct {
	Path         string `json:"path"`
	File         string `json:"file"`
	Normalized   string `json:"normalized"`
	CurrentRoute string `json:"currentRoute,omitempty"`
	Resolved     string `json:"resolved,omitempty"`
	Valid        bool   `json:"valid"`
	// Reason says why the path was not validated, e.g. it is a URL.
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CheckPath resolves raw against the route that file renders and validates
// it against file's app. Relative paths need file to be a route module.
func (l *Linter) CheckPath(file, raw string) (*PathCheck, error) {
	tree, err := l.source.Tree(file)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("%s: %w", file, ErrNoAppContext)
	}

	pc := &PathCheck{Path: raw, File: file, Normalized: routepath.Normalize(raw)}
	if current, ok := routes.LocateFile(tree, file); ok {
		pc.CurrentRoute = current
	}
	if routepath.IsURL(pc.Normalized) {
		pc.Reason = "URLs are not route paths"
		return pc, nil
	}

	resolved, ok := routepath.Resolve(pc.CurrentRoute, pc.Normalized)
	if !ok {
		pc.Reason = "relative path outside of a route module"
		return pc, nil
	}
	pc.Resolved = resolved
	if pc.Valid, err = routes.Validate(tree, resolved); err != nil {
		return nil, err
	}
	if !pc.Valid {
		pc.Suggestion, _ = routes.Suggest(tree, resolved)
	}
	return pc, nil
}
