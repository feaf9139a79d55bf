package routes

import (
	"strings"

	"github.com/standardbeagle/routelint/pkg/pathutil"
)

// Locate returns the full route path rendered by a route module.
// relFile is relative to the app directory with forward slashes, e.g.
// "routes/foo/bar.tsx". Files that are not route modules return false.
func Locate(tree *Tree, relFile string) (string, bool) {
	if tree == nil {
		return "", false
	}
	return locate(tree.Routes, relFile, nil, 0)
}

// LocateFile is Locate for an absolute file path.
func LocateFile(tree *Tree, file string) (string, bool) {
	if tree == nil {
		return "", false
	}
	rel, ok := pathutil.SlashRel(file, tree.AppDirectory)
	if !ok {
		return "", false
	}
	return Locate(tree, rel)
}

func locate(routes []*Route, relFile string, parts []string, depth int) (string, bool) {
	if depth > maxDepth {
		return "", false
	}
	for _, route := range routes {
		routeParts := parts
		if route.Path != "" {
			routeParts = append(append([]string(nil), parts...), strings.Trim(route.Path, "/"))
		}
		if relFile == route.File {
			return "/" + strings.Join(routeParts, "/"), true
		}
		// only descend where the file could live; keep trying siblings
		// when the branch turns out not to hold it
		if route.ID == RootID || strings.HasPrefix(relFile, route.ID) {
			if found, ok := locate(route.Children, relFile, routeParts, depth+1); ok {
				return found, true
			}
		}
	}
	return "", false
}
