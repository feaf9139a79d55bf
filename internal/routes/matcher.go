package routes

import (
	"errors"
	"fmt"
	"strings"

	rlerrors "github.com/standardbeagle/routelint/internal/errors"
)

// ErrPathNotAbsolute is returned when Validate is given a relative path.
// Callers resolve relative paths first, so seeing it means a bug.
var ErrPathNotAbsolute = errors.New("path is not absolute")

// Validate reports whether an absolute path matches some route in the tree.
// Path segments of the form ":name" only match dynamic route segments.
func Validate(tree *Tree, path string) (bool, error) {
	if !strings.HasPrefix(path, "/") {
		return false, rlerrors.NewInternalError("validate route path", fmt.Errorf("%w: %q", ErrPathNotAbsolute, path))
	}
	if tree == nil {
		return false, nil
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return matchRoutes(tree.Routes, strings.Split(path[1:], "/"), 0), nil
}

func matchRoutes(routes []*Route, segments []string, depth int) bool {
	if len(segments) == 0 {
		return true
	}
	if depth > maxDepth {
		return false
	}
	for _, route := range routes {
		if matchRoute(route, segments, depth) {
			return true
		}
	}
	return false
}

func matchRoute(route *Route, segments []string, depth int) bool {
	switch route.Kind {
	case KindIndex:
		if route.Path == "" {
			return len(segments) == 1 && segments[0] == ""
		}
		// an index route with its own path renders for exactly that path
		for _, n := range consume(route.Segments(), segments) {
			rest := segments[n:]
			if len(rest) == 0 || (len(rest) == 1 && rest[0] == "") {
				return true
			}
		}
		return false
	case KindPathless:
		return matchRoutes(route.Children, segments, depth+1)
	default:
		for _, n := range consume(route.Segments(), segments) {
			if matchRoutes(route.Children, segments[n:], depth+1) {
				return true
			}
		}
		return false
	}
}

// consume returns every number of leading path segments the route
// segments can account for. Plain routes yield at most one count; optional
// segments ("lang?", ":lang?") and a trailing splat can yield several.
func consume(routeSegs, segments []string) []int {
	if len(routeSegs) == 0 {
		return []int{0}
	}
	head := routeSegs[0]
	if head == "*" && len(routeSegs) == 1 {
		return []int{len(segments)}
	}

	var counts []int
	if len(head) > 1 && strings.HasSuffix(head, "?") {
		head = strings.TrimSuffix(head, "?")
		counts = append(counts, consume(routeSegs[1:], segments)...)
	}
	if len(segments) > 0 && segmentMatches(head, segments[0]) {
		for _, n := range consume(routeSegs[1:], segments[1:]) {
			counts = append(counts, n+1)
		}
	}
	return counts
}

func segmentMatches(routeSeg, pathSeg string) bool {
	if routeSeg == pathSeg {
		return true
	}
	return strings.HasPrefix(routeSeg, ":") && pathSeg != ""
}
