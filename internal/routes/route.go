// Package routes models a Remix route tree and answers the two questions
// the linter asks of it: does a path match some route, and which route
// does a source file render.
package routes

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// RootID is the id of the implicit root route every tree starts from.
const RootID = "root"

// maxDepth bounds every recursive walk. Remix trees are shallow; anything
// deeper than this is treated as not matching.
const maxDepth = 64

// Kind says how a route participates in matching.
type Kind int

const (
	// KindPath routes consume one or more URL segments.
	KindPath Kind = iota
	// KindIndex routes render when their parent matched the whole path.
	KindIndex
	// KindPathless routes only contribute layout; children are matched in
	// their place.
	KindPathless
	// KindSplat routes end in "*" and absorb the remaining segments.
	KindSplat
)

func (k Kind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindPathless:
		return "pathless"
	case KindSplat:
		return "splat"
	default:
		return "path"
	}
}

// Route is one node of the route tree. File is relative to the app
// directory and always uses forward slashes.
type Route struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"-"`
	Path     string   `json:"path,omitempty"`
	File     string   `json:"file"`
	Children []*Route `json:"children,omitempty"`
}

// NewRoute derives the Kind from the index flag and the path.
func NewRoute(id, path, file string, index bool) *Route {
	return &Route{ID: id, Path: path, File: file, Kind: KindOf(index, path)}
}

// KindOf classifies a route. An index route keeps KindIndex even when the
// convention gave it a path of its own.
func KindOf(index bool, path string) Kind {
	switch {
	case index:
		return KindIndex
	case path == "":
		return KindPathless
	case path == "*" || strings.HasSuffix(path, "/*"):
		return KindSplat
	default:
		return KindPath
	}
}

// IsIndex reports whether r is an index route.
func (r *Route) IsIndex() bool { return r.Kind == KindIndex }

// Segments splits the route path. Pathless routes have none.
func (r *Route) Segments() []string {
	if r.Path == "" {
		return nil
	}
	return strings.Split(strings.Trim(r.Path, "/"), "/")
}

// Tree is an immutable route configuration for one project.
type Tree struct {
	// Root is the project root, the directory holding the Remix config.
	Root string
	// AppDirectory is the absolute app directory route files live in.
	AppDirectory string
	// Source names where the routes came from: a file convention or a
	// manifest.
	Source string
	// Routes holds the top-level routes, normally the single root route.
	Routes []*Route
	// Fingerprint identifies the route structure; equal fingerprints mean
	// equal trees.
	Fingerprint uint64
}

// NewTree builds a tree and computes its fingerprint.
func NewTree(root, appDir, source string, routes []*Route) *Tree {
	return &Tree{
		Root:         root,
		AppDirectory: appDir,
		Source:       source,
		Routes:       routes,
		Fingerprint:  Fingerprint(routes),
	}
}

// Fingerprint hashes the structure of a route forest.
func Fingerprint(routes []*Route) uint64 {
	d := xxhash.New()
	var walk func(rs []*Route, depth int)
	walk = func(rs []*Route, depth int) {
		for _, r := range rs {
			_, _ = d.WriteString(strconv.Itoa(depth))
			_, _ = d.WriteString("\x00" + r.ID + "\x00" + r.Path + "\x00" + r.File + "\x00" + r.Kind.String() + "\n")
			if depth < maxDepth {
				walk(r.Children, depth+1)
			}
		}
	}
	walk(routes, 0)
	return d.Sum64()
}

// Walk visits every route depth first with its ancestors' paths joined.
// Returning false from fn skips the route's children.
func (t *Tree) Walk(fn func(r *Route, fullPath string, depth int) bool) {
	var walk func(rs []*Route, parent []string, depth int)
	walk = func(rs []*Route, parent []string, depth int) {
		if depth > maxDepth {
			return
		}
		for _, r := range rs {
			parts := parent
			if r.Path != "" {
				parts = append(append([]string(nil), parent...), strings.Trim(r.Path, "/"))
			}
			if fn(r, "/"+strings.Join(parts, "/"), depth) {
				walk(r.Children, parts, depth+1)
			}
		}
	}
	walk(t.Routes, nil, 0)
}

// Count returns the number of routes in the tree.
func (t *Tree) Count() int {
	n := 0
	t.Walk(func(*Route, string, int) bool {
		n++
		return true
	})
	return n
}
