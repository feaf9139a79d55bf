package remix

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/routelint/internal/routes"
)

// RouteModuleExtensions are the file extensions Remix treats as route
// modules.
var RouteModuleExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".md", ".mdx"}

const routesPrefix = "routes"

// maxNesting bounds how deep convention scanning nests routes.
const maxNesting = 64

func isRouteModule(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range RouteModuleExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isIgnored(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		// patterns such as "*.css" are meant for any depth
		if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok && !strings.Contains(pattern, "/") {
			return true
		}
	}
	return false
}

// nestedRoutes builds the Remix v1 "nested folders" convention: every
// route module anywhere under app/routes is a route, and directories
// nest routes under the module of the same name.
func nestedRoutes(appDir string, ignored []string) ([]*routes.Route, error) {
	routesDir := filepath.Join(appDir, routesPrefix)
	files := make(map[string]string) // route id -> file relative to app dir

	err := filepath.WalkDir(routesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == routesDir {
				return fs.SkipAll
			}
			return nil
		}
		if d.IsDir() || !isRouteModule(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(routesDir, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if isIgnored(rel, ignored) {
			return nil
		}
		id := routesPrefix + "/" + strings.TrimSuffix(rel, path.Ext(rel))
		file := routesPrefix + "/" + rel
		if existing, dup := files[id]; dup {
			return fmt.Errorf("duplicate route module for %q: %s and %s", id, existing, file)
		}
		files[id] = file
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	// longest first so the first prefix match is the closest parent
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) > len(ids[j])
		}
		return ids[i] < ids[j]
	})

	parentOf := make(map[string]string, len(ids))
	for _, id := range ids {
		for _, candidate := range ids {
			if strings.HasPrefix(id, candidate+"/") {
				parentOf[id] = candidate
				break
			}
		}
	}

	// alphabetical order keeps the tree stable between scans
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	unique := make(map[string]string)
	var build func(parentID string, depth int) ([]*routes.Route, error)
	build = func(parentID string, depth int) ([]*routes.Route, error) {
		var children []*routes.Route
		for _, id := range sorted {
			if parentOf[id] != parentID {
				continue
			}
			base := parentID
			if base == "" {
				base = routesPrefix
			}
			routePath := createRoutePathV1(id[len(base)+1:])
			isIndex := strings.HasSuffix(id, "/index")

			fullPath := createRoutePathV1(id[len(routesPrefix)+1:])
			uniqueID := fullPath
			if isIndex {
				uniqueID += "?index"
			}
			if uniqueID != "" {
				if other, conflict := unique[uniqueID]; conflict {
					return nil, fmt.Errorf("path %q defined by route %q conflicts with route %q", fullPath, id, other)
				}
				unique[uniqueID] = id
			}

			route := routes.NewRoute(id, routePath, files[id], isIndex)
			if depth < maxNesting {
				kids, err := build(id, depth+1)
				if err != nil {
					return nil, err
				}
				if isIndex && len(kids) > 0 {
					return nil, fmt.Errorf("child routes are not allowed in index routes: %q", id)
				}
				route.Children = kids
			}
			children = append(children, route)
		}
		return children, nil
	}
	return build("", 0)
}

// createRoutePathV1 turns a route id fragment such as "users/$id.edit" into
// a route path ("users/:id/edit"). "__name" segments are pathless
// layouts, a trailing "$" is a splat, "[...]" escapes the special
// characters and a final "index" segment disappears.
func createRoutePathV1(partial string) string {
	var result strings.Builder
	var rawSegment strings.Builder
	inEscape := 0
	skipSegment := false

	trimIndex := func() bool {
		if rawSegment.String() != "index" {
			return false
		}
		s := result.String()
		if !strings.HasSuffix(s, "index") {
			return false
		}
		s = strings.TrimSuffix(s, "index")
		s = strings.TrimSuffix(s, "/")
		result.Reset()
		result.WriteString(s)
		return true
	}

	for i := 0; i < len(partial); i++ {
		c := partial[i]
		var last, next byte
		if i > 0 {
			last = partial[i-1]
		}
		if i < len(partial)-1 {
			next = partial[i+1]
		}

		if skipSegment {
			if c == '/' || c == '.' || c == '\\' {
				skipSegment = false
			}
			continue
		}
		if inEscape == 0 && c == '[' && last != '[' {
			inEscape++
			continue
		}
		if inEscape > 0 && c == ']' && next != ']' {
			inEscape--
			continue
		}
		if inEscape > 0 {
			result.WriteByte(c)
			continue
		}
		if c == '/' || c == '\\' || c == '.' {
			if !trimIndex() {
				result.WriteByte('/')
			}
			rawSegment.Reset()
			continue
		}
		if c == '_' && next == '_' && rawSegment.Len() == 0 {
			skipSegment = true
			continue
		}

		rawSegment.WriteByte(c)
		if c == '$' {
			if i == len(partial)-1 {
				result.WriteByte('*')
			} else {
				result.WriteByte(':')
			}
			continue
		}
		result.WriteByte(c)
	}
	trimIndex()

	return strings.Trim(result.String(), "/")
}
