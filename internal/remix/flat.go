package remix

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/routelint/internal/debug"
	"github.com/standardbeagle/routelint/internal/routes"
)

type flatRoute struct {
	id       string
	file     string
	fullPath string
	index    bool
	parent   string
}

// flatRoutes builds the Remix v2 "flat routes" convention: route modules
// sit directly in app/routes (or as route.* inside a folder), dots in the
// name separate URL segments and nest routes under the route named by
// the dotted prefix.
func flatRoutes(appDir string, ignored []string) ([]*routes.Route, error) {
	routesDir := filepath.Join(appDir, routesPrefix)
	entries, err := os.ReadDir(routesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read routes directory: %w", err)
	}

	byID := make(map[string]*flatRoute)
	for _, entry := range entries {
		var name, file string
		if entry.IsDir() {
			module, ok := folderRouteModule(filepath.Join(routesDir, entry.Name()))
			if !ok {
				continue
			}
			name = entry.Name()
			file = routesPrefix + "/" + entry.Name() + "/" + module
		} else {
			if !isRouteModule(entry.Name()) {
				continue
			}
			name = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			file = routesPrefix + "/" + entry.Name()
		}
		if isIgnored(strings.TrimPrefix(file, routesPrefix+"/"), ignored) || isIgnored(file, ignored) {
			continue
		}

		id := routesPrefix + "/" + name
		if existing, dup := byID[id]; dup {
			debug.LogRoutes("route %q is defined by both %s and %s, keeping the first\n", id, existing.file, file)
			continue
		}
		segments, raw, err := flatRouteSegments(name)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", file, err)
		}
		isIndex := len(raw) > 0 && raw[len(raw)-1] == "_index"
		byID[id] = &flatRoute{
			id:       id,
			file:     file,
			fullPath: flatRoutePath(segments, raw, isIndex),
			index:    isIndex,
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) > len(ids[j])
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		for _, candidate := range ids {
			if candidate != id && (strings.HasPrefix(id, candidate+".") || strings.HasPrefix(id, candidate+"/")) {
				byID[id].parent = candidate
				break
			}
		}
	}

	sort.Strings(ids)
	unique := make(map[string]string)
	var build func(parentID, parentPath string, depth int) []*routes.Route
	build = func(parentID, parentPath string, depth int) []*routes.Route {
		var out []*routes.Route
		for _, id := range ids {
			fr := byID[id]
			if fr.parent != parentID {
				continue
			}
			key := fr.fullPath
			if fr.index {
				key += "?index"
			}
			if key != "" {
				if other, conflict := unique[key]; conflict {
					debug.LogRoutes("route %q conflicts with %q on path %q, skipping it\n", id, other, fr.fullPath)
					continue
				}
				unique[key] = id
			}

			route := routes.NewRoute(id, relativeTo(fr.fullPath, parentPath), fr.file, fr.index)
			if depth < maxNesting {
				route.Children = build(id, fr.fullPath, depth+1)
			}
			out = append(out, route)
		}
		return out
	}
	return build("", "", 0), nil
}

// folderRouteModule finds route.<ext> inside a folder route.
func folderRouteModule(dir string) (string, bool) {
	for _, ext := range RouteModuleExtensions {
		name := "route" + ext
		if isFile(filepath.Join(dir, name)) {
			return name, true
		}
	}
	return "", false
}

func relativeTo(fullPath, parentPath string) string {
	if parentPath == "" {
		return fullPath
	}
	if fullPath == parentPath {
		return ""
	}
	if strings.HasPrefix(fullPath, parentPath+"/") {
		return fullPath[len(parentPath)+1:]
	}
	return fullPath
}

// flatRouteSegments splits a flat route name into URL segments, returning
// both the converted and the raw segments. "$name" becomes ":name", a
// lone trailing "$" a splat, "(x)" an optional segment and "[x]" escapes.
func flatRouteSegments(name string) ([]string, []string, error) {
	const (
		stateNormal = iota
		stateEscape
		stateOptional
		stateOptionalEscape
	)
	var segments, raws []string
	var seg, raw strings.Builder
	state := stateNormal

	push := func() error {
		if seg.Len() == 0 {
			return nil
		}
		r := raw.String()
		for _, bad := range []string{"*", ":", "/"} {
			if strings.Contains(r, bad) {
				return fmt.Errorf("route segment %q may not contain %q", r, bad)
			}
		}
		segments = append(segments, seg.String())
		raws = append(raws, r)
		seg.Reset()
		raw.Reset()
		return nil
	}
	param := func(i int) {
		if i == len(name)-1 {
			seg.WriteByte('*')
		} else {
			seg.WriteByte(':')
		}
		raw.WriteByte('$')
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		switch state {
		case stateNormal:
			switch {
			case c == '.' || c == '/' || c == '\\':
				if err := push(); err != nil {
					return nil, nil, err
				}
			case c == '[':
				state = stateEscape
				raw.WriteByte(c)
			case c == '(':
				state = stateOptional
				raw.WriteByte(c)
			case c == '$' && seg.Len() == 0:
				param(i)
			default:
				seg.WriteByte(c)
				raw.WriteByte(c)
			}
		case stateEscape:
			if c == ']' {
				state = stateNormal
			} else {
				seg.WriteByte(c)
			}
			raw.WriteByte(c)
		case stateOptional:
			switch {
			case c == ')':
				seg.WriteByte('?')
				raw.WriteByte(c)
				state = stateNormal
			case c == '[':
				state = stateOptionalEscape
				raw.WriteByte(c)
			case c == '$' && seg.Len() == 0:
				param(i)
			default:
				seg.WriteByte(c)
				raw.WriteByte(c)
			}
		case stateOptionalEscape:
			if c == ']' {
				state = stateOptional
			} else {
				seg.WriteByte(c)
			}
			raw.WriteByte(c)
		}
	}
	if err := push(); err != nil {
		return nil, nil, err
	}
	return segments, raws, nil
}

// flatRoutePath joins converted segments into a route path, dropping
// pathless "_layout" segments, the "_index" marker and the trailing
// underscore that opts a route out of nesting.
func flatRoutePath(segments, raws []string, isIndex bool) string {
	if isIndex && len(segments) > 0 {
		segments = segments[:len(segments)-1]
	}
	var out []string
	for i, s := range segments {
		r := raws[i]
		if strings.HasPrefix(s, "_") && strings.HasPrefix(r, "_") {
			continue
		}
		if strings.HasSuffix(s, "_") && strings.HasSuffix(r, "_") {
			s = strings.TrimSuffix(s, "_")
		}
		out = append(out, s)
	}
	return path.Join(out...)
}
