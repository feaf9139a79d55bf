package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// manifestRoute mirrors one entry of `remix routes --json`.
type manifestRoute struct {
	ID            string          `json:"id"`
	Path          *string         `json:"path"`
	Index         bool            `json:"index"`
	CaseSensitive bool            `json:"caseSensitive"`
	File          string          `json:"file"`
	Children      []manifestRoute `json:"children"`
}

// DecodeManifest reads the JSON route manifest printed by
// `remix routes --json`. Apps with a hand written routes() function in
// remix.config.js can only be checked this way.
func DecodeManifest(r io.Reader) ([]*Route, error) {
	var raw []manifestRoute
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode route manifest: %w", err)
	}
	out := make([]*Route, 0, len(raw))
	for i := range raw {
		route, err := raw[i].toRoute(0)
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, nil
}

func (m *manifestRoute) toRoute(depth int) (*Route, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("route manifest nests deeper than %d levels", maxDepth)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("route manifest entry for %q has no id", m.File)
	}
	var path string
	if m.Path != nil {
		path = strings.Trim(*m.Path, "/")
	}
	route := NewRoute(m.ID, path, strings.ReplaceAll(m.File, "\\", "/"), m.Index)
	for i := range m.Children {
		child, err := m.Children[i].toRoute(depth + 1)
		if err != nil {
			return nil, err
		}
		route.Children = append(route.Children, child)
	}
	return route, nil
}
