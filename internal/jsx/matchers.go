package jsx

// Matcher selects an attribute of a component whose value is a route path.
// NativeAlternative names the HTML construct to suggest when the value is
// a URL rather than a path.
type Matcher struct {
	Component         string `json:"component" toml:"component"`
	Attribute         string `json:"attribute" toml:"attribute"`
	NativeAlternative string `json:"nativeAlternative,omitempty" toml:"native_alternative"`
}

// RoutingMatchers are the router components that take app paths.
var RoutingMatchers = []Matcher{
	{Component: "Link", Attribute: "to", NativeAlternative: "<a href>"},
	{Component: "NavLink", Attribute: "to", NativeAlternative: "<a href>"},
	{Component: "Form", Attribute: "action", NativeAlternative: "<form action>"},
}

// AnchorMatchers are the plain HTML elements audited for links that should
// go through the router instead.
var AnchorMatchers = []Matcher{
	{Component: "a", Attribute: "href"},
}

// Candidate is one attribute selected by a matcher.
type Candidate struct {
	Element   *Element
	Attribute *Attribute
	Matcher   Matcher
}

// ForEachMatch calls fn for every matcher that applies to el and whose
// attribute is present with a value. Elements with member or namespaced
// names never match.
func ForEachMatch(el *Element, matchers []Matcher, fn func(Candidate)) {
	if !el.Plain {
		return
	}
	for _, m := range matchers {
		if m.Component != el.Name {
			continue
		}
		attr, ok := el.Attribute(m.Attribute)
		if !ok || attr.Value == nil {
			continue
		}
		fn(Candidate{Element: el, Attribute: attr, Matcher: m})
	}
}

// MergeMatchers appends extra matchers to base, skipping exact
// component/attribute duplicates.
func MergeMatchers(base, extra []Matcher) []Matcher {
	out := append([]Matcher(nil), base...)
	for _, m := range extra {
		dup := false
		for _, existing := range out {
			if existing.Component == m.Component && existing.Attribute == m.Attribute {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}
