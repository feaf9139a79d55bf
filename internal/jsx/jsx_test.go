package jsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/routelint/internal/routepath"
)

func parse(t *testing.T, filename, src string) *File {
	t.Helper()
	p := NewParser()
	t.Cleanup(p.Close)
	f, err := p.Parse(filename, []byte(src))
	require.NoError(t, err)
	return f
}

func resolveAttr(t *testing.T, f *File, el int, attr string) (string, bool) {
	t.Helper()
	require.Greater(t, len(f.Elements), el)
	a, ok := f.Elements[el].Attribute(attr)
	require.True(t, ok, "attribute %s missing", attr)
	raw, ok := Resolver{Literal: f.Bindings.Resolve}.Resolve(a.Value)
	if !ok {
		return "", false
	}
	return routepath.Normalize(raw), true
}

func TestParseElements(t *testing.T) {
	src := `import { Link, Form } from "@remix-run/react";

export default function Nav() {
  return (
    <>
      <Link to="/about">About</Link>
      <ui.Link to="/ignored" />
      <Form method="post" action="/login" />
      <a href="/contact" download>Contact</a>
    </>
  );
}
`
	f := parse(t, "app/components/Nav.tsx", src)
	require.Len(t, f.Elements, 4)

	link := f.Elements[0]
	assert.Equal(t, "Link", link.Name)
	assert.True(t, link.Plain)
	assert.Equal(t, 6, link.Location.Line)
	assert.Equal(t, 7, link.Location.Column)

	member := f.Elements[1]
	assert.Equal(t, "ui.Link", member.Name)
	assert.False(t, member.Plain)

	form := f.Elements[2]
	assert.Equal(t, "Form", form.Name)
	require.Len(t, form.Attributes, 2)
	assert.Equal(t, "method", form.Attributes[0].Name)

	anchor := f.Elements[3]
	download, ok := anchor.Attribute("download")
	require.True(t, ok)
	assert.Nil(t, download.Value)
}

func TestParseLanguages(t *testing.T) {
	for _, name := range []string{"a.jsx", "a.js", "a.tsx"} {
		f := parse(t, name, `const x = <Link to="/" />;`)
		assert.Len(t, f.Elements, 1, name)
	}

	f := parse(t, "a.ts", `export const HOME = "/home" as const;`)
	assert.Empty(t, f.Elements)
	v, ok := f.Bindings.Resolve(&Identifier{Name: "HOME"})
	assert.True(t, ok)
	assert.Equal(t, "/home", v)

	_, err := NewParser().Parse("styles.css", []byte("a {}"))
	assert.Error(t, err)
	assert.False(t, Supported("styles.css"))
	assert.True(t, Supported("Route.TSX"))
}

func TestResolveValues(t *testing.T) {
	src := "const BASE = \"/app\";\n" +
		"const ROUTES = { home: \"/\", users: { list: \"/users\" } } as const;\n" +
		"const LOOSE = { home: \"/\" };\n" +
		"let mutable = \"/m\";\n" +
		"function C({ id }) {\n" +
		"  const local = `${BASE}/settings`;\n" +
		"  return [\n" +
		"    <Link to=\"/plain?x=1#top\" />,\n" +
		"    <Link to={\"/braced\"} />,\n" +
		"    <Link to={`/users/${id}/edit`} />,\n" +
		"    <Link to={`foo/${id}lol`} />,\n" +
		"    <Link to={BASE} />,\n" +
		"    <Link to={ROUTES.users.list} />,\n" +
		"    <Link to={LOOSE.home} />,\n" +
		"    <Link to={mutable} />,\n" +
		"    <Link to={local} />,\n" +
		"    <Link to={getPath()} />,\n" +
		"    <Link to={`/a/${`b`}/c`} />,\n" +
		"    <Link to=\"/x&amp;y\" />,\n" +
		"  ];\n" +
		"}\n"
	f := parse(t, "app/routes/demo.tsx", src)
	require.Len(t, f.Elements, 12)

	tests := []struct {
		want string
		ok   bool
	}{
		{"/plain", true},
		{"/braced", true},
		{"/users/:param/edit", true},
		{"foo/:param", true},
		{"/app", true},
		{"/users", true},
		{"", false},
		{"", false},
		{"/app/settings", true},
		{"", false},
		{"/a/b/c", true},
		{"/x&y", true},
	}
	for i, tt := range tests {
		got, ok := resolveAttr(t, f, i, "to")
		assert.Equal(t, tt.ok, ok, "element %d", i)
		assert.Equal(t, tt.want, got, "element %d", i)
	}
}

func TestShadowedBindingIsIndeterminate(t *testing.T) {
	src := `const to = "/top";
function A() { return <Link to={to} /> }
function B(to) { return <Link to={to} /> }
`
	f := parse(t, "a.jsx", src)
	require.Len(t, f.Elements, 2)
	_, ok := resolveAttr(t, f, 0, "to")
	assert.False(t, ok, "a name declared more than once is not a constant")
}

func TestImportsAndDeclarationsShadowConstants(t *testing.T) {
	tests := map[string]string{
		"named import": `import { HOME } from "./paths";
function Nav() { const HOME = "/x"; return <Link to={HOME} /> }
`,
		"aliased import": `import { ROOT as HOME } from "./paths";
function Nav() { const HOME = "/x"; return <Link to={HOME} /> }
`,
		"default import": `import HOME from "./paths";
function Nav() { const HOME = "/x"; return <Link to={HOME} /> }
`,
		"namespace import": `import * as HOME from "./paths";
function Nav() { const HOME = "/x"; return <Link to={HOME} /> }
`,
		"function": `function HOME() {}
function Nav() { const HOME = "/x"; return <Link to={HOME} /> }
`,
		"class": `class HOME {}
function Nav() { const HOME = "/x"; return <Link to={HOME} /> }
`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			f := parse(t, "nav.tsx", src)
			require.Len(t, f.Elements, 1)
			_, ok := resolveAttr(t, f, 0, "to")
			assert.False(t, ok)
		})
	}

	f := parse(t, "nav.tsx", `import { Link } from "@remix-run/react";
const HOME = "/home";
function Nav() { return <Link to={HOME} /> }
`)
	v, ok := resolveAttr(t, f, 0, "to")
	require.True(t, ok, "unrelated imports leave constants alone")
	assert.Equal(t, "/home", v)
}

func TestResolverWithoutHook(t *testing.T) {
	r := Resolver{}
	_, ok := r.Resolve(&Identifier{Name: "x"})
	assert.False(t, ok)

	v, ok := r.Resolve(&TemplateLiteral{Quasis: []string{"/users/", ""}, Exprs: []Expr{&Identifier{Name: "id"}}})
	assert.True(t, ok)
	assert.Equal(t, "/users/:param", routepath.Normalize(v))

	_, ok = r.Resolve(nil)
	assert.False(t, ok)
}

func TestForEachMatch(t *testing.T) {
	el := &Element{
		Name:  "Link",
		Plain: true,
		Attributes: []Attribute{
			{Name: "prefetch", Value: &StringLiteral{Value: "intent"}},
			{Name: "to", Value: &StringLiteral{Value: "/x"}},
		},
	}
	var got []Candidate
	ForEachMatch(el, RoutingMatchers, func(c Candidate) { got = append(got, c) })
	require.Len(t, got, 1)
	assert.Equal(t, "to", got[0].Attribute.Name)
	assert.Equal(t, "<a href>", got[0].Matcher.NativeAlternative)

	got = nil
	el.Plain = false
	ForEachMatch(el, RoutingMatchers, func(c Candidate) { got = append(got, c) })
	assert.Empty(t, got)

	noValue := &Element{Name: "Form", Plain: true, Attributes: []Attribute{{Name: "action"}}}
	ForEachMatch(noValue, RoutingMatchers, func(c Candidate) { got = append(got, c) })
	assert.Empty(t, got)
}

func TestMergeMatchers(t *testing.T) {
	merged := MergeMatchers(RoutingMatchers, []Matcher{
		{Component: "Link", Attribute: "to"},
		{Component: "PrefetchPageLinks", Attribute: "page"},
	})
	assert.Len(t, merged, len(RoutingMatchers)+1)
	assert.Equal(t, "PrefetchPageLinks", merged[len(merged)-1].Component)
}

func TestCook(t *testing.T) {
	assert.Equal(t, "a\nb", cook(`a\nb`))
	assert.Equal(t, "A/é", cook(`\x41/é`))
	assert.Equal(t, "😀", cook(`\u{1F600}`))
	assert.Equal(t, "`$", cook("\\`\\$"))
	assert.Equal(t, `\q`[1:], cook(`\q`))
	assert.Equal(t, "plain", cook("plain"))
}
