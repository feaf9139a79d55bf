package lint

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/jsx"
	"github.com/standardbeagle/routelint/internal/routes"
)

const (
	appRoot    = "/proj"
	appDir     = "/proj/app"
	barRoute   = appDir + "/routes/foo/bar.tsx"
	fooRoute   = appDir + "/routes/foo.tsx"
	component  = appDir + "/components/Nav.tsx"
	otherProj  = "/elsewhere/src/App.tsx"
	brokenProj = "/broken/app/routes/index.tsx"
)

// fixtureTree is root -> [index, foo -> [index, bar, $child]].
func fixtureTree() *routes.Tree {
	foo := routes.NewRoute("routes/foo", "foo", "routes/foo.tsx", false)
	foo.Children = []*routes.Route{
		routes.NewRoute("routes/foo/index", "", "routes/foo/index.tsx", true),
		routes.NewRoute("routes/foo/bar", "bar", "routes/foo/bar.tsx", false),
		routes.NewRoute("routes/foo/$child", ":child", "routes/foo/$child.tsx", false),
	}
	root := routes.NewRoute(routes.RootID, "", "root.tsx", false)
	root.Children = []*routes.Route{
		routes.NewRoute("routes/index", "", "routes/index.tsx", true),
		foo,
	}
	return routes.NewTree(appRoot, appDir, "v1", []*routes.Route{root})
}

type fakeSource struct {
	tree *routes.Tree
}

func (s fakeSource) Tree(file string) (*routes.Tree, error) {
	switch {
	case file == otherProj:
		return nil, nil
	case file == brokenProj:
		return nil, rlerrors.NewConfigError("remix config", "", fmt.Errorf("unexpected token")).WithRoot("/broken")
	}
	return s.tree, nil
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) Printf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func newLinter(t *testing.T, opts ...Option) *Linter {
	t.Helper()
	l := New(fakeSource{tree: fixtureTree()}, opts...)
	t.Cleanup(l.Close)
	return l
}

func lintSrc(t *testing.T, l *Linter, filename, body string) []Finding {
	t.Helper()
	findings, err := l.LintSource(filename, []byte("export default function C() {\n  return (\n    <>\n"+body+"\n    </>\n  );\n}\n"))
	require.NoError(t, err)
	return findings
}

func kinds(findings []Finding) []Kind {
	out := make([]Kind, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func TestRelativeParentPathFromNestedRoute(t *testing.T) {
	l := newLinter(t)
	findings := lintSrc(t, l, barRoute, `<Link to="../">Up</Link>`)
	assert.Empty(t, findings)

	pc, err := l.CheckPath(barRoute, "../")
	require.NoError(t, err)
	assert.Equal(t, "/foo/bar", pc.CurrentRoute)
	assert.Equal(t, "/foo", pc.Resolved, "one level up from /foo/bar, not the root")
	assert.True(t, pc.Valid)
}

func TestUnknownAbsolutePath(t *testing.T) {
	l := newLinter(t)
	for _, file := range []string{barRoute, component} {
		findings := lintSrc(t, l, file, `<Link to="/baz">Baz</Link>`)
		require.Len(t, findings, 1, file)
		f := findings[0]
		assert.Equal(t, RuleRequireValidPaths, f.Rule)
		assert.Equal(t, KindInvalidPath, f.Kind)
		assert.Equal(t, SeverityError, f.Severity)
		assert.Equal(t, "/baz", f.Data["toPathNormalized"])
		assert.Equal(t, `No route matches "/baz". Either create one, or point to a valid route.`, f.Message)
		assert.Equal(t, 4, f.Line)
		assert.Equal(t, file, f.File)
	}
}

func TestIndeterminateValue(t *testing.T) {
	src := `<Link to={unknownVar}>Go</Link>`

	assert.Empty(t, lintSrc(t, newLinter(t), component, src))

	strict := DefaultSettings()
	strict.StrictMode = true
	findings := lintSrc(t, newLinter(t, WithSettings(strict)), component, src)
	require.Len(t, findings, 1)
	assert.Equal(t, KindIndeterminatePath, findings[0].Kind)
	assert.Equal(t, "Unable to resolve route path statically. Consider providing a constant value.", findings[0].Message)
}

func TestValidPaths(t *testing.T) {
	l := newLinter(t)
	body := `<Link to="/">Home</Link>
<Link to="/foo?tab=1#top">Foo</Link>
<NavLink to="/foo/bar/">Bar</NavLink>
<Link to={` + "`/foo/${id}`" + `}>Child</Link>
<Form action="/foo/bar" method="post" />
<Link to="bar">Relative</Link>`
	assert.Empty(t, lintSrc(t, l, fooRoute, body))
}

func TestTemplateWithUnknownPart(t *testing.T) {
	l := newLinter(t)
	findings := lintSrc(t, l, component, `<Link to={`+"`/nope/${id}`"+`}>x</Link>`)
	require.Len(t, findings, 1)
	assert.Equal(t, "/nope/:param", findings[0].Data["toPathNormalized"])
}

func TestSuggestion(t *testing.T) {
	l := newLinter(t)
	findings := lintSrc(t, l, component, `<Link to="/fooo/bar">x</Link>`)
	require.Len(t, findings, 1)
	assert.Equal(t, "/foo/bar", findings[0].Suggestion)
}

func TestURLs(t *testing.T) {
	l := newLinter(t)
	findings := lintSrc(t, l, component, `<Link to="https://example.com/a">x</Link>
<Form action="//cdn.example.com/upload" />`)
	require.Len(t, findings, 2)
	assert.Equal(t, []Kind{KindURLAsPath, KindURLAsPath}, kinds(findings))
	assert.Equal(t, "`<Link to>` does not support URLs, only paths. Consider using `<a href>` instead.", findings[0].Message)
	assert.Equal(t, "<form action>", findings[1].Data["nativeAlternative"])
}

func TestRelativePathsOutsideRoutes(t *testing.T) {
	l := newLinter(t)
	findings := lintSrc(t, l, component, `<Link to="foo">x</Link>
<Link to=".">self</Link>
<Link to="">self</Link>`)
	require.Len(t, findings, 1)
	assert.Equal(t, KindAmbiguousPath, findings[0].Kind)
	assert.Equal(t, RuleNoRelativePaths, findings[0].Rule)
	assert.Equal(t, "Ambiguous route path \"foo\". Specify absolute paths when using `<Link to>` outside of a route.", findings[0].Message)

	noSelf := DefaultSettings()
	noSelf.AllowLinksToSelf = false
	findings = lintSrc(t, newLinter(t, WithSettings(noSelf)), component, `<Link to=".">self</Link>`)
	assert.Equal(t, []Kind{KindAmbiguousPath}, kinds(findings))
}

func TestRelativePathsInsideRoutes(t *testing.T) {
	body := `<Link to="bar">x</Link>
<Link to="missing/deep">y</Link>
<Link to="./">self</Link>`

	findings := lintSrc(t, newLinter(t), fooRoute, body)
	assert.Equal(t, []Kind{KindInvalidPath}, kinds(findings))
	assert.Equal(t, "/foo/missing/deep", findings[0].Data["toPathNormalized"])

	enforce := DefaultSettings()
	enforce.EnforceInRouteComponents = true
	findings = lintSrc(t, newLinter(t, WithSettings(enforce)), fooRoute, body)
	assert.Equal(t, []Kind{KindRelativePath, KindRelativePath, KindInvalidPath}, kinds(findings))
	assert.Equal(t, "Relative route path \"bar\". Specify absolute paths when using `<Link to>`.", findings[0].Message)
}

func TestAnchors(t *testing.T) {
	body := `<a href="/foo">internal</a>
<a href="https://remix.run">external</a>
<a href="#top">fragment</a>
<a href="mailto:hi@example.com">mail</a>
<a href={someUrl}>unknown</a>`

	findings := lintSrc(t, newLinter(t), component, body)
	require.Len(t, findings, 1)
	assert.Equal(t, KindAnchorForRoute, findings[0].Kind)
	assert.Equal(t, RuleUseLinkForRoutes, findings[0].Rule)

	preset, err := Presets(PresetStrict)
	require.NoError(t, err)
	findings = lintSrc(t, newLinter(t, WithSettings(preset.Settings), WithRules(preset.Rules)), component, body)
	assert.Equal(t, []Kind{KindAnchorForRoute, KindIndeterminateURL}, kinds(findings))
}

func TestConstantResolution(t *testing.T) {
	src := []byte(`const HOME = "/fooo";
export default function C() {
  return <Link to={HOME}>x</Link>;
}
`)
	findings, err := newLinter(t).LintSource(component, src)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "/fooo", findings[0].Data["toPathNormalized"])

	off := DefaultSettings()
	off.ResolveConstants = false
	findings, err = newLinter(t, WithSettings(off)).LintSource(component, src)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRuleSeverities(t *testing.T) {
	body := `<Link to="/baz">x</Link>
<Link to="https://example.com">y</Link>`

	findings := lintSrc(t, newLinter(t, WithRules(Rules{})), component, body)
	assert.Empty(t, findings)

	findings = lintSrc(t, newLinter(t, WithRules(Rules{RuleNoURLs: SeverityWarn})), component, body)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarn, findings[0].Severity)
	assert.Equal(t, Summary{Warnings: 1}, Summarize(findings))
}

func TestExtraMatchers(t *testing.T) {
	l := newLinter(t, WithMatchers([]jsx.Matcher{{Component: "ButtonLink", Attribute: "href", NativeAlternative: "<a href>"}}))
	findings := lintSrc(t, l, component, `<ButtonLink href="/baz">x</ButtonLink>`)
	assert.Equal(t, []Kind{KindInvalidPath}, kinds(findings))
}

func TestNoAppContext(t *testing.T) {
	logger := &recordingLogger{}
	l := newLinter(t, WithLogger(logger))

	findings := lintSrc(t, l, otherProj, `<Link to="/baz">x</Link><a href="/x">y</a>`)
	assert.Empty(t, findings)
	assert.Empty(t, logger.lines)

	for i := 0; i < 3; i++ {
		findings = lintSrc(t, l, brokenProj, `<Link to="/baz">x</Link>`)
		assert.Empty(t, findings)
	}
	require.Len(t, logger.lines, 1, "one warning per project root")
	assert.Contains(t, logger.lines[0], "/broken")
}

func TestLintFileWithParsedFile(t *testing.T) {
	l := newLinter(t)
	f := &jsx.File{
		Path: component,
		Elements: []jsx.Element{{
			Name:  "Link",
			Plain: true,
			Attributes: []jsx.Attribute{{
				Name:     "to",
				Value:    &jsx.StringLiteral{Value: "/baz"},
				Location: jsx.Location{Line: 7, Column: 3},
			}},
		}},
	}
	findings, err := l.LintFile(component, f)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 7, findings[0].Line)
}

func TestPresetsAndSeverities(t *testing.T) {
	p, err := Presets("")
	require.NoError(t, err)
	assert.Equal(t, PresetRecommended, p.Name)
	for _, r := range AllRules {
		assert.Equal(t, SeverityError, p.Rules[r], r)
	}
	assert.False(t, p.Settings.StrictMode)

	_, err = Presets("lenient")
	assert.Error(t, err)

	for in, want := range map[string]Severity{"off": SeverityOff, "Warn": SeverityWarn, "2": SeverityError} {
		got, err := ParseSeverity(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = ParseSeverity("fatal")
	assert.Error(t, err)

	merged := Rules{RuleNoURLs: SeverityError}.Merge(Rules{RuleNoURLs: SeverityOff})
	assert.False(t, merged.Enabled(RuleNoURLs))
}

func TestSortFindings(t *testing.T) {
	findings := []Finding{
		{File: "b.tsx", Line: 1},
		{File: "a.tsx", Line: 9, Column: 2},
		{File: "a.tsx", Line: 9, Column: 1},
	}
	SortFindings(findings)
	assert.Equal(t, "a.tsx", findings[0].File)
	assert.Equal(t, 1, findings[0].Column)
	assert.Equal(t, "b.tsx", findings[2].File)
}
