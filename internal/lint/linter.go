package lint

import (
	stderrors "errors"
	"os"
	"sync"

	"github.com/standardbeagle/routelint/internal/debug"
	rlerrors "github.com/standardbeagle/routelint/internal/errors"
	"github.com/standardbeagle/routelint/internal/jsx"
	"github.com/standardbeagle/routelint/internal/routepath"
	"github.com/standardbeagle/routelint/internal/routes"
)

// RouteSource hands out the route tree of the app a file belongs to. It
// returns (nil, nil) for files outside any app. *remix.Cache implements
// it.
type RouteSource interface {
	Tree(file string) (*routes.Tree, error)
}

// Logger receives warnings meant for the user, such as a route config
// that failed to load. *log.Logger implements it.
type Logger interface {
	Printf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// Linter checks files against the route trees of their apps. It is safe
// for concurrent use.
type Linter struct {
	source   RouteSource
	settings Settings
	rules    Rules
	matchers []jsx.Matcher
	anchors  []jsx.Matcher
	logger   Logger

	parser      *jsx.Parser
	ownsParser  bool
	warnedRoots sync.Map
}

// Option configures a Linter.
type Option func(*Linter)

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(l *Linter) { l.settings = s }
}

// WithRules replaces the rule severities. Rules not in the map are off.
func WithRules(r Rules) Option {
	return func(l *Linter) { l.rules = r }
}

// WithMatchers adds component/attribute pairs checked like <Link to>.
func WithMatchers(extra []jsx.Matcher) Option {
	return func(l *Linter) { l.matchers = jsx.MergeMatchers(l.matchers, extra) }
}

// WithLogger sets where configuration warnings go.
func WithLogger(logger Logger) Option {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithParser shares a parser pool. The linter does not close it.
func WithParser(p *jsx.Parser) Option {
	return func(l *Linter) { l.parser = p }
}

// New creates a linter using the recommended preset unless options say
// otherwise.
func New(source RouteSource, opts ...Option) *Linter {
	preset, _ := Presets(PresetRecommended)
	l := &Linter{
		source:   source,
		settings: preset.Settings,
		rules:    preset.Rules,
		matchers: append([]jsx.Matcher(nil), jsx.RoutingMatchers...),
		anchors:  jsx.AnchorMatchers,
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.parser == nil {
		l.parser = jsx.NewParser()
		l.ownsParser = true
	}
	return l
}

// Close releases the parser pool when the linter created it.
func (l *Linter) Close() {
	if l.ownsParser {
		l.parser.Close()
	}
}

// Settings returns the linter's settings.
func (l *Linter) Settings() Settings {
	return l.settings
}

// Rules returns the linter's rule severities.
func (l *Linter) Rules() Rules {
	return l.rules
}

// LintPath reads and lints one file.
func (l *Linter) LintPath(filename string) ([]Finding, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, rlerrors.NewFileError("read", filename, err)
	}
	return l.LintSource(filename, content)
}

// LintSource parses content and lints it. Files outside a Remix app are
// not parsed at all.
func (l *Linter) LintSource(filename string, content []byte) ([]Finding, error) {
	tree, ok := l.appContext(filename)
	if !ok {
		return nil, nil
	}
	f, err := l.parser.Parse(filename, content)
	if err != nil {
		return nil, err
	}
	return l.lint(filename, f, tree)
}

// LintFile lints an already parsed file. The only error it returns is an
// internal one; a broken route config is logged once per app and the
// file gets no findings.
func (l *Linter) LintFile(filename string, f *jsx.File) ([]Finding, error) {
	tree, ok := l.appContext(filename)
	if !ok {
		return nil, nil
	}
	return l.lint(filename, f, tree)
}

// appContext returns the route tree for filename, or false when the file
// has no app context.
func (l *Linter) appContext(filename string) (*routes.Tree, bool) {
	tree, err := l.source.Tree(filename)
	if err != nil {
		l.warnOnce(err)
		return nil, false
	}
	if tree == nil {
		debug.LogLint("%s is not part of a Remix app\n", filename)
		return nil, false
	}
	return tree, true
}

func (l *Linter) warnOnce(err error) {
	key := err.Error()
	var cfgErr *rlerrors.ConfigError
	if stderrors.As(err, &cfgErr) && cfgErr.Root != "" {
		key = cfgErr.Root
	}
	if _, loaded := l.warnedRoots.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	l.logger.Printf("routelint: route paths are not checked: %v", err)
}

func (l *Linter) resolver(f *jsx.File) jsx.Resolver {
	if l.settings.ResolveConstants && f.Bindings != nil {
		return jsx.Resolver{Literal: f.Bindings.Resolve}
	}
	return jsx.Resolver{}
}

// fileCheck carries the per-file state of one lint run.
type fileCheck struct {
	*Linter
	filename     string
	tree         *routes.Tree
	currentRoute string
	resolve      jsx.Resolver
	findings     []Finding
}

func (l *Linter) lint(filename string, f *jsx.File, tree *routes.Tree) ([]Finding, error) {
	c := &fileCheck{
		Linter:   l,
		filename: filename,
		tree:     tree,
		resolve:  l.resolver(f),
	}
	if current, ok := routes.LocateFile(tree, filename); ok {
		c.currentRoute = current
	}
	debug.LogLint("%s: route %q, %d elements\n", filename, c.currentRoute, len(f.Elements))

	for i := range f.Elements {
		el := &f.Elements[i]
		var err error
		jsx.ForEachMatch(el, l.matchers, func(cand jsx.Candidate) {
			if err == nil {
				err = c.checkRoutePath(cand)
			}
		})
		if err != nil {
			return nil, err
		}
		if l.rules.Enabled(RuleUseLinkForRoutes) {
			jsx.ForEachMatch(el, l.anchors, c.checkAnchor)
		}
	}
	return c.findings, nil
}

func (c *fileCheck) report(rule string, kind Kind, loc jsx.Location, data map[string]string) *Finding {
	c.findings = append(c.findings, Finding{
		Rule:      rule,
		Kind:      kind,
		Severity:  c.rules[rule],
		File:      c.filename,
		Line:      loc.Line,
		Column:    loc.Column,
		EndLine:   loc.EndLine,
		EndColumn: loc.EndColumn,
		Data:      data,
		Message:   Message(kind, data),
	})
	return &c.findings[len(c.findings)-1]
}

func (c *fileCheck) checkRoutePath(cand jsx.Candidate) error {
	loc := cand.Attribute.Location
	raw, ok := c.resolve.Resolve(cand.Attribute.Value)
	if !ok {
		if c.settings.StrictMode && c.rules.Enabled(RuleRequireValidPaths) {
			c.report(RuleRequireValidPaths, KindIndeterminatePath, loc, nil)
		}
		return nil
	}

	toPath := routepath.Normalize(raw)
	if routepath.IsURL(toPath) {
		if c.rules.Enabled(RuleNoURLs) {
			c.report(RuleNoURLs, KindURLAsPath, loc, map[string]string{
				"component":         cand.Matcher.Component,
				"attribute":         cand.Matcher.Attribute,
				"nativeAlternative": cand.Matcher.NativeAlternative,
			})
		}
		return nil
	}

	if !routepath.IsAbsolute(toPath) && c.rules.Enabled(RuleNoRelativePaths) &&
		!(c.settings.AllowLinksToSelf && routepath.IsSelfReference(toPath)) {
		data := map[string]string{
			"toPath":    toPath,
			"component": cand.Matcher.Component,
			"attribute": cand.Matcher.Attribute,
		}
		switch {
		case c.currentRoute == "":
			c.report(RuleNoRelativePaths, KindAmbiguousPath, loc, data)
		case c.settings.EnforceInRouteComponents:
			c.report(RuleNoRelativePaths, KindRelativePath, loc, data)
		}
	}

	resolved, ok := routepath.Resolve(c.currentRoute, toPath)
	if !ok {
		// relative outside a route, left to no-relative-paths
		return nil
	}
	valid, err := routes.Validate(c.tree, resolved)
	if err != nil {
		return err
	}
	if !valid && c.rules.Enabled(RuleRequireValidPaths) {
		f := c.report(RuleRequireValidPaths, KindInvalidPath, loc, map[string]string{
			"toPathNormalized": resolved,
		})
		if s, ok := routes.Suggest(c.tree, resolved); ok {
			f.Suggestion = s
		}
	}
	return nil
}

func (c *fileCheck) checkAnchor(cand jsx.Candidate) {
	loc := cand.Attribute.Location
	raw, ok := c.resolve.Resolve(cand.Attribute.Value)
	if !ok {
		if c.settings.StrictMode {
			c.report(RuleUseLinkForRoutes, KindIndeterminateURL, loc, nil)
		}
		return
	}
	if routepath.IsNonNavigable(raw) || routepath.IsURL(routepath.Normalize(raw)) {
		return
	}
	c.report(RuleUseLinkForRoutes, KindAnchorForRoute, loc, nil)
}
