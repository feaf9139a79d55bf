package jsx

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/routelint/internal/debug"
	rlerrors "github.com/standardbeagle/routelint/internal/errors"
)

type language int

const (
	langJavaScript language = iota
	langTypeScript
	langTSX
)

var extensionLanguages = map[string]language{
	".js":  langJavaScript,
	".jsx": langJavaScript,
	".mjs": langJavaScript,
	".cjs": langJavaScript,
	".ts":  langTypeScript,
	".mts": langTypeScript,
	".cts": langTypeScript,
	".tsx": langTSX,
}

// Supported reports whether filename has a JavaScript or TypeScript
// extension the parser understands.
func Supported(filename string) bool {
	_, ok := extensionLanguages[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Parser turns source files into the element model. Tree-sitter parsers
// are not safe for concurrent use, so each Parse borrows one from a per
// language free list. A Parser itself is safe for concurrent use.
type Parser struct {
	mu     sync.Mutex
	free   map[language][]*tree_sitter.Parser
	closed bool
}

// NewParser creates a parser pool.
func NewParser() *Parser {
	return &Parser{free: make(map[language][]*tree_sitter.Parser)}
}

func newLanguageParser(lang language) (*tree_sitter.Parser, error) {
	var ptr = tree_sitter_javascript.Language()
	switch lang {
	case langTypeScript:
		ptr = tree_sitter_typescript.LanguageTypescript()
	case langTSX:
		ptr = tree_sitter_typescript.LanguageTSX()
	}
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(tree_sitter.NewLanguage(ptr)); err != nil {
		parser.Close()
		return nil, fmt.Errorf("set tree-sitter language: %w", err)
	}
	return parser, nil
}

func (p *Parser) acquire(lang language) (*tree_sitter.Parser, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("parser is closed")
	}
	if list := p.free[lang]; len(list) > 0 {
		parser := list[len(list)-1]
		p.free[lang] = list[:len(list)-1]
		p.mu.Unlock()
		return parser, nil
	}
	p.mu.Unlock()
	return newLanguageParser(lang)
}

func (p *Parser) release(lang language, parser *tree_sitter.Parser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		parser.Close()
		return
	}
	p.free[lang] = append(p.free[lang], parser)
}

// Close releases every pooled tree-sitter parser.
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, list := range p.free {
		for _, parser := range list {
			parser.Close()
		}
	}
	p.free = nil
	p.closed = true
}

// Parse extracts every JSX opening element, in source order, and the
// file's constant bindings. Syntax errors do not fail the parse; elements
// in the damaged region may be missing.
func (p *Parser) Parse(filename string, content []byte) (*File, error) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, rlerrors.NewParseError(filename, 0, 0, fmt.Errorf("unsupported file type %q", filepath.Ext(filename)))
	}

	parser, err := p.acquire(lang)
	if err != nil {
		return nil, rlerrors.NewParseError(filename, 0, 0, err)
	}
	defer p.release(lang, parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, rlerrors.NewParseError(filename, 0, 0, fmt.Errorf("tree-sitter returned no tree"))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		debug.Log(debug.ComponentJSX, "%s has syntax errors, extracting what parsed\n", filename)
	}

	c := &converter{src: content, file: &File{Path: filename, Bindings: NewBindings()}}
	c.walk(root)
	return c.file, nil
}

type converter struct {
	src  []byte
	file *File
}

func (c *converter) text(n *tree_sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

func location(n *tree_sitter.Node) Location {
	start, end := n.StartPosition(), n.EndPosition()
	return Location{
		Line:      int(start.Row) + 1,
		Column:    int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndColumn: int(end.Column) + 1,
	}
}

// walk visits the tree in pre-order with an explicit stack so that deeply
// nested JSX cannot exhaust the goroutine stack.
func (c *converter) walk(root *tree_sitter.Node) {
	stack := []*tree_sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Kind() {
		case "jsx_opening_element", "jsx_self_closing_element":
			if el, ok := c.element(n); ok {
				c.file.Elements = append(c.file.Elements, el)
			}
		case "lexical_declaration", "variable_declaration":
			c.declarations(n)
		case "formal_parameters", "catch_clause":
			for i := uint(0); i < n.NamedChildCount(); i++ {
				c.declarePattern(n.NamedChild(i))
			}
		case "arrow_function":
			if param := n.ChildByFieldName("parameter"); param != nil {
				c.declarePattern(param)
			}
		case "for_in_statement":
			if left := n.ChildByFieldName("left"); left != nil {
				c.declarePattern(left)
			}
		case "import_clause", "namespace_import":
			for i := uint(0); i < n.NamedChildCount(); i++ {
				if id := n.NamedChild(i); id != nil && id.Kind() == "identifier" {
					c.file.Bindings.Declare(c.text(id), nil, false)
				}
			}
		case "import_specifier":
			name := n.ChildByFieldName("alias")
			if name == nil {
				name = n.ChildByFieldName("name")
			}
			if name != nil {
				c.file.Bindings.Declare(c.text(name), nil, false)
			}
		case "function_declaration", "generator_function_declaration",
			"class_declaration", "abstract_class_declaration", "enum_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				c.file.Bindings.Declare(c.text(name), nil, false)
			}
		}

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if child := n.Child(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

func (c *converter) element(n *tree_sitter.Node) (Element, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		// fragment
		return Element{}, false
	}
	el := Element{
		Name:     c.text(name),
		Plain:    name.Kind() == "identifier",
		Location: location(n),
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() != "jsx_attribute" {
			continue
		}
		attrName := child.NamedChild(0)
		if attrName == nil {
			continue
		}
		attr := Attribute{Name: c.text(attrName), Location: location(child)}
		if value := c.namedChildAfter(child, 1); value != nil {
			attr.Value = c.attributeValue(value)
		}
		el.Attributes = append(el.Attributes, attr)
	}
	return el, true
}

// namedChildAfter returns the i-th named child that is not a comment.
func (c *converter) namedChildAfter(n *tree_sitter.Node, i int) *tree_sitter.Node {
	seen := 0
	for j := uint(0); j < n.NamedChildCount(); j++ {
		child := n.NamedChild(j)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		if seen == i {
			return child
		}
		seen++
	}
	return nil
}

func (c *converter) attributeValue(n *tree_sitter.Node) Expr {
	if n.Kind() == "string" {
		// JSX attribute strings take HTML entities, not backslash escapes
		return &StringLiteral{Value: html.UnescapeString(unquote(c.text(n)))}
	}
	return c.expr(n, 0)
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func (c *converter) expr(n *tree_sitter.Node, depth int) Expr {
	if n == nil {
		return &Unknown{Kind: "missing"}
	}
	if depth > maxResolveDepth {
		return &Unknown{Kind: n.Kind(), Text: c.text(n)}
	}
	switch n.Kind() {
	case "string":
		return &StringLiteral{Value: cook(unquote(c.text(n)))}
	case "template_string":
		return c.template(n, depth)
	case "identifier":
		return &Identifier{Name: c.text(n)}
	case "member_expression":
		obj := c.expr(n.ChildByFieldName("object"), depth+1)
		prop := n.ChildByFieldName("property")
		if prop == nil || prop.Kind() != "property_identifier" {
			return &Unknown{Kind: n.Kind(), Text: c.text(n)}
		}
		return &MemberExpression{Object: obj, Property: c.text(prop)}
	case "subscript_expression":
		index := n.ChildByFieldName("index")
		if index == nil {
			return &Unknown{Kind: n.Kind(), Text: c.text(n)}
		}
		var key string
		switch index.Kind() {
		case "string":
			key = cook(unquote(c.text(index)))
		case "number":
			key = c.text(index)
		default:
			return &Unknown{Kind: n.Kind(), Text: c.text(n)}
		}
		return &MemberExpression{Object: c.expr(n.ChildByFieldName("object"), depth+1), Property: key}
	case "object":
		return c.object(n, depth)
	case "as_expression":
		inner := c.expr(c.namedChildAfter(n, 0), depth+1)
		last := n.Child(n.ChildCount() - 1)
		if obj, ok := inner.(*ObjectLiteral); ok && last != nil && c.text(last) == "const" {
			return &ObjectLiteral{Properties: obj.Properties, AsConst: true}
		}
		return inner
	case "parenthesized_expression", "satisfies_expression", "non_null_expression", "jsx_expression":
		inner := c.namedChildAfter(n, 0)
		if inner == nil {
			return &Unknown{Kind: n.Kind(), Text: c.text(n)}
		}
		return c.expr(inner, depth+1)
	}
	return &Unknown{Kind: n.Kind(), Text: c.text(n)}
}

func (c *converter) template(n *tree_sitter.Node, depth int) Expr {
	t := &TemplateLiteral{}
	pos := n.StartByte() + 1
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.Kind() != "template_substitution" {
			continue
		}
		t.Quasis = append(t.Quasis, cook(string(c.src[pos:child.StartByte()])))
		t.Exprs = append(t.Exprs, c.expr(c.namedChildAfter(child, 0), depth+1))
		pos = child.EndByte()
	}
	end := n.EndByte() - 1
	if end < pos {
		end = pos
	}
	t.Quasis = append(t.Quasis, cook(string(c.src[pos:end])))
	return t
}

func (c *converter) object(n *tree_sitter.Node, depth int) Expr {
	obj := &ObjectLiteral{Properties: make(map[string]Expr)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "pair":
			key := child.ChildByFieldName("key")
			if key == nil {
				continue
			}
			var name string
			switch key.Kind() {
			case "property_identifier", "number":
				name = c.text(key)
			case "string":
				name = cook(unquote(c.text(key)))
			default:
				continue
			}
			obj.Properties[name] = c.expr(child.ChildByFieldName("value"), depth+1)
		case "shorthand_property_identifier":
			name := c.text(child)
			obj.Properties[name] = &Identifier{Name: name}
		}
	}
	return obj
}

func (c *converter) declarations(n *tree_sitter.Node) {
	isConst := false
	if kind := n.ChildByFieldName("kind"); kind != nil {
		isConst = c.text(kind) == "const"
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		decl := n.NamedChild(i)
		if decl == nil || decl.Kind() != "variable_declarator" {
			continue
		}
		name := decl.ChildByFieldName("name")
		if name == nil {
			continue
		}
		if name.Kind() != "identifier" {
			c.declarePattern(name)
			continue
		}
		var value Expr
		if v := decl.ChildByFieldName("value"); v != nil {
			value = c.expr(v, 0)
		}
		c.file.Bindings.Declare(c.text(name), value, isConst)
	}
}

// declarePattern records every name bound by a parameter or destructuring
// pattern so that it shadows, and thereby disables, a constant of the same
// name.
func (c *converter) declarePattern(n *tree_sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		c.file.Bindings.Declare(c.text(n), nil, false)
	case "assignment_pattern", "object_assignment_pattern":
		c.declarePattern(n.ChildByFieldName("left"))
	case "pair_pattern":
		c.declarePattern(n.ChildByFieldName("value"))
	case "required_parameter", "optional_parameter":
		c.declarePattern(n.ChildByFieldName("pattern"))
	case "object_pattern", "array_pattern", "rest_pattern", "lexical_declaration", "variable_declaration":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			c.declarePattern(n.NamedChild(i))
		}
	case "variable_declarator":
		c.declarePattern(n.ChildByFieldName("name"))
	}
}
