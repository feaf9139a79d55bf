// Package jsx extracts navigation attributes from JSX elements and resolves
// their values to strings where that is possible without running the code.
package jsx

// Location is a source span. Lines and columns start at 1; columns count
// bytes.
type Location struct {
	Line      int `json:"line"`
	Column    int `json:"column"`
	EndLine   int `json:"endLine"`
	EndColumn int `json:"endColumn"`
}

// Expr is an attribute value or a sub-expression of one.
type Expr interface {
	exprNode()
}

// StringLiteral holds the cooked value of a quoted string.
type StringLiteral struct {
	Value string
}

// TemplateLiteral is a template string; len(Quasis) == len(Exprs)+1 and
// quasis hold cooked text.
type TemplateLiteral struct {
	Quasis []string
	Exprs  []Expr
}

// Identifier is a bare variable reference.
type Identifier struct {
	Name string
}

// MemberExpression is Object.Property or Object["Property"].
type MemberExpression struct {
	Object   Expr
	Property string
}

// ObjectLiteral is an object expression with statically known keys.
// AsConst is set for `{...} as const`.
type ObjectLiteral struct {
	Properties map[string]Expr
	AsConst    bool
}

// Unknown is any expression the resolver has no rule for, such as a call.
type Unknown struct {
	Kind string
	Text string
}

func (*StringLiteral) exprNode()    {}
func (*TemplateLiteral) exprNode()  {}
func (*Identifier) exprNode()       {}
func (*MemberExpression) exprNode() {}
func (*ObjectLiteral) exprNode()    {}
func (*Unknown) exprNode()          {}

// Attribute is a name=value pair on an element. Value is nil for boolean
// shorthand attributes such as <Link reloadDocument>.
type Attribute struct {
	Name     string
	Value    Expr
	Location Location
}

// Element is the opening tag of a JSX element. Plain is false for member
// or namespaced tag names (<Foo.Link>, <svg:a>), which are never matched.
type Element struct {
	Name       string
	Plain      bool
	Attributes []Attribute
	Location   Location
}

// Attribute returns the first attribute called name.
func (e *Element) Attribute(name string) (*Attribute, bool) {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i], true
		}
	}
	return nil, false
}

// File is the parse result for one source file.
type File struct {
	Path     string
	Elements []Element
	Bindings *Bindings
}
