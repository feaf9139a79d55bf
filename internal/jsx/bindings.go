package jsx

import "strings"

// Bindings records the top level and local declarations of a file so that
// identifiers with exactly one constant string value can be resolved.
//
// A name is resolvable when it is declared once in the whole file, with
// const, and initialised with a string, a template whose parts all
// resolve, or another resolvable name. Object properties resolve only on
// `as const` objects, mirroring which values have literal types.
type Bindings struct {
	values map[string]Expr
	counts map[string]int
}

// NewBindings returns an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{
		values: make(map[string]Expr),
		counts: make(map[string]int),
	}
}

// Declare records a declaration. Non-const declarations and repeated
// names poison the binding.
func (b *Bindings) Declare(name string, value Expr, isConst bool) {
	b.counts[name]++
	if isConst && value != nil {
		b.values[name] = value
	}
}

// Resolve implements LiteralResolver.
func (b *Bindings) Resolve(e Expr) (string, bool) {
	if b == nil {
		return "", false
	}
	return b.resolve(e, 0)
}

func (b *Bindings) resolve(e Expr, depth int) (string, bool) {
	if depth > maxResolveDepth {
		return "", false
	}
	switch v := e.(type) {
	case *StringLiteral:
		return v.Value, true
	case *TemplateLiteral:
		var sb strings.Builder
		for i, q := range v.Quasis {
			sb.WriteString(q)
			if i < len(v.Exprs) {
				s, ok := b.resolve(v.Exprs[i], depth+1)
				if !ok {
					return "", false
				}
				sb.WriteString(s)
			}
		}
		return sb.String(), true
	case *Identifier:
		bound, ok := b.lookup(v.Name)
		if !ok {
			return "", false
		}
		return b.resolve(bound, depth+1)
	case *MemberExpression:
		obj, ok := b.object(v.Object, depth+1)
		if !ok || !obj.AsConst {
			return "", false
		}
		prop, ok := obj.Properties[v.Property]
		if !ok {
			return "", false
		}
		return b.resolve(prop, depth+1)
	}
	return "", false
}

func (b *Bindings) lookup(name string) (Expr, bool) {
	if b.counts[name] != 1 {
		return nil, false
	}
	v, ok := b.values[name]
	return v, ok
}

// object resolves e to an object literal, following identifiers and nested
// member accesses. Nested objects inherit `as const` from the outermost
// object.
func (b *Bindings) object(e Expr, depth int) (*ObjectLiteral, bool) {
	if depth > maxResolveDepth {
		return nil, false
	}
	switch v := e.(type) {
	case *ObjectLiteral:
		return v, true
	case *Identifier:
		bound, ok := b.lookup(v.Name)
		if !ok {
			return nil, false
		}
		return b.object(bound, depth+1)
	case *MemberExpression:
		parent, ok := b.object(v.Object, depth+1)
		if !ok {
			return nil, false
		}
		child, ok := parent.Properties[v.Property].(*ObjectLiteral)
		if !ok {
			return nil, false
		}
		if parent.AsConst && !child.AsConst {
			child = &ObjectLiteral{Properties: child.Properties, AsConst: true}
		}
		return child, true
	}
	return nil, false
}
