package jsx

import (
	"github.com/standardbeagle/routelint/internal/routepath"
)

// maxResolveDepth bounds nested templates and binding chains.
const maxResolveDepth = 32

// LiteralResolver proves that an expression always evaluates to a single
// string. It plays the part of a type checker's literal types.
type LiteralResolver func(Expr) (string, bool)

// Resolver turns attribute values into raw path strings.
type Resolver struct {
	// Literal is consulted for expressions that are neither strings nor
	// templates. May be nil.
	Literal LiteralResolver
}

// Resolve returns the raw string value of e. Sub-expressions of a template
// that cannot be resolved are written as routepath.Sentinel, so the result
// must go through routepath.Normalize. The second result is false when the
// value is indeterminate.
func (r Resolver) Resolve(e Expr) (string, bool) {
	return r.resolve(e, 0)
}

func (r Resolver) resolve(e Expr, depth int) (string, bool) {
	if e == nil || depth > maxResolveDepth {
		return "", false
	}
	switch v := e.(type) {
	case *StringLiteral:
		return v.Value, true
	case *TemplateLiteral:
		values := make([]*string, len(v.Exprs))
		for i, sub := range v.Exprs {
			if s, ok := r.resolve(sub, depth+1); ok {
				values[i] = &s
			}
		}
		return routepath.JoinFragments(v.Quasis, values), true
	default:
		if r.Literal != nil {
			return r.Literal(e)
		}
		return "", false
	}
}
