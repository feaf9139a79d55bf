// Package routepath normalizes and resolves the path strings found in
// navigation attributes before they are matched against a route tree.
package routepath

import (
	"regexp"
	"strings"
)

// Placeholder stands in for any part of a path that could not be resolved
// statically. It is shaped like a route parameter so the matcher treats it
// as one.
const Placeholder = ":param"

// Sentinel marks an unresolved expression inside a raw path string. It holds
// NUL bytes so it can never come from a source literal.
const Sentinel = "\x00expr\x00"

var (
	dynamicSegment = regexp.MustCompile(`[^/]*` + regexp.QuoteMeta(Sentinel) + `[^/]*`)
	urlPattern     = regexp.MustCompile(`^(\w+:)?//`)
	schemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// JoinFragments interleaves literal fragments with resolved expression
// values. An expression that resolved to nil is written as the Sentinel.
// len(exprs) is expected to be len(fragments)-1; extra values are ignored.
func JoinFragments(fragments []string, exprs []*string) string {
	var b strings.Builder
	for i, frag := range fragments {
		b.WriteString(frag)
		if i >= len(fragments)-1 {
			break
		}
		if i < len(exprs) && exprs[i] != nil {
			b.WriteString(*exprs[i])
		} else {
			b.WriteString(Sentinel)
		}
	}
	return b.String()
}

// StripQueryAndHash drops everything from the first '?' or '#'.
func StripQueryAndHash(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// MergeDynamicSegments replaces every path segment containing a Sentinel
// with the Placeholder.
func MergeDynamicSegments(raw string) string {
	for strings.Contains(raw, Sentinel) {
		raw = dynamicSegment.ReplaceAllString(raw, Placeholder)
	}
	return raw
}

// Normalize strips the query and hash, then merges dynamic segments.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return MergeDynamicSegments(StripQueryAndHash(raw))
}

// IsAbsolute reports whether p starts at the application root.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// IsURL reports whether p carries a scheme or is protocol relative.
func IsURL(p string) bool {
	return urlPattern.MatchString(p)
}

// IsSelfReference reports whether a relative path points at the current
// route, e.g. "", "." or "./".
func IsSelfReference(p string) bool {
	if IsAbsolute(p) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg != "" && seg != "." {
			return false
		}
	}
	return true
}

// IsNonNavigable reports values that never navigate to an app route:
// in-page fragments and scheme URIs without an authority such as
// mailto: or tel:.
func IsNonNavigable(raw string) bool {
	if strings.HasPrefix(raw, "#") {
		return true
	}
	return schemePattern.MatchString(raw) && !IsURL(raw)
}

// Resolve joins target onto base the way a browser resolves a relative
// link against a directory. Absolute targets are returned unchanged. A
// relative target without a base cannot be resolved. ".." above the root
// is ignored.
func Resolve(base, target string) (string, bool) {
	if IsAbsolute(target) {
		return target, true
	}
	if base == "" {
		return "", false
	}
	if base == "/" {
		base = ""
	}

	parts := strings.Split(base+"/"+target, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "..":
			// keep the leading empty element that represents the root
			if len(out) > 1 {
				out = out[:len(out)-1]
			}
		case ".":
		default:
			out = append(out, part)
		}
	}

	resolved := strings.Join(out, "/")
	if len(resolved) > 1 && strings.HasSuffix(resolved, "/") {
		resolved = resolved[:len(resolved)-1]
	}
	if resolved == "" {
		resolved = "/"
	}
	return resolved, true
}
