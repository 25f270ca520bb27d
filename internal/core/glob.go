package core

import (
	"regexp"
	"strings"
)

// Glob is a compiled tag-value pattern: '?' matches exactly one code
// point, '*' matches any run (including empty) of code points, every
// other character is literal.
type Glob struct {
	raw string
	re  *regexp.Regexp
}

// HasWildcard reports whether raw contains '*' or '?', the check the
// planner uses to decide whether a tag filter value disqualifies its
// tag from the split index (§4.6 invariant 6).
func HasWildcard(raw string) bool {
	return strings.ContainsAny(raw, "*?")
}

// CompileGlob compiles a single glob pattern once; callers reuse the
// result across every candidate row in a query.
func CompileGlob(raw string) *Glob {
	var sb strings.Builder
	// (?s) makes '.' match '\n' too, so '*'/'?' cover any run of code
	// points per §4.6, not just non-newline ones.
	sb.WriteString("(?s)^")
	literal := strings.Builder{}
	flush := func() {
		if literal.Len() > 0 {
			sb.WriteString(regexp.QuoteMeta(literal.String()))
			literal.Reset()
		}
	}
	for _, r := range raw {
		switch r {
		case '*':
			flush()
			sb.WriteString(".*")
		case '?':
			flush()
			sb.WriteString(".")
		default:
			literal.WriteRune(r)
		}
	}
	flush()
	sb.WriteString("$")
	return &Glob{raw: raw, re: regexp.MustCompile(sb.String())}
}

// Match reports whether value satisfies the compiled glob.
func (g *Glob) Match(value string) bool {
	return g.re.MatchString(value)
}

// String returns the original, uncompiled pattern.
func (g *Glob) String() string { return g.raw }

// CompileGlobs compiles every pattern in raws, in order.
func CompileGlobs(raws []string) []*Glob {
	globs := make([]*Glob, len(raws))
	for i, r := range raws {
		globs[i] = CompileGlob(r)
	}
	return globs
}

// MatchAny reports whether value matches at least one of globs.
func MatchAny(globs []*Glob, value string) bool {
	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}
	return false
}
