package xss

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidPattern = errors.New("invalid xss pattern")

// DefaultExpressions are the signatures checked when no custom patterns replace them.
// Each is a separate pattern, so one Filter call can strip several default signatures,
// at most one occurrence per expression.
var DefaultExpressions = []string{
	`alert\(`,
	`(<|%3C)/?script`,
	`(<|%3C)iframe`,
	`src=`,
}

// PatternSet is an ordered, immutable list of case-insensitive expressions.
// The zero value is an empty set.
type PatternSet struct {
	patterns []*regexp.Regexp
}

func NewPatternSet(expressions ...string) (PatternSet, error) {
	patterns := make([]*regexp.Regexp, 0, len(expressions))
	for _, expr := range expressions {
		if strings.TrimSpace(expr) == "" {
			return PatternSet{}, fmt.Errorf("%w: empty expression", ErrInvalidPattern)
		}
		re, err := regexp.Compile(caseInsensitive(expr))
		if err != nil {
			return PatternSet{}, fmt.Errorf("%w '%s': %v", ErrInvalidPattern, expr, err)
		}
		patterns = append(patterns, re)
	}
	return PatternSet{patterns: patterns}, nil
}

func MustPatternSet(expressions ...string) PatternSet {
	set, err := NewPatternSet(expressions...)
	if err != nil {
		panic(err)
	}
	return set
}

func DefaultPatternSet() PatternSet {
	return MustPatternSet(DefaultExpressions...)
}

// ResolvePatternSet builds the set a guard runs with. Custom expressions are appended to
// the defaults when appendToDefaults is set; otherwise a non-empty custom list replaces them.
func ResolvePatternSet(custom []string, appendToDefaults bool) (PatternSet, error) {
	switch {
	case appendToDefaults:
		exprs := make([]string, 0, len(DefaultExpressions)+len(custom))
		exprs = append(exprs, DefaultExpressions...)
		exprs = append(exprs, custom...)
		return NewPatternSet(exprs...)
	case len(custom) > 0:
		return NewPatternSet(custom...)
	default:
		return DefaultPatternSet(), nil
	}
}

func (s PatternSet) Len() int {
	return len(s.patterns)
}

// At returns the i-th compiled expression. Regexp values are safe for concurrent use.
func (s PatternSet) At(i int) *regexp.Regexp {
	return s.patterns[i]
}

func (s PatternSet) Expressions() []string {
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.String()
	}
	return out
}

func caseInsensitive(expr string) string {
	if strings.HasPrefix(expr, "(?i)") {
		return expr
	}
	return "(?i)" + expr
}
