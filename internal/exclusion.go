package internal

import (
	"strings"

	"github.com/lychee-technology/schemaguard"
)

// alwaysRuns lists the issue kinds that ignore exclusion patterns. Syntax and
// consistency errors decide deployability, so they cannot be switched off.
var alwaysRuns = map[schemaguard.IssueKind]bool{
	schemaguard.IssueKindSyntax:         true,
	schemaguard.IssueKindConsistency:    true,
	schemaguard.IssueKindRecommendation: false,
}

// ExclusionMatcher matches validator codes against ordered exclusion patterns.
// Patterns and codes are split on '-'. A '*' segment matches any single
// segment. A pattern matches every code that starts with its segments, and a
// pattern with more segments than the code never matches.
type ExclusionMatcher struct {
	patterns [][]string
}

// NewExclusionMatcher compiles the patterns. Blank patterns are ignored.
func NewExclusionMatcher(patterns []string) *ExclusionMatcher {
	m := &ExclusionMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, strings.Split(p, "-"))
	}
	return m
}

// Excluded reports whether any pattern matches code.
func (m *ExclusionMatcher) Excluded(code string) bool {
	segments := strings.Split(code, "-")
	for _, pattern := range m.patterns {
		if matchSegments(pattern, segments) {
			return true
		}
	}
	return false
}

// CanRun reports whether a validator with this code and kind should run.
func (m *ExclusionMatcher) CanRun(code string, kind schemaguard.IssueKind) bool {
	if alwaysRuns[kind] {
		return true
	}
	return !m.Excluded(code)
}

func matchSegments(pattern, code []string) bool {
	if len(pattern) > len(code) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != code[i] {
			return false
		}
	}
	return true
}
