package schemaguard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// IssueKind is the severity class of a finding.
type IssueKind string

const (
	// IssueKindSyntax marks structural malformation that stops validation of the entity.
	IssueKindSyntax IssueKind = "SyntaxError"
	// IssueKindConsistency marks a schema that will fail deployment as written.
	IssueKindConsistency IssueKind = "ConsistencyError"
	// IssueKindRecommendation marks a best-practice deviation.
	IssueKindRecommendation IssueKind = "Recommendation"
)

// Blocking reports whether issues of this kind prevent deployment.
func (k IssueKind) Blocking() bool {
	return k == IssueKindSyntax || k == IssueKindConsistency
}

// Issue is a single validation finding.
type Issue struct {
	Code string    `json:"code"`
	Kind IssueKind `json:"kind"`
	// Subject is the canonical identifier of the entity the issue is about.
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

func (i Issue) String() string {
	if i.Subject == "" {
		return fmt.Sprintf("[%s] %s: %s", i.Kind, i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", i.Kind, i.Code, i.Subject, i.Message)
}

// CompareIssues orders issues by code, subject and message.
func CompareIssues(a, b Issue) int {
	if c := cmp.Compare(a.Code, b.Code); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Subject, b.Subject); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Message, b.Message); c != 0 {
		return c
	}
	return cmp.Compare(a.Fix, b.Fix)
}

// Issues is a collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Subject)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// IssueReport is the ordered result of one validation run.
type IssueReport struct {
	RunID  uuid.UUID      `json:"runId"`
	Mode   DeploymentMode `json:"mode"`
	Issues Issues         `json:"issues"`
}

// NewIssueReport creates an empty report with a fresh run id.
func NewIssueReport(mode DeploymentMode) *IssueReport {
	return &IssueReport{
		RunID:  uuid.New(),
		Mode:   mode,
		Issues: Issues{},
	}
}

// Sort orders the issues deterministically.
func (r *IssueReport) Sort() {
	slices.SortStableFunc(r.Issues, CompareIssues)
}

// Merge appends issues and restores the ordering.
func (r *IssueReport) Merge(more ...Issue) {
	r.Issues = append(r.Issues, more...)
	r.Sort()
}

// HasBlockingIssues reports whether any issue prevents deployment.
func (r *IssueReport) HasBlockingIssues() bool {
	for _, it := range r.Issues {
		if it.Kind.Blocking() {
			return true
		}
	}
	return false
}

// CountByKind tallies issues per kind.
func (r *IssueReport) CountByKind() map[IssueKind]int {
	counts := map[IssueKind]int{
		IssueKindSyntax:         0,
		IssueKindConsistency:    0,
		IssueKindRecommendation: 0,
	}
	for _, it := range r.Issues {
		counts[it.Kind]++
	}
	return counts
}

// Filter returns the issues of the given kind, preserving order.
func (r *IssueReport) Filter(kind IssueKind) Issues {
	var out Issues
	for _, it := range r.Issues {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// WithCode returns the issues carrying the given code, preserving order.
func (r *IssueReport) WithCode(code string) Issues {
	var out Issues
	for _, it := range r.Issues {
		if it.Code == code {
			out = append(out, it)
		}
	}
	return out
}
