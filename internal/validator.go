package internal

import (
	"fmt"

	"github.com/lychee-technology/schemaguard"
)

// Validator implements one rule over the resolved resources. Each validator
// owns exactly one issue code. Run returns issues for problems in the schema;
// the error is reserved for defects.
type Validator interface {
	Code() string
	IssueKind() schemaguard.IssueKind
	Summary() string
	Run(r *ResolvedResources) ([]schemaguard.Issue, error)
}

// SyntaxCheck inspects the raw local draft before resolution. Entities it
// quarantines are excluded from every later validator.
type SyntaxCheck interface {
	Code() string
	IssueKind() schemaguard.IssueKind
	Summary() string
	Check(local *schemaguard.Schema) ([]schemaguard.Issue, Quarantine)
}

// issueSink collects issues for a single code and kind.
type issueSink struct {
	code   string
	kind   schemaguard.IssueKind
	issues []schemaguard.Issue
}

func (s *issueSink) add(subject, fix, format string, args ...any) {
	s.issues = append(s.issues, schemaguard.Issue{
		Code:    s.code,
		Kind:    s.kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
		Fix:     fix,
	})
}

// rule is the Validator used by every built-in check.
type rule struct {
	code    string
	kind    schemaguard.IssueKind
	summary string
	run     func(r *ResolvedResources, out *issueSink) error
}

var _ Validator = (*rule)(nil)

func (v *rule) Code() string                     { return v.code }
func (v *rule) IssueKind() schemaguard.IssueKind { return v.kind }
func (v *rule) Summary() string                  { return v.summary }

func (v *rule) Run(r *ResolvedResources) ([]schemaguard.Issue, error) {
	out := &issueSink{code: v.code, kind: v.kind}
	if err := v.run(r, out); err != nil {
		return nil, err
	}
	return out.issues, nil
}

// syntaxRule is the SyntaxCheck used by the built-in pre-pass checks.
type syntaxRule struct {
	code    string
	summary string
	check   func(local *schemaguard.Schema, out *issueSink, quarantine Quarantine)
}

var _ SyntaxCheck = (*syntaxRule)(nil)

func (v *syntaxRule) Code() string                     { return v.code }
func (v *syntaxRule) IssueKind() schemaguard.IssueKind { return schemaguard.IssueKindSyntax }
func (v *syntaxRule) Summary() string                  { return v.summary }

func (v *syntaxRule) Check(local *schemaguard.Schema) ([]schemaguard.Issue, Quarantine) {
	out := &issueSink{code: v.code, kind: schemaguard.IssueKindSyntax}
	quarantine := Quarantine{}
	if local != nil {
		v.check(local, out, quarantine)
	}
	return out.issues, quarantine
}

func propertySubject(view schemaguard.ViewRef, property string) string {
	return schemaguard.ViewPropertyRef{View: view, Property: property}.String()
}

func containerPropertySubject(container schemaguard.ContainerRef, property string) string {
	return container.String() + "." + property
}
