package internal

import (
	"slices"
	"strings"

	"github.com/lychee-technology/schemaguard"
)

// Registry is the static set of checks a run can use.
type Registry struct {
	Syntax     []SyntaxCheck
	Validators []Validator
}

// externalCodes are emitted outside the engine but share the code namespace.
var externalCodes = []schemaguard.ValidatorInfo{
	{
		Code:    CodeDocumentSchema,
		Kind:    schemaguard.IssueKindSyntax,
		Summary: "schema documents must match the document schema",
	},
}

// AllValidators builds every built-in check for cfg.
func AllValidators(cfg *schemaguard.Config) Registry {
	var validators []Validator
	validators = append(validators, connectionValidators()...)
	validators = append(validators, containerValidators()...)
	validators = append(validators, viewValidators()...)
	validators = append(validators, consistencyValidators(cfg.Validation.SharedSpaces)...)
	validators = append(validators, limitValidators(cfg.Limits)...)
	validators = append(validators, performanceValidators()...)
	validators = append(validators, documentationValidators()...)
	return Registry{
		Syntax:     syntaxChecks(),
		Validators: validators,
	}
}

// CheckRegistry verifies that every code is owned by exactly one check.
func CheckRegistry(reg Registry) error {
	owners := make(map[string]int)
	for _, info := range reg.Infos(nil) {
		owners[info.Code]++
	}
	var dups []string
	for _, code := range SortedKeys(owners) {
		if owners[code] > 1 {
			dups = append(dups, code)
		}
	}
	if len(dups) > 0 {
		return schemaguard.NewDefect(schemaguard.ErrCodeDuplicateValidator,
			"validator codes registered more than once: "+strings.Join(dups, ", ")).
			WithDetail("codes", dups)
	}
	return nil
}

// Infos describes every registered code in code order. matcher may be nil.
func (reg Registry) Infos(matcher *ExclusionMatcher) []schemaguard.ValidatorInfo {
	var out []schemaguard.ValidatorInfo
	add := func(code string, kind schemaguard.IssueKind, summary string) {
		info := schemaguard.ValidatorInfo{Code: code, Kind: kind, Summary: summary}
		if matcher != nil {
			info.Excluded = !matcher.CanRun(code, kind)
		}
		out = append(out, info)
	}
	for _, c := range reg.Syntax {
		add(c.Code(), c.IssueKind(), c.Summary())
	}
	for _, v := range reg.Validators {
		add(v.Code(), v.IssueKind(), v.Summary())
	}
	for _, info := range externalCodes {
		add(info.Code, info.Kind, info.Summary)
	}
	slices.SortStableFunc(out, func(a, b schemaguard.ValidatorInfo) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out
}
