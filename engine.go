package schemaguard

import "context"

// Input is everything a single validation run consumes.
type Input struct {
	Local *Schema
	// Remote is the deployed snapshot. It may be nil when nothing is deployed yet.
	Remote *Schema
	// Mode overrides the configured deployment mode when set.
	Mode DeploymentMode
	// Issues found before validation, e.g. by a loader, that belong in the report.
	Issues Issues
}

// ValidatorInfo describes a registered validator.
type ValidatorInfo struct {
	Code     string    `json:"code"`
	Kind     IssueKind `json:"kind"`
	Summary  string    `json:"summary"`
	Excluded bool      `json:"excluded"`
}

// Engine validates a draft schema before deployment.
type Engine interface {
	// Validate runs every enabled validator and returns the sorted report.
	// A non-nil error is either a context error or a defect (see IsDefect),
	// never a problem with the user's schema.
	Validate(ctx context.Context, input Input) (*IssueReport, error)
	// Validators lists the registered validators in code order.
	Validators() []ValidatorInfo
}
