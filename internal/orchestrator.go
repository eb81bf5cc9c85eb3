package internal

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lychee-technology/schemaguard"
)

// Orchestrator runs the syntax pre-pass, resolves resources and fans the
// enabled validators out over a bounded worker pool.
type Orchestrator struct {
	registry Registry
	matcher  *ExclusionMatcher
	workers  int
	logger   *zap.SugaredLogger
}

// NewOrchestrator builds the registry for cfg and checks code uniqueness.
func NewOrchestrator(cfg *schemaguard.Config, logger *zap.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = schemaguard.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := AllValidators(cfg)
	if err := CheckRegistry(registry); err != nil {
		return nil, err
	}
	return &Orchestrator{
		registry: registry,
		matcher:  NewExclusionMatcher(cfg.Validation.Exclude),
		workers:  cfg.Validation.Workers,
		logger:   logger.Sugar(),
	}, nil
}

// Infos describes the registered checks, marking the excluded ones.
func (o *Orchestrator) Infos() []schemaguard.ValidatorInfo {
	return o.registry.Infos(o.matcher)
}

// Run validates local against remote in the given mode. Issues are returned
// in the report; a non-nil error is a defect or a context error.
func (o *Orchestrator) Run(ctx context.Context, local, remote *schemaguard.Schema, mode schemaguard.DeploymentMode) (*schemaguard.IssueReport, error) {
	start := time.Now()
	report := schemaguard.NewIssueReport(mode)
	log := o.logger.With("run_id", report.RunID.String(), "mode", string(mode))
	log.Infow("validation started")

	quarantine := Quarantine{}
	for _, check := range o.registry.Syntax {
		issues, q := check.Check(local)
		report.Issues = append(report.Issues, issues...)
		for key := range q {
			quarantine[key] = struct{}{}
		}
		EmitIssueCount(ctx, check.Code(), string(check.IssueKind()), len(issues))
	}
	if len(quarantine) > 0 {
		log.Debugw("entities quarantined by syntax checks", "count", len(quarantine))
	}

	resources, err := Resolve(local, remote, mode, quarantine)
	if err != nil {
		log.Errorw("resolution failed", "error", err)
		return nil, err
	}

	var enabled []Validator
	for _, v := range o.registry.Validators {
		if o.matcher.CanRun(v.Code(), v.IssueKind()) {
			enabled = append(enabled, v)
		} else {
			log.Debugw("validator excluded", "code", v.Code())
		}
	}

	results := make([][]schemaguard.Issue, len(enabled))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, v := range enabled {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			issues, err := o.runValidator(gctx, v, resources)
			if err != nil {
				return err
			}
			results[i] = issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorw("validation aborted", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, issues := range results {
		report.Issues = append(report.Issues, issues...)
	}
	report.Sort()

	elapsed := time.Since(start)
	EmitRunLatency(ctx, string(mode), elapsed.Milliseconds())
	counts := report.CountByKind()
	log.Infow("validation finished",
		"validators", len(enabled),
		"syntax_errors", counts[schemaguard.IssueKindSyntax],
		"consistency_errors", counts[schemaguard.IssueKindConsistency],
		"recommendations", counts[schemaguard.IssueKindRecommendation],
		"duration_ms", elapsed.Milliseconds())
	return report, nil
}

// runValidator runs one validator, turning a panic into a defect and checking
// that every issue carries the validator's own code and kind.
func (o *Orchestrator) runValidator(ctx context.Context, v Validator, r *ResolvedResources) (issues []schemaguard.Issue, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Errorw("validator panicked", "code", v.Code(), "panic", rec, "stack", string(debug.Stack()))
			issues = nil
			err = schemaguard.NewDefect(schemaguard.ErrCodeValidatorPanic,
				fmt.Sprintf("validator %s panicked: %v", v.Code(), rec)).
				WithDetail("code", v.Code())
		}
	}()

	issues, err = v.Run(r)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		if issue.Code != v.Code() || issue.Kind != v.IssueKind() {
			return nil, schemaguard.NewDefect(schemaguard.ErrCodeInvariantViolation,
				fmt.Sprintf("validator %s emitted issue %s of kind %s", v.Code(), issue.Code, issue.Kind))
		}
	}

	EmitValidatorLatency(ctx, v.Code(), time.Since(start).Milliseconds())
	EmitIssueCount(ctx, v.Code(), string(v.IssueKind()), len(issues))
	return issues, nil
}
