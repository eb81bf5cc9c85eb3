package internal

import (
	"context"

	"go.uber.org/zap"

	"github.com/lychee-technology/schemaguard"
)

// engine is the schemaguard.Engine backed by the orchestrator.
type engine struct {
	mode         schemaguard.DeploymentMode
	orchestrator *Orchestrator
}

// NewEngine creates an Engine from cfg. A nil logger disables logging.
func NewEngine(cfg *schemaguard.Config, logger *zap.Logger) (schemaguard.Engine, error) {
	if cfg == nil {
		cfg = schemaguard.DefaultConfig()
	}
	orchestrator, err := NewOrchestrator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &engine{mode: cfg.Validation.Mode, orchestrator: orchestrator}, nil
}

func (e *engine) Validate(ctx context.Context, input schemaguard.Input) (*schemaguard.IssueReport, error) {
	mode := e.mode
	if input.Mode != "" {
		parsed, ok := schemaguard.ParseDeploymentMode(string(input.Mode))
		if !ok {
			return nil, &schemaguard.ConfigError{Field: "input.mode", Message: "must be one of additive, rebuild"}
		}
		mode = parsed
	}
	report, err := e.orchestrator.Run(ctx, input.Local, input.Remote, mode)
	if err != nil {
		return nil, err
	}
	report.Merge(input.Issues...)
	return report, nil
}

func (e *engine) Validators() []schemaguard.ValidatorInfo {
	return e.orchestrator.Infos()
}
