package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lychee-technology/schemaguard"
	"github.com/lychee-technology/schemaguard/internal"
)

// NewEngine creates a validation Engine with the provided configuration.
// This is the primary way for external projects to create an Engine instance.
//
// Usage:
//
//	import (
//	    "github.com/lychee-technology/schemaguard"
//	    "github.com/lychee-technology/schemaguard/factory"
//	)
//
//	config := schemaguard.DefaultConfig()
//	config.Validation.Exclude = []string{"DMS-AI-READINESS"}
//	engine, err := factory.NewEngine(config, logger)
//	if err != nil {
//	    // handle error
//	}
//	report, err := engine.Validate(ctx, schemaguard.Input{Local: draft, Remote: deployed})
//
// A nil config uses schemaguard.DefaultConfig and a nil logger disables logging.
func NewEngine(config *schemaguard.Config, logger *zap.Logger) (schemaguard.Engine, error) {
	if config == nil {
		config = schemaguard.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := internal.NewEngine(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	logger.Sugar().Debugw("engine created",
		"mode", string(config.Validation.Mode),
		"workers", config.Validation.Workers,
		"exclude", config.Validation.Exclude)
	return engine, nil
}
