package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lychee-technology/schemaguard"
)

const (
	exitOK       = 0
	exitBlocking = 1
	exitFailure  = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("failed to set up logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	if len(os.Args) < 2 {
		printUsage()
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "validate":
		blocking, err := runValidate(ctx, os.Args[2:], os.Stdout)
		if err != nil {
			sugar.Errorf("validate: %v", err)
			return exitFailure
		}
		if blocking {
			return exitBlocking
		}
	case "codes":
		if err := runCodes(os.Args[2:], os.Stdout); err != nil {
			sugar.Errorf("codes: %v", err)
			return exitFailure
		}
	default:
		sugar.Errorf("unknown command %q", os.Args[1])
		printUsage()
		return exitFailure
	}
	return exitOK
}

func printUsage() {
	logger := zap.S()
	logger.Info("Usage: schemaguard <command> [options]")
	logger.Info("")
	logger.Info("Commands:")
	logger.Info("  validate   Validate a draft data model against the deployed snapshot")
	logger.Info("  codes      List the registered validators")
}

// loadConfig reads the config file when given, then applies environment overrides.
func loadConfig(path string) (*schemaguard.Config, error) {
	cfg := schemaguard.DefaultConfig()
	if path != "" {
		loaded, err := schemaguard.LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// newLogger builds the engine logger from the logging settings.
// Format "console" selects the development encoder; anything else is JSON.
func newLogger(cfg schemaguard.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = level
	}
	return zc.Build()
}
