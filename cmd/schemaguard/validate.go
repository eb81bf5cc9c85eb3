package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/lychee-technology/schemaguard"
	"github.com/lychee-technology/schemaguard/factory"
	"github.com/lychee-technology/schemaguard/internal/loader"
)

// runValidate validates the draft and writes the report to out.
// It reports whether the report holds blocking issues.
func runValidate(ctx context.Context, args []string, out io.Writer) (bool, error) {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.Usage = func() {
		fmt.Fprintln(out, "Usage: schemaguard validate -local <location> [options]")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "A location is a schema document, a directory of documents or s3://bucket/prefix.")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Options:")
		flags.PrintDefaults()
	}

	local := flags.String("local", "", "Location of the draft schema (required)")
	remote := flags.String("remote", "", "Location of the deployed snapshot")
	mode := flags.String("mode", "", "Deployment mode: additive or rebuild (overrides config)")
	exclude := flags.String("exclude", "", "Comma separated code patterns to skip (overrides config)")
	configFile := flags.String("config", "", "Path to a YAML or JSON config file")
	format := flags.String("format", "text", "Report format: text or json")
	workers := flags.Int("workers", 0, "Number of validators run concurrently (overrides config)")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}

	if *local == "" {
		return false, fmt.Errorf("-local is required")
	}
	if *format != "text" && *format != "json" {
		return false, fmt.Errorf("-format must be text or json, got %q", *format)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return false, err
	}
	if *mode != "" {
		cfg.Validation.Mode = schemaguard.DeploymentMode(*mode)
	}
	if *exclude != "" {
		cfg.Validation.Exclude = schemaguard.SplitPatterns(*exclude)
	}
	if *workers > 0 {
		cfg.Validation.Workers = *workers
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return false, err
	}
	defer logger.Sync()

	engine, err := factory.NewEngine(cfg, logger)
	if err != nil {
		return false, err
	}

	input := schemaguard.Input{}
	input.Local, input.Issues, err = loadSchema(ctx, *local, cfg.Snapshot, logger)
	if err != nil {
		return false, fmt.Errorf("load draft: %w", err)
	}
	if *remote != "" {
		var remoteIssues schemaguard.Issues
		input.Remote, remoteIssues, err = loadSchema(ctx, *remote, cfg.Snapshot, logger)
		if err != nil {
			return false, fmt.Errorf("load snapshot: %w", err)
		}
		input.Issues = append(input.Issues, remoteIssues...)
	}

	report, err := engine.Validate(ctx, input)
	if err != nil {
		return false, err
	}

	if err := writeReport(out, *format, report); err != nil {
		return false, fmt.Errorf("write report: %w", err)
	}
	return report.HasBlockingIssues(), nil
}

func loadSchema(ctx context.Context, location string, snapshot schemaguard.SnapshotConfig, logger *zap.Logger) (*schemaguard.Schema, schemaguard.Issues, error) {
	src, err := loader.Open(ctx, location, snapshot, logger)
	if err != nil {
		return nil, nil, err
	}
	schema, issues, err := src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger.Sugar().Infow("schema loaded",
		"source", src.Describe(),
		"containers", len(schema.Containers),
		"views", len(schema.Views),
		"issues", len(issues))
	return schema, issues, nil
}

func writeReport(out io.Writer, format string, report *schemaguard.IssueReport) error {
	if format == "json" {
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(encoded))
		return err
	}

	fmt.Fprintf(out, "run %s (%s)\n", report.RunID, report.Mode)
	for _, issue := range report.Issues {
		fmt.Fprintln(out, issue.String())
		if issue.Fix != "" {
			fmt.Fprintf(out, "    fix: %s\n", issue.Fix)
		}
	}
	counts := report.CountByKind()
	_, err := fmt.Fprintf(out, "%d syntax errors, %d consistency errors, %d recommendations\n",
		counts[schemaguard.IssueKindSyntax],
		counts[schemaguard.IssueKindConsistency],
		counts[schemaguard.IssueKindRecommendation])
	return err
}
