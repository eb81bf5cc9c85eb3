package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lychee-technology/schemaguard"
	"github.com/lychee-technology/schemaguard/factory"
)

func runCodes(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("codes", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.Usage = func() {
		fmt.Fprintln(out, "Usage: schemaguard codes [options]")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Options:")
		flags.PrintDefaults()
	}

	configFile := flags.String("config", "", "Path to a YAML or JSON config file")
	exclude := flags.String("exclude", "", "Comma separated code patterns to mark as excluded")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if *exclude != "" {
		cfg.Validation.Exclude = schemaguard.SplitPatterns(*exclude)
	}

	engine, err := factory.NewEngine(cfg, nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tKIND\tEXCLUDED\tSUMMARY")
	for _, info := range engine.Validators() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", info.Code, info.Kind, info.Excluded, info.Summary)
	}
	return w.Flush()
}
