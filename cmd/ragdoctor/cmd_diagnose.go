package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deeptutor/ragdoctor/internal/diag"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

type diagnoseOptions struct {
	strict     bool
	skipSearch bool
	jsonOut    bool
}

func diagnoseCmd() *cobra.Command {
	var opts diagnoseOptions

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run all diagnostic checks against the RAG stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when any check fails (for CI)")
	cmd.Flags().BoolVar(&opts.skipSearch, "skip-search", false, "skip the live search test")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON instead of decorated text")
	return cmd
}

func runDiagnose(ctx context.Context, opts diagnoseOptions) error {
	logger := newLogger()

	var out io.Writer = os.Stdout
	if opts.jsonOut {
		out = io.Discard
	}

	runner := diag.NewRunner(cfg, pipeline.Default, out, logger)
	if opts.skipSearch {
		runner.SkipSearch()
	}

	report := runner.Run(ctx)

	if opts.jsonOut {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("diagnose: encoding report: %w", err)
		}
		fmt.Println(string(b))
	}

	if opts.strict && report.Failed() {
		return fmt.Errorf("diagnose: one or more checks failed")
	}
	return nil
}
