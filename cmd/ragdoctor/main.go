package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deeptutor/ragdoctor/internal/config"

	// Optional backend engines. Each import compiles in the engine and the
	// pipelines registered from its package; dropping one builds a binary
	// where the diagnostics report that engine as not compiled in.
	_ "github.com/deeptutor/ragdoctor/internal/engine/lightrag"
	_ "github.com/deeptutor/ragdoctor/internal/engine/raganything"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "ragdoctor",
		Short: "Diagnostics for the DeepTutor RAG stack",
		Long: "ragdoctor inspects the environment, service clients, backend engines,\n" +
			"pipelines and on-disk knowledge bases of a DeepTutor deployment and\n" +
			"prints a color-coded report with remediation suggestions.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		// Running the bare binary runs the full diagnostic, matching how the
		// tool is invoked from the DeepTutor scripts directory.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd.Context(), diagnoseOptions{})
		},
	}

	rootCmd.AddCommand(
		diagnoseCmd(),
		searchCmd(),
		seedCmd(),
		pipelinesCmd(),
		kbCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
