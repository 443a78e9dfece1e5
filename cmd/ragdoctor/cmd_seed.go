package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deeptutor/ragdoctor/internal/embedder"
	"github.com/deeptutor/ragdoctor/internal/engine"
	"github.com/deeptutor/ragdoctor/internal/engine/raganything"
	"github.com/deeptutor/ragdoctor/internal/kb"
)

func seedCmd() *cobra.Command {
	var kbName string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Embed a knowledge base's content list into the Qdrant collection",
		Long: "Reads the parsed content_list of a knowledge base, embeds every text\n" +
			"passage and upserts the vectors into the Qdrant collection used by the\n" +
			"raganything and academic pipelines. Creates the collection if needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if kbName == "" {
				entries, err := kb.Scan(cfg.Data.KnowledgeBaseRoot())
				if err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				usable := kb.Usable(entries)
				if len(usable) == 0 {
					return fmt.Errorf("seed: no initialized knowledge bases under %s", cfg.Data.KnowledgeBaseRoot())
				}
				kbName = usable[0]
				fmt.Printf("Using knowledge base: %s\n", kbName)
			}

			e, err := engine.Open(raganything.EngineName, cfg, logger)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer func() { _ = e.Close() }()
			eng, ok := e.(*raganything.Engine)
			if !ok {
				return fmt.Errorf("seed: unexpected engine type %T", e)
			}

			emb, err := embedder.NewFromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			n, err := eng.Ingest(ctx, kbName, emb)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Printf("Indexed %d passages from %s\n", n, kbName)

			if total, err := eng.PassageCount(ctx); err == nil {
				fmt.Printf("Collection now holds %d passages\n", total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kbName, "kb", "", "knowledge base name (default: first initialized)")
	return cmd
}
