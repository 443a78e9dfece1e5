package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deeptutor/ragdoctor/internal/kb"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
	"github.com/deeptutor/ragdoctor/internal/rag"
)

func searchCmd() *cobra.Command {
	var (
		kbName   string
		mode     string
		provider string
		topK     int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run one query against a RAG pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			// No --kb given: use the first initialized knowledge base, the
			// same choice the diagnose search test makes.
			if kbName == "" {
				entries, err := kb.Scan(cfg.Data.KnowledgeBaseRoot())
				if err != nil {
					return fmt.Errorf("search: %w", err)
				}
				usable := kb.Usable(entries)
				if len(usable) == 0 {
					return fmt.Errorf("search: no initialized knowledge bases under %s", cfg.Data.KnowledgeBaseRoot())
				}
				kbName = usable[0]
				fmt.Printf("Using knowledge base: %s\n", kbName)
			}

			res, err := rag.Search(ctx, pipeline.Default, cfg, logger, rag.Request{
				Query:    args[0],
				KBName:   kbName,
				Mode:     mode,
				Provider: provider,
				TopK:     topK,
			})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if res.Answer == "" {
				fmt.Println("No answer produced (empty retrieval).")
				return nil
			}

			fmt.Printf("[%s] %s\n\n%s\n", res.Provider, res.KBName, res.Answer)
			if len(res.Sources) > 0 {
				fmt.Println("\nSources:")
				for i, s := range res.Sources {
					fmt.Printf("  [%d] %s\n", i+1, truncate(s, 100))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kbName, "kb", "", "knowledge base name (default: first initialized)")
	cmd.Flags().StringVar(&mode, "mode", "naive", "retrieval mode (naive|local|global|hybrid)")
	cmd.Flags().StringVar(&provider, "provider", "", "pipeline id (default: configured RAG_PROVIDER)")
	cmd.Flags().IntVar(&topK, "top-k", 5, "passages to retrieve")
	return cmd
}
