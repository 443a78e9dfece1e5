package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deeptutor/ragdoctor/internal/kb"
)

func kbCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kb",
		Short: "List on-disk knowledge bases and their markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cfg.Data.KnowledgeBaseRoot()

			entries, err := kb.Scan(root)
			if err != nil {
				return fmt.Errorf("kb: %w", err)
			}
			if len(entries) == 0 {
				fmt.Printf("No knowledge bases under %s\n", root)
				return nil
			}

			for _, e := range entries {
				if e.Empty() {
					fmt.Printf("%-24s (empty)\n", e.Name)
					continue
				}
				fmt.Printf("%-24s %s\n", e.Name, strings.Join(e.Markers, ", "))
			}
			fmt.Printf("\n%d usable of %d total\n", len(kb.Usable(entries)), len(entries))
			return nil
		},
	}
}
