package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deeptutor/ragdoctor/internal/engine"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

func pipelinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List registered RAG pipelines and their components",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			fmt.Printf("Engines compiled in: %s\n", strings.Join(engine.Names(), ", "))

			descs := pipeline.Default.List()
			fmt.Printf("%d pipelines registered\n", len(descs))

			for _, d := range descs {
				fmt.Printf("\n[%s] %s\n", d.ID, d.Name)
				fmt.Printf("  %s\n", d.Description)

				pl, err := pipeline.Default.Get(d.ID, cfg, logger)
				if err != nil {
					fmt.Printf("  unavailable: %v\n", err)
					continue
				}
				if cl, ok := pl.(pipeline.ComponentLister); ok {
					for _, c := range cl.Components() {
						fmt.Printf("  %-10s %s\n", c.Role, c.Name)
					}
				}
			}
			return nil
		},
	}
}
