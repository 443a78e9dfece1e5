package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	ragmcp "github.com/deeptutor/ragdoctor/internal/mcp"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  diagnose        run all checks, returns the report as JSON
  rag_search      run one query against a pipeline
  list_pipelines  list registered pipelines

Backend services being down does not stop the server; individual tool
calls report those failures in their results.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			srv := ragmcp.NewServer(cfg, pipeline.Default, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: ragdoctor MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}
}
