// Package mcp exposes ragdoctor over the Model Context Protocol, so an agent
// can run the diagnostics and issue test searches through tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/diag"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
	"github.com/deeptutor/ragdoctor/internal/rag"
)

// Server wraps an MCPServer with ragdoctor dependencies.
type Server struct {
	mcp    *mcpserver.MCPServer
	cfg    *config.Config
	reg    *pipeline.Registry
	logger *slog.Logger
}

// NewServer creates the MCP server with the diagnose, rag_search and
// list_pipelines tools registered.
func NewServer(cfg *config.Config, reg *pipeline.Registry, logger *slog.Logger) *Server {
	s := &Server{cfg: cfg, reg: reg, logger: logger}

	mcpSrv := mcpserver.NewMCPServer(
		"ragdoctor",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildDiagnoseTool(), s.handleDiagnose)
	mcpSrv.AddTool(buildSearchTool(), s.handleSearch)
	mcpSrv.AddTool(buildListPipelinesTool(), s.handleListPipelines)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleDiagnose is the exported handler for the "diagnose" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleDiagnose(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleDiagnose(ctx, req)
}

// HandleSearch is the exported handler for the "rag_search" tool.
func (s *Server) HandleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSearch(ctx, req)
}

// HandleListPipelines is the exported handler for the "list_pipelines" tool.
func (s *Server) HandleListPipelines(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleListPipelines(ctx, req)
}

// --- tool definitions ---

func buildDiagnoseTool() mcpgo.Tool {
	return mcpgo.NewTool("diagnose",
		mcpgo.WithDescription("Run all RAG stack diagnostic checks and return the report as JSON."),
		mcpgo.WithBoolean("run_search",
			mcpgo.Description("Also run the live search test when a knowledge base is available (default: false)"),
		),
	)
}

func buildSearchTool() mcpgo.Tool {
	return mcpgo.NewTool("rag_search",
		mcpgo.WithDescription("Run one query against a RAG pipeline and return the answer."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("The question to ask"),
		),
		mcpgo.WithString("kb_name",
			mcpgo.Required(),
			mcpgo.Description("Knowledge base directory name"),
		),
		mcpgo.WithString("mode",
			mcpgo.Description("Retrieval mode: naive, local, global or hybrid (default: naive)"),
		),
		mcpgo.WithString("provider",
			mcpgo.Description("Pipeline id (default: the configured RAG_PROVIDER)"),
		),
	)
}

func buildListPipelinesTool() mcpgo.Tool {
	return mcpgo.NewTool("list_pipelines",
		mcpgo.WithDescription("List registered RAG pipelines with id, name and description."),
	)
}

// --- tool handlers ---

// handleDiagnose runs the full check sequence. The decorated terminal output
// is discarded; the caller gets the structured report.
func (s *Server) handleDiagnose(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	runner := diag.NewRunner(s.cfg, s.reg, io.Discard, s.logger)
	if !req.GetBool("run_search", false) {
		runner.SkipSearch()
	}

	report := runner.Run(ctx)
	return jsonResult(report)
}

func (s *Server) handleSearch(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcpgo.NewToolResultError("query is required and must not be empty"), nil
	}
	kbName := req.GetString("kb_name", "")
	if kbName == "" {
		return mcpgo.NewToolResultError("kb_name is required and must not be empty"), nil
	}

	res, err := rag.Search(ctx, s.reg, s.cfg, s.logger, rag.Request{
		Query:    query,
		KBName:   kbName,
		Mode:     req.GetString("mode", "naive"),
		Provider: req.GetString("provider", ""),
	})
	if err != nil {
		return mcpgo.NewToolResultErrorf("search failed: %s", err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleListPipelines(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(s.reg.List())
}

func jsonResult(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(b)), nil
}
