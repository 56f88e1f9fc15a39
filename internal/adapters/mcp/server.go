package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/verdictio/caselaw-api/internal/core/ports"
)

// Server exposes the search pipeline to MCP clients over stdio so
// assistants can query the corpus without going through HTTP.
type Server struct {
	mcp      *server.MCPServer
	searcher ports.CaseSearcher
	reader   ports.CaseReader
}

func NewServer(version string, searcher ports.CaseSearcher, reader ports.CaseReader) *Server {
	s := &Server{
		mcp:      server.NewMCPServer("caselaw-search", version, server.WithToolCapabilities(false)),
		searcher: searcher,
		reader:   reader,
	}

	s.mcp.AddTool(mcp.NewTool("search_cases",
		mcp.WithDescription("Full-text search over the case corpus with optional court, year and date filters."),
		mcp.WithString("query", mcp.Description("Search text. Empty matches everything, ordered by recency.")),
		mcp.WithString("court", mcp.Description("Case-insensitive substring match on the court name.")),
		mcp.WithString("year", mcp.Description("Exact decision year, e.g. 2021.")),
		mcp.WithString("date_from", mcp.Description("Earliest decision date, ISO format YYYY-MM-DD.")),
		mcp.WithString("date_to", mcp.Description("Latest decision date, ISO format YYYY-MM-DD.")),
		mcp.WithString("page", mcp.Description("Page number, starting at 1.")),
		mcp.WithString("per_page", mcp.Description("Results per page.")),
	), s.searchCases)

	s.mcp.AddTool(mcp.NewTool("get_case",
		mcp.WithDescription("Fetch one case document by id, including full text and extracted citations."),
		mcp.WithString("case_id", mcp.Required(), mcp.Description("The case document id.")),
	), s.getCase)

	s.mcp.AddTool(mcp.NewTool("get_case_citations",
		mcp.WithDescription("Citation neighborhood of a case: what it cites and what cites it."),
		mcp.WithString("case_id", mcp.Required(), mcp.Description("The case document id.")),
	), s.getCaseCitations)

	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) searchCases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := ports.RawSearchRequest{
		Text:      req.GetString("query", ""),
		Court:     req.GetString("court", ""),
		Year:      req.GetString("year", ""),
		DateFrom:  req.GetString("date_from", ""),
		DateTo:    req.GetString("date_to", ""),
		Page:      req.GetString("page", ""),
		PerPage:   req.GetString("per_page", ""),
		Highlight: false,
	}

	res, err := s.searcher.Search(ctx, raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(res)
}

func (s *Server) getCase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caseID, err := req.RequireString("case_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.reader.GetByID(ctx, caseID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get case failed: %v", err)), nil
	}
	return jsonResult(doc)
}

func (s *Server) getCaseCitations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caseID, err := req.RequireString("case_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	citations, err := s.reader.Citations(ctx, caseID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get citations failed: %v", err)), nil
	}
	return jsonResult(citations)
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
