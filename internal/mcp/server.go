// Package mcp exposes the curated corpus and the relevance scorer as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mfenderov/regcorpus/internal/elasticsearch"
	"github.com/mfenderov/regcorpus/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Searcher looks documents up in the corpus index.
type Searcher interface {
	Search(ctx context.Context, query string, opts elasticsearch.SearchOptions) ([]models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
}

// Scorer scores free text for regulatory relevance.
type Scorer interface {
	Score(text string) float64
}

// Server wraps the MCP server.
type Server struct {
	mcpServer *server.MCPServer
	searcher  Searcher
	scorer    Scorer
}

// NewServer creates an MCP server with search tools. The score_text tool is
// registered only when scorer is not nil.
func NewServer(config Config, searcher Searcher, scorer Scorer) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		searcher:  searcher,
		scorer:    scorer,
	}

	searchTool := mcp.NewTool("search_corpus",
		mcp.WithDescription("Search the curated regulatory corpus. Returns matching documents with their source tag and relevance score."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithString("source",
			mcp.Description("Restrict results to one source tag, e.g. SEC or EUR-LEX"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	getDocTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get a corpus document by ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID to retrieve"),
		),
	)
	mcpServer.AddTool(getDocTool, s.getDocumentHandler)

	if scorer != nil {
		scoreTool := mcp.NewTool("score_text",
			mcp.WithDescription("Score text for financial-regulatory relevance. Positive scores lean regulatory, negative scores lean web boilerplate."),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text to score"),
			),
		)
		mcpServer.AddTool(scoreTool, s.scoreHandler)
	}

	return s, nil
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	opts := elasticsearch.SearchOptions{
		Source: req.GetString("source", ""),
		Limit:  req.GetInt("limit", 10),
	}

	docs, err := s.searcher.Search(ctx, query, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(docs)
}

func (s *Server) getDocumentHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	doc, err := s.searcher.GetDocument(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get document failed: %v", err)), nil
	}

	if doc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("document not found: %s", id)), nil
	}

	return jsonResult(doc)
}

type scoreResult struct {
	Score    float64 `json:"score"`
	Relevant bool    `json:"relevant"`
}

func (s *Server) scoreHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	score := s.scorer.Score(text)
	return jsonResult(scoreResult{Score: score, Relevant: score > 0})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
