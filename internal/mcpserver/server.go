// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Reviewdeck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mcasas/reviewdeck/internal/repository"
	"github.com/mcasas/reviewdeck/internal/views"
)

// Server wraps the MCP server with Reviewdeck tools.
type Server struct {
	mcp  *server.MCPServer
	repo *repository.Repository
}

// New creates a new MCP server with all Reviewdeck tools registered.
func New(repo *repository.Repository) *Server {
	s := &Server{repo: repo}

	s.mcp = server.NewMCPServer(
		"Reviewdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_reviews",
		mcp.WithDescription("List all reviews, optionally sorted."),
		mcp.WithString("sort", mcp.Description("Sort key: newest, oldest, highest, lowest, name")),
	), s.listReviews)

	s.mcp.AddTool(mcp.NewTool("search_reviews",
		mcp.WithDescription("Search reviews by name or category (case-insensitive substring)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchReviews)

	s.mcp.AddTool(mcp.NewTool("add_review",
		mcp.WithDescription("Add a new review. Rating uses a 0-10 scale with half-point steps."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the reviewed item")),
		mcp.WithNumber("rating", mcp.Required(), mcp.Description("Rating from 0 to 10")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Free-form category label")),
		mcp.WithString("notes", mcp.Description("Optional free-text notes")),
	), s.addReview)

	s.mcp.AddTool(mcp.NewTool("top_rated",
		mcp.WithDescription("List reviews at or above a rating threshold, highest first."),
		mcp.WithNumber("threshold", mcp.Description("Rating cutoff (default 7)")),
	), s.topRated)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listReviews(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sortKey := req.GetString("sort", "")
	reviews := views.SortedBy(s.repo.All(), sortKey)
	out, _ := json.MarshalIndent(reviews, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchReviews(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := views.Search(s.repo.All(), query)
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rating, err := req.RequireFloat("rating")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	review, err := s.repo.Create(ctx, repository.CreateInput{
		Name:     name,
		Rating:   rating,
		Category: category,
		Notes:    req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", review.Name, review.ID)), nil
}

func (s *Server) topRated(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threshold := req.GetFloat("threshold", views.DefaultTopRatedThreshold)
	results := views.TopRated(s.repo.All(), threshold)
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
