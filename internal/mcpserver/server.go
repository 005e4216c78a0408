// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes people-directory tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mannaz/internal/directory"
)

// Port is the directory dependency of the MCP tools.
type Port interface {
	SearchProfiles(ctx context.Context, query string) ([]directory.ProfileSummary, error)
	FetchProfile(ctx context.Context, username string) (*directory.ProfileDetail, error)
}

// Server wraps the MCP server with directory tools.
type Server struct {
	mcp  *server.MCPServer
	port Port
}

// New creates a new MCP server with all directory tools registered.
func New(port Port) *Server {
	s := &Server{port: port}

	s.mcp = server.NewMCPServer(
		"Mannaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_profiles",
		mcp.WithDescription("Search the people directory and return matching profile summaries."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string (at least 3 characters)")),
	), s.searchProfiles)

	s.mcp.AddTool(mcp.NewTool("get_profile",
		mcp.WithDescription("Fetch the full profile for a username, including contact info, links, and experiences."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Directory username")),
	), s.getProfile)

	s.mcp.AddTool(mcp.NewTool("list_strengths",
		mcp.WithDescription("List the strengths of a profile, optionally filtered by comma-separated terms "+
			"matched case-insensitively against strength names (OR semantics)."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Directory username")),
		mcp.WithString("filter", mcp.Description("Optional comma-separated filter terms")),
	), s.listStrengths)

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

func (s *Server) searchProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 3 {
		return mcp.NewToolResultError("query must be at least 3 characters"), nil
	}
	results, err := s.port.SearchProfiles(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.port.FetchProfile(ctx, username)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch %s: %v", username, err)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listStrengths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.port.FetchProfile(ctx, username)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch %s: %v", username, err)), nil
	}

	strengths := p.Strengths
	if filter, ferr := req.RequireString("filter"); ferr == nil && strings.TrimSpace(filter) != "" {
		strengths = filterStrengths(strengths, filter)
	}

	out, _ := json.MarshalIndent(strengths, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// filterStrengths applies the same comma-separated OR filter the detail
// controller uses, without the length gate (callers filter explicitly).
func filterStrengths(strengths []directory.Strength, filter string) []directory.Strength {
	var terms []string
	for _, raw := range strings.Split(filter, ",") {
		if term := strings.ToLower(strings.TrimSpace(raw)); term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return strengths
	}

	var out []directory.Strength
	for _, s := range strengths {
		name := strings.ToLower(s.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
