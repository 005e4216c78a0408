package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mannaz/internal/directory"
	"github.com/starford/mannaz/internal/testutil"
)

type fakePort struct {
	summaries []directory.ProfileSummary
	profiles  map[string]*directory.ProfileDetail
}

func (f *fakePort) SearchProfiles(_ context.Context, _ string) ([]directory.ProfileSummary, error) {
	return f.summaries, nil
}

func (f *fakePort) FetchProfile(_ context.Context, username string) (*directory.ProfileDetail, error) {
	if p, ok := f.profiles[username]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(&fakePort{
		summaries: testutil.Summaries(2),
		profiles: map[string]*directory.ProfileDetail{
			"alice": testutil.SampleProfile("alice"),
		},
	})
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_profiles":
		result, err = srv.searchProfiles(ctx, req)
	case "get_profile":
		result, err = srv.getProfile(ctx, req)
	case "list_strengths":
		result, err = srv.listStrengths(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchProfilesTool(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "search_profiles", map[string]interface{}{"query": "developer"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "user1") {
		t.Errorf("result missing summaries: %s", resultText(res))
	}
}

func TestSearchProfilesTool_ShortQuery(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "search_profiles", map[string]interface{}{"query": " ab "})
	if !res.IsError {
		t.Fatal("short query should be rejected")
	}
}

func TestGetProfileTool(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "get_profile", map[string]interface{}{"username": "alice"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "linkedin.com/in/alice") {
		t.Errorf("result missing links: %s", resultText(res))
	}
}

func TestGetProfileTool_Unknown(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "get_profile", map[string]interface{}{"username": "ghost"})
	if !res.IsError {
		t.Fatal("unknown username should error")
	}
}

func TestListStrengthsTool_Filtered(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "list_strengths", map[string]interface{}{
		"username": "alice",
		"filter":   "react, node",
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	text := resultText(res)
	if !strings.Contains(text, "Node.js") || !strings.Contains(text, "React Native") {
		t.Errorf("OR filter wrong: %s", text)
	}
	if strings.Contains(text, "PostgreSQL") {
		t.Errorf("filter leaked unmatched strength: %s", text)
	}
}
