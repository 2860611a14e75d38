package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oleiade/autoversion/internal/config"
)

// withoutGit points PATH at an empty directory so git cannot be found.
func withoutGit(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", t.TempDir())
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("expected a tool result with content")
	}
	content, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return content.Text
}

func TestResolveHandlerDegradesToSentinelWithoutGit(t *testing.T) {
	withoutGit(t)

	cfg := config.Default()
	cfg.RepoDir = t.TempDir()

	res, err := NewResolveHandler(cfg).Handle(context.Background(), toolRequest("resolve", nil))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("expected a successful result, got error result: %s", resultText(t, res))
	}

	var response struct {
		Version     string `json:"version"`
		Source      string `json:"source"`
		ConsoleLine string `json:"console_line"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Version != "dev" {
		t.Fatalf("expected sentinel version dev, got %q", response.Version)
	}
	if response.Source != "fallback" {
		t.Fatalf("expected source fallback, got %q", response.Source)
	}
	if response.ConsoleLine != "Firmware Version: dev" {
		t.Fatalf("unexpected console line %q", response.ConsoleLine)
	}
}

func TestFlagHandlerDegradesToSentinelWithoutGit(t *testing.T) {
	withoutGit(t)

	cfg := config.Default()
	cfg.RepoDir = t.TempDir()

	res, err := NewFlagHandler(cfg).Handle(context.Background(), toolRequest("flag", nil))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("expected a successful result, got error result: %s", resultText(t, res))
	}

	var response struct {
		Flag    string `json:"flag"`
		Version string `json:"version"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Flag != `-D AUTO_VERSION="dev"` {
		t.Fatalf("expected sentinel flag, got %q", response.Flag)
	}
	if response.Version != "dev" || response.Source != "fallback" {
		t.Fatalf("expected sentinel resolution, got version %q source %q", response.Version, response.Source)
	}
}

func TestFlagHandlerRejectsInvalidMacroName(t *testing.T) {
	withoutGit(t)

	cfg := config.Default()
	cfg.RepoDir = t.TempDir()

	res, err := NewFlagHandler(cfg).Handle(context.Background(), toolRequest("flag", map[string]interface{}{
		"macro_name": "1NOT-AN-IDENTIFIER",
	}))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected an error result for invalid macro name, got: %s", resultText(t, res))
	}
}

type panickingHandler struct{}

func (panickingHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	panic("handler blew up")
}

func TestToolMiddlewareRecoversPanic(t *testing.T) {
	wrapped := WithToolMiddleware("explode", panickingHandler{})

	res, err := wrapped.Handle(context.Background(), toolRequest("explode", nil))
	if err != nil {
		t.Fatalf("expected a recovered panic to not return an error, got: %v", err)
	}
	if res == nil {
		t.Fatal("expected an error result, got nil")
	}
	if !res.IsError {
		t.Fatal("expected the recovered panic to surface as an error result")
	}
}
