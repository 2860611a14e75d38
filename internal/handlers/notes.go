package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oleiade/autoversion/internal/changelog"
	"github.com/oleiade/autoversion/internal/config"
	"github.com/oleiade/autoversion/internal/resolver"
)

// NotesHandler serves the notes tool: it extracts the changelog section for
// a firmware version (resolved from version control when not given).
type NotesHandler struct {
	cfg *config.Config
}

// NewNotesHandler creates a notes handler bound to the loaded configuration.
func NewNotesHandler(cfg *config.Config) *NotesHandler {
	return &NotesHandler{cfg: cfg}
}

// notesResponse is the structured payload returned to MCP clients.
type notesResponse struct {
	Version    string `json:"version"`
	Normalized string `json:"normalized"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Path       string `json:"path"`
}

func (h NotesHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	version, _ := args["version"].(string)
	if version == "" {
		result := resolver.Resolve(ctx, h.cfg.ResolverOptions())
		version = result.Version
	}

	path := h.cfg.ChangelogPath()
	if p, ok := args["changelog"].(string); ok && p != "" {
		path = p
	}

	section, err := changelog.NotesFor(path, version)
	if err != nil {
		var chErr *changelog.Error
		if errors.As(err, &chErr) && chErr.Type == changelog.ErrorTypeNotFound {
			return mcp.NewToolResultError(fmt.Sprintf("No changelog section found for version %q in %s. Sentinel builds (\"dev\") have no release notes.", changelog.NormalizeVersion(version), path)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read changelog %s: %v", path, err)), nil
	}

	response := notesResponse{
		Version:    version,
		Normalized: changelog.NormalizeVersion(version),
		Title:      section.Title,
		Content:    section.Content,
		Path:       section.Path,
	}
	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to serialize notes result"), err
	}

	return mcp.NewToolResultText(string(resultJSON)), nil
}
