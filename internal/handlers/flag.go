package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oleiade/autoversion/internal/config"
	"github.com/oleiade/autoversion/internal/flags"
	"github.com/oleiade/autoversion/internal/resolver"
)

// FlagHandler serves the flag tool: it resolves a version and formats the
// macro-definition build flag the orchestrator appends to its flag list.
type FlagHandler struct {
	cfg *config.Config
}

// NewFlagHandler creates a flag handler bound to the loaded configuration.
func NewFlagHandler(cfg *config.Config) *FlagHandler {
	return &FlagHandler{cfg: cfg}
}

// flagResponse is the structured payload returned to MCP clients.
type flagResponse struct {
	Flag        string `json:"flag"`
	MacroName   string `json:"macro_name"`
	Version     string `json:"version"`
	Source      string `json:"source"`
	Dirty       bool   `json:"dirty"`
	ConsoleLine string `json:"console_line"`
}

func (h FlagHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	macroName := h.cfg.MacroName
	if name, ok := args["macro_name"].(string); ok && name != "" {
		macroName = name
	}

	opts := h.cfg.ResolverOptions()
	if repoDir, ok := args["repo_dir"].(string); ok && repoDir != "" {
		opts.RepoDir = repoDir
	}
	if version, ok := args["version"].(string); ok && version != "" {
		// An explicit version skips resolution entirely.
		opts.Pinned = version
	}

	result := resolver.Resolve(ctx, opts)

	flag, err := flags.Define(macroName, result.Version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot format a well-formed macro definition: %v. Macro names must be valid C identifiers (e.g. AUTO_VERSION).", err)), nil
	}

	recordResolution(ctx, h.cfg, result)

	response := flagResponse{
		Flag:        flag,
		MacroName:   macroName,
		Version:     result.Version,
		Source:      result.Source,
		Dirty:       result.Dirty,
		ConsoleLine: result.ConsoleLine(),
	}
	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to serialize flag result"), err
	}

	return mcp.NewToolResultText(string(resultJSON)), nil
}
