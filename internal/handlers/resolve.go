package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oleiade/autoversion/internal/config"
	"github.com/oleiade/autoversion/internal/history"
	"github.com/oleiade/autoversion/internal/logging"
	"github.com/oleiade/autoversion/internal/resolver"
)

// ResolveHandler serves the resolve tool: it produces the firmware version
// string the next build would embed.
type ResolveHandler struct {
	cfg *config.Config
}

// NewResolveHandler creates a resolve handler bound to the loaded configuration.
func NewResolveHandler(cfg *config.Config) *ResolveHandler {
	return &ResolveHandler{cfg: cfg}
}

// resolveResponse is the structured payload returned to MCP clients.
type resolveResponse struct {
	resolver.Result
	ConsoleLine string `json:"console_line"`
}

func (h ResolveHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	opts := h.cfg.ResolverOptions()
	if repoDir, ok := args["repo_dir"].(string); ok && repoDir != "" {
		opts.RepoDir = repoDir
	}
	if pinned, ok := args["pinned"].(string); ok && pinned != "" {
		opts.Pinned = pinned
	}

	// Resolution cannot fail; the result carries the fallback sentinel when
	// the version-control query did not produce a usable version.
	result := resolver.Resolve(ctx, opts)

	recordResolution(ctx, h.cfg, result)

	response := resolveResponse{Result: *result, ConsoleLine: result.ConsoleLine()}
	resultJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to serialize resolution result"), err
	}

	return mcp.NewToolResultText(string(resultJSON)), nil
}

// recordResolution appends the outcome to the resolution ledger when one is
// configured. Ledger failures are logged and swallowed: recording history
// must never outrank producing a version.
func recordResolution(ctx context.Context, cfg *config.Config, result *resolver.Result) {
	if cfg.HistoryDB == "" {
		return
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		logging.WithComponent("history").WarnContext(ctx, "Failed to open history database",
			slog.String("path", cfg.HistoryDB),
			slog.String("error", err.Error()),
		)
		return
	}
	defer func() {
		_ = store.Close()
	}()

	if _, err := store.Record(ctx, result); err != nil {
		logging.WithComponent("history").WarnContext(ctx, "Failed to record resolution",
			slog.String("path", cfg.HistoryDB),
			slog.String("error", err.Error()),
		)
	}
}
