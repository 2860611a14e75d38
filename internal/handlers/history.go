package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oleiade/autoversion/internal/config"
	"github.com/oleiade/autoversion/internal/history"
)

// HistoryHandler serves the history tool: it lists recent version
// resolutions from the sqlite ledger.
type HistoryHandler struct {
	cfg *config.Config
}

// NewHistoryHandler creates a history handler bound to the loaded configuration.
func NewHistoryHandler(cfg *config.Config) *HistoryHandler {
	return &HistoryHandler{cfg: cfg}
}

func (h HistoryHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.cfg.HistoryDB == "" {
		return mcp.NewToolResultError("Resolution history is disabled: no history_db configured in .autoversion.yaml."), nil
	}

	args := request.GetArguments()

	limit := history.DefaultLimit
	if raw, ok := args["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	store, err := history.Open(h.cfg.HistoryDB)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open history database %s: %v", h.cfg.HistoryDB, err)), nil
	}
	defer func() {
		_ = store.Close()
	}()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list resolution history: %v", err)), nil
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	resultJSON, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to serialize history result"), err
	}

	return mcp.NewToolResultText(string(resultJSON)), nil
}
