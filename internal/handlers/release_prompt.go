package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oleiade/autoversion/internal/changelog"
	"github.com/oleiade/autoversion/internal/config"
	"github.com/oleiade/autoversion/internal/resolver"
)

// ReleaseNotesPromptHandler serves the draft_release_notes prompt: it guides
// a client through drafting the changelog entry for the current firmware state.
type ReleaseNotesPromptHandler struct {
	cfg *config.Config
}

// NewReleaseNotesPromptHandler creates a prompt handler bound to the loaded configuration.
func NewReleaseNotesPromptHandler(cfg *config.Config) *ReleaseNotesPromptHandler {
	return &ReleaseNotesPromptHandler{cfg: cfg}
}

func (h ReleaseNotesPromptHandler) Handle(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	version := request.Params.Arguments["version"]
	if version == "" {
		result := resolver.Resolve(ctx, h.cfg.ResolverOptions())
		version = result.Version
	}

	promptText := fmt.Sprintf(`
            You are drafting the firmware changelog entry for version %s (tag: %s).

            Follow these steps precisely:

            1. **Check existing notes:** Use the "notes" tool to verify whether a changelog section for this version already exists. If it does, update it instead of duplicating it.

            2. **Review recent builds:** Use the "history" tool to see which versions were recently built and embedded, so the entry covers everything since the previous tag.

            3. **Draft the entry:** Write a markdown section whose heading is the tag name, with a terse bullet list of user-visible changes. Firmware changelog entries describe behavior on the device, not internal refactors.

            4. **Flag dirty builds:** If the version carries a -dirty marker, note that the entry describes uncommitted work and must not be released as-is.
        `, version, changelog.NormalizeVersion(version))

	return mcp.NewGetPromptResult(
		"A firmware changelog entry draft",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(promptText),
			),
		},
	), nil
}
