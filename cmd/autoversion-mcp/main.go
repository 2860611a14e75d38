// Package main provides the autoversion MCP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oleiade/autoversion/internal/buildinfo"
	"github.com/oleiade/autoversion/internal/config"
	"github.com/oleiade/autoversion/internal/handlers"
	"github.com/oleiade/autoversion/internal/history"
	"github.com/oleiade/autoversion/internal/logging"
)

func main() {
	logger := logging.Default()

	workDir, err := os.Getwd()
	if err != nil {
		logger.Error("Failed to get working directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting autoversion MCP server",
		slog.String("version", buildinfo.Version),
		slog.String("repo_dir", cfg.RepoDir),
		slog.Bool("history_enabled", cfg.HistoryDB != ""),
	)

	s := server.NewMCPServer(
		"autoversion",
		buildinfo.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	// Register the resolve tool
	resolveTool := mcp.NewTool(
		"resolve",
		mcp.WithDescription("Resolve the firmware version string the next build would embed. Queries the latest reachable git tag description with a dirty-state marker, and degrades to the configured sentinel (\"dev\") when the query fails. Never errors: a version is always produced."),
		mcp.WithString(
			"repo_dir",
			mcp.Description("Directory of the firmware repository to query. Defaults to the server's configured repository."),
		),
		mcp.WithString(
			"pinned",
			mcp.Description("Literal version to use verbatim instead of querying version control (e.g. \"v2.0.0\" for release builds)."),
		),
	)
	s.AddTool(resolveTool, handlers.WithToolMiddleware("resolve", handlers.NewResolveHandler(cfg)).Handle)

	// Register the flag tool
	flagTool := mcp.NewTool(
		"flag",
		mcp.WithDescription("Format the compiler macro-definition build flag for a firmware version, of the shape -D AUTO_VERSION=\"<version>\". Resolves the version from version control unless one is given. The flag is what the build orchestrator appends to its flag-accumulation list."),
		mcp.WithString(
			"version",
			mcp.Description("Version to embed verbatim. When omitted, the version is resolved from version control."),
		),
		mcp.WithString(
			"macro_name",
			mcp.Description("Preprocessor symbol to define (default: AUTO_VERSION). Must be a valid C identifier."),
		),
		mcp.WithString(
			"repo_dir",
			mcp.Description("Directory of the firmware repository to query. Defaults to the server's configured repository."),
		),
	)
	s.AddTool(flagTool, handlers.WithToolMiddleware("flag", handlers.NewFlagHandler(cfg)).Handle)

	// Register the notes tool
	notesTool := mcp.NewTool(
		"notes",
		mcp.WithDescription("Extract the changelog section for a firmware version from the repository's CHANGELOG.md. Describe suffixes (-N-gHASH) and dirty markers are stripped before matching, so \"v2.0.0-3-gabc123\" finds the \"v2.0.0\" entry."),
		mcp.WithString(
			"version",
			mcp.Description("Version to look up. When omitted, the version is resolved from version control."),
		),
		mcp.WithString(
			"changelog",
			mcp.Description("Path to the markdown changelog. Defaults to the configured changelog (CHANGELOG.md)."),
		),
	)
	s.AddTool(notesTool, handlers.WithToolMiddleware("notes", handlers.NewNotesHandler(cfg)).Handle)

	// Register the history tool
	historyTool := mcp.NewTool(
		"history",
		mcp.WithDescription("List recent firmware version resolutions from the local sqlite ledger, newest first. Useful for answering which version a given bench build embedded."),
		mcp.WithNumber(
			"limit",
			mcp.Description(fmt.Sprintf("Maximum number of entries to return (default: %d, max: %d).", history.DefaultLimit, history.MaxLimit)),
		),
	)
	s.AddTool(historyTool, handlers.WithToolMiddleware("history", handlers.NewHistoryHandler(cfg)).Handle)

	// Register the release notes drafting prompt
	releaseNotesPrompt := mcp.NewPrompt(
		"draft_release_notes",
		mcp.WithPromptDescription("Draft the changelog entry for a firmware version."),
		mcp.WithArgument("version", mcp.ArgumentDescription("The version to draft notes for. When omitted, the version is resolved from version control.")),
	)
	s.AddPrompt(releaseNotesPrompt, handlers.WithPromptMiddleware("draft_release_notes", handlers.NewReleaseNotesPromptHandler(cfg)).Handle)

	// Expose the changelog as a browsable resource
	changelogResource := mcp.NewResource(
		"docs://firmware/changelog",
		"Firmware changelog",
		mcp.WithResourceDescription("The firmware repository's markdown changelog."),
		mcp.WithMIMEType("text/markdown"),
	)

	s.AddResource(changelogResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		content, err := os.ReadFile(cfg.ChangelogPath())
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "docs://firmware/changelog",
				MIMEType: "text/markdown",
				Text:     string(content),
			},
		}, nil
	})

	logger.Info("Starting MCP server on stdio")

	if err := server.ServeStdio(s); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		panic(err)
	}
}
