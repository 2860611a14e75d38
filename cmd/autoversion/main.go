// Package main provides the autoversion build-time CLI. A build orchestrator
// invokes it once per build; it prints the resolved firmware version on
// stdout and appends the macro-definition flag to the orchestrator's
// flag-accumulation file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	autoversion "github.com/oleiade/autoversion"
	"github.com/oleiade/autoversion/internal/buildinfo"
	"github.com/oleiade/autoversion/internal/changelog"
	"github.com/oleiade/autoversion/internal/config"
	"github.com/oleiade/autoversion/internal/flags"
	"github.com/oleiade/autoversion/internal/history"
	"github.com/oleiade/autoversion/internal/logging"
	"github.com/oleiade/autoversion/internal/resolver"
)

const bridgeFileMode = 0o644

func main() {
	repoDir := flag.String("repo", "", "firmware repository directory (default: working directory)")
	macroName := flag.String("macro", "", "preprocessor symbol to define (default: AUTO_VERSION)")
	pinned := flag.String("set-version", "", "embed this version verbatim instead of querying version control")
	flagsFile := flag.String("flags-file", "", "flag-accumulation file to append the build flag to")
	notes := flag.Bool("notes", false, "print the changelog section for the resolved version and exit")
	historyLimit := flag.Int("history", 0, "list the N most recent resolutions and exit")
	initScript := flag.String("init-script", "", "write the PlatformIO bridge script to the given path and exit")
	showVersion := flag.Bool("version", false, "print the autoversion tool version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("autoversion %s", buildinfo.Version)
		if buildinfo.Commit != "" {
			fmt.Printf(" (%s)", buildinfo.Commit)
		}
		fmt.Println()
		return
	}

	if *initScript != "" {
		if err := writeBridgeScript(*initScript); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *initScript)
		return
	}

	ctx := context.Background()
	logger := logging.WithComponent("cli")

	dir := *repoDir
	if dir == "" {
		workDir, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get working directory: %v\n", err)
			os.Exit(1)
		}
		dir = workDir
	}

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Command-line overrides on top of file and environment configuration.
	if *macroName != "" {
		cfg.MacroName = *macroName
	}
	if *pinned != "" {
		cfg.PinnedVersion = *pinned
	}

	if *historyLimit > 0 {
		if err := printHistory(ctx, cfg, *historyLimit); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Version resolution never fails: every failure path inside Resolve
	// degrades to the fallback sentinel so the build proceeds.
	result := resolver.Resolve(ctx, cfg.ResolverOptions())

	if *notes {
		if err := printNotes(cfg, result.Version); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	buildFlag, err := flags.Define(cfg.MacroName, result.Version)
	if err != nil {
		// Only a misconfigured macro name can get here; the version itself
		// is either a git description or the sentinel.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.ConsoleLine())

	sink := *flagsFile
	if sink == "" {
		sink = cfg.ResolveFlagsFile()
	}

	if sink != "" {
		env := flags.NewFileEnv(sink)
		if err := env.AppendBuildFlags(buildFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		// No orchestrator flags file wired up: print the flag so a caller
		// can capture it (e.g. CFLAGS="$(autoversion | tail -n1)").
		fmt.Println(buildFlag)
	}

	recordHistory(ctx, cfg, result, logger)
}

// recordHistory appends the outcome to the resolution ledger when one is
// configured. Ledger failures never block the build.
func recordHistory(ctx context.Context, cfg *config.Config, result *resolver.Result, logger *slog.Logger) {
	if cfg.HistoryDB == "" {
		return
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		logger.WarnContext(ctx, "Failed to open history database",
			slog.String("path", cfg.HistoryDB),
			slog.String("error", err.Error()),
		)
		return
	}
	defer func() {
		_ = store.Close()
	}()

	if _, err := store.Record(ctx, result); err != nil {
		logger.WarnContext(ctx, "Failed to record resolution",
			slog.String("path", cfg.HistoryDB),
			slog.String("error", err.Error()),
		)
	}
}

// printNotes prints the changelog section for the given version.
func printNotes(cfg *config.Config, version string) error {
	section, err := changelog.NotesFor(cfg.ChangelogPath(), version)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n%s\n", section.Title, section.Content)
	return nil
}

// printHistory lists the most recent resolutions, newest first.
func printHistory(ctx context.Context, cfg *config.Config, limit int) error {
	if cfg.HistoryDB == "" {
		return fmt.Errorf("resolution history is disabled: no history_db configured in %s", config.FileName)
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		dirty := ""
		if entry.Dirty {
			dirty = " (dirty)"
		}
		fmt.Printf("%s  %-20s %-8s%s\n", entry.ResolvedAt.Format("2006-01-02 15:04:05"), entry.Version, entry.Source, dirty)
	}
	return nil
}

// writeBridgeScript writes the embedded PlatformIO extra script to path.
func writeBridgeScript(path string) error {
	script, err := autoversion.Resources.ReadFile(autoversion.BridgeScriptPath)
	if err != nil {
		return fmt.Errorf("reading embedded bridge script: %w", err)
	}
	return os.WriteFile(path, script, bridgeFileMode)
}
