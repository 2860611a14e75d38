// Package resolver derives the firmware version string embedded into builds.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/oleiade/autoversion/internal/logging"
	"github.com/oleiade/autoversion/internal/security"
)

const (
	// DefaultFallback is the sentinel version used when resolution fails.
	DefaultFallback = "dev"
	// DefaultTimeout is the default timeout for the version-control query.
	DefaultTimeout = 10 * time.Second
	// dirtySuffix is appended by git describe when the working tree has
	// uncommitted changes.
	dirtySuffix = "-dirty"
)

// describeArgs is the fixed version-control query: the latest reachable tag
// description, with a dirty-state marker.
var describeArgs = []string{"describe", "--tags", "--dirty"}

// Options contains configuration options for resolving a version.
type Options struct {
	// RepoDir is the directory the version-control query runs in.
	// Empty means the process working directory.
	RepoDir string

	// Pinned, when non-empty, is used verbatim and no subprocess runs.
	Pinned string

	// Fallback overrides the sentinel value used when resolution fails.
	// Empty means DefaultFallback.
	Fallback string

	// Timeout bounds the subprocess. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Result contains the outcome of a version resolution. Resolution never
// fails: a Result always carries a non-empty Version.
type Result struct {
	Version  string `json:"version"`
	Source   string `json:"source"` // "git", "pinned", or "fallback"
	Dirty    bool   `json:"dirty"`
	ExitCode int    `json:"exit_code"`
	Duration string `json:"duration"`
}

// ConsoleLine returns the human-readable line the build prints on stdout.
func (r *Result) ConsoleLine() string {
	return "Firmware Version: " + r.Version
}

// Resolve produces the firmware version string. Every failure path (tool
// missing, non-zero exit, timeout, empty output) degrades to the fallback
// sentinel so the surrounding build is never blocked.
func Resolve(ctx context.Context, opts *Options) *Result {
	startTime := time.Now()
	logger := logging.WithComponent("resolver")

	if opts == nil {
		opts = &Options{}
	}

	fallback := opts.Fallback
	if fallback == "" {
		fallback = DefaultFallback
	}

	if opts.Pinned != "" {
		result := &Result{
			Version:  opts.Pinned,
			Source:   "pinned",
			Dirty:    strings.HasSuffix(opts.Pinned, dirtySuffix),
			Duration: time.Since(startTime).String(),
		}
		logging.ResolutionEvent(ctx, result.Version, result.Source, time.Since(startTime), 0)
		return result
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := security.ValidateEnvironment(); err != nil {
		logger.WarnContext(ctx, "git executable not found, using fallback version",
			slog.String("fallback", fallback),
			slog.String("error", err.Error()),
		)
		return fallbackResult(ctx, fallback, -1, startTime)
	}

	// #nosec G204 - git binary is validated to exist, arguments are fixed
	cmd := exec.CommandContext(cmdCtx, "git", describeArgs...)
	if opts.RepoDir != "" {
		cmd.Dir = opts.RepoDir
	}

	stdout, stderr, exitCode, err := executeCommand(cmd)

	logging.ExecutionEvent(ctx, "resolver", "git "+strings.Join(describeArgs, " "), time.Since(startTime), exitCode, err)

	if err != nil {
		// Stderr is captured for debugging only; it never reaches the caller.
		logger.DebugContext(ctx, "Version query failed, using fallback version",
			slog.String("fallback", fallback),
			slog.Int("exit_code", exitCode),
			slog.String("stderr", security.SanitizeOutput(strings.TrimSpace(stderr))),
		)
		return fallbackResult(ctx, fallback, exitCode, startTime)
	}

	version := strings.TrimSpace(stdout)
	if version == "" {
		logger.DebugContext(ctx, "Version query produced empty output, using fallback version",
			slog.String("fallback", fallback),
		)
		return fallbackResult(ctx, fallback, exitCode, startTime)
	}

	result := &Result{
		Version:  version,
		Source:   "git",
		Dirty:    strings.HasSuffix(version, dirtySuffix),
		ExitCode: exitCode,
		Duration: time.Since(startTime).String(),
	}
	logging.ResolutionEvent(ctx, result.Version, result.Source, time.Since(startTime), exitCode)
	return result
}

// fallbackResult builds the sentinel Result shared by every failure path.
func fallbackResult(ctx context.Context, fallback string, exitCode int, startTime time.Time) *Result {
	result := &Result{
		Version:  fallback,
		Source:   "fallback",
		ExitCode: exitCode,
		Duration: time.Since(startTime).String(),
	}
	logging.ResolutionEvent(ctx, result.Version, result.Source, time.Since(startTime), exitCode)
	return result
}

// executeCommand executes a command and returns stdout, stderr, exit code, and error.
func executeCommand(cmd *exec.Cmd) (stdout, stderr string, exitCode int, err error) {
	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return stdout, stderr, exitCode, err
}
