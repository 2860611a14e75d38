// Package logging provides helper functions for common logging patterns.
package logging

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// RequestStart logs the beginning of an MCP request
func RequestStart(ctx context.Context, toolName string, params map[string]interface{}) {
	logger := WithTool(toolName)

	logger.InfoContext(ctx, "MCP request started",
		slog.Any("params", params),
		slog.Time("start_time", time.Now()),
	)
}

// RequestEnd logs the completion of an MCP request
func RequestEnd(ctx context.Context, toolName string, success bool, duration time.Duration, err error) {
	logger := WithTool(toolName)

	if err != nil {
		logger.ErrorContext(ctx, "MCP request failed",
			slog.Bool("success", success),
			slog.Duration("duration", duration),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.String("error", err.Error()),
			slog.String("error_type", getErrorType(err)),
		)
	} else {
		logger.InfoContext(ctx, "MCP request completed",
			slog.Bool("success", success),
			slog.Duration("duration", duration),
			slog.Int64("duration_ms", duration.Milliseconds()),
		)
	}
}

// ResolutionEvent logs the outcome of a version resolution
func ResolutionEvent(ctx context.Context, version string, source string, duration time.Duration, exitCode int) {
	logger := WithComponent("resolver")

	logger.InfoContext(ctx, "Version resolved",
		slog.String("firmware_version", version),
		slog.String("source", source),
		slog.Duration("duration", duration),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.Int("exit_code", exitCode),
	)
}

// ExecutionEvent logs command execution events
func ExecutionEvent(ctx context.Context, component string, command string, duration time.Duration, exitCode int, err error) {
	logger := WithComponent(component)

	if err != nil {
		// Subprocess failure is an expected degradation path here, not an error:
		// the resolver falls back to the sentinel and the build proceeds.
		logger.WarnContext(ctx, "Command execution failed",
			slog.String("command", command),
			slog.Duration("duration", duration),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.Int("exit_code", exitCode),
			slog.String("error", err.Error()),
			slog.String("error_type", getErrorType(err)),
		)
	} else {
		logger.DebugContext(ctx, "Command executed",
			slog.String("command", command),
			slog.Duration("duration", duration),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.Int("exit_code", exitCode),
		)
	}
}

// FileOperation logs file-related operations
func FileOperation(ctx context.Context, component string, operation string, path string, err error) {
	logger := WithComponent(component)

	if err != nil {
		logger.ErrorContext(ctx, "File operation failed",
			slog.String("operation", operation),
			slog.String("path", path),
			slog.String("error", err.Error()),
			slog.String("error_type", getErrorType(err)),
		)
	} else {
		logger.DebugContext(ctx, "File operation completed",
			slog.String("operation", operation),
			slog.String("path", path),
		)
	}
}

// getErrorType extracts error type for classification
func getErrorType(err error) string {
	if err == nil {
		return ""
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "exit_status"
	}
	if errors.Is(err, exec.ErrNotFound) {
		return "not_found"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "validation"):
		return "validation"
	case strings.Contains(errStr, "no such file"):
		return "not_found"
	}

	return "unknown"
}
