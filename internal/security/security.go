// Package security provides input validation utilities for the autoversion tools.
package security

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/oleiade/autoversion/internal/logging"
)

const (
	// MaxExecutionTime is the maximum allowed execution time for any subprocess.
	MaxExecutionTime = 60 * time.Second
	// MaxMacroNameLength is the maximum allowed length for a macro name.
	MaxMacroNameLength = 128
	// MaxVersionLength is the maximum allowed length for a version string value.
	MaxVersionLength = 256
)

// Error represents a validation-related error.
type Error struct {
	Type    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error [%s]: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error [%s]: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ValidateMacroName checks that name is a well-formed C preprocessor identifier.
// The formatted build flag ends up on a compiler command line verbatim, so
// anything that is not an identifier is rejected outright.
func ValidateMacroName(name string) error {
	logger := logging.WithComponent("security")

	if name == "" {
		return &Error{
			Type:    "EMPTY_MACRO_NAME",
			Message: "macro name cannot be empty",
		}
	}

	if len(name) > MaxMacroNameLength {
		return &Error{
			Type:    "MACRO_NAME_TOO_LONG",
			Message: fmt.Sprintf("macro name length (%d) exceeds maximum allowed length (%d)", len(name), MaxMacroNameLength),
		}
	}

	for i, r := range name {
		if r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			continue
		}
		if r >= '0' && r <= '9' {
			if i == 0 {
				return &Error{
					Type:    "INVALID_MACRO_NAME",
					Message: fmt.Sprintf("macro name %q cannot start with a digit", name),
				}
			}
			continue
		}
		return &Error{
			Type:    "INVALID_MACRO_NAME",
			Message: fmt.Sprintf("macro name %q contains invalid character %q", name, r),
		}
	}

	logger.Debug("Macro name validation passed",
		slog.String("macro_name", name),
	)

	return nil
}

// ValidateVersionValue checks that value can be embedded in a quoted macro
// definition without breaking out of the quotes or the command line.
func ValidateVersionValue(value string) error {
	if value == "" {
		return &Error{
			Type:    "EMPTY_VALUE",
			Message: "version value cannot be empty",
		}
	}

	if len(value) > MaxVersionLength {
		return &Error{
			Type:    "VALUE_TOO_LONG",
			Message: fmt.Sprintf("version value length (%d) exceeds maximum allowed length (%d)", len(value), MaxVersionLength),
		}
	}

	if strings.ContainsAny(value, "\"\\\n\r") {
		return &Error{
			Type:    "INVALID_VALUE",
			Message: fmt.Sprintf("version value %q contains characters that cannot appear inside a quoted macro definition", value),
		}
	}

	return nil
}

// CreateSecureContext creates a context with subprocess time constraints.
func CreateSecureContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, MaxExecutionTime)
}

// SanitizeOutput sanitizes subprocess output strings to prevent information leakage
// before they reach logs.
func SanitizeOutput(output string) string {
	// Remove potentially sensitive information from output
	sensitive := []string{
		os.Getenv("HOME"),
		os.Getenv("USER"),
		os.Getenv("USERNAME"),
		os.Getenv("LOGNAME"),
	}

	sanitized := output
	for _, s := range sensitive {
		if s != "" {
			sanitized = strings.ReplaceAll(sanitized, s, "[REDACTED]")
		}
	}

	return sanitized
}

// ValidateEnvironment validates that the git executable is available on PATH.
func ValidateEnvironment() error {
	logger := logging.WithComponent("security")

	path, err := exec.LookPath("git")
	if err != nil {
		return &Error{
			Type:    "TOOL_NOT_FOUND",
			Message: "git executable not found in PATH",
			Cause:   err,
		}
	}

	logger.Debug("Environment validation passed",
		slog.String("git_path", path),
	)

	return nil
}
