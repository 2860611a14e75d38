// Package flags formats compiler macro definitions and registers them with
// the build orchestrator's flag-accumulation list.
package flags

import (
	"context"
	"fmt"
	"os"

	"github.com/oleiade/autoversion/internal/logging"
	"github.com/oleiade/autoversion/internal/security"
)

// DefaultMacroName is the preprocessor symbol the firmware reads at compile time.
const DefaultMacroName = "AUTO_VERSION"

const flagsFileMode = 0o644

// ErrorType represents the type of error that occurred.
type ErrorType string

const (
	// ErrorTypeValidation indicates a validation error.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeIO indicates an input/output error.
	ErrorTypeIO ErrorType = "io"
)

// Error represents a build-flag-related error with type information.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Define formats a macro definition build flag of the shape
//
//	-D NAME="value"
//
// The result always contains exactly one well-formed definition: names and
// values that would break the shape are rejected before formatting.
func Define(name, value string) (string, error) {
	if err := security.ValidateMacroName(name); err != nil {
		return "", &Error{Type: ErrorTypeValidation, Message: "invalid macro name", Err: err}
	}
	if err := security.ValidateVersionValue(value); err != nil {
		return "", &Error{Type: ErrorTypeValidation, Message: "invalid macro value", Err: err}
	}

	return fmt.Sprintf("-D %s=\"%s\"", name, value), nil
}

// Env is the build orchestrator's flag-accumulation list. Appending never
// replaces flags already registered by earlier build steps.
type Env interface {
	AppendBuildFlags(flags ...string) error
}

// MemoryEnv is an in-process Env, used by the MCP handlers and in tests.
type MemoryEnv struct {
	flags []string
}

// NewMemoryEnv creates a MemoryEnv pre-populated with any existing flags.
func NewMemoryEnv(existing ...string) *MemoryEnv {
	env := &MemoryEnv{}
	env.flags = append(env.flags, existing...)
	return env
}

// AppendBuildFlags implements Env.
func (e *MemoryEnv) AppendBuildFlags(flags ...string) error {
	e.flags = append(e.flags, flags...)
	return nil
}

// BuildFlags returns a copy of the accumulated flags, in registration order.
func (e *MemoryEnv) BuildFlags() []string {
	out := make([]string, len(e.flags))
	copy(out, e.flags)
	return out
}

// FileEnv is an Env backed by a flags file the orchestrator expands into the
// compiler command line (one flag per line). The file is only ever appended
// to; entries written by earlier build steps remain present and in order.
type FileEnv struct {
	path string
}

// NewFileEnv creates a FileEnv writing to the given path. The file is
// created on first append if it does not exist.
func NewFileEnv(path string) *FileEnv {
	return &FileEnv{path: path}
}

// Path returns the flags file path.
func (e *FileEnv) Path() string {
	return e.path
}

// AppendBuildFlags implements Env.
func (e *FileEnv) AppendBuildFlags(flags ...string) error {
	file, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, flagsFileMode)
	if err != nil {
		logging.FileOperation(context.Background(), "flags", "open_flags_file", e.path, err)
		return &Error{Type: ErrorTypeIO, Message: "failed to open flags file", Err: err}
	}
	defer func() {
		_ = file.Close() // Ignore close error as we're already handling write errors
	}()

	for _, flag := range flags {
		if _, err := file.WriteString(flag + "\n"); err != nil {
			logging.FileOperation(context.Background(), "flags", "append_flags", e.path, err)
			return &Error{Type: ErrorTypeIO, Message: "failed to append to flags file", Err: err}
		}
	}

	logging.FileOperation(context.Background(), "flags", "append_flags", e.path, nil)
	return nil
}
