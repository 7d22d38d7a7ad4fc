// Package hostlint runs general-purpose code linters over the virtual files
// extracted from grammars.
package hostlint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/peggylint/pkg/processor"
)

var (
	// ErrLinterNotFound is returned for an unknown backend name.
	ErrLinterNotFound = errors.New("linter not found")

	// ErrBadOutput is returned when a linter's output cannot be decoded.
	ErrBadOutput = errors.New("unreadable linter output")
)

// Linter checks one virtual file.
//
// Lint returns diagnostics in the coordinates of file.Text: 1-based lines
// and columns counted in bytes, and byte offsets for fixes.
type Linter interface {
	// Name returns the backend name (e.g., "eslint").
	Name() string

	// Lint runs the linter over file.
	Lint(ctx context.Context, file processor.VirtualFile) ([]processor.Message, error)
}

// Func adapts a function to the Linter interface.
type Func struct {
	LinterName string
	Fn         func(ctx context.Context, file processor.VirtualFile) ([]processor.Message, error)
}

// Name implements Linter.
func (f Func) Name() string {
	return f.LinterName
}

// Lint implements Linter.
func (f Func) Lint(ctx context.Context, file processor.VirtualFile) ([]processor.Message, error) {
	return f.Fn(ctx, file)
}

// ExecError describes a linter process that could not run or exited with
// an unexpected status.
type ExecError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s", e.Command)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&b, ": %s", firstLine(stderr))
	}
	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *ExecError) Unwrap() error {
	return e.Err
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
