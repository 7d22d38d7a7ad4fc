package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/peggylint/pkg/analysis"
	"github.com/yaklabco/peggylint/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter is the destination for errors (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format config.OutputFormat

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowContext includes the offending source line under each diagnostic.
	ShowContext bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// Compact uses minified output for JSON and SARIF.
	Compact bool

	// SortBy orders the tables of the summary format.
	SortBy analysis.SortField

	// ToolVersion is reported as the SARIF driver version.
	ToolVersion string

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Format:      config.FormatText,
		Color:       "auto",
		ShowContext: true,
		ShowSummary: true,
		SortBy:      analysis.SortByCount,
		ToolVersion: "dev",
	}
}

// displayPath returns path relative to the working directory when possible.
func (o Options) displayPath(path string) string {
	return analysis.DisplayPath(path, o.WorkingDir)
}
