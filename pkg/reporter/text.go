package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/peggylint/internal/ui/pretty"
	"github.com/yaklabco/peggylint/pkg/fix"
	"github.com/yaklabco/peggylint/pkg/runner"
)

// TextReporter formats results as styled terminal output, grouped by file.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No grammar files to check."))
		}
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("report: %w", err)
		}
		total += r.reportFile(file)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return total, nil
}

// reportFile writes one file's diagnostics and fix status. It returns the
// number of diagnostics written.
func (r *TextReporter) reportFile(file runner.FileOutcome) int {
	path := r.opts.displayPath(file.Path)

	if file.Error != nil {
		fmt.Fprintf(r.bw, "%s: %s\n",
			r.styles.FilePath.Render(path),
			r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return 0
	}

	res := file.Result
	if res == nil || res.FileResult == nil {
		return 0
	}

	diagnostics := res.Diagnostics
	status := r.fixStatus(file)
	pending := pendingDiff(file)
	if len(diagnostics) == 0 && status == "" && pending == nil {
		return 0
	}

	fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, len(diagnostics)))
	for i := range diagnostics {
		var sourceLine string
		if r.opts.ShowContext {
			sourceLine = res.Line(diagnostics[i].StartLine)
		}
		fmt.Fprint(r.bw, r.styles.FormatDiagnostic(path, &diagnostics[i], sourceLine))
	}
	if status != "" {
		fmt.Fprintln(r.bw, "  "+status)
	}
	if pending != nil {
		fmt.Fprintln(r.bw)
		writeStyledDiff(r.bw, r.styles, pending, path)
	}
	fmt.Fprintln(r.bw)

	return len(diagnostics)
}

// pendingDiff returns the diff of fixes computed but not written, as in a
// dry run.
func pendingDiff(file runner.FileOutcome) *fix.Diff {
	diff := fileDiff(file)
	if !diff.HasChanges() || file.Result.Written {
		return nil
	}
	return diff
}

// fixStatus describes what fixing did to the file, or "" if nothing.
func (r *TextReporter) fixStatus(file runner.FileOutcome) string {
	res := file.Result
	switch {
	case res.Skipped:
		return r.styles.Warning.Render("fixes skipped: " + res.SkipReason)
	case res.Written:
		msg := fmt.Sprintf("fixed %d %s in %d %s",
			res.TotalEditsApplied, pluralWord(res.TotalEditsApplied, "problem"),
			res.FixPasses, pluralWord(res.FixPasses, "pass"))
		if res.BackupCreated {
			msg += " (backup created)"
		}
		return r.styles.Success.Render(msg)
	default:
		return ""
	}
}

// pluralWord returns word, with a plural suffix unless n is one.
func pluralWord(n int, word string) string {
	if n == 1 {
		return word
	}
	if word[len(word)-1] == 's' {
		return word + "es"
	}
	return word + "s"
}
