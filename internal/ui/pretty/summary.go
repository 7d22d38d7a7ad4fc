package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/runner"
)

// plural returns word with an "s" unless n is one.
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 problems (3 errors, 2 warnings) in 2 files, 3 fixable".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var parts []string

	if stats.DiagnosticsTotal == 0 {
		parts = append(parts, s.Success.Render("No problems found")+
			s.Dim.Render(fmt.Sprintf(" (%s checked)", plural(stats.FilesProcessed, "file"))))
	} else {
		var bySeverity []string
		if n := stats.DiagnosticsBySeverity[config.SeverityError]; n > 0 {
			bySeverity = append(bySeverity, s.Error.Render(plural(n, "error")))
		}
		if n := stats.DiagnosticsBySeverity[config.SeverityWarning]; n > 0 {
			bySeverity = append(bySeverity, s.Warning.Render(plural(n, "warning")))
		}
		if n := stats.DiagnosticsBySeverity[config.SeverityInfo]; n > 0 {
			bySeverity = append(bySeverity, s.Info.Render(fmt.Sprintf("%d info", n)))
		}

		main := plural(stats.DiagnosticsTotal, "problem")
		if len(bySeverity) > 0 {
			main += " (" + strings.Join(bySeverity, ", ") + ")"
		}
		parts = append(parts, main, "in "+plural(stats.FilesWithIssues, "file"))

		if stats.DiagnosticsFixable > 0 {
			parts = append(parts, s.Success.Render(fmt.Sprintf("%d fixable", stats.DiagnosticsFixable)))
		}
	}

	if stats.DiagnosticsFixed > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d fixed in %s",
			stats.DiagnosticsFixed, plural(stats.FilesModified, "file"))))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(plural(stats.FilesSkipped, "file")+" skipped"))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(plural(stats.FilesErrored, "file")+" failed"))
	}

	return strings.Join(parts, ", ") + "\n"
}
