package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/lint"
)

// sourceIndent aligns source context under the diagnostic line.
const sourceIndent = "    "

// FormatDiagnostic formats a single diagnostic for terminal output.
// path is the display path. When sourceLine is non-empty it is shown with
// a marker under the reported range.
func (s *Styles) FormatDiagnostic(path string, diag *lint.Diagnostic, sourceLine string) string {
	var builder strings.Builder

	location := s.Location.Render(fmt.Sprintf("%d:%d", diag.StartLine, diag.StartColumn))

	rule := diag.RuleID
	if diag.Source != "" && diag.Source != lint.SourcePeggy {
		rule = diag.Source + "/" + rule
	}

	fmt.Fprintf(&builder, "  %s:%s  %s  %s  %s",
		s.FilePath.Render(path),
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
		s.RuleID.Render("("+rule+")"),
	)
	if diag.HasFix() {
		builder.WriteString("  " + s.Fixable.Render("fixable"))
	}
	builder.WriteString("\n")

	if sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, diag.StartColumn, markerWidth(diag)))
	}

	return builder.String()
}

// markerWidth is the number of columns to underline: the range when it
// ends on the start line, one column otherwise.
func markerWidth(diag *lint.Diagnostic) int {
	if diag.EndLine == diag.StartLine && diag.EndColumn > diag.StartColumn {
		return diag.EndColumn - diag.StartColumn
	}
	return 1
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev config.Severity) string {
	switch sev {
	case config.SeverityError:
		return s.Error.Render("error")
	case config.SeverityWarning:
		return s.Warning.Render("warning")
	case config.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a marker under width
// bytes starting at the 1-based byte column. Tabs before the column are
// kept so the marker lines up.
func (s *Styles) FormatSourceContext(line string, column, width int) string {
	var builder strings.Builder

	builder.WriteString(sourceIndent + s.SourceLine.Render(line) + "\n")

	if column < 1 || column > len(line)+1 {
		return builder.String()
	}

	var padding strings.Builder
	for _, r := range line[:column-1] {
		if r == '\t' {
			padding.WriteByte('\t')
		} else {
			padding.WriteByte(' ')
		}
	}

	marker := "^"
	if rest := len(line) - (column - 1); width > 1 && rest > 1 {
		marker += strings.Repeat("~", min(width, rest)-1)
	}
	builder.WriteString(sourceIndent + padding.String() + s.Caret.Render(marker) + "\n")

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	switch issueCount {
	case 0:
	case 1:
		header += s.Dim.Render(" (1 issue)")
	default:
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
