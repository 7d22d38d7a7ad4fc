package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yaklabco/peggylint/internal/ui/pretty"
	"github.com/yaklabco/peggylint/pkg/analysis"
	"github.com/yaklabco/peggylint/pkg/lint"
)

// maxPathWidth truncates long paths in the file table from the left.
const maxPathWidth = 60

// SummaryRenderer formats results as aggregated rule and file tables.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	var builder strings.Builder

	if report.Totals.Issues == 0 {
		builder.WriteString(r.styles.Success.Render("No problems found"))
		builder.WriteString(r.styles.Dim.Render(fmt.Sprintf(" (%d %s checked)",
			report.Totals.Files, pluralWord(report.Totals.Files, "file"))))
		builder.WriteString("\n")
	} else {
		builder.WriteString(r.styles.Bold.Render("Rules") + "\n")
		builder.WriteString(r.ruleTable(report.ByRule) + "\n\n")
		builder.WriteString(r.styles.Bold.Render("Files") + "\n")
		builder.WriteString(r.fileTable(report.ByFile) + "\n\n")
		builder.WriteString(r.totals(report.Totals) + "\n")
	}

	if _, err := io.WriteString(r.out, builder.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func (r *SummaryRenderer) newTable(headers ...string) *table.Table {
	border := lipgloss.NormalBorder()
	if !r.styles.Color {
		border = lipgloss.ASCIIBorder()
	}
	return table.New().
		Border(border).
		BorderStyle(r.styles.TableBorder).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.TableHeader
			}
			if col > 0 {
				return r.styles.TableCell.Align(lipgloss.Right)
			}
			return r.styles.TableCell
		}).
		Headers(headers...)
}

func (r *SummaryRenderer) ruleTable(rules []analysis.RuleAnalysis) string {
	t := r.newTable("Rule", "Issues", "Errors", "Warnings", "Fixable")
	for _, rule := range rules {
		name := rule.RuleID
		if rule.Source != "" && rule.Source != lint.SourcePeggy {
			name = rule.Source + "/" + name
		}
		t.Row(name,
			strconv.Itoa(rule.Issues),
			strconv.Itoa(rule.Errors),
			strconv.Itoa(rule.Warnings),
			strconv.Itoa(rule.Fixable),
		)
	}
	return t.Render()
}

func (r *SummaryRenderer) fileTable(files []analysis.FileAnalysis) string {
	t := r.newTable("File", "Issues", "Errors", "Warnings")
	for _, file := range files {
		path := file.Path
		if len(path) > maxPathWidth {
			path = "..." + path[len(path)-(maxPathWidth-3):]
		}
		t.Row(path,
			strconv.Itoa(file.Issues),
			strconv.Itoa(file.Errors),
			strconv.Itoa(file.Warnings),
		)
	}
	return t.Render()
}

func (r *SummaryRenderer) totals(totals analysis.Totals) string {
	line := fmt.Sprintf("%d %s", totals.Issues, pluralWord(totals.Issues, "problem"))

	var bySeverity []string
	if totals.Errors > 0 {
		bySeverity = append(bySeverity, r.styles.Error.Render(
			fmt.Sprintf("%d %s", totals.Errors, pluralWord(totals.Errors, "error"))))
	}
	if totals.Warnings > 0 {
		bySeverity = append(bySeverity, r.styles.Warning.Render(
			fmt.Sprintf("%d %s", totals.Warnings, pluralWord(totals.Warnings, "warning"))))
	}
	if totals.Infos > 0 {
		bySeverity = append(bySeverity, r.styles.Info.Render(fmt.Sprintf("%d info", totals.Infos)))
	}
	if len(bySeverity) > 0 {
		line += " (" + strings.Join(bySeverity, ", ") + ")"
	}

	line += fmt.Sprintf(" in %d of %d %s", totals.FilesWithIssues, totals.Files, pluralWord(totals.Files, "file"))
	if totals.Fixable > 0 {
		line += ", " + r.styles.Success.Render(fmt.Sprintf("%d fixable", totals.Fixable))
	}
	if totals.SyntaxErrors > 0 {
		line += ", " + r.styles.Error.Render(fmt.Sprintf("%d with syntax errors", totals.SyntaxErrors))
	}
	if totals.FilesFailed > 0 {
		line += ", " + r.styles.Failure.Render(fmt.Sprintf("%d failed", totals.FilesFailed))
	}

	return r.styles.Bold.Render("Total: ") + line
}
