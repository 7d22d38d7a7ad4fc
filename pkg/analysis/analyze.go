// Package analysis aggregates lint results per rule and per file.
package analysis

import (
	"cmp"
	"path/filepath"
	"slices"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/runner"
)

// add counts one diagnostic of severity. Unknown severities count as warnings.
func (c *Counts) add(severity config.Severity) {
	c.Issues++
	switch severity {
	case config.SeverityError:
		c.Errors++
	case config.SeverityInfo:
		c.Infos++
	default:
		c.Warnings++
	}
}

// DisplayPath makes absPath relative to workDir when it lies below it.
func DisplayPath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil || !filepath.IsLocal(relPath) {
		return absPath
	}
	return relPath
}

// Analyze aggregates a runner.Result in one pass over its diagnostics.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{}
	if result == nil {
		return report
	}

	rules := make(map[string]*RuleAnalysis)
	ruleFiles := make(map[string]map[string]bool)

	for _, file := range result.Files {
		report.Totals.Files++
		if file.Error != nil {
			report.Totals.FilesFailed++
			continue
		}
		if file.Result == nil || file.Result.FileResult == nil {
			continue
		}

		fr := file.Result.FileResult
		report.Totals.VirtualFilesTotal += len(fr.VirtualFiles)
		if fr.SyntaxError != nil {
			report.Totals.SyntaxErrors++
		}
		if len(fr.Diagnostics) == 0 {
			continue
		}

		report.Totals.FilesWithIssues++
		path := DisplayPath(file.Path, opts.WorkingDir)
		fa := FileAnalysis{Path: path}
		seen := make(map[string]bool)

		for _, diag := range fr.Diagnostics {
			report.Totals.add(diag.Severity)
			fa.add(diag.Severity)

			ra, ok := rules[diag.RuleID]
			if !ok {
				ra = &RuleAnalysis{RuleID: diag.RuleID, Source: diag.Source}
				rules[diag.RuleID] = ra
				ruleFiles[diag.RuleID] = make(map[string]bool)
			}
			ra.add(diag.Severity)
			ruleFiles[diag.RuleID][path] = true

			if diag.HasFix() {
				report.Totals.Fixable++
				ra.Fixable++
			}
			if !seen[diag.RuleID] {
				seen[diag.RuleID] = true
				fa.Rules = append(fa.Rules, diag.RuleID)
			}
		}

		slices.Sort(fa.Rules)
		report.ByFile = append(report.ByFile, fa)
	}

	for id, ra := range rules {
		for path := range ruleFiles[id] {
			ra.Files = append(ra.Files, path)
		}
		slices.Sort(ra.Files)
		report.ByRule = append(report.ByRule, *ra)
	}

	slices.SortFunc(report.ByRule, func(a, b RuleAnalysis) int {
		return cmp.Or(compareCounts(a.Counts, b.Counts, opts.SortBy), cmp.Compare(a.RuleID, b.RuleID))
	})
	slices.SortFunc(report.ByFile, func(a, b FileAnalysis) int {
		return cmp.Or(compareCounts(a.Counts, b.Counts, opts.SortBy), cmp.Compare(a.Path, b.Path))
	})

	return report
}

// compareCounts orders a before b when it should be listed first.
func compareCounts(a, b Counts, sortBy SortField) int {
	switch sortBy {
	case SortByAlpha:
		return 0
	case SortBySeverity:
		return cmp.Or(
			cmp.Compare(b.Errors, a.Errors),
			cmp.Compare(b.Warnings, a.Warnings),
			cmp.Compare(b.Issues, a.Issues),
		)
	default:
		return cmp.Compare(b.Issues, a.Issues)
	}
}
