package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/fix"
	"github.com/yaklabco/peggylint/pkg/lint"
	"github.com/yaklabco/peggylint/pkg/processor"
	"github.com/yaklabco/peggylint/pkg/reporter"
	"github.com/yaklabco/peggylint/pkg/runner"
)

const grammarText = "start = \"a\" { return foo; }\n"

// sampleResult has one grammar with two diagnostics, one fixable, and one
// file that failed.
func sampleResult() *runner.Result {
	fileResult := &lint.FileResult{
		Path:         "/work/g.peggy",
		Content:      []byte(grammarText),
		VirtualFiles: []processor.VirtualFile{{Name: "g.peggy/0.js", Text: "foo;"}},
		Diagnostics: []lint.Diagnostic{
			{
				RuleID:      "no-undef",
				Source:      "eslint",
				Message:     "'foo' is not defined.",
				Severity:    config.SeverityError,
				FilePath:    "/work/g.peggy",
				StartLine:   1,
				StartColumn: 22,
				EndLine:     1,
				EndColumn:   25,
			},
			{
				RuleID:      "semi",
				Source:      "eslint",
				MessageID:   "extraSemi",
				Message:     "Extra semicolon.",
				Severity:    config.SeverityWarning,
				FilePath:    "/work/g.peggy",
				StartLine:   1,
				StartColumn: 25,
				EndLine:     1,
				EndColumn:   26,
				FixEdits:    []fix.TextEdit{{StartOffset: 24, EndOffset: 25, NewText: ""}},
			},
		},
	}

	return &runner.Result{
		Files: []runner.FileOutcome{
			{Path: "/work/bad.peggy", Error: errors.New("permission denied")},
			{
				Path:   "/work/g.peggy",
				Result: &lint.PipelineResult{FileResult: fileResult, Path: "/work/g.peggy"},
			},
		},
		Stats: runner.Stats{
			FilesDiscovered:    2,
			FilesProcessed:     1,
			FilesErrored:       1,
			FilesWithIssues:    1,
			DiagnosticsTotal:   2,
			DiagnosticsFixable: 1,
			DiagnosticsBySeverity: map[config.Severity]int{
				config.SeverityError:   1,
				config.SeverityWarning: 1,
			},
		},
	}
}

// dryRunResult has one grammar with a pending fix.
func dryRunResult() *runner.Result {
	modified := []byte("start = \"a\" { return foo }\n")
	return &runner.Result{
		Files: []runner.FileOutcome{{
			Path: "/work/g.peggy",
			Result: &lint.PipelineResult{
				FileResult:        &lint.FileResult{Path: "/work/g.peggy", Content: modified},
				Path:              "/work/g.peggy",
				Modified:          true,
				ModifiedContent:   modified,
				Diff:              fix.GenerateDiff("/work/g.peggy", []byte(grammarText), modified),
				FixPasses:         1,
				TotalEditsApplied: 1,
			},
		}},
		Stats: runner.Stats{FilesProcessed: 1},
	}
}

func report(t *testing.T, format config.OutputFormat, result *runner.Result) (string, int) {
	t.Helper()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Format = format
	opts.Color = "never"
	opts.WorkingDir = "/work"

	rep, err := reporter.New(opts)
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	return buf.String(), count
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range config.Formats() {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			rep, err := reporter.New(reporter.Options{Format: format})
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}

	t.Run("default is text", func(t *testing.T) {
		t.Parallel()

		rep, err := reporter.New(reporter.Options{})
		require.NoError(t, err)
		assert.IsType(t, &reporter.TextReporter{}, rep)
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := reporter.New(reporter.Options{Format: "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported format: xml")
	})
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	out, count := report(t, config.FormatText, sampleResult())

	assert.Equal(t, 2, count)
	assert.Contains(t, out, "bad.peggy: error: permission denied")
	assert.Contains(t, out, "g.peggy (2 issues)")
	assert.Contains(t, out, "  g.peggy:1:22  error  'foo' is not defined.  (eslint/no-undef)\n")
	assert.Contains(t, out, "(eslint/semi)  fixable\n")
	assert.Contains(t, out, "    "+grammarText)
	assert.Contains(t, out, "^~~")
	assert.Contains(t, out, "2 problems (1 error, 1 warning) in 1 file, 1 fixable, 1 file failed\n")
	assert.NotContains(t, out, "/work/")
}

func TestTextReporter_NoContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never"})

	_, err := rep.Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "^")
	assert.NotContains(t, buf.String(), "problems", "summary is off")
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	out, count := report(t, config.FormatText, &runner.Result{})
	assert.Zero(t, count)
	assert.Equal(t, "No grammar files to check.\n", out)
}

func TestTextReporter_FixStatus(t *testing.T) {
	t.Parallel()

	t.Run("dry run shows the diff", func(t *testing.T) {
		t.Parallel()

		out, _ := report(t, config.FormatText, dryRunResult())
		assert.Contains(t, out, "diff --git a/g.peggy b/g.peggy")
		assert.Contains(t, out, "-start = \"a\" { return foo; }")
		assert.Contains(t, out, "+start = \"a\" { return foo }")
	})

	t.Run("written", func(t *testing.T) {
		t.Parallel()

		result := dryRunResult()
		result.Files[0].Result.Written = true
		result.Files[0].Result.BackupCreated = true

		out, _ := report(t, config.FormatText, result)
		assert.Contains(t, out, "fixed 1 problem in 1 pass (backup created)")
		assert.NotContains(t, out, "diff --git")
	})

	t.Run("skipped", func(t *testing.T) {
		t.Parallel()

		result := dryRunResult()
		res := result.Files[0].Result
		res.Modified = false
		res.Diff = nil
		res.Skipped = true
		res.SkipReason = "fixes broke the grammar: expected \"=\""

		out, _ := report(t, config.FormatText, result)
		assert.Contains(t, out, "fixes skipped: fixes broke the grammar: expected \"=\"")
	})
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	out, count := report(t, config.FormatJSON, sampleResult())
	assert.Equal(t, 2, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))

	assert.Equal(t, "1.0.0", output.Version)
	require.Len(t, output.Files, 2)

	assert.Equal(t, "bad.peggy", output.Files[0].Path)
	assert.Equal(t, "permission denied", output.Files[0].Error)
	assert.Empty(t, output.Files[0].Diagnostics)

	file := output.Files[1]
	assert.Equal(t, "g.peggy", file.Path)
	assert.Equal(t, 1, file.VirtualFiles)
	require.Len(t, file.Diagnostics, 2)
	assert.Equal(t, "no-undef", file.Diagnostics[0].RuleID)
	assert.Equal(t, "eslint", file.Diagnostics[0].Source)
	assert.False(t, file.Diagnostics[0].Fixable)
	assert.Equal(t, "extraSemi", file.Diagnostics[1].MessageID)
	assert.Equal(t, []reporter.JSONFix{{StartOffset: 24, EndOffset: 25}}, file.Diagnostics[1].Fixes)

	assert.Equal(t, reporter.JSONSummary{
		FilesChecked:    2,
		FilesWithIssues: 1,
		FilesErrored:    1,
		TotalIssues:     2,
		Fixable:         1,
		BySeverity:      map[string]int{"error": 1, "warning": 1},
	}, output.Summary)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})

	_, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t,
		`{"version":"1.0.0","files":[],"summary":{"filesChecked":0,"filesWithIssues":0,"filesModified":0,"filesSkipped":0,"filesErrored":0,"totalIssues":0,"fixable":0,"bySeverity":{}}}`+"\n",
		buf.String())
}

func TestSARIFReporter(t *testing.T) {
	t.Parallel()

	out, count := report(t, config.FormatSARIF, sampleResult())
	assert.Equal(t, 2, count)

	var output reporter.SARIFOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))

	assert.Equal(t, "2.1.0", output.Version)
	require.Len(t, output.Runs, 1)
	run := output.Runs[0]

	assert.Equal(t, "peggylint", run.Tool.Driver.Name)
	assert.Equal(t, "dev", run.Tool.Driver.Version)
	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "eslint/no-undef", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "error", run.Tool.Driver.Rules[0].DefaultConfig.Level)

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "eslint/no-undef", first.RuleID)
	assert.Equal(t, "g.peggy", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, reporter.SARIFRegion{StartLine: 1, StartColumn: 22, EndLine: 1, EndColumn: 25},
		first.Locations[0].PhysicalLocation.Region)
	assert.Empty(t, first.Fixes)

	second := run.Results[1]
	assert.Equal(t, "warning", second.Level)
	require.Len(t, second.Fixes, 1)
	replacement := second.Fixes[0].ArtifactChanges[0].Replacements[0]
	assert.Equal(t, reporter.SARIFByteRegion{ByteOffset: 24, ByteLength: 1}, replacement.DeletedRegion)
	assert.Empty(t, replacement.InsertedContent.Text)

	require.Len(t, run.Invocations, 1)
	assert.False(t, run.Invocations[0].ExecutionSuccessful)
	assert.Equal(t, "permission denied", run.Invocations[0].ToolExecutionNotifications[0].Message.Text)
}

func TestSARIFReporter_SyntaxErrorRule(t *testing.T) {
	t.Parallel()

	result := &runner.Result{Files: []runner.FileOutcome{{
		Path: "/work/g.peggy",
		Result: &lint.PipelineResult{FileResult: &lint.FileResult{
			Diagnostics: []lint.Diagnostic{{
				RuleID:    lint.RuleSyntaxError,
				Source:    lint.SourcePeggy,
				Message:   "expected \"=\"",
				Severity:  config.SeverityError,
				StartLine: 1,
			}},
		}},
	}}}

	out, _ := report(t, config.FormatSARIF, result)

	var output reporter.SARIFOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	assert.Equal(t, lint.RuleSyntaxError, output.Runs[0].Results[0].RuleID)
	assert.Empty(t, output.Runs[0].Invocations)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	out, count := report(t, config.FormatDiff, dryRunResult())

	assert.Equal(t, 1, count)
	assert.Contains(t, out, "diff --git a/g.peggy b/g.peggy\n--- a/g.peggy\n+++ b/g.peggy\n@@ -1,1 +1,1 @@\n")
	assert.Contains(t, out, "-start = \"a\" { return foo; }\n+start = \"a\" { return foo }\n")
	assert.Contains(t, out, "1 file changed, 1 insertion(+), 1 deletion(-)\n")
}

func TestDiffReporter_NoChanges(t *testing.T) {
	t.Parallel()

	out, count := report(t, config.FormatDiff, sampleResult())
	assert.Zero(t, count)
	assert.Equal(t, "bad.peggy: error: permission denied\n", out)
}

func TestSummaryRenderer(t *testing.T) {
	t.Parallel()

	out, count := report(t, config.FormatSummary, sampleResult())

	assert.Equal(t, 2, count)
	assert.Contains(t, out, "Rules\n")
	assert.Contains(t, out, "eslint/no-undef")
	assert.Contains(t, out, "eslint/semi")
	assert.Contains(t, out, "Files\n")
	assert.Contains(t, out, "g.peggy")
	assert.Contains(t, out, "Total: 2 problems (1 error, 1 warning) in 1 of 2 files, 1 fixable, 1 failed\n")
}

func TestSummaryRenderer_Clean(t *testing.T) {
	t.Parallel()

	result := &runner.Result{Files: []runner.FileOutcome{{
		Path:   "/work/g.peggy",
		Result: &lint.PipelineResult{FileResult: &lint.FileResult{}},
	}}}

	out, count := report(t, config.FormatSummary, result)
	assert.Zero(t, count)
	assert.Equal(t, "No problems found (1 file checked)\n", out)
}
