package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/hostlint"
	"github.com/yaklabco/peggylint/pkg/lint"
	"github.com/yaklabco/peggylint/pkg/processor"
	"github.com/yaklabco/peggylint/pkg/runner"
)

const grammarWithCode = "start = \"a\" { return TODO; }\n"

// todoLinter flags "TODO" in the generated code and fixes it to "null".
func todoLinter(calls *atomic.Int32) hostlint.Func {
	return hostlint.Func{
		LinterName: "fake",
		Fn: func(_ context.Context, file processor.VirtualFile) ([]processor.Message, error) {
			if calls != nil {
				calls.Add(1)
			}
			var out []processor.Message
			for lineIdx, line := range strings.Split(file.Text, "\n") {
				col := strings.Index(line, "TODO")
				if col < 0 {
					continue
				}
				offset := strings.Index(file.Text, line) + col
				out = append(out, processor.Message{
					RuleID:   "no-todo",
					Severity: config.SeverityError,
					Text:     "Unexpected TODO.",
					Line:     lineIdx + 1,
					Column:   col + 1,
					Fix:      &processor.Edit{Start: offset, End: offset + 4, Text: "null"},
				})
			}
			return out, nil
		},
	}
}

func newRunner(linter hostlint.Linter) *runner.Runner {
	engine := lint.NewEngine(linter, processor.Options{}, nil)
	return runner.New(lint.NewPipeline(engine))
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, map[string]string{"notes.txt": ""})
	result, err := newRunner(todoLinter(nil)).Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
	assert.False(t, result.HasIssues())
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, map[string]string{
		"a.peggy":     grammarWithCode,
		"b.peggy":     "start = \"b\"\n",
		"c.peggy":     "a b",
		"sub/d.pegjs": grammarWithCode,
	})

	var calls atomic.Int32
	result, err := newRunner(todoLinter(&calls)).Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Jobs:       2,
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 4)
	assert.Equal(t, []string{"a.peggy", "b.peggy", "c.peggy", "sub/d.pegjs"},
		relPaths(t, dir, []string{
			result.Files[0].Path, result.Files[1].Path, result.Files[2].Path, result.Files[3].Path,
		}))

	stats := result.Stats
	assert.Equal(t, 4, stats.FilesDiscovered)
	assert.Equal(t, 4, stats.FilesProcessed)
	assert.Equal(t, 1, stats.FilesWithSyntaxErrors)
	assert.Equal(t, 3, stats.FilesWithIssues)
	assert.Equal(t, 3, stats.DiagnosticsTotal)
	assert.Equal(t, 2, stats.DiagnosticsFixable)
	assert.Equal(t, 3, stats.DiagnosticsBySeverity[config.SeverityError])
	assert.Zero(t, stats.FilesModified)
	assert.True(t, result.HasFailures())
	assert.False(t, result.HasErrors())
	assert.Equal(t, int32(2), calls.Load(), "grammars without code are not linted")
}

func TestRunner_Run_SerialVsParallel(t *testing.T) {
	t.Parallel()

	files := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+".peggy"] = grammarWithCode
	}
	dir := makeTree(t, files)

	serial, err := newRunner(todoLinter(nil)).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 1})
	require.NoError(t, err)
	parallel, err := newRunner(todoLinter(nil)).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 8})
	require.NoError(t, err)

	require.Len(t, parallel.Files, len(serial.Files))
	for idx := range serial.Files {
		assert.Equal(t, serial.Files[idx].Path, parallel.Files[idx].Path)
		assert.Equal(t, serial.Files[idx].Result.Diagnostics, parallel.Files[idx].Result.Diagnostics)
	}
	assert.Equal(t, serial.Stats, parallel.Stats)
}

func TestRunner_Run_FileErrorsDoNotStopRun(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, map[string]string{
		"bad.peggy":  grammarWithCode,
		"good.peggy": grammarWithCode,
	})

	boom := errors.New("linter crashed")
	linter := hostlint.Func{
		LinterName: "fake",
		Fn: func(ctx context.Context, file processor.VirtualFile) ([]processor.Message, error) {
			if strings.Contains(file.Name, "bad.peggy") {
				return nil, boom
			}
			return todoLinter(nil).Lint(ctx, file)
		},
	}

	result, err := newRunner(linter).Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	bad, good := result.Files[0], result.Files[1]
	require.Error(t, bad.Error)
	assert.True(t, errors.Is(bad.Error, lint.ErrLinterFailure))
	assert.True(t, errors.Is(bad.Error, boom))
	assert.Nil(t, bad.Result)

	require.NoError(t, good.Error)
	assert.Equal(t, 1, good.Result.IssueCount())

	assert.Equal(t, 1, result.Stats.FilesErrored)
	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.True(t, result.HasErrors())
}

func TestRunner_Run_WithFixes(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, map[string]string{"a.peggy": grammarWithCode, "b.peggy": grammarWithCode})

	cfg := config.NewConfig()
	cfg.Fix = true
	cfg.NoBackups = true

	result, err := newRunner(todoLinter(nil)).Run(context.Background(), runner.OptionsFromConfig(cfg, []string{dir}))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.FilesModified)
	assert.Equal(t, 2, result.Stats.DiagnosticsFixed)
	assert.Zero(t, result.Stats.DiagnosticsTotal)

	content, err := os.ReadFile(filepath.Join(dir, "a.peggy"))
	require.NoError(t, err)
	assert.Equal(t, "start = \"a\" { return null; }\n", string(content))
}

func TestRunner_Run_DryRun(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, map[string]string{"a.peggy": grammarWithCode})

	cfg := config.NewConfig()
	cfg.DryRun = true

	result, err := newRunner(todoLinter(nil)).Run(context.Background(), runner.OptionsFromConfig(cfg, []string{dir}))
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	pr := result.Files[0].Result
	require.NotNil(t, pr.Diff)
	assert.True(t, pr.Modified)
	assert.False(t, pr.Written)
	assert.Zero(t, result.Stats.FilesModified)

	content, err := os.ReadFile(filepath.Join(dir, "a.peggy"))
	require.NoError(t, err)
	assert.Equal(t, grammarWithCode, string(content))
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := makeTree(t, map[string]string{"a.peggy": grammarWithCode})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(todoLinter(nil)).Run(ctx, runner.Options{WorkingDir: dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Ignore = []string{"gen/**"}
	cfg.Jobs = 3

	opts := runner.OptionsFromConfig(cfg, []string{"src"})
	assert.Equal(t, []string{"src"}, opts.Paths)
	assert.Equal(t, config.DefaultExtensions(), opts.Extensions)
	assert.Equal(t, []string{"gen/**"}, opts.ExcludeGlobs)
	assert.Equal(t, 3, opts.Jobs)
	assert.Same(t, cfg, opts.Config)

	empty := runner.OptionsFromConfig(nil, nil)
	assert.Nil(t, empty.Config)
}

func TestResult_Predicates(t *testing.T) {
	t.Parallel()

	var nilResult *runner.Result
	assert.False(t, nilResult.HasFailures())
	assert.False(t, nilResult.HasIssues())
	assert.False(t, nilResult.HasErrors())

	result := &runner.Result{Stats: runner.Stats{
		DiagnosticsTotal:      1,
		DiagnosticsBySeverity: map[config.Severity]int{config.SeverityWarning: 1},
	}}
	assert.True(t, result.HasIssues())
	assert.False(t, result.HasFailures())
}
