package lint_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/fix"
	"github.com/yaklabco/peggylint/pkg/hostlint"
	"github.com/yaklabco/peggylint/pkg/lint"
	"github.com/yaklabco/peggylint/pkg/processor"
)

const sampleGrammar = `{{ const limit = FOO; }}
start = "a" n:num { return FOO + n; }
num = [0-9]+ { return text(); }
`

func TestEngine_LintFile(t *testing.T) {
	t.Parallel()

	engine := newEngine(wordLinter("FOO"))
	result, err := engine.LintFile(context.Background(), "g.peggy", []byte(sampleGrammar))
	require.NoError(t, err)

	assert.Equal(t, "g.peggy", result.Path)
	assert.Nil(t, result.SyntaxError)
	require.Len(t, result.VirtualFiles, 2)
	assert.Equal(t, "g.peggy/0.js", result.VirtualFiles[0].Name)
	assert.Equal(t, "g.peggy/1.js", result.VirtualFiles[1].Name)

	require.Len(t, result.Diagnostics, 2)
	first, second := result.Diagnostics[0], result.Diagnostics[1]

	assert.Equal(t, "no-foo", first.RuleID)
	assert.Equal(t, "fake", first.Source)
	assert.Equal(t, "g.peggy", first.FilePath)
	assert.Equal(t, config.SeverityError, first.Severity)
	assert.Equal(t, 1, first.StartLine)
	assert.Equal(t, strings.Index(sampleGrammar, "FOO")+1, first.StartColumn)
	assert.Equal(t, 1, first.EndLine)
	assert.Equal(t, first.StartColumn+3, first.EndColumn)

	line2 := strings.Split(sampleGrammar, "\n")[1]
	assert.Equal(t, 2, second.StartLine)
	assert.Equal(t, strings.Index(line2, "FOO")+1, second.StartColumn)

	require.Len(t, result.Edits, 2)
	at := strings.Index(sampleGrammar, "FOO")
	assert.Equal(t, fix.TextEdit{StartOffset: at, EndOffset: at + 3, NewText: "foo"}, result.Edits[0])
	assert.False(t, result.EditConflicts)
	assert.Equal(t, 2, result.FixableCount())

	assert.Zero(t, engine.Session.Len(), "mappings are released after linting")
}

func TestEngine_LintFile_SyntaxError(t *testing.T) {
	t.Parallel()

	called := false
	linter := hostlint.Func{
		LinterName: "fake",
		Fn: func(context.Context, processor.VirtualFile) ([]processor.Message, error) {
			called = true
			return nil, nil
		},
	}

	result, err := newEngine(linter).LintFile(context.Background(), "bad.peggy", []byte("start = \"a\" {\n"))
	require.NoError(t, err)
	assert.False(t, called)

	require.NotNil(t, result.SyntaxError)
	require.Len(t, result.Diagnostics, 1)
	diag := result.Diagnostics[0]
	assert.Equal(t, lint.RuleSyntaxError, diag.RuleID)
	assert.Equal(t, lint.SourcePeggy, diag.Source)
	assert.Equal(t, config.SeverityError, diag.Severity)
	assert.Equal(t, result.SyntaxError.Pos.Line, diag.StartLine)
	assert.Equal(t, result.SyntaxError.Pos.Column+1, diag.StartColumn)
	assert.False(t, diag.HasEnd())
	assert.Empty(t, result.VirtualFiles)
}

func TestEngine_LintFile_NoCode(t *testing.T) {
	t.Parallel()

	result, err := newEngine(wordLinter("FOO")).LintFile(context.Background(), "g.peggy", []byte("start = \"FOO\"\n"))
	require.NoError(t, err)
	assert.Empty(t, result.VirtualFiles)
	assert.False(t, result.HasIssues())
}

func TestEngine_LintFile_IgnoreRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ignore []string
		want   int
	}{
		{name: "none", want: 2},
		{name: "exact", ignore: []string{"no-foo"}, want: 0},
		{name: "pattern", ignore: []string{"no-*"}, want: 0},
		{name: "other rule", ignore: []string{"semi"}, want: 2},
		{name: "bad pattern ignored", ignore: []string{"["}, want: 2},
		{name: "alternation", ignore: []string{"{semi,no-foo}"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := newEngine(wordLinter("FOO"), tt.ignore...)
			result, err := engine.LintFile(context.Background(), "g.peggy", []byte(sampleGrammar))
			require.NoError(t, err)
			assert.Len(t, result.Diagnostics, tt.want)
			assert.Len(t, result.Edits, tt.want)
		})
	}
}

func TestEngine_LintFile_LinterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	linter := hostlint.Func{
		LinterName: "fake",
		Fn: func(context.Context, processor.VirtualFile) ([]processor.Message, error) {
			return nil, boom
		},
	}

	engine := newEngine(linter)
	_, err := engine.LintFile(context.Background(), "g.peggy", []byte(sampleGrammar))
	require.Error(t, err)
	assert.True(t, errors.Is(err, lint.ErrLinterFailure))
	assert.True(t, errors.Is(err, boom))
	assert.Zero(t, engine.Session.Len())
}

func TestEngine_LintFile_BadPosition(t *testing.T) {
	t.Parallel()

	linter := hostlint.Func{
		LinterName: "fake",
		Fn: func(context.Context, processor.VirtualFile) ([]processor.Message, error) {
			return []processor.Message{{RuleID: "r", Line: 999, Column: 1}}, nil
		},
	}

	_, err := newEngine(linter).LintFile(context.Background(), "g.peggy", []byte(sampleGrammar))
	require.Error(t, err)
	assert.True(t, errors.Is(err, lint.ErrLinterFailure))
}

func TestEngine_LintFile_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(wordLinter("FOO")).LintFile(ctx, "g.peggy", []byte(sampleGrammar))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEngine_LintFile_TouchingEditsConflict(t *testing.T) {
	t.Parallel()

	content := []byte("start = \"a\" { return FOOFOO; }\n")
	result, err := newEngine(wordLinter("FOO")).LintFile(context.Background(), "g.peggy", content)
	require.NoError(t, err)

	assert.Len(t, result.Diagnostics, 2)
	assert.Len(t, result.Edits, 1)
	assert.Len(t, result.SkippedEdits, 1)
	assert.True(t, result.EditConflicts)
}

func TestEngine_LintFile_Concurrent(t *testing.T) {
	t.Parallel()

	engine := newEngine(wordLinter("FOO"))
	names := []string{"a.peggy", "b.peggy", "c.peggy", "d.peggy"}

	var wg sync.WaitGroup
	errs := make([]error, len(names))
	counts := make([]int, len(names))
	for idx, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := engine.LintFile(context.Background(), name, []byte(sampleGrammar))
			errs[idx] = err
			if err == nil {
				counts[idx] = result.IssueCount()
			}
		}()
	}
	wg.Wait()

	for idx := range names {
		require.NoError(t, errs[idx])
		assert.Equal(t, 2, counts[idx])
	}
	assert.Zero(t, engine.Session.Len())
}

func TestEngine_Extract(t *testing.T) {
	t.Parallel()

	engine := lint.NewEngine(wordLinter("FOO"), processor.Options{Language: "TypeScript"}, nil)
	files, err := engine.Extract("g.peggy", []byte(sampleGrammar))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "g.peggy/0.ts", files[0].Name)
	assert.Contains(t, files[0].Text, "const limit = FOO;")
	assert.Contains(t, files[1].Text, "return FOO + n;")
	assert.Zero(t, engine.Session.Len())

	_, err = engine.Extract("g.peggy", []byte("a b"))
	require.Error(t, err)
}

func TestNewEngineFromConfig(t *testing.T) {
	t.Parallel()

	engine, err := lint.NewEngineFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "eslint", engine.Linter.Name())
	assert.Equal(t, config.DefaultIgnoreRules(), engine.IgnoreRules)

	cfg := config.NewConfig()
	cfg.Linter.Name = "jshint"
	_, err = lint.NewEngineFromConfig(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hostlint.ErrLinterNotFound))
}

func TestFileResult_Methods(t *testing.T) {
	t.Parallel()

	empty := &lint.FileResult{}
	assert.False(t, empty.HasIssues())
	assert.False(t, empty.HasFixes())
	assert.Zero(t, empty.IssueCount())
	assert.Zero(t, empty.FixableCount())

	result := &lint.FileResult{
		Diagnostics: []lint.Diagnostic{
			{RuleID: "a", FixEdits: []fix.TextEdit{{StartOffset: 0, EndOffset: 1}}},
			{RuleID: "b"},
		},
		Edits: []fix.TextEdit{{StartOffset: 0, EndOffset: 1}},
	}
	assert.True(t, result.HasIssues())
	assert.True(t, result.HasFixes())
	assert.Equal(t, 2, result.IssueCount())
	assert.Equal(t, 1, result.FixableCount())
}

func TestSortDiagnostics(t *testing.T) {
	t.Parallel()

	diags := []lint.Diagnostic{
		{RuleID: "b", StartLine: 2, StartColumn: 1},
		{RuleID: "z", StartLine: 1, StartColumn: 5},
		{RuleID: "a", StartLine: 1, StartColumn: 5},
		{RuleID: "c", StartLine: 1, StartColumn: 1},
	}
	lint.SortDiagnostics(diags)

	var got []string
	for _, d := range diags {
		got = append(got, d.RuleID)
	}
	assert.Equal(t, []string{"c", "a", "z", "b"}, got)
}

func TestFileResult_Line(t *testing.T) {
	t.Parallel()

	result := &lint.FileResult{Content: []byte("one\r\ntwo\nthree")}
	assert.Equal(t, "one", result.Line(1))
	assert.Equal(t, "two", result.Line(2))
	assert.Equal(t, "three", result.Line(3))
	assert.Empty(t, result.Line(0))
	assert.Empty(t, result.Line(4))
}
