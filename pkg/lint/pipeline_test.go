package lint_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/fsutil"
	"github.com/yaklabco/peggylint/pkg/lint"
	"github.com/yaklabco/peggylint/pkg/processor"
)

func writeGrammar(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "g.peggy")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestPipeline_ProcessFile_LintOnly(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, sampleGrammar)
	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))

	result, err := pipeline.ProcessFile(context.Background(), path, lint.DefaultPipelineOptions())
	require.NoError(t, err)

	assert.Equal(t, path, result.Path)
	require.NotNil(t, result.Snapshot)
	assert.Equal(t, 2, result.IssueCount())
	assert.False(t, result.Modified)
	assert.False(t, result.Written)
	assert.Nil(t, result.ModifiedContent)
	assert.Equal(t, "issues found", result.Summary())
	assert.Equal(t, sampleGrammar, readFile(t, path))
}

func TestPipeline_ProcessFile_FixMode(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, sampleGrammar)
	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true

	result, err := pipeline.ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)

	assert.True(t, result.Modified)
	assert.True(t, result.Written)
	assert.True(t, result.BackupCreated)
	assert.Equal(t, 1, result.FixPasses)
	assert.Equal(t, 2, result.TotalEditsApplied)
	assert.False(t, result.HasIssues(), "final pass sees the fixed grammar")
	assert.Equal(t, "fixed (backup created)", result.Summary())

	want := strings.ReplaceAll(sampleGrammar, "FOO", "foo")
	assert.Equal(t, want, readFile(t, path))
	assert.Equal(t, sampleGrammar, readFile(t, fsutil.BackupPath(path, fsutil.BackupModeSidecar)))
}

func TestPipeline_ProcessFile_MultiPass(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, "start = \"a\" { return FOOFOOFOO; }\n")
	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.Backup.Enabled = false

	result, err := pipeline.ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)

	// Touching edits apply one pass at a time: 1st and 3rd, then 2nd.
	assert.Equal(t, 2, result.FixPasses)
	assert.Equal(t, 3, result.TotalEditsApplied)
	assert.False(t, result.BackupCreated)
	assert.Equal(t, "start = \"a\" { return foofoofoo; }\n", readFile(t, path))
	assert.False(t, fsutil.BackupExists(path, fsutil.BackupModeSidecar))
}

func TestPipeline_ProcessFile_MaxPasses(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, "start = \"a\" { return FOOFOOFOO; }\n")
	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.MaxFixPasses = 1
	opts.Backup.Enabled = false

	result, err := pipeline.ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FixPasses)
	assert.Equal(t, "start = \"a\" { return fooFOOfoo; }\n", readFile(t, path))
}

func TestPipeline_ProcessFile_DryRun(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, sampleGrammar)
	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.DryRun = true

	result, err := pipeline.ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)

	assert.True(t, result.Modified)
	assert.False(t, result.Written)
	assert.Equal(t, "changes pending", result.Summary())
	require.NotNil(t, result.Diff)
	assert.True(t, result.Diff.HasChanges())
	assert.Contains(t, result.Diff.String(), "-{{ const limit = FOO; }}")
	assert.Contains(t, result.Diff.String(), "+{{ const limit = foo; }}")

	assert.Equal(t, sampleGrammar, readFile(t, path))
	assert.False(t, fsutil.BackupExists(path, fsutil.BackupModeSidecar))
}

func TestPipeline_ProcessFile_FixBreaksGrammar(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, sampleGrammar)
	pipeline := lint.NewPipeline(newEngine(replaceLinter("FOO", "{")))

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true

	result, err := pipeline.ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Contains(t, result.SkipReason, "fixes broke the grammar")
	assert.False(t, result.Modified)
	assert.False(t, result.Written)
	assert.Equal(t, sampleGrammar, readFile(t, path))
}

func TestPipeline_ProcessFile_SyntaxError(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, "a b")
	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true

	result, err := pipeline.ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.NotNil(t, result.SyntaxError)
	assert.False(t, result.Skipped)
	assert.False(t, result.Modified)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, lint.RuleSyntaxError, result.Diagnostics[0].RuleID)
}

func TestPipeline_ProcessFile_FileNotFound(t *testing.T) {
	t.Parallel()

	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))
	_, err := pipeline.ProcessFile(context.Background(),
		filepath.Join(t.TempDir(), "missing.peggy"), lint.DefaultPipelineOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, lint.ErrFileNotFound))
	assert.True(t, lint.IsPipelineError(err))
}

func TestPipeline_ProcessFile_ContextCancellation(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, sampleGrammar)
	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.ProcessFile(ctx, path, lint.DefaultPipelineOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPipeline_ProcessContent(t *testing.T) {
	t.Parallel()

	pipeline := lint.NewPipeline(newEngine(wordLinter("FOO")))
	opts := lint.PipelineOptions{Fix: true, DryRun: true}

	result, err := pipeline.ProcessContent(context.Background(), "mem.peggy", []byte(sampleGrammar), opts)
	require.NoError(t, err)

	assert.Nil(t, result.Snapshot)
	assert.True(t, result.Modified)
	assert.Equal(t, strings.ReplaceAll(sampleGrammar, "FOO", "foo"), string(result.ModifiedContent))
	require.NotNil(t, result.Diff)
	assert.Equal(t, 2, result.Diff.Additions)
	assert.Equal(t, 2, result.Diff.Deletions)
}

func TestPipelineResult_Summary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result lint.PipelineResult
		want   string
	}{
		{"skipped", lint.PipelineResult{Skipped: true, SkipReason: "why"}, "skipped: why"},
		{"written", lint.PipelineResult{Written: true}, "fixed"},
		{"written with backup", lint.PipelineResult{Written: true, BackupCreated: true}, "fixed (backup created)"},
		{"pending", lint.PipelineResult{Modified: true}, "changes pending"},
		{"issues", lint.PipelineResult{FileResult: &lint.FileResult{Diagnostics: []lint.Diagnostic{{}}}}, "issues found"},
		{"clean", lint.PipelineResult{FileResult: &lint.FileResult{}}, "ok"},
		{"no result", lint.PipelineResult{}, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.result.Summary())
		})
	}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	t.Parallel()

	assert.Equal(t, lint.DefaultPipelineOptions(), lint.PipelineOptionsFromConfig(nil))

	cfg := config.NewConfig()
	cfg.DryRun = true
	opts := lint.PipelineOptionsFromConfig(cfg)
	assert.True(t, opts.Fix, "dry run computes fixes")
	assert.True(t, opts.DryRun)
	assert.True(t, opts.StrictRaceDetection)
	assert.Equal(t, fsutil.DefaultBackupPolicy(), opts.Backup)
}

func TestBackupPolicyFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   fsutil.BackupPolicy
	}{
		{"defaults", func(*config.Config) {}, fsutil.BackupPolicy{Enabled: true, Mode: fsutil.BackupModeSidecar}},
		{"no backups flag", func(c *config.Config) { c.NoBackups = true }, fsutil.BackupPolicy{Enabled: false, Mode: fsutil.BackupModeSidecar}},
		{"disabled", func(c *config.Config) { c.Backups.Enabled = false }, fsutil.BackupPolicy{Enabled: false, Mode: fsutil.BackupModeSidecar}},
		{"mode none", func(c *config.Config) { c.Backups.Mode = "none" }, fsutil.BackupPolicy{Enabled: true, Mode: fsutil.BackupModeNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.mutate(cfg)
			assert.Equal(t, tt.want, lint.BackupPolicyFromConfig(cfg))
		})
	}
}

func TestPipeline_ProcessFile_ConcurrentModification(t *testing.T) {
	t.Parallel()

	path := writeGrammar(t, sampleGrammar)
	edited := strings.Replace(sampleGrammar, "start", "begin", 1)

	// Rewrites the file while the first virtual file is being linted.
	linter := wordLinter("FOO")
	inner := linter.Fn
	written := false
	linter.Fn = func(ctx context.Context, file processor.VirtualFile) ([]processor.Message, error) {
		if !written {
			written = true
			require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))
			later := time.Now().Add(time.Hour)
			require.NoError(t, os.Chtimes(path, later, later))
		}
		return inner(ctx, file)
	}

	opts := lint.DefaultPipelineOptions()
	opts.Fix = true

	result, err := lint.NewPipeline(newEngine(linter)).ProcessFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "file modified during processing", result.SkipReason)
	assert.Equal(t, edited, readFile(t, path))
}
