package lint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/fix"
	"github.com/yaklabco/peggylint/pkg/fsutil"
	"github.com/yaklabco/peggylint/pkg/grammar"
)

// DefaultMaxFixPasses is the maximum number of fix passes to prevent infinite loops.
// Host linters skip touching fixes within one pass, so a few passes are normal.
const DefaultMaxFixPasses = 10

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrParseFailure indicates the grammar could not be read as a grammar.
	ErrParseFailure = errors.New("parse failure")

	// ErrLinterFailure indicates the host linter failed or its output could
	// not be mapped.
	ErrLinterFailure = errors.New("linter failure")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// PipelineResult contains the result of processing a single file through the safety pipeline.
type PipelineResult struct {
	// FileResult contains lint diagnostics and edits from the FINAL pass.
	*FileResult

	// Path is the file path that was processed.
	Path string

	// Snapshot is the file state before processing (nil for in-memory content).
	Snapshot *fsutil.Snapshot

	// Modified is true if the file content was changed.
	Modified bool

	// ModifiedContent is the new content after applying edits (nil if not modified).
	ModifiedContent []byte

	// Diff is the unified diff of the fixes (nil if not modified).
	Diff *fix.Diff

	// Skipped is true if the fix was abandoned and the file left untouched.
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	// BackupCreated is true if a backup was created for this file.
	BackupCreated bool

	// Written is true if the file was written to disk.
	Written bool

	// FixPasses is the number of fix passes that applied edits.
	FixPasses int

	// TotalEditsApplied is the total number of edits applied across all passes.
	TotalEditsApplied int
}

// Summary returns a human-readable summary of the pipeline result.
func (pr *PipelineResult) Summary() string {
	if pr.Skipped {
		return "skipped: " + pr.SkipReason
	}
	if pr.Written {
		if pr.BackupCreated {
			return "fixed (backup created)"
		}
		return "fixed"
	}
	if pr.Modified {
		return "changes pending"
	}
	if pr.FileResult != nil && pr.HasIssues() {
		return "issues found"
	}
	return "ok"
}

// PipelineOptions controls safety pipeline behavior.
type PipelineOptions struct {
	// Fix enables auto-fix mode.
	Fix bool

	// DryRun generates diffs without writing files.
	DryRun bool

	// Backup configures backup behavior.
	Backup fsutil.BackupPolicy

	// StrictRaceDetection compares content hashes before writing.
	// When false, only mod time and size are checked.
	StrictRaceDetection bool

	// MaxFixPasses limits the number of fix iterations.
	// Set to 0 to use DefaultMaxFixPasses.
	MaxFixPasses int
}

// DefaultPipelineOptions returns sensible defaults.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Backup:              fsutil.DefaultBackupPolicy(),
		StrictRaceDetection: true,
	}
}

// Pipeline orchestrates the safe processing of a single file.
type Pipeline struct {
	// Engine extracts, lints and maps back.
	Engine *Engine
}

// NewPipeline creates a new safety pipeline with the given engine.
func NewPipeline(engine *Engine) *Pipeline {
	return &Pipeline{Engine: engine}
}

// ProcessFile runs the full safety pipeline for a single file.
//
// The pipeline performs the following steps:
//  1. Read and snapshot the original file.
//  2. Lint, and in fix mode apply edits and lint again until stable.
//  3. Check that the fixed content is still a grammar.
//  4. Generate diff (if dry-run mode).
//  5. Check for concurrent modifications.
//  6. Create backup (if enabled).
//  7. Write the modified content atomically.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts PipelineOptions) (*PipelineResult, error) {
	original, snapshot, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := p.ProcessContent(ctx, path, original, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snapshot

	if !result.Modified || opts.DryRun {
		return result, nil
	}

	changed, err := snapshot.Changed(ctx, opts.StrictRaceDetection)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if changed {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		return result, nil
	}

	created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	result.BackupCreated = created

	if err := fsutil.WriteAtomic(ctx, path, result.ModifiedContent, snapshot.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	return result, nil
}

// ProcessContent runs the lint and fix steps over in-memory content without
// file I/O. In dry-run mode the result carries a diff.
func (p *Pipeline) ProcessContent(
	ctx context.Context,
	path string,
	original []byte,
	opts PipelineOptions,
) (*PipelineResult, error) {
	result := &PipelineResult{Path: path}

	maxPasses := opts.MaxFixPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxFixPasses
	}

	content := original
	var fileResult *FileResult

	for range maxPasses {
		var err error
		fileResult, err = p.Engine.LintFile(ctx, path, content)
		if err != nil {
			return nil, err
		}

		if fileResult.SyntaxError != nil && result.Modified {
			return skipFix(result, fileResult, "fixes broke the grammar: "+fileResult.SyntaxError.Message), nil
		}

		if !opts.Fix || len(fileResult.Edits) == 0 {
			break
		}

		content = fix.ApplyEdits(content, fileResult.Edits)
		result.FixPasses++
		result.TotalEditsApplied += len(fileResult.Edits)
		result.Modified = true
	}

	result.FileResult = fileResult
	if !result.Modified {
		return result, nil
	}

	// The last pass may have applied edits without linting the outcome.
	if _, err := grammar.Parse(path, content); err != nil {
		return skipFix(result, fileResult, "fixes broke the grammar: "+err.Error()), nil
	}
	result.ModifiedContent = content
	result.Diff = fix.GenerateDiff(path, original, content)

	return result, nil
}

// skipFix abandons the fixes applied so far.
func skipFix(result *PipelineResult, fileResult *FileResult, reason string) *PipelineResult {
	result.FileResult = fileResult
	result.Skipped = true
	result.SkipReason = reason
	result.Modified = false
	result.ModifiedContent = nil
	return result
}

// categorizeError wraps an error with the appropriate pipeline error type.
func categorizeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}

	if errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	return err
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrLinterFailure) ||
		errors.Is(err, ErrWriteFailure)
}

// BackupPolicyFromConfig creates an fsutil.BackupPolicy from config.Config.
func BackupPolicyFromConfig(cfg *config.Config) fsutil.BackupPolicy {
	if cfg == nil {
		return fsutil.DefaultBackupPolicy()
	}
	return fsutil.BackupPolicy{
		Enabled: cfg.Backups.Enabled && !cfg.NoBackups,
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}

// PipelineOptionsFromConfig creates PipelineOptions from config.Config.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	if cfg == nil {
		return DefaultPipelineOptions()
	}
	return PipelineOptions{
		Fix:                 cfg.Fix || cfg.DryRun,
		DryRun:              cfg.DryRun,
		Backup:              BackupPolicyFromConfig(cfg),
		StrictRaceDetection: true,
	}
}
