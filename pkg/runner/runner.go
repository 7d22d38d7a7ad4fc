package runner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/peggylint/internal/logging"
	"github.com/yaklabco/peggylint/pkg/lint"
)

// Runner orchestrates multi-file linting using a lint.Pipeline.
type Runner struct {
	// Pipeline handles per-file processing with safety guarantees.
	Pipeline *lint.Pipeline
}

// New creates a new Runner with the given pipeline.
func New(pipeline *lint.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files under opts.Paths and processes them concurrently.
// Outcomes come back in path order whatever the completion order. A file
// that fails is recorded on its outcome and does not stop the others;
// only cancellation ends the run early.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered grammar files", logging.FieldFilesDiscovered, len(files))

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	pipelineOpts := lint.PipelineOptionsFromConfig(opts.Config)

	// Each worker owns one slot, so no locking is needed.
	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for idx, path := range files {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}

			outcome := FileOutcome{Path: path}
			pr, err := r.Pipeline.ProcessFile(groupCtx, path, pipelineOpts)
			if err != nil {
				outcome.Error = err
				logger.Debug("file failed", logging.FieldPath, path, logging.FieldError, err)
			} else {
				outcome.Result = pr
				logger.Debug("file processed",
					logging.FieldPath, path,
					logging.FieldDiagnosticsTotal, pr.IssueCount(),
					logging.FieldPass, pr.FixPasses,
					logging.FieldEdits, pr.TotalEditsApplied,
				)
			}

			outcomes[idx] = outcome
			done[idx] = true
			return nil
		})
	}

	// Workers never return errors; Wait only joins them.
	_ = group.Wait()

	for idx, outcome := range outcomes {
		if done[idx] {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}

	return result, nil
}
