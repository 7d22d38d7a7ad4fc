package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/fix"
	"github.com/yaklabco/peggylint/pkg/grammar"
	"github.com/yaklabco/peggylint/pkg/hostlint"
	"github.com/yaklabco/peggylint/pkg/processor"
)

// FileResult contains the results of linting a single file.
type FileResult struct {
	// Path is the grammar file.
	Path string

	// Content is the grammar text the diagnostics refer to.
	Content []byte

	// VirtualFiles are the code segments handed to the host linter.
	VirtualFiles []processor.VirtualFile

	// SyntaxError is set when the grammar does not parse. The host linter
	// does not run then, and Diagnostics holds a single syntax diagnostic.
	SyntaxError *grammar.SyntaxError

	// Diagnostics contains all issues found, ordered by position.
	Diagnostics []Diagnostic

	// Edits contains validated, sorted edits for auto-fix.
	Edits []fix.TextEdit

	// SkippedEdits contains edits that conflicted with earlier ones.
	// They may apply in a later fix pass.
	SkippedEdits []fix.TextEdit

	// EditConflicts is true if any edits were skipped due to conflicts.
	EditConflicts bool
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// HasFixes returns true if any fixes are available.
func (fr *FileResult) HasFixes() bool {
	return len(fr.Edits) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// Line returns the text of 1-based line n without its line ending, or ""
// when n is out of range.
func (fr *FileResult) Line(n int) string {
	if n < 1 {
		return ""
	}
	rest := fr.Content
	for range n - 1 {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			return ""
		}
		rest = rest[idx+1:]
	}
	if idx := bytes.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.TrimSuffix(string(rest), "\r")
}

// FixableCount returns the number of diagnostics with fixes.
func (fr *FileResult) FixableCount() int {
	count := 0
	for i := range fr.Diagnostics {
		if fr.Diagnostics[i].HasFix() {
			count++
		}
	}
	return count
}

// Engine extracts embedded code from grammars, runs the host linter over
// it and maps the findings back. One Engine may lint many files
// concurrently.
type Engine struct {
	// Linter checks the virtual files.
	Linter hostlint.Linter

	// Session holds the mappings of files currently being linted.
	Session *processor.Session

	// IgnoreRules are host rule IDs or glob patterns ("@typescript-eslint/*")
	// whose diagnostics are dropped.
	IgnoreRules []string

	opts processor.Options

	ignoreOnce  sync.Once
	ignoreGlobs []glob.Glob
}

// NewEngine creates an Engine that extracts code according to opts.
func NewEngine(linter hostlint.Linter, opts processor.Options, ignoreRules []string) *Engine {
	return &Engine{
		Linter:      linter,
		Session:     processor.NewSession(opts),
		IgnoreRules: ignoreRules,
		opts:        opts,
	}
}

// NewEngineFromConfig builds the configured host linter and an Engine around it.
func NewEngineFromConfig(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	linter, err := hostlint.New(cfg.Linter, config.Severity(cfg.SeverityDefault))
	if err != nil {
		return nil, err
	}

	opts := processor.Options{
		Language: cfg.Linter.Language,
		Globals:  cfg.Linter.Globals,
	}
	return NewEngine(linter, opts, cfg.Linter.IgnoreRules), nil
}

// Extract parses content and returns its virtual files without linting them.
// It does not touch the Engine's Session.
func (e *Engine) Extract(path string, content []byte) ([]processor.VirtualFile, error) {
	g, err := grammar.Parse(path, content)
	if err != nil {
		return nil, err
	}
	return processor.NewSession(e.opts).Preprocess(g, path)
}

// LintFile parses and lints a single grammar.
func (e *Engine) LintFile(ctx context.Context, path string, content []byte) (*FileResult, error) {
	result := &FileResult{Path: path, Content: content}

	g, err := grammar.Parse(path, content)
	if err != nil {
		var synErr *grammar.SyntaxError
		if !errors.As(err, &synErr) {
			return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
		}
		result.SyntaxError = synErr
		result.Diagnostics = []Diagnostic{fromSyntaxError(path, synErr)}
		return result, nil
	}

	files, err := e.Session.Preprocess(g, path)
	if err != nil {
		return nil, fmt.Errorf("extract code: %w", err)
	}
	defer e.Session.Release(path)
	result.VirtualFiles = files

	messages := make([][]processor.Message, len(files))
	for idx, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("linting cancelled: %w", err)
		}

		msgs, err := e.Linter.Lint(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLinterFailure, e.Linter.Name(), err)
		}
		messages[idx] = msgs
	}

	mapped, err := e.Session.Postprocess(path, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLinterFailure, err)
	}

	var allEdits []fix.TextEdit
	for _, msg := range mapped {
		if e.ignored(msg.RuleID) {
			continue
		}
		diag := fromMessage(path, e.Linter.Name(), msg)
		allEdits = append(allEdits, diag.FixEdits...)
		result.Diagnostics = append(result.Diagnostics, diag)
	}
	SortDiagnostics(result.Diagnostics)

	if len(allEdits) > 0 {
		accepted, skipped, err := fix.PrepareEdits(allEdits, len(content))
		if err != nil {
			// Keep the diagnostics; a bad edit only disables fixing.
			result.EditConflicts = true
		} else {
			result.Edits = accepted
			result.SkippedEdits = skipped
			result.EditConflicts = len(skipped) > 0
		}
	}

	return result, nil
}

// ignored reports whether diagnostics of ruleID are dropped. Patterns that
// do not compile only match literally.
func (e *Engine) ignored(ruleID string) bool {
	e.ignoreOnce.Do(func() {
		for _, pattern := range e.IgnoreRules {
			if g, err := glob.Compile(pattern); err == nil {
				e.ignoreGlobs = append(e.ignoreGlobs, g)
			}
		}
	})

	for _, pattern := range e.IgnoreRules {
		if pattern == ruleID {
			return true
		}
	}
	for _, g := range e.ignoreGlobs {
		if g.Match(ruleID) {
			return true
		}
	}
	return false
}
