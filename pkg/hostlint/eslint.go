package hostlint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"slices"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/processor"
)

// ruleParseError names diagnostics ESLint reports without a rule, which are
// fatal parse errors.
const ruleParseError = "parse-error"

// Runner executes a command with stdin and returns its output and exit
// code. A non-zero exit status is not an error.
type Runner func(ctx context.Context, name string, args []string, stdin []byte) (stdout, stderr []byte, exitCode int, err error)

// ESLint runs eslint over stdin and decodes its JSON formatter output.
type ESLint struct {
	command         string
	args            []string
	defaultSeverity config.Severity
	run             Runner
}

// ESLintOption configures an ESLint backend.
type ESLintOption func(*ESLint)

// WithRunner replaces process execution.
func WithRunner(run Runner) ESLintOption {
	return func(e *ESLint) {
		e.run = run
	}
}

// WithDefaultSeverity sets the severity of messages whose level is unknown.
func WithDefaultSeverity(severity config.Severity) ESLintOption {
	return func(e *ESLint) {
		if severity.IsValid() {
			e.defaultSeverity = severity
		}
	}
}

// NewESLint creates an ESLint backend.
func NewESLint(cfg config.LinterConfig, opts ...ESLintOption) *ESLint {
	command := cfg.Command
	if command == "" {
		command = config.LinterESLint
	}

	e := &ESLint{
		command:         command,
		args:            slices.Clone(cfg.Args),
		defaultSeverity: config.SeverityWarning,
		run:             execRunner,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Linter.
func (e *ESLint) Name() string {
	return config.LinterESLint
}

// Lint implements Linter. ESLint exits with 1 when it reports problems;
// any other non-zero status is a failure.
func (e *ESLint) Lint(ctx context.Context, file processor.VirtualFile) ([]processor.Message, error) {
	args := append(slices.Clone(e.args),
		"--stdin",
		"--stdin-filename", file.Name,
		"--format", "json",
	)

	stdout, stderr, exitCode, err := e.run(ctx, e.command, args, []byte(file.Text))
	if err != nil {
		return nil, &ExecError{Command: e.command, Stderr: string(stderr), Err: err}
	}
	if exitCode != 0 && exitCode != 1 {
		return nil, &ExecError{Command: e.command, ExitCode: exitCode, Stderr: string(stderr)}
	}

	return decodeESLint(stdout, file.Text, e.defaultSeverity)
}

// eslintResult is one element of ESLint's JSON formatter output.
type eslintResult struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID    *string    `json:"ruleId"`
	Severity  int        `json:"severity"`
	Message   string     `json:"message"`
	MessageID string     `json:"messageId"`
	Line      int        `json:"line"`
	Column    int        `json:"column"`
	EndLine   *int       `json:"endLine"`
	EndColumn *int       `json:"endColumn"`
	Fatal     bool       `json:"fatal"`
	Fix       *eslintFix `json:"fix"`
}

type eslintFix struct {
	Range [2]int `json:"range"`
	Text  string `json:"text"`
}

// decodeESLint converts ESLint JSON into messages in byte coordinates of text.
func decodeESLint(data []byte, text string, defaultSeverity config.Severity) ([]processor.Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var results []eslintResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadOutput, err)
	}

	idx := newUTF16Index(text)

	var out []processor.Message
	for _, result := range results {
		for _, m := range result.Messages {
			msg := processor.Message{
				RuleID:    ruleParseError,
				Severity:  severityOf(m.Severity, defaultSeverity),
				Text:      m.Message,
				MessageID: m.MessageID,
				Line:      m.Line,
				Column:    idx.column(m.Line, m.Column),
			}
			if m.RuleID != nil {
				msg.RuleID = *m.RuleID
			}
			if m.EndLine != nil && m.EndColumn != nil {
				msg.End = &processor.Point{Line: *m.EndLine, Column: idx.column(*m.EndLine, *m.EndColumn)}
			}
			if m.Fix != nil {
				msg.Fix = &processor.Edit{
					Start: idx.offset(m.Fix.Range[0]),
					End:   idx.offset(m.Fix.Range[1]),
					Text:  m.Fix.Text,
				}
			}
			out = append(out, msg)
		}
	}

	return out, nil
}

func severityOf(level int, fallback config.Severity) config.Severity {
	switch level {
	case 2:
		return config.SeverityError
	case 1:
		return config.SeverityWarning
	default:
		return fallback
	}
}

// execRunner runs name as a child process.
func execRunner(ctx context.Context, name string, args []string, stdin []byte) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return stdout.Bytes(), stderr.Bytes(), -1, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}
