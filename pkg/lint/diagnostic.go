// Package lint checks the code embedded in Peggy grammars with a host
// linter and reports the findings against the grammar file.
package lint

import (
	"cmp"
	"slices"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/fix"
	"github.com/yaklabco/peggylint/pkg/grammar"
	"github.com/yaklabco/peggylint/pkg/processor"
)

// RuleSyntaxError is the rule ID of diagnostics for grammars that do not parse.
const RuleSyntaxError = "peggy-syntax"

// SourcePeggy marks diagnostics produced by peggylint itself rather than
// the host linter.
const SourcePeggy = "peggy"

// Diagnostic represents a single lint issue found in a grammar file.
type Diagnostic struct {
	// RuleID is the host linter rule (e.g., "no-unused-vars").
	RuleID string

	// Source names the tool that reported the issue ("eslint", "peggy").
	Source string

	// Message is the human-readable description of the issue.
	Message string

	// MessageID is the linter's stable message key, when it has one.
	MessageID string

	// Severity indicates the importance of the diagnostic.
	Severity config.Severity

	// FilePath is the path to the grammar file containing the issue.
	FilePath string

	// StartLine and StartColumn are 1-based.
	StartLine   int
	StartColumn int

	// EndLine and EndColumn are 1-based; zero when the linter gave no end
	// or the end fell outside grammar text.
	EndLine   int
	EndColumn int

	// FixEdits contains the text edits to fix this issue (may be empty).
	FixEdits []fix.TextEdit
}

// HasFix returns true if this diagnostic has associated fix edits.
func (d *Diagnostic) HasFix() bool {
	return len(d.FixEdits) > 0
}

// HasEnd reports whether the diagnostic carries an end position.
func (d *Diagnostic) HasEnd() bool {
	return d.EndLine > 0
}

// fromMessage converts a message already mapped onto the grammar file.
func fromMessage(path, source string, msg processor.Message) Diagnostic {
	diag := Diagnostic{
		RuleID:      msg.RuleID,
		Source:      source,
		Message:     msg.Text,
		MessageID:   msg.MessageID,
		Severity:    msg.Severity,
		FilePath:    path,
		StartLine:   msg.Line,
		StartColumn: msg.Column,
	}
	if msg.End != nil {
		diag.EndLine = msg.End.Line
		diag.EndColumn = msg.End.Column
	}
	if msg.Fix != nil {
		diag.FixEdits = []fix.TextEdit{{
			StartOffset: msg.Fix.Start,
			EndOffset:   msg.Fix.End,
			NewText:     msg.Fix.Text,
		}}
	}
	return diag
}

// fromSyntaxError reports a grammar that failed to parse.
func fromSyntaxError(path string, err *grammar.SyntaxError) Diagnostic {
	return Diagnostic{
		RuleID:      RuleSyntaxError,
		Source:      SourcePeggy,
		Message:     err.Message,
		Severity:    config.SeverityError,
		FilePath:    path,
		StartLine:   err.Pos.Line,
		StartColumn: err.Pos.Column + 1,
	}
}

// SortDiagnostics orders diagnostics by position, then rule ID. Diagnostics
// at the same place keep their relative order.
func SortDiagnostics(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.StartLine, b.StartLine),
			cmp.Compare(a.StartColumn, b.StartColumn),
			cmp.Compare(a.RuleID, b.RuleID),
		)
	})
}
