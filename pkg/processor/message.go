package processor

import "github.com/yaklabco/peggylint/pkg/config"

// Point is a line/column pair as reported by host linters: both 1-based.
type Point struct {
	Line   int
	Column int
}

// Edit replaces the half-open byte range [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Message is one host linter diagnostic.
//
// Line and Column are 1-based. End and Fix are optional; a nil End means the
// diagnostic has no end position and a nil Fix means it has no autofix.
type Message struct {
	RuleID    string
	Severity  config.Severity
	Text      string
	MessageID string

	Line   int
	Column int

	End *Point
	Fix *Edit
}

// HasFix reports whether the message carries an autofix.
func (m Message) HasFix() bool {
	return m.Fix != nil
}
