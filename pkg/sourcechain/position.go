// Package sourcechain maps positions in generated text back to the original
// file the text was extracted from.
//
// Generated text is built as a Chain of Blocks. A Block either carries the
// Location of the original text it was copied from, or is boilerplate with no
// original counterpart. Lines start at 1, columns and offsets start at 0, and
// both columns and offsets count bytes.
package sourcechain

import "fmt"

// Unknown is returned by Block accessors when the block has no Location.
const Unknown = -1

// Position is a line/column pair. Line is 1-based, Column is 0-based.
type Position struct {
	Line   int
	Column int
}

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Location records where a run of generated text came from.
type Location struct {
	// Source identifies the original file. May be empty.
	Source string

	// Start is the position of the first byte of the run.
	Start Position

	// Offset is the byte offset of the first byte of the run.
	Offset int
}

// Leaf is implemented by syntax nodes whose text is a verbatim copy of a
// contiguous range of the original file.
type Leaf interface {
	// Text returns the original text of the node.
	Text() string

	// Origin returns where the text starts in the original file.
	Origin() Location
}
