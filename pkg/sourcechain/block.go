package sourcechain

import "strings"

// Block is an immutable run of generated text.
type Block struct {
	text       string
	loc        *Location
	lineCount  int
	tailLength int
}

// NewBlock creates a Block. A nil loc marks the text as boilerplate.
func NewBlock(text string, loc *Location) Block {
	block := Block{
		text:       text,
		lineCount:  strings.Count(text, "\n"),
		tailLength: len(text) - (strings.LastIndexByte(text, '\n') + 1),
	}
	if loc != nil {
		copied := *loc
		block.loc = &copied
	}
	return block
}

// Text returns the generated text.
func (b Block) Text() string {
	return b.text
}

// Location returns the original location of the block, if any.
func (b Block) Location() (Location, bool) {
	if b.loc == nil {
		return Location{}, false
	}
	return *b.loc, true
}

// IsBoilerplate reports whether the block has no original location.
func (b Block) IsBoilerplate() bool {
	return b.loc == nil
}

// LineCount returns the number of line breaks inside the text.
// A CRLF pair counts once.
func (b Block) LineCount() int {
	return b.lineCount
}

// TailLength returns the length of the text after the last line break, or
// the length of the whole text if there is none. A block with a zero tail is
// complete: the next block starts on a fresh line.
func (b Block) TailLength() int {
	return b.tailLength
}

// Line returns the original start line, or Unknown.
func (b Block) Line() int {
	if b.loc == nil {
		return Unknown
	}
	return b.loc.Start.Line
}

// Column returns the original start column, or Unknown.
func (b Block) Column() int {
	if b.loc == nil {
		return Unknown
	}
	return b.loc.Start.Column
}
