package sourcechain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPosition is returned when a generated position lies beyond
	// the end of the chain.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrInvalidOffset is returned when a generated offset lies beyond the
	// end of the chain.
	ErrInvalidOffset = errors.New("invalid offset")
)

// Chain is an ordered sequence of Blocks making up one generated file.
//
// A Chain is grown with Add and AddLeaf while the file is being generated and
// must not be modified once its text has been handed out. The read-only
// methods are safe for concurrent use after that point.
type Chain struct {
	blocks []Block
	length int
	lines  int
}

// New returns an empty Chain.
func New() *Chain {
	return &Chain{lines: 1}
}

// Add appends text. A nil loc marks the text as boilerplate.
func (c *Chain) Add(text string, loc *Location) {
	block := NewBlock(text, loc)
	c.blocks = append(c.blocks, block)
	c.length += len(text)
	c.lines += block.lineCount
}

// AddLeaf appends the text of a syntax node, using the node's own origin as
// the location.
func (c *Chain) AddLeaf(leaf Leaf) {
	loc := leaf.Origin()
	c.Add(leaf.Text(), &loc)
}

// String returns the generated text.
func (c *Chain) String() string {
	var builder strings.Builder
	builder.Grow(c.length)
	for _, block := range c.blocks {
		builder.WriteString(block.text)
	}
	return builder.String()
}

// Len returns the length of the generated text in bytes.
func (c *Chain) Len() int {
	return c.length
}

// LineCount returns the number of lines in the generated text. Text ending
// in a line break has a final empty line.
func (c *Chain) LineCount() int {
	return c.lines
}

// Blocks returns a copy of the blocks in order.
func (c *Chain) Blocks() []Block {
	out := make([]Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// MapPosition translates a position in the generated text to the original
// file. The boolean is false when the position falls on boilerplate.
//
// Several blocks may share a generated line. A position on the last,
// incomplete line of a block whose column is past that block's text belongs
// to a block appended later on the same line. On the first generated line of
// a block the column is shifted by the block's original start column; on
// later lines it is kept as is, since those lines were copied verbatim.
func (c *Chain) MapPosition(pos Position) (Position, bool, error) {
	if pos.Line < 1 || pos.Column < 0 {
		return Position{}, false, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}

	line := 1
	// Generated column at which the current block starts.
	col := 0

	for _, block := range c.blocks {
		next := line + block.lineCount
		covers := pos.Line < next || (block.tailLength > 0 && pos.Line == next)

		if covers {
			lineOffset := pos.Line - line
			tailStart := col
			if block.lineCount > 0 {
				tailStart = 0
			}

			if block.tailLength == 0 || lineOffset != block.lineCount || pos.Column <= tailStart+block.tailLength {
				if block.loc == nil {
					return Position{}, false, nil
				}
				mapped := Position{
					Line:   block.loc.Start.Line + lineOffset,
					Column: pos.Column,
				}
				if lineOffset == 0 {
					mapped.Column = block.loc.Start.Column + pos.Column - col
				}
				return mapped, true, nil
			}
		}

		if block.lineCount > 0 {
			col = block.tailLength
		} else {
			col += block.tailLength
		}
		line = next
	}

	// The final line of the text, past every block's content.
	if pos.Line <= c.lines {
		return Position{}, false, nil
	}

	return Position{}, false, fmt.Errorf("%w: %s (text has %d lines)", ErrInvalidPosition, pos, c.lines)
}

// MapOffset translates a byte offset in the generated text to the original
// file. The boolean is false when the offset falls on boilerplate. An offset
// equal to the text length resolves against the end of the last block.
func (c *Chain) MapOffset(offset int) (int, bool, error) {
	if offset < 0 || offset > c.length {
		return 0, false, fmt.Errorf("%w: %d (text length %d)", ErrInvalidOffset, offset, c.length)
	}

	cur := 0
	for _, block := range c.blocks {
		next := cur + len(block.text)
		if offset < next {
			if block.loc == nil {
				return 0, false, nil
			}
			return block.loc.Offset + offset - cur, true, nil
		}
		cur = next
	}

	// offset == length.
	for i := len(c.blocks) - 1; i >= 0; i-- {
		block := c.blocks[i]
		if block.text == "" {
			continue
		}
		if block.loc == nil {
			return 0, false, nil
		}
		return block.loc.Offset + len(block.text), true, nil
	}

	return 0, false, nil
}
