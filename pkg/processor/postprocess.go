package processor

import (
	"fmt"

	"github.com/yaklabco/peggylint/pkg/sourcechain"
)

// Postprocess maps diagnostics reported against the virtual files of
// filename back onto the grammar file. messages[i] holds the diagnostics of
// the i-th virtual file returned by Preprocess.
//
// Diagnostics starting in generated scaffolding are dropped. An end position
// in scaffolding is cleared. A fix is cleared unless its whole range maps
// onto one contiguous run of grammar text. The output keeps the input order.
//
// A non-empty list for a virtual file that was never registered yields a
// *MappingNotFoundError. Positions or offsets outside a virtual file are
// reported as errors wrapping sourcechain.ErrInvalidPosition or
// sourcechain.ErrInvalidOffset.
func (s *Session) Postprocess(filename string, messages [][]Message) ([]Message, error) {
	var out []Message

	for idx, list := range messages {
		if len(list) == 0 {
			continue
		}

		name := s.virtualName(filename, idx)
		chain, ok := s.Chain(name)
		if !ok {
			return nil, &MappingNotFoundError{Name: name}
		}

		for _, msg := range list {
			mapped, keep, err := remapMessage(chain, msg)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", name, msg.RuleID, err)
			}
			if keep {
				out = append(out, mapped)
			}
		}
	}

	return out, nil
}

// remapMessage returns msg in grammar coordinates, or false when it starts in
// scaffolding.
func remapMessage(chain *sourcechain.Chain, msg Message) (Message, bool, error) {
	start, ok, err := chain.MapPosition(toPosition(msg.Line, msg.Column))
	if err != nil || !ok {
		return Message{}, false, err
	}

	out := msg
	out.Line = start.Line
	out.Column = start.Column + 1
	out.End = nil
	out.Fix = nil

	if msg.End != nil {
		end, ok, err := chain.MapPosition(toPosition(msg.End.Line, msg.End.Column))
		if err != nil {
			return Message{}, false, err
		}
		if ok {
			out.End = &Point{Line: end.Line, Column: end.Column + 1}
		}
	}

	if msg.Fix != nil {
		fix, err := remapEdit(chain, *msg.Fix)
		if err != nil {
			return Message{}, false, err
		}
		out.Fix = fix
	}

	return out, true, nil
}

// toPosition converts a 1-based linter column. Column 0, which some parsers
// report for errors at the start of a line, is treated as column 1.
func toPosition(line, column int) sourcechain.Position {
	return sourcechain.Position{Line: line, Column: max(column-1, 0)}
}

// remapEdit returns edit in grammar offsets, or nil when its range touches
// scaffolding or spans more than one run of grammar text.
func remapEdit(chain *sourcechain.Chain, edit Edit) (*Edit, error) {
	if edit.End < edit.Start {
		return nil, nil
	}

	if edit.Start == edit.End {
		at, ok, err := mapInsertion(chain, edit.Start)
		if err != nil || !ok {
			return nil, err
		}
		return &Edit{Start: at, End: at, Text: edit.Text}, nil
	}

	start, ok, err := chain.MapOffset(edit.Start)
	if err != nil || !ok {
		return nil, err
	}
	last, ok, err := chain.MapOffset(edit.End - 1)
	if err != nil || !ok {
		return nil, err
	}

	end := last + 1
	if end-start != edit.End-edit.Start {
		// Both ends map, but into different runs of grammar text.
		return nil, nil
	}
	return &Edit{Start: start, End: end, Text: edit.Text}, nil
}

// mapInsertion maps an insertion point. A point just after grammar text that
// is followed by scaffolding still belongs to that text.
func mapInsertion(chain *sourcechain.Chain, offset int) (int, bool, error) {
	at, ok, err := chain.MapOffset(offset)
	if err != nil || ok || offset == 0 {
		return at, ok, err
	}

	prev, ok, err := chain.MapOffset(offset - 1)
	if err != nil || !ok {
		return 0, false, err
	}
	return prev + 1, true, nil
}
