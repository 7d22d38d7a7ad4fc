package grammar

import (
	"sort"

	"github.com/yaklabco/peggylint/pkg/sourcechain"
)

// lineIndex converts byte offsets to line/column positions.
type lineIndex struct {
	// starts holds the offset of the first byte of every line.
	starts []int
}

func newLineIndex(content []byte) lineIndex {
	starts := []int{0}
	for idx, char := range content {
		if char == '\n' {
			starts = append(starts, idx+1)
		}
	}
	return lineIndex{starts: starts}
}

// position returns the 1-based line and 0-based byte column of offset.
// Offsets past the end resolve on the last line.
func (li lineIndex) position(offset int) sourcechain.Position {
	lineIdx := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	return sourcechain.Position{
		Line:   lineIdx + 1,
		Column: offset - li.starts[lineIdx],
	}
}
