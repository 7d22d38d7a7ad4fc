package hostlint

import (
	"unicode/utf8"
)

// utf16Index converts ESLint coordinates, which count UTF-16 code units,
// into byte coordinates of the same text.
type utf16Index struct {
	text       string
	lineStarts []int
}

func newUTF16Index(text string) utf16Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return utf16Index{text: text, lineStarts: starts}
}

// column converts a 1-based UTF-16 column on a 1-based line into a 1-based
// byte column. Unknown lines are returned unchanged.
func (u utf16Index) column(line, column int) int {
	if line < 1 || line > len(u.lineStarts) || column < 1 {
		return column
	}
	start := u.lineStarts[line-1]
	return bytesFor(u.text[start:], column-1) + 1
}

// offset converts a 0-based UTF-16 offset into a byte offset.
func (u utf16Index) offset(units int) int {
	if units <= 0 {
		return units
	}
	return bytesFor(u.text, units)
}

// bytesFor returns how many bytes of s the first units UTF-16 code units
// cover. A count ending between the halves of a surrogate pair is rounded
// down to the start of that character. Counting continues past the end of s
// one byte per unit so out-of-range input stays out of range.
func bytesFor(s string, units int) int {
	pos := 0
	for units > 0 && pos < len(s) {
		r, size := utf8.DecodeRuneInString(s[pos:])
		width := 1
		if r >= 0x10000 {
			width = 2
		}
		if width > units {
			return pos
		}
		units -= width
		pos += size
	}
	return pos + units
}
