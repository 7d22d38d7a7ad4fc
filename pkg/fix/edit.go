// Package fix applies autofix edits to grammar files and renders the
// resulting changes as unified diffs.
package fix

// TextEdit replaces the bytes [StartOffset, EndOffset) of a file with NewText.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// IsInsertion reports whether the edit replaces nothing.
func (e TextEdit) IsInsertion() bool {
	return e.StartOffset == e.EndOffset
}

// Delta is the change in file length the edit causes.
func (e TextEdit) Delta() int {
	return len(e.NewText) - (e.EndOffset - e.StartOffset)
}
