package fix

import "bytes"

// ApplyEdits applies edits prepared with PrepareEdits to content and
// returns the modified content.
func ApplyEdits(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out bytes.Buffer
	out.Grow(max(len(content)+delta, 0))

	cursor := 0
	for _, e := range edits {
		out.Write(content[cursor:e.StartOffset])
		out.WriteString(e.NewText)
		cursor = e.EndOffset
	}
	out.Write(content[cursor:])

	return out.Bytes()
}

// Apply prepares and applies edits in one step. It returns the modified
// content and the edits left over because they conflicted.
func Apply(content []byte, edits []TextEdit) ([]byte, []TextEdit, error) {
	accepted, skipped, err := PrepareEdits(edits, len(content))
	if err != nil {
		return nil, nil, err
	}
	return ApplyEdits(content, accepted), skipped, nil
}
