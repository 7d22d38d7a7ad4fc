package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/peggylint/pkg/fix"
)

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		edits   []fix.TextEdit
		want    string
	}{
		{
			name:    "empty edits returns original",
			content: "start = 'a' { return 1 }",
			want:    "start = 'a' { return 1 }",
		},
		{
			name:    "insert semicolon",
			content: "start = 'a' { return 1 }",
			edits:   []fix.TextEdit{{StartOffset: 22, EndOffset: 22, NewText: ";"}},
			want:    "start = 'a' { return 1; }",
		},
		{
			name:    "replace keyword",
			content: "{ var x = 1; }",
			edits:   []fix.TextEdit{{StartOffset: 2, EndOffset: 5, NewText: "const"}},
			want:    "{ const x = 1; }",
		},
		{
			name:    "delete range",
			content: "{ x;; }",
			edits:   []fix.TextEdit{{StartOffset: 4, EndOffset: 5}},
			want:    "{ x; }",
		},
		{
			name:    "several edits in order",
			content: "{ var a = 1 }\nr = { var b = 2 }",
			edits: []fix.TextEdit{
				{StartOffset: 2, EndOffset: 5, NewText: "let"},
				{StartOffset: 11, EndOffset: 11, NewText: ";"},
				{StartOffset: 20, EndOffset: 23, NewText: "let"},
			},
			want: "{ let a = 1; }\nr = { let b = 2 }",
		},
		{
			name:    "insert at end",
			content: "a",
			edits:   []fix.TextEdit{{StartOffset: 1, EndOffset: 1, NewText: "\n"}},
			want:    "a\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := fix.ApplyEdits([]byte(tt.content), tt.edits)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	content := []byte("{ foo() }")
	edits := []fix.TextEdit{
		{StartOffset: 7, EndOffset: 7, NewText: ";"},
		{StartOffset: 2, EndOffset: 5, NewText: "bar"},
		{StartOffset: 7, EndOffset: 7, NewText: ","},
	}

	got, skipped, err := fix.Apply(content, edits)
	require.NoError(t, err)
	assert.Equal(t, "{ bar(); }", string(got))
	assert.Equal(t, []fix.TextEdit{{StartOffset: 7, EndOffset: 7, NewText: ","}}, skipped)
	assert.Equal(t, "{ foo() }", string(content), "input is not modified")

	_, _, err = fix.Apply(content, []fix.TextEdit{{StartOffset: 3, EndOffset: 99}})
	require.Error(t, err)
}

func TestTextEdit(t *testing.T) {
	t.Parallel()

	insert := fix.TextEdit{StartOffset: 3, EndOffset: 3, NewText: ";"}
	assert.True(t, insert.IsInsertion())
	assert.Equal(t, 1, insert.Delta())

	remove := fix.TextEdit{StartOffset: 3, EndOffset: 7}
	assert.False(t, remove.IsInsertion())
	assert.Equal(t, -4, remove.Delta())
}
