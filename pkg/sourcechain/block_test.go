package sourcechain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/peggylint/pkg/sourcechain"
)

func TestNewBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantLines int
		wantTail  int
	}{
		{"empty", "", 0, 0},
		{"single line", "abc", 0, 3},
		{"complete line", "abc\n", 1, 0},
		{"incomplete second line", "a\nbc", 1, 2},
		{"crlf counts once", "a\r\nb\r\n", 2, 0},
		{"only newlines", "\n\n\n", 3, 0},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			block := sourcechain.NewBlock(testCase.text, nil)
			assert.Equal(t, testCase.text, block.Text())
			assert.Equal(t, testCase.wantLines, block.LineCount())
			assert.Equal(t, testCase.wantTail, block.TailLength())
		})
	}
}

func TestBlockLocation(t *testing.T) {
	t.Parallel()

	t.Run("boilerplate", func(t *testing.T) {
		t.Parallel()

		block := sourcechain.NewBlock("function() {", nil)
		assert.True(t, block.IsBoilerplate())
		assert.Equal(t, sourcechain.Unknown, block.Line())
		assert.Equal(t, sourcechain.Unknown, block.Column())

		_, ok := block.Location()
		assert.False(t, ok)
	})

	t.Run("column zero is known", func(t *testing.T) {
		t.Parallel()

		block := sourcechain.NewBlock("x", &sourcechain.Location{
			Start:  sourcechain.Position{Line: 4, Column: 0},
			Offset: 12,
		})
		assert.False(t, block.IsBoilerplate())
		assert.Equal(t, 4, block.Line())
		assert.Equal(t, 0, block.Column())
	})

	t.Run("location is copied", func(t *testing.T) {
		t.Parallel()

		loc := &sourcechain.Location{Source: "a.peggy", Start: sourcechain.Position{Line: 2, Column: 3}}
		block := sourcechain.NewBlock("x", loc)
		loc.Start.Line = 99

		got, ok := block.Location()
		assert.True(t, ok)
		assert.Equal(t, 2, got.Start.Line)
		assert.Equal(t, "a.peggy", got.Source)
	})
}
