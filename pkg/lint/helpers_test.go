package lint_test

import (
	"context"
	"strings"

	"github.com/yaklabco/peggylint/pkg/config"
	"github.com/yaklabco/peggylint/pkg/hostlint"
	"github.com/yaklabco/peggylint/pkg/lint"
	"github.com/yaklabco/peggylint/pkg/processor"
)

// wordLinter reports every occurrence of word in a virtual file and offers
// to replace it with its lower-case form.
func wordLinter(word string) hostlint.Func {
	return replaceLinter(word, strings.ToLower(word))
}

// replaceLinter reports every occurrence of word and offers replacement.
func replaceLinter(word, replacement string) hostlint.Func {
	return hostlint.Func{
		LinterName: "fake",
		Fn: func(_ context.Context, file processor.VirtualFile) ([]processor.Message, error) {
			var out []processor.Message
			for offset := 0; ; {
				idx := strings.Index(file.Text[offset:], word)
				if idx < 0 {
					return out, nil
				}
				start := offset + idx
				line, col := position(file.Text, start)
				endLine, endCol := position(file.Text, start+len(word))
				out = append(out, processor.Message{
					RuleID:   "no-" + strings.ToLower(word),
					Severity: config.SeverityError,
					Text:     "Unexpected " + word + ".",
					Line:     line,
					Column:   col,
					End:      &processor.Point{Line: endLine, Column: endCol},
					Fix:      &processor.Edit{Start: start, End: start + len(word), Text: replacement},
				})
				offset = start + len(word)
			}
		},
	}
}

// position returns the 1-based line and column of offset in text.
func position(text string, offset int) (int, int) {
	line := 1 + strings.Count(text[:offset], "\n")
	col := offset - (strings.LastIndexByte(text[:offset], '\n') + 1) + 1
	return line, col
}

func newEngine(linter hostlint.Linter, ignore ...string) *lint.Engine {
	return lint.NewEngine(linter, processor.Options{}, ignore)
}
