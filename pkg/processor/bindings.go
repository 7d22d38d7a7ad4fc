package processor

import (
	"slices"
	"unicode"
	"unicode/utf8"
)

// declarationKeywords introduce a binding named by the next identifier.
//
//nolint:gochecknoglobals // Read-only.
var declarationKeywords = []string{"function", "class", "var", "let", "const"}

// declaredNames returns the names code declares at its outermost level with
// function, class, var, let and const, in order and without duplicates.
// Comma-separated declarators are followed; destructuring patterns are not.
//
// The scan skips strings, template literals and comments, and counts
// brackets to stay at the outermost level. It does not parse the code, so a
// regular expression literal holding a quote or bracket can hide the names
// that follow it.
func declaredNames(code string) []string {
	scan := &declScanner{src: code}
	scan.run()
	return scan.names
}

type declScanner struct {
	src   string
	pos   int
	depth int
	names []string

	// inList is set inside a var, let or const statement, where a comma at
	// the outermost level starts another declarator.
	inList bool
}

func (s *declScanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '/' && s.hasPrefix("//"):
			s.skipUntil("\n")
		case c == '/' && s.hasPrefix("/*"):
			s.pos += 2
			s.skipUntil("*/")
		case c == '"' || c == '\'' || c == '`':
			s.skipString(c)
		case c == '(' || c == '[' || c == '{':
			s.depth++
			s.pos++
		case c == ')' || c == ']' || c == '}':
			s.depth = max(s.depth-1, 0)
			s.pos++
		case c == ';' && s.depth == 0:
			s.inList = false
			s.pos++
		case c == ',' && s.depth == 0 && s.inList:
			s.pos++
			s.skipSpace()
			s.addName()
		default:
			r, size := utf8.DecodeRuneInString(s.src[s.pos:])
			if !isIDStart(r) {
				s.pos += size
				continue
			}
			word := s.word()
			if s.depth == 0 && slices.Contains(declarationKeywords, word) {
				s.declare(word)
			}
		}
	}
}

// declare reads the name following keyword.
func (s *declScanner) declare(keyword string) {
	s.skipSpace()
	if keyword == "function" && s.hasPrefix("*") {
		s.pos++
		s.skipSpace()
	}
	s.addName()
	s.inList = keyword == "var" || keyword == "let" || keyword == "const"
}

func (s *declScanner) addName() {
	if s.pos >= len(s.src) {
		return
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	if !isIDStart(r) {
		return
	}
	name := s.word()
	if !slices.Contains(declarationKeywords, name) && !slices.Contains(s.names, name) {
		s.names = append(s.names, name)
	}
}

func (s *declScanner) word() string {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !isIDStart(r) && !unicode.IsDigit(r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos]
}

func (s *declScanner) skipString(quote byte) {
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case quote:
			s.pos++
			return
		case '\n':
			if quote != '`' {
				return
			}
		}
		s.pos++
	}
}

func (s *declScanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

func (s *declScanner) skipUntil(end string) {
	for s.pos < len(s.src) && !s.hasPrefix(end) {
		s.pos++
	}
	s.pos = min(s.pos+len(end), len(s.src))
}

func (s *declScanner) hasPrefix(prefix string) bool {
	return len(s.src)-s.pos >= len(prefix) && s.src[s.pos:s.pos+len(prefix)] == prefix
}

func isIDStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}
