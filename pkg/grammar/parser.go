package grammar

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yaklabco/peggylint/pkg/sourcechain"
)

// SyntaxError describes a grammar that could not be parsed.
type SyntaxError struct {
	Source  string
	Pos     sourcechain.Position
	Offset  int
	Message string
}

// Error implements the error interface. Columns are shown 1-based.
func (e *SyntaxError) Error() string {
	name := e.Source
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", name, e.Pos.Line, e.Pos.Column+1, e.Message)
}

// Parse parses the Peggy grammar in content. source names the file in node
// locations and errors; it may be empty.
//
// Code blocks end at the first unbalanced closing brace; braces inside
// strings or comments in the code are not special.
func Parse(source string, content []byte) (*Grammar, error) {
	p := &parser{
		source: source,
		src:    content,
		lines:  newLineIndex(content),
	}
	return p.parseGrammar()
}

const bom = "\uFEFF"

type parser struct {
	source string
	src    []byte
	pos    int
	lines  lineIndex
}

func (p *parser) span(start, end int) Span {
	return Span{
		Loc: Loc{
			Source: p.source,
			Start:  p.lines.position(start),
			End:    p.lines.position(end),
		},
		Range: Range{Start: start, End: end},
	}
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{
		Source:  p.source,
		Pos:     p.lines.position(offset),
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(prefix string) bool {
	return bytes.HasPrefix(p.src[p.pos:], []byte(prefix))
}

// skip consumes whitespace and comments.
func (p *parser) skip() error {
	for !p.eof() {
		switch {
		case p.hasPrefix("//"):
			idx := bytes.IndexByte(p.src[p.pos:], '\n')
			if idx < 0 {
				p.pos = len(p.src)
			} else {
				p.pos += idx
			}
		case p.hasPrefix("/*"):
			idx := bytes.Index(p.src[p.pos+2:], []byte("*/"))
			if idx < 0 {
				return p.errorf(p.pos, "unterminated comment")
			}
			p.pos += idx + 4
		case p.hasPrefix(bom):
			p.pos += len(bom)
		default:
			r, size := utf8.DecodeRune(p.src[p.pos:])
			if !unicode.IsSpace(r) {
				return nil
			}
			p.pos += size
		}
	}
	return nil
}

func (p *parser) parseGrammar() (*Grammar, error) {
	grammar := &Grammar{Span: p.span(0, len(p.src))}

	if err := p.skip(); err != nil {
		return nil, err
	}

	if p.hasPrefix("{{") {
		init, err := p.parseTopLevelInitializer()
		if err != nil {
			return nil, err
		}
		grammar.TopLevelInitializer = init
		if err := p.skip(); err != nil {
			return nil, err
		}
	}

	if p.peek() == '{' {
		start := p.pos
		code, end, err := p.parseCodeBlock()
		if err != nil {
			return nil, err
		}
		grammar.Initializer = &Initializer{Span: p.span(start, end), Code: code}
		if err := p.parseEOS(); err != nil {
			return nil, err
		}
	}

	for !p.eof() {
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		grammar.Rules = append(grammar.Rules, rule)
		if err := p.skip(); err != nil {
			return nil, err
		}
	}

	if len(grammar.Rules) == 0 {
		return nil, p.errorf(p.pos, "grammar has no rules")
	}

	return grammar, nil
}

func (p *parser) parseEOS() error {
	if err := p.skip(); err != nil {
		return err
	}
	if p.peek() == ';' {
		p.pos++
		return p.skip()
	}
	return nil
}

func (p *parser) parseTopLevelInitializer() (*Initializer, error) {
	start := p.pos
	p.pos += len("{{")

	code, err := p.parseCode(start)
	if err != nil {
		return nil, err
	}
	if !p.hasPrefix("}}") {
		return nil, p.errorf(p.pos, `expected "}}"`)
	}
	p.pos += len("}}")
	end := p.pos

	if err := p.parseEOS(); err != nil {
		return nil, err
	}
	return &Initializer{Span: p.span(start, end), Code: code}, nil
}

// parseCodeBlock parses { code } and returns the code and the offset just
// past the closing brace.
func (p *parser) parseCodeBlock() (*Code, int, error) {
	open := p.pos
	p.pos++

	code, err := p.parseCode(open)
	if err != nil {
		return nil, 0, err
	}
	if p.peek() != '}' {
		return nil, 0, p.errorf(open, "unterminated code block")
	}
	p.pos++
	return code, p.pos, nil
}

func (p *parser) parseCode(open int) (*Code, error) {
	start := p.pos
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return &Code{Span: p.span(start, p.pos), Value: string(p.src[start:p.pos])}, nil
			}
			depth--
		}
	}
	return nil, p.errorf(open, "unterminated code block")
}

func (p *parser) parseRule() (*Rule, error) {
	start := p.pos

	name := p.parseIdent()
	if name == nil {
		return nil, p.unexpected("rule name")
	}
	if err := p.skip(); err != nil {
		return nil, err
	}

	rule := &Rule{Name: name}
	if c := p.peek(); c == '"' || c == '\'' {
		display, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		rule.DisplayName = display
		if err := p.skip(); err != nil {
			return nil, err
		}
	}

	if p.peek() != '=' {
		return nil, p.unexpected(`"="`)
	}
	p.pos++
	if err := p.skip(); err != nil {
		return nil, err
	}

	expr, err := p.parseChoice()
	if err != nil {
		return nil, err
	}
	rule.Expression = expr
	rule.Span = p.span(start, p.pos)

	if err := p.parseEOS(); err != nil {
		return nil, err
	}
	return rule, nil
}

func (p *parser) unexpected(expected string) error {
	if p.eof() {
		return p.errorf(p.pos, "expected %s, found end of input", expected)
	}
	r, _ := utf8.DecodeRune(p.src[p.pos:])
	return p.errorf(p.pos, "expected %s, found %q", expected, r)
}

func (p *parser) parseChoice() (Expression, error) {
	start := p.pos

	first, err := p.parseAction()
	if err != nil {
		return nil, err
	}
	alternatives := []Expression{first}

	for {
		save := p.pos
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.peek() != '/' {
			p.pos = save
			break
		}
		p.pos++
		if err := p.skip(); err != nil {
			return nil, err
		}
		alt, err := p.parseAction()
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, alt)
	}

	if len(alternatives) == 1 {
		return first, nil
	}
	return &Choice{Span: p.span(start, p.pos), Alternatives: alternatives}, nil
}

func (p *parser) parseAction() (Expression, error) {
	start := p.pos

	expr, err := p.parseSequence()
	if err != nil {
		return nil, err
	}

	save := p.pos
	if err := p.skip(); err != nil {
		return nil, err
	}
	if p.peek() != '{' {
		p.pos = save
		return expr, nil
	}

	code, end, err := p.parseCodeBlock()
	if err != nil {
		return nil, err
	}
	return &Action{Span: p.span(start, end), Expression: expr, Code: code}, nil
}

func (p *parser) parseSequence() (Expression, error) {
	start := p.pos

	first, err := p.parseLabeled()
	if err != nil {
		return nil, err
	}
	elements := []Expression{first}

	for {
		save := p.pos
		if err := p.skip(); err != nil {
			return nil, err
		}
		if !p.startsElement() {
			p.pos = save
			break
		}
		elem, err := p.parseLabeled()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}

	if len(elements) == 1 {
		return first, nil
	}
	return &Sequence{Span: p.span(start, p.pos), Elements: elements}, nil
}

// startsElement reports whether the input at the current position begins
// another sequence element rather than ending the sequence.
func (p *parser) startsElement() bool {
	switch p.peek() {
	case '"', '\'', '[', '.', '(', '@', '$', '&', '!':
		return true
	}
	r, _ := utf8.DecodeRune(p.src[p.pos:])
	return !p.eof() && isIdentStart(r) && !p.atRuleStart()
}

// atRuleStart reports whether the input begins a new rule definition.
func (p *parser) atRuleStart() bool {
	save := p.pos
	defer func() { p.pos = save }()

	if p.parseIdent() == nil {
		return false
	}
	if p.skip() != nil {
		return false
	}
	if c := p.peek(); c == '"' || c == '\'' {
		if _, err := p.parseLiteral(); err != nil {
			return false
		}
		if p.skip() != nil {
			return false
		}
	}
	return p.peek() == '='
}

func (p *parser) parseLabeled() (Expression, error) {
	start := p.pos

	pick := false
	if p.peek() == '@' {
		pick = true
		p.pos++
		if err := p.skip(); err != nil {
			return nil, err
		}
	}

	label, err := p.tryLabel()
	if err != nil {
		return nil, err
	}

	expr, err := p.parsePrefixed()
	if err != nil {
		return nil, err
	}

	if !pick && label == nil {
		return expr, nil
	}
	return &Labeled{Span: p.span(start, p.pos), Label: label, Pick: pick, Expression: expr}, nil
}

// tryLabel consumes "name:" if present.
func (p *parser) tryLabel() (*Ident, error) {
	save := p.pos

	ident := p.parseIdent()
	if ident == nil {
		return nil, nil
	}
	if err := p.skip(); err != nil {
		return nil, err
	}
	if p.peek() != ':' {
		p.pos = save
		return nil, nil
	}
	p.pos++
	if err := p.skip(); err != nil {
		return nil, err
	}
	return ident, nil
}

func (p *parser) parsePrefixed() (Expression, error) {
	start := p.pos

	var op PrefixOperator
	switch p.peek() {
	case '$':
		op = PrefixText
	case '&':
		op = PrefixSimpleAnd
	case '!':
		op = PrefixSimpleNot
	default:
		return p.parseSuffixed()
	}

	save := p.pos
	p.pos++
	if err := p.skip(); err != nil {
		return nil, err
	}
	if op != PrefixText && p.peek() == '{' {
		// Semantic predicate.
		p.pos = save
		return p.parseSuffixed()
	}

	expr, err := p.parseSuffixed()
	if err != nil {
		return nil, err
	}
	return &Prefixed{Span: p.span(start, p.pos), Operator: op, Expression: expr}, nil
}

func (p *parser) parseSuffixed() (Expression, error) {
	start := p.pos

	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	save := p.pos
	if err := p.skip(); err != nil {
		return nil, err
	}

	switch c := p.peek(); c {
	case '?', '*', '+':
		p.pos++
		return &Suffixed{Span: p.span(start, p.pos), Operator: SuffixOperator(string(c)), Expression: expr}, nil
	case '|':
		repeated, err := p.parseRepeated(start, expr)
		if err != nil {
			return nil, err
		}
		if repeated != nil {
			return repeated, nil
		}
	}

	p.pos = save
	return expr, nil
}

// parseRepeated parses |min..max, delimiter| after expr. It returns nil
// without consuming input when the bar does not begin valid boundaries.
func (p *parser) parseRepeated(start int, expr Expression) (Expression, error) {
	save := p.pos
	p.pos++
	if err := p.skip(); err != nil {
		return nil, err
	}

	minimum, maximum, ok, err := p.parseBoundaries()
	if err != nil {
		return nil, err
	}
	if !ok {
		p.pos = save
		return nil, nil
	}
	if err := p.skip(); err != nil {
		return nil, err
	}

	var delimiter Expression
	if p.peek() == ',' {
		p.pos++
		if err := p.skip(); err != nil {
			return nil, err
		}
		delimiter, err = p.parseChoice()
		if err != nil {
			return nil, err
		}
		if err := p.skip(); err != nil {
			return nil, err
		}
	}

	if p.peek() != '|' {
		if delimiter == nil {
			p.pos = save
			return nil, nil
		}
		return nil, p.unexpected(`"|"`)
	}
	p.pos++

	return &Repeated{
		Span:       p.span(start, p.pos),
		Expression: expr,
		Min:        minimum,
		Max:        maximum,
		Delimiter:  delimiter,
	}, nil
}

func (p *parser) parseBoundaries() (*Boundary, *Boundary, bool, error) {
	minimum, err := p.parseBoundary()
	if err != nil {
		return nil, nil, false, err
	}

	save := p.pos
	if err := p.skip(); err != nil {
		return nil, nil, false, err
	}
	if p.hasPrefix("..") {
		p.pos += len("..")
		if err := p.skip(); err != nil {
			return nil, nil, false, err
		}
		maximum, err := p.parseBoundary()
		if err != nil {
			return nil, nil, false, err
		}
		return minimum, maximum, true, nil
	}
	p.pos = save

	if minimum != nil {
		return minimum, minimum, true, nil
	}
	return nil, nil, false, nil
}

// parseBoundary parses an integer, a label name or a code block. It returns
// nil without consuming input when none is present.
func (p *parser) parseBoundary() (*Boundary, error) {
	start := p.pos

	switch c := p.peek(); {
	case c >= '0' && c <= '9':
		value, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		return &Boundary{Span: p.span(start, p.pos), Value: value}, nil
	case c == '{':
		code, end, err := p.parseCodeBlock()
		if err != nil {
			return nil, err
		}
		return &Boundary{Span: p.span(start, end), Code: code}, nil
	}

	if ident := p.parseIdent(); ident != nil {
		return &Boundary{Span: ident.Span, Label: ident}, nil
	}
	return nil, nil
}

func (p *parser) parseInt() (int, error) {
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	value, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, p.errorf(start, "invalid repetition count: %v", err)
	}
	return value, nil
}

func (p *parser) parsePrimary() (Expression, error) {
	start := p.pos

	switch c := p.peek(); c {
	case '"', '\'':
		return p.parseLiteral()
	case '[':
		return p.parseClass()
	case '.':
		p.pos++
		return &Any{Span: p.span(start, p.pos)}, nil
	case '(':
		p.pos++
		if err := p.skip(); err != nil {
			return nil, err
		}
		expr, err := p.parseChoice()
		if err != nil {
			return nil, err
		}
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.unexpected(`")"`)
		}
		p.pos++
		return &Group{Span: p.span(start, p.pos), Expression: expr}, nil
	case '&', '!':
		p.pos++
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.peek() != '{' {
			return nil, p.unexpected("code block")
		}
		code, end, err := p.parseCodeBlock()
		if err != nil {
			return nil, err
		}
		return &SemanticPredicate{Span: p.span(start, end), Not: c == '!', Code: code}, nil
	}

	if ident := p.parseIdent(); ident != nil {
		return &RuleRef{Span: ident.Span, Name: ident.Name}, nil
	}
	return nil, p.unexpected("expression")
}

func (p *parser) parseIdent() *Ident {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRune(p.src[p.pos:])
		if p.pos == start && !isIdentStart(r) {
			break
		}
		if p.pos > start && !isIdentPart(r) {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		return nil
	}
	return &Ident{Span: p.span(start, p.pos), Name: string(p.src[start:p.pos])}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc) ||
		r == '\u200C' || r == '\u200D'
}

func (p *parser) parseLiteral() (*Literal, error) {
	start := p.pos
	quote := p.peek()
	p.pos++

	var value strings.Builder
	rawStart := p.pos
	for {
		if p.eof() || p.peek() == '\n' {
			return nil, p.errorf(start, "unterminated string literal")
		}
		c := p.peek()
		if c == quote {
			break
		}
		if c != '\\' {
			value.WriteByte(c)
			p.pos++
			continue
		}
		if err := p.decodeEscape(&value); err != nil {
			return nil, err
		}
	}
	raw := string(p.src[rawStart:p.pos])
	p.pos++

	literal := &Literal{Value: value.String(), Raw: raw, Quote: quote}
	if p.peek() == 'i' {
		literal.IgnoreCase = true
		p.pos++
	}
	literal.Span = p.span(start, p.pos)
	return literal, nil
}

// decodeEscape consumes a backslash escape and writes its value.
func (p *parser) decodeEscape(out *strings.Builder) error {
	start := p.pos
	p.pos++
	if p.eof() {
		return p.errorf(start, "unterminated escape sequence")
	}

	c := p.peek()
	p.pos++
	switch c {
	case 'n':
		out.WriteByte('\n')
	case 't':
		out.WriteByte('\t')
	case 'r':
		out.WriteByte('\r')
	case 'b':
		out.WriteByte('\b')
	case 'f':
		out.WriteByte('\f')
	case 'v':
		out.WriteByte('\v')
	case '0':
		out.WriteByte(0)
	case '\n':
		// Line continuation.
	case 'x', 'u':
		digits := 2
		if c == 'u' {
			digits = 4
		}
		if p.pos+digits > len(p.src) {
			return p.errorf(start, "invalid escape sequence")
		}
		code, err := strconv.ParseUint(string(p.src[p.pos:p.pos+digits]), 16, 32)
		if err != nil {
			return p.errorf(start, "invalid escape sequence")
		}
		p.pos += digits
		out.WriteRune(rune(code))
	default:
		out.WriteByte(c)
	}
	return nil
}

func (p *parser) parseClass() (*Class, error) {
	start := p.pos
	p.pos++

	class := &Class{}
	if p.peek() == '^' {
		class.Inverted = true
		p.pos++
	}

	rawStart := p.pos
	for {
		if p.eof() || p.peek() == '\n' {
			return nil, p.errorf(start, "unterminated character class")
		}
		c := p.peek()
		if c == ']' {
			break
		}
		if c == '\\' {
			p.pos++
			if p.eof() {
				continue
			}
		}
		p.pos++
	}
	class.Raw = string(p.src[rawStart:p.pos])
	p.pos++

	if p.peek() == 'i' {
		class.IgnoreCase = true
		p.pos++
	}
	class.Span = p.span(start, p.pos)
	return class, nil
}
