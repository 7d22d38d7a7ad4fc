// Package grammar provides the Peggy grammar syntax tree consumed by the
// processor, and a parser producing it.
//
// Expression kinds form a closed set. Code that must handle every kind
// implements Visitor, so adding a kind is a compile error everywhere it is
// not yet handled.
package grammar

import "github.com/yaklabco/peggylint/pkg/sourcechain"

// Loc is the line/column extent of a node in its source file.
type Loc struct {
	Source string
	Start  sourcechain.Position
	End    sourcechain.Position
}

// Range is a half-open byte range [Start, End) in the source file.
type Range struct {
	Start int
	End   int
}

// Span is embedded by every node.
type Span struct {
	Loc   Loc
	Range Range
}

// Extent returns the span itself; it makes every node satisfy Node.
func (s Span) Extent() Span {
	return s
}

// Node is any syntax tree node.
type Node interface {
	Extent() Span
}

// Grammar is the root of a parsed grammar file.
type Grammar struct {
	Span

	// TopLevelInitializer is the {{ ... }} block run once per generated
	// parser. May be nil.
	TopLevelInitializer *Initializer

	// Initializer is the { ... } block run once per parse. May be nil.
	Initializer *Initializer

	Rules []*Rule
}

// Initializer is a grammar-level code block.
type Initializer struct {
	Span
	Code *Code
}

// Rule is a named rule definition.
type Rule struct {
	Span
	Name *Ident

	// DisplayName is the optional human-readable name. May be nil.
	DisplayName *Literal

	Expression Expression
}

// Ident is a rule name or label.
type Ident struct {
	Span
	Name string
}

// Text implements sourcechain.Leaf.
func (i *Ident) Text() string {
	return i.Name
}

// Origin implements sourcechain.Leaf.
func (i *Ident) Origin() sourcechain.Location {
	return origin(i.Span)
}

// Code is the text between the braces of a code block. Its span covers the
// text only, not the braces.
type Code struct {
	Span
	Value string
}

// Text implements sourcechain.Leaf.
func (c *Code) Text() string {
	return c.Value
}

// Origin implements sourcechain.Leaf.
func (c *Code) Origin() sourcechain.Location {
	return origin(c.Span)
}

func origin(span Span) sourcechain.Location {
	return sourcechain.Location{
		Source: span.Loc.Source,
		Start:  span.Loc.Start,
		Offset: span.Range.Start,
	}
}

// Expression is one of the expression node types in this package.
type Expression interface {
	Node

	// Accept calls the Visitor method for the concrete kind.
	Accept(v Visitor)

	expression()
}

// Visitor has one method per expression kind.
type Visitor interface {
	VisitChoice(e *Choice)
	VisitAction(e *Action)
	VisitSequence(e *Sequence)
	VisitLabeled(e *Labeled)
	VisitPrefixed(e *Prefixed)
	VisitSuffixed(e *Suffixed)
	VisitRepeated(e *Repeated)
	VisitGroup(e *Group)
	VisitSemanticPredicate(e *SemanticPredicate)
	VisitRuleRef(e *RuleRef)
	VisitLiteral(e *Literal)
	VisitClass(e *Class)
	VisitAny(e *Any)
}

// Choice is an ordered choice: a / b / c.
type Choice struct {
	Span
	Alternatives []Expression
}

// Action is an expression followed by a code block.
type Action struct {
	Span
	Expression Expression
	Code       *Code
}

// Sequence is two or more expressions matched in order.
type Sequence struct {
	Span
	Elements []Expression
}

// Labeled is label:expr, @expr or @label:expr.
type Labeled struct {
	Span

	// Label is nil for an anonymous pluck (@expr).
	Label *Ident

	// Pick is true when the expression was marked with @.
	Pick bool

	Expression Expression
}

// PrefixOperator is the operator of a Prefixed expression.
type PrefixOperator string

// Prefix operators.
const (
	PrefixText      PrefixOperator = "$"
	PrefixSimpleAnd PrefixOperator = "&"
	PrefixSimpleNot PrefixOperator = "!"
)

// Prefixed is $expr, &expr or !expr.
type Prefixed struct {
	Span
	Operator   PrefixOperator
	Expression Expression
}

// SuffixOperator is the operator of a Suffixed expression.
type SuffixOperator string

// Suffix operators.
const (
	SuffixOptional   SuffixOperator = "?"
	SuffixZeroOrMore SuffixOperator = "*"
	SuffixOneOrMore  SuffixOperator = "+"
)

// Suffixed is expr?, expr* or expr+.
type Suffixed struct {
	Span
	Operator   SuffixOperator
	Expression Expression
}

// Repeated is expr|min..max, delimiter|. Nil bounds are open. An exact
// count such as expr|3| has the same Boundary as Min and Max.
type Repeated struct {
	Span
	Expression Expression
	Min        *Boundary
	Max        *Boundary

	// Delimiter is matched between repetitions. May be nil.
	Delimiter Expression
}

// Boundary is one bound of a Repeated expression: a constant, a label
// defined earlier in the sequence, or code returning the count. At most one
// of Label and Code is set; with neither, Value holds the constant.
type Boundary struct {
	Span
	Value int
	Label *Ident
	Code  *Code
}

// IsConstant reports whether the bound is an integer literal.
func (b *Boundary) IsConstant() bool {
	return b.Label == nil && b.Code == nil
}

// Group is a parenthesized expression.
type Group struct {
	Span
	Expression Expression
}

// SemanticPredicate is &{ code } or !{ code }.
type SemanticPredicate struct {
	Span
	Not  bool
	Code *Code
}

// RuleRef is a reference to another rule.
type RuleRef struct {
	Span
	Name string
}

// Literal is a quoted string, optionally case-insensitive.
type Literal struct {
	Span

	// Value is the decoded string.
	Value string

	// Raw is the text between the quotes, escapes untouched.
	Raw string

	// Quote is the quote character used in the source.
	Quote byte

	IgnoreCase bool
}

// Class is a character class such as [a-z].
type Class struct {
	Span

	// Raw is the text between the brackets, without a leading ^.
	Raw string

	Inverted   bool
	IgnoreCase bool
}

// Any is the dot matcher.
type Any struct {
	Span
}

func (e *Choice) Accept(v Visitor)            { v.VisitChoice(e) }
func (e *Action) Accept(v Visitor)            { v.VisitAction(e) }
func (e *Sequence) Accept(v Visitor)          { v.VisitSequence(e) }
func (e *Labeled) Accept(v Visitor)           { v.VisitLabeled(e) }
func (e *Prefixed) Accept(v Visitor)          { v.VisitPrefixed(e) }
func (e *Suffixed) Accept(v Visitor)          { v.VisitSuffixed(e) }
func (e *Repeated) Accept(v Visitor)          { v.VisitRepeated(e) }
func (e *Group) Accept(v Visitor)             { v.VisitGroup(e) }
func (e *SemanticPredicate) Accept(v Visitor) { v.VisitSemanticPredicate(e) }
func (e *RuleRef) Accept(v Visitor)           { v.VisitRuleRef(e) }
func (e *Literal) Accept(v Visitor)           { v.VisitLiteral(e) }
func (e *Class) Accept(v Visitor)             { v.VisitClass(e) }
func (e *Any) Accept(v Visitor)               { v.VisitAny(e) }

func (*Choice) expression()            {}
func (*Action) expression()            {}
func (*Sequence) expression()          {}
func (*Labeled) expression()           {}
func (*Prefixed) expression()          {}
func (*Suffixed) expression()          {}
func (*Repeated) expression()          {}
func (*Group) expression()             {}
func (*SemanticPredicate) expression() {}
func (*RuleRef) expression()           {}
func (*Literal) expression()           {}
func (*Class) expression()             {}
func (*Any) expression()               {}
