package grammar

// WalkFunc is called for each expression during a walk. Returning false
// skips the children of that expression.
type WalkFunc func(e Expression) bool

// Walk performs a pre-order traversal of the expression tree rooted at root.
func Walk(root Expression, walkFunc WalkFunc) {
	if root == nil {
		return
	}
	if !walkFunc(root) {
		return
	}
	for _, child := range Children(root) {
		Walk(child, walkFunc)
	}
}

// WalkRules walks the expression of every rule in order.
func WalkRules(g *Grammar, walkFunc func(rule *Rule, e Expression) bool) {
	if g == nil {
		return
	}
	for _, rule := range g.Rules {
		Walk(rule.Expression, func(e Expression) bool {
			return walkFunc(rule, e)
		})
	}
}

// Children returns the direct sub-expressions of e in source order.
func Children(e Expression) []Expression {
	collector := &childCollector{}
	e.Accept(collector)
	return collector.children
}

type childCollector struct {
	children []Expression
}

func (c *childCollector) add(exprs ...Expression) {
	for _, e := range exprs {
		if e != nil {
			c.children = append(c.children, e)
		}
	}
}

func (c *childCollector) VisitChoice(e *Choice)     { c.add(e.Alternatives...) }
func (c *childCollector) VisitAction(e *Action)     { c.add(e.Expression) }
func (c *childCollector) VisitSequence(e *Sequence) { c.add(e.Elements...) }
func (c *childCollector) VisitLabeled(e *Labeled)   { c.add(e.Expression) }
func (c *childCollector) VisitPrefixed(e *Prefixed) { c.add(e.Expression) }
func (c *childCollector) VisitSuffixed(e *Suffixed) { c.add(e.Expression) }
func (c *childCollector) VisitRepeated(e *Repeated) { c.add(e.Expression, e.Delimiter) }
func (c *childCollector) VisitGroup(e *Group)       { c.add(e.Expression) }

func (*childCollector) VisitSemanticPredicate(*SemanticPredicate) {}
func (*childCollector) VisitRuleRef(*RuleRef)                     {}
func (*childCollector) VisitLiteral(*Literal)                     {}
func (*childCollector) VisitClass(*Class)                         {}
func (*childCollector) VisitAny(*Any)                             {}
