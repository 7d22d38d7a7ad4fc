package processor

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/yaklabco/peggylint/pkg/grammar"
	"github.com/yaklabco/peggylint/pkg/langdetect"
	"github.com/yaklabco/peggylint/pkg/sourcechain"
)

// implicitGlobals are available to every action and predicate.
//
//nolint:gochecknoglobals // Read-only.
var implicitGlobals = []string{"input", "options"}

// implicitParams are the helper functions Peggy provides inside actions.
//
//nolint:gochecknoglobals // Read-only.
var implicitParams = []string{"location", "range", "text", "offset", "error", "expected"}

// ruleCode is the code of one rule that has actions, predicates or
// computed repetition counts.
type ruleCode struct {
	name     string
	labels   []*grammar.Ident
	snippets []snippet
}

// snippet is grammar text copied into a rule function.
type snippet struct {
	leaf  sourcechain.Leaf
	start int

	// expr marks a label used as a repetition count. It is wrapped as an
	// expression instead of a function body.
	expr bool
}

// Preprocess extracts the code of g into virtual files and registers their
// chains. filename may be empty for text that did not come from a file.
//
// The top-level initializer, when present, becomes the first file. The
// per-parse initializer and the code of every rule share the next file, one
// function per rule, with the rule's labels declared so unused labels are
// reported. Names the top-level initializer declares are globals of that
// file. A grammar without code yields no files.
func (s *Session) Preprocess(g *grammar.Grammar, filename string) ([]VirtualFile, error) {
	if g == nil {
		g = &grammar.Grammar{}
	}

	rules := collectRuleCode(g)
	language := langdetect.Resolve(s.opts.Language, fragments(g, rules)...)
	ext := langdetect.ExtensionFor(language)

	var shared []string
	if g.TopLevelInitializer != nil {
		shared = declaredNames(g.TopLevelInitializer.Code.Value)
		if g.Initializer != nil {
			local := declaredNames(g.Initializer.Code.Value)
			shared = slices.DeleteFunc(shared, func(name string) bool { return slices.Contains(local, name) })
		}
	}

	var chains []*sourcechain.Chain
	if g.TopLevelInitializer != nil {
		chains = append(chains, topLevelChain(g.TopLevelInitializer, shared))
	}
	if g.Initializer != nil || len(rules) > 0 {
		chains = append(chains, s.rulesChain(g.Initializer, rules, shared))
	}

	return s.register(filename, ext, chains)
}

// topLevelChain wraps the top-level initializer. The names it shares with
// the rules file are read once at the end so they are not reported unused.
func topLevelChain(init *grammar.Initializer, shared []string) *sourcechain.Chain {
	chain := sourcechain.New()
	chain.AddLeaf(init.Code)
	chain.Add("\n", nil)
	if len(shared) > 0 {
		chain.Add(fmt.Sprintf(";[%s];\n", strings.Join(shared, ", ")), nil)
	}
	return chain
}

func (s *Session) rulesChain(init *grammar.Initializer, rules []ruleCode, shared []string) *sourcechain.Chain {
	chain := sourcechain.New()
	chain.Add(fmt.Sprintf("/* global %s */\n", strings.Join(s.globals(shared), ", ")), nil)

	if init != nil {
		chain.AddLeaf(init.Code)
		chain.Add("\n", nil)
	}

	for _, rule := range rules {
		chain.Add(fmt.Sprintf("\nfunction peg$rule_%s(%s) {\n", rule.name, strings.Join(rule.params(), ", ")), nil)

		// Mapped text always starts a generated line: a position at the end of
		// scaffolding on the same line resolves to the scaffolding.
		if len(rule.labels) > 0 {
			chain.Add("  let\n", nil)
			for idx, label := range rule.labels {
				chain.AddLeaf(label)
				if idx < len(rule.labels)-1 {
					chain.Add(",\n", nil)
				} else {
					chain.Add(";\n", nil)
				}
			}
		}

		for _, code := range rule.snippets {
			if code.expr {
				chain.Add("  (() => (\n", nil)
				chain.AddLeaf(code.leaf)
				chain.Add("\n  ))();\n", nil)
				continue
			}
			chain.Add("  (() => {\n", nil)
			chain.AddLeaf(code.leaf)
			chain.Add("\n  })();\n", nil)
		}

		chain.Add("}\n", nil)
	}

	return chain
}

// params returns the helper functions declared as parameters of the rule's
// function. A label with the same name shadows the helper, as it does in
// the generated parser, so the helper is left out.
func (r *ruleCode) params() []string {
	return slices.DeleteFunc(slices.Clone(implicitParams), func(param string) bool {
		return slices.ContainsFunc(r.labels, func(label *grammar.Ident) bool { return label.Name == param })
	})
}

// globals returns the implicit globals, the configured ones and extra,
// without duplicates.
func (s *Session) globals(extra []string) []string {
	out := make([]string, 0, len(implicitGlobals)+len(s.opts.Globals)+len(extra))
	seen := make(map[string]bool)
	for _, name := range slices.Concat(implicitGlobals, s.opts.Globals, extra) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// collectRuleCode returns, in grammar order, every rule containing an
// action, a semantic predicate or a repetition count that is not a
// constant. Labels keep their first occurrence; snippets are sorted by
// position in the grammar.
func collectRuleCode(g *grammar.Grammar) []ruleCode {
	var rules []ruleCode

	for _, rule := range g.Rules {
		collected := ruleCode{name: rule.Name.Name}
		seen := make(map[string]bool)

		grammar.Walk(rule.Expression, func(e grammar.Expression) bool {
			switch node := e.(type) {
			case *grammar.Labeled:
				if node.Label != nil && !seen[node.Label.Name] {
					seen[node.Label.Name] = true
					collected.labels = append(collected.labels, node.Label)
				}
			case *grammar.Action:
				collected.add(node.Code, false)
			case *grammar.SemanticPredicate:
				collected.add(node.Code, false)
			case *grammar.Repeated:
				collected.addBoundary(node.Min)
				if node.Max != node.Min {
					collected.addBoundary(node.Max)
				}
			}
			return true
		})

		if len(collected.snippets) == 0 {
			continue
		}
		sort.SliceStable(collected.snippets, func(i, j int) bool {
			return collected.snippets[i].start < collected.snippets[j].start
		})
		rules = append(rules, collected)
	}

	return rules
}

func (r *ruleCode) add(leaf sourcechain.Leaf, expr bool) {
	r.snippets = append(r.snippets, snippet{leaf: leaf, start: leaf.Origin().Offset, expr: expr})
}

func (r *ruleCode) addBoundary(b *grammar.Boundary) {
	switch {
	case b == nil:
	case b.Code != nil:
		r.add(b.Code, false)
	case b.Label != nil:
		r.add(b.Label, true)
	}
}

// fragments returns every piece of code in g.
func fragments(g *grammar.Grammar, rules []ruleCode) []string {
	var out []string
	if g.TopLevelInitializer != nil {
		out = append(out, g.TopLevelInitializer.Code.Value)
	}
	if g.Initializer != nil {
		out = append(out, g.Initializer.Code.Value)
	}
	for _, rule := range rules {
		for _, code := range rule.snippets {
			if !code.expr {
				out = append(out, code.leaf.Text())
			}
		}
	}
	return out
}
