package taxinvoice

import (
	"fmt"
	"strings"
)

// DependencyGraph maps derived fields to the fields they are computed from.
// It is built once from a declared rule list and is read-only afterwards.
type DependencyGraph struct {
	rules      []DerivationRule
	byTarget   map[FieldName]int
	dependents map[FieldName][]int
}

// NewDependencyGraph builds a graph from rules in declared order.
// Duplicate targets, self references and cycles are programming errors and panic.
func NewDependencyGraph(rules ...DerivationRule) *DependencyGraph {
	g := &DependencyGraph{
		rules:      make([]DerivationRule, len(rules)),
		byTarget:   make(map[FieldName]int, len(rules)),
		dependents: make(map[FieldName][]int),
	}
	copy(g.rules, rules)

	for i, rule := range g.rules {
		if rule.Formula == nil {
			panic(fmt.Sprintf("taxinvoice: rule for %q has no formula", rule.Target))
		}
		if _, dup := g.byTarget[rule.Target]; dup {
			panic(fmt.Sprintf("taxinvoice: field %q is the target of more than one rule", rule.Target))
		}
		g.byTarget[rule.Target] = i
		for _, in := range rule.Inputs {
			if in == rule.Target {
				panic(fmt.Sprintf("taxinvoice: rule for %q reads its own target", rule.Target))
			}
			g.dependents[in] = append(g.dependents[in], i)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		parts := make([]string, len(cycle))
		for i, n := range cycle {
			parts[i] = string(n)
		}
		panic("taxinvoice: derivation cycle " + strings.Join(parts, " -> "))
	}
	return g
}

// Rules returns the rules in declared order
func (g *DependencyGraph) Rules() []DerivationRule {
	out := make([]DerivationRule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Rule returns the rule producing target
func (g *DependencyGraph) Rule(target FieldName) (DerivationRule, bool) {
	i, ok := g.byTarget[target]
	if !ok {
		return DerivationRule{}, false
	}
	return g.rules[i], true
}

// IsDerived reports whether name is produced by a rule
func (g *DependencyGraph) IsDerived(name FieldName) bool {
	_, ok := g.byTarget[name]
	return ok
}

// Dependents returns the rules reading name, in declared order
func (g *DependencyGraph) Dependents(name FieldName) []DerivationRule {
	idx := g.dependents[name]
	out := make([]DerivationRule, len(idx))
	for i, ri := range idx {
		out[i] = g.rules[ri]
	}
	return out
}

// Fields returns every field name the graph references
func (g *DependencyGraph) Fields() []FieldName {
	seen := make(map[FieldName]bool)
	var out []FieldName
	add := func(n FieldName) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, r := range g.rules {
		add(r.Target)
		for _, in := range r.Inputs {
			add(in)
		}
	}
	return out
}

// findCycle walks target -> input edges and returns the first cycle found
func (g *DependencyGraph) findCycle() []FieldName {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[FieldName]int)
	var path []FieldName

	var visit func(n FieldName) []FieldName
	visit = func(n FieldName) []FieldName {
		switch state[n] {
		case visiting:
			for i, p := range path {
				if p == n {
					return append(append([]FieldName{}, path[i:]...), n)
				}
			}
			return []FieldName{n, n}
		case done:
			return nil
		}
		state[n] = visiting
		path = append(path, n)
		if ri, ok := g.byTarget[n]; ok {
			for _, in := range g.rules[ri].Inputs {
				if c := visit(in); c != nil {
					return c
				}
			}
		}
		path = path[:len(path)-1]
		state[n] = done
		return nil
	}

	for _, r := range g.rules {
		if c := visit(r.Target); c != nil {
			return c
		}
	}
	return nil
}
