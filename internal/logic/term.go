// Package logic holds the propositional term model used by probability
// formulas and the rewriter that brings terms into disjunctive normal form.
//
// A Term is one of Var, Not, And, Or, Given or Divide. Terms are values:
// rewriting never mutates its input. The empty disjunction Or{} stands for a
// contradiction and the empty conjunction And{} for a tautology.
package logic

import (
	"sort"
	"strings"
)

// Term is a node of a logic formula.
type Term interface {
	isTerm()
	String() string
}

// Var is a boolean event named by an identifier starting with an uppercase
// letter.
type Var struct{ Name string }

func (Var) isTerm() {}

// Not negates X.
type Not struct{ X Term }

func (Not) isTerm() {}

// And is the conjunction of Terms.
type And struct{ Terms []Term }

func (And) isTerm() {}

// Or is the disjunction of Terms.
type Or struct{ Terms []Term }

func (Or) isTerm() {}

// Given is the conditional X given Cond.
type Given struct{ X, Cond Term }

func (Given) isTerm() {}

// Divide is the ratio Num / Den produced from Given during normalization.
type Divide struct{ Num, Den Term }

func (Divide) isTerm() {}

// V is shorthand for Var{Name: name}.
func V(name string) Var { return Var{Name: name} }

// N is shorthand for Not{X: x}.
func N(x Term) Not { return Not{X: x} }

// AllOf builds a conjunction.
func AllOf(ts ...Term) And { return And{Terms: ts} }

// AnyOf builds a disjunction.
func AnyOf(ts ...Term) Or { return Or{Terms: ts} }

// Empty returns the contradictory term.
func Empty() Term { return Or{} }

// IsEmpty reports whether t is the empty disjunction.
func IsEmpty(t Term) bool {
	o, ok := t.(Or)
	return ok && len(o.Terms) == 0
}

func (v Var) String() string { return v.Name }

func (n Not) String() string {
	switch n.X.(type) {
	case Var, Not:
		return "-" + n.X.String()
	}
	return "-(" + n.X.String() + ")"
}

func (a And) String() string {
	if len(a.Terms) == 0 {
		return "true"
	}
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = group(t)
	}
	return strings.Join(parts, " & ")
}

func (o Or) String() string {
	if len(o.Terms) == 0 {
		return "[]"
	}
	parts := make([]string, len(o.Terms))
	for i, t := range o.Terms {
		if d, ok := t.(Divide); ok {
			parts[i] = "(" + d.String() + ")"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

func (g Given) String() string {
	return group(g.X) + " given " + group(g.Cond)
}

func (d Divide) String() string {
	return "(" + d.Num.String() + ") / (" + d.Den.String() + ")"
}

// group wraps compound operands in parentheses.
func group(t Term) string {
	switch x := t.(type) {
	case Or:
		if len(x.Terms) > 1 {
			return "(" + x.String() + ")"
		}
	case Given:
		return "(" + x.String() + ")"
	}
	return t.String()
}

// Equal compares two terms. And and Or operands are compared without regard
// to order; Given and Divide compare their parts positionally.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case Var:
		y, ok := b.(Var)
		return ok && x.Name == y.Name
	case Not:
		y, ok := b.(Not)
		return ok && Equal(x.X, y.X)
	case And:
		y, ok := b.(And)
		return ok && sameOperands(x.Terms, y.Terms)
	case Or:
		y, ok := b.(Or)
		return ok && sameOperands(x.Terms, y.Terms)
	case Given:
		y, ok := b.(Given)
		return ok && Equal(x.X, y.X) && Equal(x.Cond, y.Cond)
	case Divide:
		y, ok := b.(Divide)
		return ok && Equal(x.Num, y.Num) && Equal(x.Den, y.Den)
	}
	return false
}

func sameOperands(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	return containsAll(a, b) && containsAll(b, a)
}

func containsAll(haystack, needles []Term) bool {
	for _, n := range needles {
		if !contains(haystack, n) {
			return false
		}
	}
	return true
}

func contains(ts []Term, t Term) bool {
	for _, x := range ts {
		if Equal(x, t) {
			return true
		}
	}
	return false
}

// Vars returns the sorted, de-duplicated variable names used in t.
func Vars(ts ...Term) []string {
	seen := make(map[string]bool)
	for _, t := range ts {
		collectVars(t, seen)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectVars(t Term, seen map[string]bool) {
	switch x := t.(type) {
	case Var:
		seen[x.Name] = true
	case Not:
		collectVars(x.X, seen)
	case And:
		for _, c := range x.Terms {
			collectVars(c, seen)
		}
	case Or:
		for _, c := range x.Terms {
			collectVars(c, seen)
		}
	case Given:
		collectVars(x.X, seen)
		collectVars(x.Cond, seen)
	case Divide:
		collectVars(x.Num, seen)
		collectVars(x.Den, seen)
	}
}
