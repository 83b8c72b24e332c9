package logic

// DefaultMaxPasses bounds the fixed-point iteration of Normalize.
const DefaultMaxPasses = 10

// Normalizer rewrites terms into disjunctive normal form.
type Normalizer struct {
	// MaxPasses caps the number of rewrite passes. Zero means
	// DefaultMaxPasses.
	MaxPasses int
}

// Normalize returns t in disjunctive normal form. The boolean reports
// whether the rewrite reached a fixed point within MaxPasses; when it did
// not, the last pass is returned.
func (n Normalizer) Normalize(t Term) (Term, bool) {
	limit := n.MaxPasses
	if limit <= 0 {
		limit = DefaultMaxPasses
	}
	x := rewrite(t)
	for i := 0; i < limit; i++ {
		y := rewrite(x)
		if Equal(x, y) {
			return x, true
		}
		x = y
	}
	return x, false
}

// DNF normalizes t with the default pass limit.
func DNF(t Term) Term {
	out, _ := Normalizer{}.Normalize(t)
	return out
}

// rewrite performs one normalization pass.
func rewrite(t Term) Term {
	switch x := t.(type) {
	case Not:
		return rewriteNot(x)
	case And:
		return rewriteAnd(x.Terms)
	case Or:
		return rewriteOr(x.Terms)
	case Given:
		return rewriteGiven(x)
	case Divide:
		return rewriteDivide(x)
	}
	return t
}

// rewriteNot pushes a negation one level inward and keeps rewriting the
// result, so negations end up next to variables.
func rewriteNot(n Not) Term {
	switch x := n.X.(type) {
	case Var:
		return n
	case Not:
		return rewrite(x.X)
	case And:
		out := make([]Term, len(x.Terms))
		for i, c := range x.Terms {
			out[i] = Not{X: c}
		}
		return rewriteOr(out)
	case Or:
		out := make([]Term, len(x.Terms))
		for i, c := range x.Terms {
			out[i] = Not{X: c}
		}
		return rewriteAnd(out)
	}
	// Negated conditionals have no normal form; keep them for the caller
	// to reject.
	return Not{X: rewrite(n.X)}
}

// negate returns the negation-normal form of Not(t).
func negate(t Term) Term {
	return rewriteNot(Not{X: t})
}

// rewriteOr flattens nested disjunctions and prunes duplicate disjuncts. A
// disjunct whose negation is already present cancels against it; the pair
// is replaced by the empty conjunction.
func rewriteOr(ts []Term) Term {
	var out []Term
	tautology := false
	add := func(x Term) {
		for j, y := range out {
			if Equal(x, y) {
				return
			}
			if Equal(x, negate(y)) {
				out = append(out[:j:j], out[j+1:]...)
				tautology = true
				return
			}
		}
		out = append(out, x)
	}
	for _, c := range ts {
		r := rewrite(c)
		if o, ok := r.(Or); ok {
			for _, d := range o.Terms {
				add(d)
			}
			continue
		}
		add(r)
	}
	if tautology && !contains(out, And{}) {
		out = append(out, And{})
	}
	switch len(out) {
	case 0:
		return Or{}
	case 1:
		return out[0]
	}
	return Or{Terms: out}
}

// rewriteAnd flattens nested conjunctions, removes duplicate operands,
// collapses contradictions to the empty term and distributes over any
// disjunctive operands.
func rewriteAnd(ts []Term) Term {
	var others []Term
	var ors []Or
	var divs []Divide
	for _, c := range ts {
		if g, ok := c.(Given); ok {
			r := rewriteGiven(g)
			d, ok := r.(Divide)
			if !ok {
				return Or{}
			}
			divs = append(divs, d)
			continue
		}
		switch r := rewrite(c).(type) {
		case Or:
			if len(r.Terms) == 0 {
				return Or{}
			}
			ors = append(ors, r)
		case And:
			for _, x := range r.Terms {
				if o, ok := x.(Or); ok {
					ors = append(ors, o)
					continue
				}
				others = append(others, x)
			}
		default:
			others = append(others, r)
		}
	}

	var kept []Term
	for _, x := range others {
		if contains(kept, x) {
			continue
		}
		if contains(kept, negate(x)) {
			return Or{}
		}
		kept = append(kept, x)
	}

	// A conditional whose numerator contradicts a sibling empties the whole
	// conjunction.
	for _, d := range divs {
		if !IsEmpty(d.Num) {
			for _, x := range kept {
				if IsEmpty(rewriteAnd([]Term{x, d.Num})) {
					return Or{}
				}
			}
			for _, o := range ors {
				if IsEmpty(rewriteAnd([]Term{o, d.Num})) {
					return Or{}
				}
			}
		}
		if !contains(kept, d) {
			kept = append(kept, d)
		}
	}

	if len(ors) == 0 {
		if len(kept) == 1 {
			return kept[0]
		}
		return And{Terms: kept}
	}

	var disjuncts []Term
	for _, choice := range crossProduct(ors) {
		operands := make([]Term, 0, len(choice)+len(kept))
		operands = append(operands, choice...)
		operands = append(operands, kept...)
		disjuncts = append(disjuncts, And{Terms: operands})
	}
	return rewriteOr(disjuncts)
}

// crossProduct picks one disjunct from every Or, the first Or varying
// slowest.
func crossProduct(ors []Or) [][]Term {
	combos := [][]Term{nil}
	for _, o := range ors {
		next := make([][]Term, 0, len(combos)*len(o.Terms))
		for _, prefix := range combos {
			for _, d := range o.Terms {
				c := make([]Term, len(prefix), len(prefix)+1)
				copy(c, prefix)
				next = append(next, append(c, d))
			}
		}
		combos = next
	}
	return combos
}

// rewriteGiven turns X given C into (X & C) / C.
func rewriteGiven(g Given) Term {
	return divide(rewriteAnd([]Term{g.X, g.Cond}), rewrite(g.Cond))
}

func rewriteDivide(d Divide) Term {
	return divide(rewrite(d.Num), rewrite(d.Den))
}

// divide applies the empty-side rules: []/[] is kept (it evaluates to 1)
// and an empty numerator over anything else is empty.
func divide(num, den Term) Term {
	if IsEmpty(num) && !IsEmpty(den) {
		return Or{}
	}
	return Divide{Num: num, Den: den}
}
