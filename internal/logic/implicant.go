package logic

import "github.com/pkg/errors"

// ErrNotDNF is returned when a term is expected to be a disjunction of
// literal conjunctions but is not.
var ErrNotDNF = errors.New("formula not in disjunctive normal form")

// Literal is a possibly negated variable.
type Literal struct {
	Name string
	Neg  bool
}

// Conjunction is a product of literals. An empty conjunction is true.
type Conjunction struct {
	Lits []Literal
}

// Disjuncts splits a normalized term into its literal conjunctions. The
// empty term yields no conjunctions. Anything that is not a disjunction of
// literal conjunctions, such as a nested Divide, yields ErrNotDNF.
func Disjuncts(t Term) ([]Conjunction, error) {
	var terms []Term
	if o, ok := t.(Or); ok {
		terms = o.Terms
	} else {
		terms = []Term{t}
	}
	out := make([]Conjunction, 0, len(terms))
	for _, d := range terms {
		c, err := toConjunction(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func toConjunction(t Term) (Conjunction, error) {
	if lit, ok := toLiteral(t); ok {
		return Conjunction{Lits: []Literal{lit}}, nil
	}
	a, ok := t.(And)
	if !ok {
		return Conjunction{}, errors.Wrapf(ErrNotDNF, "unexpected %s", t)
	}
	lits := make([]Literal, 0, len(a.Terms))
	for _, x := range a.Terms {
		lit, ok := toLiteral(x)
		if !ok {
			return Conjunction{}, errors.Wrapf(ErrNotDNF, "unexpected %s in conjunction", x)
		}
		lits = append(lits, lit)
	}
	return Conjunction{Lits: lits}, nil
}

func toLiteral(t Term) (Literal, bool) {
	switch x := t.(type) {
	case Var:
		return Literal{Name: x.Name}, true
	case Not:
		if v, ok := x.X.(Var); ok {
			return Literal{Name: v.Name, Neg: true}, true
		}
	}
	return Literal{}, false
}

// Implicant is a conjunction encoded over an ordered variable list.
// Variable j of n occupies bit n-1-j, so the first variable is the most
// significant. Mask has 1 for every variable the conjunction mentions and
// Value holds the required polarity of those bits.
type Implicant struct {
	Value uint64
	Mask  uint64
	Width int
}

// NewImplicant encodes c over vars. It reports false when c mentions a
// variable outside vars or asserts both polarities of one variable.
func NewImplicant(c Conjunction, vars []string) (Implicant, bool) {
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	imp := Implicant{Width: len(vars)}
	for _, l := range c.Lits {
		i, ok := index[l.Name]
		if !ok {
			return Implicant{}, false
		}
		bit := uint64(1) << (len(vars) - 1 - i)
		want := uint64(0)
		if !l.Neg {
			want = bit
		}
		if imp.Mask&bit != 0 && imp.Value&bit != want {
			return Implicant{}, false
		}
		imp.Mask |= bit
		imp.Value |= want
	}
	return imp, true
}

// Each calls fn for every minterm of imp in ascending order until fn
// returns false.
func (imp Implicant) Each(fn func(m uint64) bool) {
	var dcBits []int
	for b := imp.Width - 1; b >= 0; b-- {
		if imp.Mask&(uint64(1)<<b) == 0 {
			dcBits = append(dcBits, b)
		}
	}
	base := imp.Value & imp.Mask
	n := uint64(1) << len(dcBits)
	for i := uint64(0); i < n; i++ {
		m := base
		for j, bit := range dcBits {
			// dcBits runs from the most significant position down, so
			// the last entry follows the lowest bit of i.
			if i&(uint64(1)<<(len(dcBits)-1-j)) != 0 {
				m |= uint64(1) << bit
			}
		}
		if !fn(m) {
			return
		}
	}
}

// Bit reports whether variable j of width is true in combination index m.
func Bit(m uint64, j, width int) bool {
	return m&(uint64(1)<<(width-1-j)) != 0
}
