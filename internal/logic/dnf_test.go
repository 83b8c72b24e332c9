package logic

import (
	"testing"

	"github.com/go-air/gini"
	circuit "github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	a = V("A")
	b = V("B")
	c = V("C")
	d = V("D")
	x = V("X")
	y = V("Y")
	w = V("Z")
)

func TestDNF(t *testing.T) {
	tests := []struct {
		name string
		in   Term
		want Term
	}{
		{
			name: "de morgan and",
			in:   N(AllOf(x, y)),
			want: AnyOf(N(x), N(y)),
		},
		{
			name: "de morgan or",
			in:   N(AnyOf(x, y)),
			want: AllOf(N(x), N(y)),
		},
		{
			name: "double negation",
			in:   N(N(x)),
			want: x,
		},
		{
			name: "single or operand",
			in:   AllOf(x, AnyOf(y, w)),
			want: AnyOf(AllOf(y, x), AllOf(w, x)),
		},
		{
			name: "two or operands",
			in:   AllOf(AnyOf(a, b), AnyOf(c, d)),
			want: AnyOf(AllOf(a, c), AllOf(a, d), AllOf(b, c), AllOf(b, d)),
		},
		{
			name: "nested or flattened",
			in:   AnyOf(x, AnyOf(y, AnyOf(w))),
			want: AnyOf(x, y, w),
		},
		{
			name: "contradiction",
			in:   AllOf(x, N(x)),
			want: Empty(),
		},
		{
			name: "contradiction inside distribution",
			in:   AllOf(x, AnyOf(N(x), y)),
			want: AllOf(y, x),
		},
		{
			name: "duplicate disjunct",
			in:   AnyOf(x, x),
			want: x,
		},
		{
			name: "duplicate conjunct",
			in:   AllOf(x, x, y),
			want: AllOf(x, y),
		},
		{
			name: "complementary disjuncts",
			in:   AnyOf(x, N(x)),
			want: And{},
		},
		{
			name: "negated conjunction cancels",
			in:   AnyOf(N(AllOf(x, N(y))), x, AnyOf(a, b)),
			want: AnyOf(y, a, b, And{}),
		},
		{
			name: "given becomes divide",
			in:   Given{X: y, Cond: x},
			want: Divide{Num: AllOf(y, x), Den: x},
		},
		{
			name: "given with empty sides",
			in:   Given{X: y, Cond: AllOf(x, N(x))},
			want: Divide{Num: Empty(), Den: Empty()},
		},
		{
			name: "given with empty numerator",
			in:   Given{X: AllOf(y, N(x)), Cond: x},
			want: Empty(),
		},
		{
			name: "given contradicted by sibling",
			in:   AllOf(N(x), Given{X: y, Cond: x}),
			want: Empty(),
		},
		{
			name: "empty operand empties conjunction",
			in:   AllOf(x, Empty()),
			want: Empty(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, converged := Normalizer{}.Normalize(tt.in)
			assert.True(t, converged)
			assert.Truef(t, Equal(got, tt.want), "DNF(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestDNF_ExactShape(t *testing.T) {
	got := DNF(Given{X: y, Cond: AnyOf(x, w)})
	want := Divide{
		Num: Or{Terms: []Term{And{Terms: []Term{x, y}}, And{Terms: []Term{w, y}}}},
		Den: Or{Terms: []Term{x, w}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DNF mismatch (-want +got):\n%s", diff)
	}
}

var sampleTerms = []Term{
	x,
	N(AllOf(x, AnyOf(y, N(w)))),
	AllOf(AnyOf(a, b), AnyOf(c, N(a)), d),
	AnyOf(AllOf(x, y), AllOf(N(x), y), AllOf(x, N(y))),
	N(AnyOf(AllOf(a, b), N(AnyOf(c, d)))),
	AllOf(AnyOf(x, y), AnyOf(N(x), N(y)), AnyOf(x, w)),
	AnyOf(x, N(x), y),
	AllOf(x, N(N(N(x)))),
	Given{X: AnyOf(x, y), Cond: N(w)},
}

func TestDNF_Idempotent(t *testing.T) {
	for _, term := range sampleTerms {
		once := DNF(term)
		twice := DNF(once)
		assert.Truef(t, Equal(once, twice), "DNF not idempotent for %s: %s then %s", term, once, twice)
	}
}

func TestDNF_Shape(t *testing.T) {
	for _, term := range sampleTerms {
		if _, ok := term.(Given); ok {
			continue
		}
		got := DNF(term)
		_, err := Disjuncts(got)
		require.NoErrorf(t, err, "DNF(%s) = %s", term, got)
	}
}

// TestDNF_Equivalent asks a SAT solver whether the input and its normal form
// can ever disagree.
func TestDNF_Equivalent(t *testing.T) {
	for _, term := range sampleTerms {
		if _, ok := term.(Given); ok {
			continue
		}
		got := DNF(term)
		c := circuit.NewC()
		inputs := map[string]z.Lit{}
		f := encode(c, inputs, term)
		g := encode(c, inputs, got)
		differ := c.Xor(f, g)
		s := gini.New()
		c.ToCnf(s)
		s.Assume(differ)
		assert.Equalf(t, -1, s.Solve(), "%s is not equivalent to %s", term, got)
	}
}

func encode(c *circuit.C, inputs map[string]z.Lit, t Term) z.Lit {
	switch x := t.(type) {
	case Var:
		m, ok := inputs[x.Name]
		if !ok {
			m = c.Lit()
			inputs[x.Name] = m
		}
		return m
	case Not:
		return encode(c, inputs, x.X).Not()
	case And:
		ms := make([]z.Lit, len(x.Terms))
		for i, o := range x.Terms {
			ms[i] = encode(c, inputs, o)
		}
		return c.Ands(ms...)
	case Or:
		ms := make([]z.Lit, len(x.Terms))
		for i, o := range x.Terms {
			ms[i] = encode(c, inputs, o)
		}
		return c.Ors(ms...)
	}
	panic("encode: unsupported term " + t.String())
}

func TestNormalizer_PassLimit(t *testing.T) {
	term := N(AnyOf(AllOf(a, b), N(AnyOf(c, d))))
	got, converged := Normalizer{MaxPasses: 1}.Normalize(term)
	assert.True(t, converged)
	assert.True(t, Equal(got, DNF(term)))
}
