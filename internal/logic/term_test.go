package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual_Unordered(t *testing.T) {
	assert.True(t, Equal(AllOf(x, y), AllOf(y, x)))
	assert.True(t, Equal(AnyOf(x, AllOf(y, N(w))), AnyOf(AllOf(N(w), y), x)))
	assert.False(t, Equal(AllOf(x, y), AnyOf(x, y)))
	assert.False(t, Equal(AllOf(x, y), AllOf(x, y, w)))
	assert.False(t, Equal(N(x), x))
	assert.True(t, Equal(Empty(), Or{}))
	assert.False(t, Equal(Empty(), And{}))
}

func TestEqual_Positional(t *testing.T) {
	assert.True(t, Equal(Given{X: x, Cond: y}, Given{X: x, Cond: y}))
	assert.False(t, Equal(Given{X: x, Cond: y}, Given{X: y, Cond: x}))
	assert.False(t, Equal(Divide{Num: x, Den: y}, Divide{Num: y, Den: x}))
}

func TestString(t *testing.T) {
	tests := []struct {
		in   Term
		want string
	}{
		{x, "X"},
		{N(x), "-X"},
		{N(N(x)), "--X"},
		{N(AllOf(x, y)), "-(X & Y)"},
		{AllOf(x, AnyOf(y, w)), "X & (Y | Z)"},
		{AnyOf(AllOf(x, N(y)), w), "X & -Y | Z"},
		{Empty(), "[]"},
		{And{}, "true"},
		{Given{X: y, Cond: AnyOf(x, w)}, "Y given (X | Z)"},
		{Divide{Num: AllOf(y, x), Den: x}, "(Y & X) / (X)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestVars(t *testing.T) {
	got := Vars(AnyOf(AllOf(w, N(x)), Given{X: y, Cond: a}), x)
	assert.Equal(t, []string{"A", "X", "Y", "Z"}, got)
	assert.Empty(t, Vars(Empty()))
}
