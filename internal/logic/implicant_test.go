package logic

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestDisjuncts(t *testing.T) {
	got, err := Disjuncts(AnyOf(AllOf(x, N(y)), w))
	if err != nil {
		t.Fatal(err)
	}
	want := []Conjunction{
		{Lits: []Literal{{Name: "X"}, {Name: "Y", Neg: true}}},
		{Lits: []Literal{{Name: "Z"}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDisjuncts_Empty(t *testing.T) {
	got, err := Disjuncts(Empty())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no conjunctions", got)
	}
}

func TestDisjuncts_Tautology(t *testing.T) {
	got, err := Disjuncts(And{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0].Lits) != 0 {
		t.Errorf("got %v, want a single empty conjunction", got)
	}
}

func TestDisjuncts_NotDNF(t *testing.T) {
	for _, term := range []Term{
		AllOf(x, AnyOf(y, w)),
		N(AllOf(x, y)),
		AnyOf(x, Divide{Num: x, Den: y}),
		Given{X: x, Cond: y},
	} {
		if _, err := Disjuncts(term); !errors.Is(err, ErrNotDNF) {
			t.Errorf("Disjuncts(%s) error = %v, want ErrNotDNF", term, err)
		}
	}
}

func TestNewImplicant(t *testing.T) {
	vars := []string{"X", "Y", "Z"}
	imp, ok := NewImplicant(Conjunction{Lits: []Literal{{Name: "X"}, {Name: "Z", Neg: true}}}, vars)
	if !ok {
		t.Fatal("NewImplicant reported failure")
	}
	want := Implicant{Value: 0b100, Mask: 0b101, Width: 3}
	if imp != want {
		t.Errorf("got %+v, want %+v", imp, want)
	}
}

func TestNewImplicant_Rejects(t *testing.T) {
	vars := []string{"X", "Y"}
	if _, ok := NewImplicant(Conjunction{Lits: []Literal{{Name: "W"}}}, vars); ok {
		t.Error("unknown variable accepted")
	}
	if _, ok := NewImplicant(Conjunction{Lits: []Literal{{Name: "X"}, {Name: "X", Neg: true}}}, vars); ok {
		t.Error("conflicting literals accepted")
	}
	if _, ok := NewImplicant(Conjunction{Lits: []Literal{{Name: "X"}, {Name: "X"}}}, vars); !ok {
		t.Error("repeated literal rejected")
	}
}

func TestImplicantEach(t *testing.T) {
	tests := []struct {
		name string
		imp  Implicant
		want []uint64
	}{
		{"first var", Implicant{Value: 0b10, Mask: 0b10, Width: 2}, []uint64{2, 3}},
		{"negated last var", Implicant{Value: 0, Mask: 0b01, Width: 2}, []uint64{0, 2}},
		{"full", Implicant{Value: 0b101, Mask: 0b111, Width: 3}, []uint64{5}},
		{"empty conjunction", Implicant{Width: 2}, []uint64{0, 1, 2, 3}},
		{"middle fixed", Implicant{Value: 0b010, Mask: 0b010, Width: 3}, []uint64{2, 3, 6, 7}},
		{"no vars", Implicant{}, []uint64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []uint64
			tt.imp.Each(func(m uint64) bool {
				got = append(got, m)
				return true
			})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Each visited %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImplicantEach_Stops(t *testing.T) {
	n := 0
	Implicant{Width: 3}.Each(func(uint64) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("visited %d minterms after stop, want 2", n)
	}
}

func TestBit(t *testing.T) {
	if !Bit(0b10, 0, 2) || Bit(0b10, 1, 2) {
		t.Error("Bit ordering is not most significant first")
	}
}
