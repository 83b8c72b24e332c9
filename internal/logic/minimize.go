package logic

import (
	"sort"

	"github.com/pborges/pcalc/internal/bitmap"
	"github.com/pkg/errors"
)

// MaxMinimizeVars bounds the minterm table built by Minimize.
const MaxMinimizeVars = 16

// Minimize reduces a DNF term to a short equivalent sum of products. It
// finds all prime implicants of the term's minterms, then picks a cover of
// essential implicants followed by greedy choices. The result lists
// variables in sorted order within each conjunction.
func Minimize(t Term) (Term, error) {
	ds, err := Disjuncts(t)
	if err != nil {
		return nil, err
	}
	vars := Vars(t)
	if len(vars) > MaxMinimizeVars {
		return nil, errors.Errorf("cannot minimize over %d variables, limit is %d", len(vars), MaxMinimizeVars)
	}

	set := bitmap.New(1 << len(vars))
	for _, d := range ds {
		imp, ok := NewImplicant(d, vars)
		if !ok {
			// contradictory conjunction
			continue
		}
		imp.Each(func(m uint64) bool {
			set.Set(int(m))
			return true
		})
	}
	ones := set.Ones()
	switch {
	case len(ones) == 0:
		return Or{}, nil
	case len(ones) == 1<<len(vars):
		return And{}, nil
	}

	minterms := make([]uint64, len(ones))
	for i, m := range ones {
		minterms[i] = uint64(m)
	}
	cover := minimumCover(primeImplicants(minterms, len(vars)), minterms)
	sort.Slice(cover, func(i, j int) bool {
		if cover[i].Mask != cover[j].Mask {
			return cover[i].Mask > cover[j].Mask
		}
		return cover[i].Value > cover[j].Value
	})

	out := make([]Term, len(cover))
	for i, imp := range cover {
		out[i] = imp.term(vars)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return Or{Terms: out}, nil
}

// term converts imp back to a conjunction over vars.
func (imp Implicant) term(vars []string) Term {
	var lits []Term
	for j, v := range vars {
		bit := uint64(1) << (imp.Width - 1 - j)
		if imp.Mask&bit == 0 {
			continue
		}
		if imp.Value&bit == 0 {
			lits = append(lits, Not{X: Var{Name: v}})
		} else {
			lits = append(lits, Var{Name: v})
		}
	}
	if len(lits) == 1 {
		return lits[0]
	}
	return And{Terms: lits}
}

// primeImplicants merges implicants differing in one bit until nothing
// merges. Whatever never merged is prime.
func primeImplicants(minterms []uint64, width int) []Implicant {
	full := uint64(1)<<width - 1
	current := make(map[Implicant]bool, len(minterms))
	for _, m := range minterms {
		current[Implicant{Value: m, Mask: full, Width: width}] = true
	}

	primes := make(map[Implicant]bool)
	for len(current) > 0 {
		list := make([]Implicant, 0, len(current))
		for imp := range current {
			list = append(list, imp)
		}
		merged := make(map[Implicant]bool)
		used := make(map[Implicant]bool)
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				if m, ok := merge(list[i], list[j]); ok {
					merged[m] = true
					used[list[i]] = true
					used[list[j]] = true
				}
			}
		}
		for _, imp := range list {
			if !used[imp] {
				primes[imp] = true
			}
		}
		current = merged
	}

	out := make([]Implicant, 0, len(primes))
	for p := range primes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mask != out[j].Mask {
			return out[i].Mask < out[j].Mask
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// merge combines two implicants over the same variables whose polarities
// differ in exactly one of them.
func merge(a, b Implicant) (Implicant, bool) {
	if a.Mask != b.Mask {
		return Implicant{}, false
	}
	diff := (a.Value ^ b.Value) & a.Mask
	if diff == 0 || diff&(diff-1) != 0 {
		return Implicant{}, false
	}
	return Implicant{Value: a.Value &^ diff, Mask: a.Mask &^ diff, Width: a.Width}, true
}

// minimumCover picks primes until every minterm is covered: first the
// essential ones, then the prime covering the most remaining minterms.
func minimumCover(primes []Implicant, minterms []uint64) []Implicant {
	index := make(map[uint64]int, len(minterms))
	for i, m := range minterms {
		index[m] = i
	}
	covers := make([][]int, len(primes))
	for i, p := range primes {
		p.Each(func(m uint64) bool {
			if idx, ok := index[m]; ok {
				covers[i] = append(covers[i], idx)
			}
			return true
		})
	}

	covered := bitmap.New(len(minterms))
	taken := make([]bool, len(primes))
	var selected []Implicant
	take := func(pi int) {
		taken[pi] = true
		selected = append(selected, primes[pi])
		for _, mi := range covers[pi] {
			covered.Set(mi)
		}
	}

	for changed := true; changed; {
		changed = false
		for mi := range minterms {
			if covered.Test(mi) {
				continue
			}
			sole := -1
			for pi := range primes {
				if taken[pi] || !containsIndex(covers[pi], mi) {
					continue
				}
				if sole >= 0 {
					sole = -1
					break
				}
				sole = pi
			}
			if sole >= 0 {
				take(sole)
				changed = true
			}
		}
	}

	for covered.Count() < len(minterms) {
		best, bestCount := -1, 0
		for pi := range primes {
			if taken[pi] {
				continue
			}
			n := 0
			for _, mi := range covers[pi] {
				if !covered.Test(mi) {
					n++
				}
			}
			if n > bestCount {
				best, bestCount = pi, n
			}
		}
		if best < 0 {
			break
		}
		take(best)
	}
	return selected
}

func containsIndex(xs []int, x int) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}
