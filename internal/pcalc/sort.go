package pcalc

import (
	"regexp"
	"sort"
	"strings"
)

// QueryHeight is the starting height of formulas that assign nothing, so
// that they sort after every assignment.
const QueryHeight = 1000

var assignmentPattern = regexp.MustCompile(`=|\s+is\s+`)

// Formula is one formula of a batch.
type Formula struct {
	ID   string
	Text string
}

// Sorted is a formula with its dependency height. Index is its position
// in the input.
type Sorted struct {
	Formula
	Index      int
	Height     int
	Assignment bool
}

// SortResult is the output of Sort.
type SortResult struct {
	Formulas []Sorted

	// Dependencies maps every assigned variable to the sorted set of other
	// variables named in its assignments.
	Dependencies map[string][]string

	// Cycles lists the dependency loops met while computing heights.
	Cycles []*DependencyCycleError
}

// IsAssignment reports whether text assigns a value.
func IsAssignment(text string) bool {
	return assignmentPattern.MatchString(text)
}

// FormulaVars returns the variable names of text in order of appearance.
func FormulaVars(text string) []string {
	var out []string
	for _, t := range Tokenize(text) {
		if t.Kind == Ident && t.Text[0] >= 'A' && t.Text[0] <= 'Z' {
			out = append(out, t.Text)
		}
	}
	return out
}

// Sort orders formulas so that every assignment comes after the
// assignments of the variables it depends on and queries come last. The
// height of a variable is one more than the highest of its dependencies; a
// formula takes the highest height of its variables. Equal heights keep
// input order.
func Sort(fs []Formula) SortResult {
	sorted := make([]Sorted, len(fs))
	vars := make([][]string, len(fs))
	deps := make(map[string]map[string]bool)
	for i, f := range fs {
		s := Sorted{Formula: f, Index: i, Height: QueryHeight}
		vars[i] = FormulaVars(f.Text)
		if IsAssignment(f.Text) {
			s.Assignment = true
			s.Height = 0
			if len(vars[i]) > 0 {
				head := vars[i][0]
				set, ok := deps[head]
				if !ok {
					set = make(map[string]bool)
					deps[head] = set
				}
				for _, v := range vars[i][1:] {
					if v != head {
						set[v] = true
					}
				}
			}
		}
		sorted[i] = s
	}

	dm := make(map[string][]string, len(deps))
	for v, set := range deps {
		list := make([]string, 0, len(set))
		for d := range set {
			list = append(list, d)
		}
		sort.Strings(list)
		dm[v] = list
	}

	h := heights{deps: dm, onPath: make(map[string]bool), seen: make(map[string]bool)}
	varHeight := make(map[string]int, len(dm))
	for _, v := range sortedKeys(dm) {
		varHeight[v] = h.height(v)
	}
	for i := range sorted {
		for _, v := range vars[i] {
			if hv, ok := varHeight[v]; ok && hv > sorted[i].Height {
				sorted[i].Height = hv
			}
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Height < sorted[j].Height
	})
	return SortResult{Formulas: sorted, Dependencies: dm, Cycles: h.cycles}
}

type heights struct {
	deps   map[string][]string
	onPath map[string]bool
	path   []string
	seen   map[string]bool
	cycles []*DependencyCycleError
}

// height recurses through the dependency map. A dependency already on the
// current path closes a cycle: it counts as height 0 and the cycle is
// recorded once.
func (h *heights) height(v string) int {
	ds := h.deps[v]
	if len(ds) == 0 {
		return 0
	}
	h.onPath[v] = true
	h.path = append(h.path, v)
	best := 0
	for _, d := range ds {
		if h.onPath[d] {
			h.recordCycle(d)
			continue
		}
		if dh := h.height(d); dh > best {
			best = dh
		}
	}
	h.path = h.path[:len(h.path)-1]
	delete(h.onPath, v)
	return best + 1
}

func (h *heights) recordCycle(closing string) {
	start := 0
	for i, v := range h.path {
		if v == closing {
			start = i
			break
		}
	}
	loop := append([]string(nil), h.path[start:]...)
	// Rotate so that the smallest name leads; the same loop found from
	// another starting variable then has the same key.
	lo := 0
	for i, v := range loop {
		if v < loop[lo] {
			lo = i
		}
	}
	rotated := make([]string, 0, len(loop)+1)
	rotated = append(rotated, loop[lo:]...)
	rotated = append(rotated, loop[:lo]...)
	key := strings.Join(rotated, " ")
	if h.seen[key] {
		return
	}
	h.seen[key] = true
	h.cycles = append(h.cycles, &DependencyCycleError{Path: append(rotated, rotated[0])})
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
