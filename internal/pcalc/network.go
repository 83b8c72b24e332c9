package pcalc

import (
	"math"
	"sort"

	"github.com/pborges/pcalc/internal/logic"
	"github.com/pkg/errors"
)

// EntryKind tells plain and conditional probability variables apart.
type EntryKind int

const (
	Scalar EntryKind = iota
	Conditional
)

func (k EntryKind) String() string {
	if k == Conditional {
		return "conditional"
	}
	return "scalar"
}

// Condition is one "pr X given Cond = P" assignment.
type Condition struct {
	P    float64
	Cond logic.Term
}

// Entry is a probability variable of a Network.
type Entry struct {
	Name string
	Kind EntryKind

	// True is the probability of a Scalar entry.
	True float64

	// Conditions lists the conditional assignments in the order they were
	// made. Completion may replace them with the noisy-OR expansion.
	Conditions []Condition

	// DependencyVars and Probs are filled in by the Completor. Probs[i] is
	// the probability of the entry given the combination i of
	// DependencyVars, the first variable being the most significant bit.
	DependencyVars []string
	Probs          []float64

	// err is set when the entry could not be completed.
	err error
}

// Completed reports whether a conditional entry has its lookup table.
func (e *Entry) Completed() bool {
	return e.Kind == Scalar || e.Probs != nil
}

// Network holds the probability variables and plain numeric variables of
// one calculation session.
type Network struct {
	ID      string
	Nonp    map[string]float64
	Entries map[string]*Entry
}

// NewNetwork returns an empty network.
func NewNetwork(id string) *Network {
	return &Network{
		ID:      id,
		Nonp:    make(map[string]float64),
		Entries: make(map[string]*Entry),
	}
}

// Vars returns the probability variable names in sorted order.
func (n *Network) Vars() []string {
	out := make([]string, 0, len(n.Entries))
	for name := range n.Entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// alloc makes the maps of a zero Network usable.
func (n *Network) alloc() {
	if n.Nonp == nil {
		n.Nonp = make(map[string]float64)
	}
	if n.Entries == nil {
		n.Entries = make(map[string]*Entry)
	}
}

// SetVar assigns the plain numeric variable name.
func (n *Network) SetVar(name string, v float64) {
	n.alloc()
	n.Nonp[name] = v
}

// SetScalar assigns P(name) = p.
func (n *Network) SetScalar(name string, p float64) error {
	if err := checkProbability(name, p); err != nil {
		return err
	}
	n.alloc()
	e, ok := n.Entries[name]
	if !ok {
		n.Entries[name] = &Entry{Name: name, Kind: Scalar, True: p}
		return nil
	}
	if e.Kind != Scalar {
		return errors.Wrapf(ErrRedefined, "%s is conditional", name)
	}
	e.True = p
	return nil
}

// AddCondition records P(name | cond) = p. Any table built by an earlier
// completion is discarded.
func (n *Network) AddCondition(name string, p float64, cond logic.Term) error {
	if err := checkProbability(name, p); err != nil {
		return err
	}
	n.alloc()
	e, ok := n.Entries[name]
	if !ok {
		e = &Entry{Name: name, Kind: Conditional}
		n.Entries[name] = e
	}
	if e.Kind != Conditional {
		return errors.Wrapf(ErrRedefined, "%s already has an unconditional probability", name)
	}
	e.Conditions = append(e.Conditions, Condition{P: p, Cond: cond})
	e.DependencyVars = nil
	e.Probs = nil
	e.err = nil
	return nil
}

func checkProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return errors.Wrapf(ErrProbabilityRange, "pr %s = %g", name, p)
	}
	return nil
}
