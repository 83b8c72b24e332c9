package pcalc

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrTooManyVariables is returned when a table would need more
	// variables than the configured limits allow.
	ErrTooManyVariables = errors.New("too many variables")

	// ErrProbabilityRange is returned when a probability assignment is not
	// within [0, 1].
	ErrProbabilityRange = errors.New("probability out of range")

	// ErrRedefined is returned when a variable is assigned both as a plain
	// probability and as a conditional one.
	ErrRedefined = errors.New("variable redefined")
)

// SyntaxError reports a formula the grammar could not interpret.
type SyntaxError struct {
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cannot interpret %q: %s", e.Text, e.Msg)
}

// UnknownVariableError reports a probability lookup of a name that has no
// entry in the network.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return "unknown variable in formula: " + e.Name
}

// IncompleteNetworkError reports a conditional entry whose table is missing
// or cannot answer a lookup.
type IncompleteNetworkError struct {
	Name   string
	Reason string
}

func (e *IncompleteNetworkError) Error() string {
	return fmt.Sprintf("probability network incomplete in variable %s: %s", e.Name, e.Reason)
}

// DependencyCycleError describes a loop in the variable dependency map.
// Path starts and ends with the same variable.
type DependencyCycleError struct {
	Path []string
}

func (e *DependencyCycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}
