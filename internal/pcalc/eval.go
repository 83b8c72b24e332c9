package pcalc

import (
	"github.com/pborges/pcalc/internal/bitmap"
	"github.com/pborges/pcalc/internal/logic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxNetworkVars caps the number of network variables a probability
// query may expand over.
const DefaultMaxNetworkVars = 24

// Evaluator computes probabilities of logic terms against a completed
// Network.
type Evaluator struct {
	MaxNetworkVars int
	Normalizer     logic.Normalizer
	Log            logrus.FieldLogger
}

// Prob returns the probability of t. The term is normalized, every
// disjunct is expanded over the network variables it does not mention and
// the joint probabilities of the distinct combinations are summed.
func (e Evaluator) Prob(t logic.Term, n *Network) (float64, error) {
	if n == nil {
		n = NewNetwork("")
	}
	d, converged := e.Normalizer.Normalize(t)
	if !converged {
		e.logger().WithField("term", t.String()).Warn("term did not reach a normal form")
	}
	return e.prob(d, n)
}

func (e Evaluator) prob(d logic.Term, n *Network) (float64, error) {
	div, ok := d.(logic.Divide)
	if !ok {
		return e.jointSum(d, n)
	}
	if logic.IsEmpty(div.Num) && logic.IsEmpty(div.Den) {
		return 1, nil
	}
	num, err := e.prob(div.Num, n)
	if err != nil {
		return 0, err
	}
	den, err := e.prob(div.Den, n)
	if err != nil {
		return 0, err
	}
	return num / den, nil
}

func (e Evaluator) jointSum(d logic.Term, n *Network) (float64, error) {
	conjs, err := logic.Disjuncts(d)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot calculate probability of %s", d)
	}
	for _, conj := range conjs {
		for _, lit := range conj.Lits {
			if _, ok := n.Entries[lit.Name]; !ok {
				return 0, &UnknownVariableError{Name: lit.Name}
			}
		}
	}
	if len(conjs) == 0 {
		return 0, nil
	}

	vars := n.Vars()
	limit := e.MaxNetworkVars
	if limit <= 0 {
		limit = DefaultMaxNetworkVars
	}
	if len(vars) > limit {
		return 0, errors.Wrapf(ErrTooManyVariables, "network has %d variables, limit is %d", len(vars), limit)
	}
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}

	seen := bitmap.New(1 << len(vars))
	var sum float64
	for _, conj := range conjs {
		imp, ok := logic.NewImplicant(conj, vars)
		if !ok {
			continue
		}
		var jerr error
		imp.Each(func(m uint64) bool {
			if seen.TestAndSet(int(m)) {
				return true
			}
			p, err := joint(m, vars, index, n)
			if err != nil {
				jerr = err
				return false
			}
			sum += p
			return true
		})
		if jerr != nil {
			return 0, jerr
		}
	}
	return sum, nil
}

// joint returns the probability of the full combination m of vars.
func joint(m uint64, vars []string, index map[string]int, n *Network) (float64, error) {
	p := 1.0
	for j, name := range vars {
		v, err := lookup(n.Entries[name], m, len(vars), index)
		if err != nil {
			return 0, err
		}
		if !logic.Bit(m, j, len(vars)) {
			v = 1 - v
		}
		p *= v
	}
	return p, nil
}

// lookup returns the probability that e is true within combination m.
func lookup(e *Entry, m uint64, width int, index map[string]int) (float64, error) {
	if e.err != nil {
		return 0, e.err
	}
	if e.Kind == Scalar {
		return e.True, nil
	}
	if e.Probs == nil {
		return 0, &IncompleteNetworkError{Name: e.Name, Reason: "conditions were never completed"}
	}
	var i int
	for _, dep := range e.DependencyVars {
		j, ok := index[dep]
		if !ok {
			return 0, &IncompleteNetworkError{Name: e.Name, Reason: "probability undefined, " + dep + " has no probability"}
		}
		i <<= 1
		if logic.Bit(m, j, width) {
			i |= 1
		}
	}
	if i >= len(e.Probs) {
		return 0, &IncompleteNetworkError{Name: e.Name, Reason: "probability undefined for this combination"}
	}
	return e.Probs[i], nil
}

func (e Evaluator) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}
