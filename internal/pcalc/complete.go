package pcalc

import (
	"github.com/pborges/pcalc/internal/bitmap"
	"github.com/pborges/pcalc/internal/logic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDependencyVars caps the number of conditions and dependency
// variables of a single conditional entry.
const DefaultMaxDependencyVars = 16

// Completor turns the conditions of every conditional entry into a lookup
// table over the entry's dependency variables, synthesizing missing
// combinations with noisy-OR.
type Completor struct {
	MaxDependencyVars int
	Normalizer        logic.Normalizer
	Log               logrus.FieldLogger
}

// Complete fills in DependencyVars and Probs of every conditional entry of
// n. Entries over the dependency limit keep their error and fail any query
// that reaches them. A condition that does not normalize to a disjunction
// of literal conjunctions is returned as an error.
func (c Completor) Complete(n *Network) error {
	if n == nil {
		return nil
	}
	for _, name := range n.Vars() {
		e := n.Entries[name]
		if e.Kind != Conditional {
			continue
		}
		if err := c.completeEntry(e); err != nil {
			return errors.Wrapf(err, "complete %s", name)
		}
	}
	return nil
}

func (c Completor) completeEntry(e *Entry) error {
	log := c.logger().WithField("variable", e.Name)
	terms := make([]logic.Term, len(e.Conditions))
	for i, cond := range e.Conditions {
		terms[i] = cond.Cond
	}
	deps := logic.Vars(terms...)

	limit := c.MaxDependencyVars
	if limit <= 0 {
		limit = DefaultMaxDependencyVars
	}
	if len(deps) > limit || len(e.Conditions) > limit {
		e.err = errors.Wrapf(ErrTooManyVariables, "%s has %d conditions over %d variables, limit is %d",
			e.Name, len(e.Conditions), len(deps), limit)
		log.WithError(e.err).Warn("conditional entry left incomplete")
		return nil
	}

	conds := e.Conditions
	complete, err := c.orComplete(conds, deps)
	if err != nil {
		return err
	}
	if !complete {
		conds = c.noisyOr(conds)
		log.WithField("conditions", len(conds)).Debug("completed with noisy-or")
	}
	probs, err := c.canonicalize(conds, deps)
	if err != nil {
		return err
	}
	e.Conditions = conds
	e.DependencyVars = deps
	e.Probs = probs
	e.err = nil
	return nil
}

// forEachCombination calls fn with every combination index of deps matched
// by cond.
func (c Completor) forEachCombination(cond logic.Term, deps []string, fn func(m uint64) bool) error {
	d, converged := c.Normalizer.Normalize(cond)
	if !converged {
		c.logger().WithField("condition", cond.String()).Warn("condition did not reach a normal form")
	}
	conjs, err := logic.Disjuncts(d)
	if err != nil {
		return err
	}
	for _, conj := range conjs {
		imp, ok := logic.NewImplicant(conj, deps)
		if !ok {
			continue
		}
		stop := false
		imp.Each(func(m uint64) bool {
			if !fn(m) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return nil
		}
	}
	return nil
}

// orComplete reports whether no two expanded conditions share a
// combination of deps. Conditions are expanded over every dependency
// variable they do not mention.
func (c Completor) orComplete(conds []Condition, deps []string) (bool, error) {
	seen := bitmap.New(1 << len(deps))
	complete := true
	for _, cond := range conds {
		err := c.forEachCombination(cond.Cond, deps, func(m uint64) bool {
			if seen.TestAndSet(int(m)) {
				complete = false
			}
			return complete
		})
		if err != nil {
			return false, err
		}
		if !complete {
			return false, nil
		}
	}
	return true, nil
}

// noisyOr replaces conds with one condition per consistent subset of the
// original conditions. A subset holds when its conditions are true and the
// others false; its probability is 1 - prod(1 - p) over the members.
func (c Completor) noisyOr(conds []Condition) []Condition {
	if len(conds) == 1 {
		return []Condition{
			{P: 0, Cond: logic.N(conds[0].Cond)},
			conds[0],
		}
	}
	var out []Condition
	for i := 0; i < 1<<len(conds); i++ {
		terms := make([]logic.Term, len(conds))
		q := 1.0
		for j, cond := range conds {
			if i&(1<<j) != 0 {
				terms[j] = cond.Cond
				q *= 1 - cond.P
			} else {
				terms[j] = logic.N(cond.Cond)
			}
		}
		d, _ := c.Normalizer.Normalize(logic.AllOf(terms...))
		if logic.IsEmpty(d) {
			continue
		}
		out = append(out, Condition{P: 1 - q, Cond: d})
	}
	return out
}

// canonicalize builds the lookup table over deps. The first condition
// covering a combination wins; uncovered combinations are 0.
func (c Completor) canonicalize(conds []Condition, deps []string) ([]float64, error) {
	probs := make([]float64, 1<<len(deps))
	assigned := bitmap.New(len(probs))
	for _, cond := range conds {
		p := cond.P
		err := c.forEachCombination(cond.Cond, deps, func(m uint64) bool {
			if !assigned.TestAndSet(int(m)) {
				probs[m] = p
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return probs, nil
}

func (c Completor) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}
