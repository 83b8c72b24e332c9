package pcalc

import (
	"github.com/google/uuid"
	"github.com/pborges/pcalc/internal/logic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Limits bounds the work a session may do.
type Limits struct {
	MaxDNFPasses      int
	MaxDependencyVars int
	MaxNetworkVars    int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxDNFPasses:      logic.DefaultMaxPasses,
		MaxDependencyVars: DefaultMaxDependencyVars,
		MaxNetworkVars:    DefaultMaxNetworkVars,
	}
}

// Result is the outcome of one formula of a batch. Err holds the failure
// of a formula that could not be interpreted; Value is meaningless then.
type Result struct {
	ID         string
	Text       string
	Height     int
	Assignment bool
	Value      float64
	Err        error
}

// Results holds the outcome of a batch in input order.
type Results struct {
	Session string
	Items   []Result
}

// Get returns the result of the formula with the given id.
func (r *Results) Get(id string) (Result, bool) {
	for _, res := range r.Items {
		if res.ID == id {
			return res, true
		}
	}
	return Result{}, false
}

// Failed counts the formulas that ended in an error.
func (r *Results) Failed() int {
	n := 0
	for _, res := range r.Items {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Session runs batches of formulas. Every Run builds a fresh Network; only
// the dependency map of the last run survives it.
type Session struct {
	ID     string
	Limits Limits

	log     logrus.FieldLogger
	deps    map[string][]string
	network *Network
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithLimits overrides the default limits. Zero fields keep their default.
func WithLimits(l Limits) Option {
	return func(s *Session) {
		if l.MaxDNFPasses > 0 {
			s.Limits.MaxDNFPasses = l.MaxDNFPasses
		}
		if l.MaxDependencyVars > 0 {
			s.Limits.MaxDependencyVars = l.MaxDependencyVars
		}
		if l.MaxNetworkVars > 0 {
			s.Limits.MaxNetworkVars = l.MaxNetworkVars
		}
	}
}

// WithID sets the session id instead of a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// NewSession returns a session with a random id and default limits.
func NewSession(opts ...Option) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		Limits: DefaultLimits(),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("session", s.ID)
	return s
}

func (s *Session) normalizer() logic.Normalizer {
	return logic.Normalizer{MaxPasses: s.Limits.MaxDNFPasses}
}

func (s *Session) evaluator() Evaluator {
	return Evaluator{MaxNetworkVars: s.Limits.MaxNetworkVars, Normalizer: s.normalizer(), Log: s.log}
}

// Interpreter returns an interpreter configured with the session limits.
func (s *Session) Interpreter() Interpreter {
	return Interpreter{Evaluator: s.evaluator()}
}

// Completor returns a completor configured with the session limits.
func (s *Session) Completor() Completor {
	return Completor{MaxDependencyVars: s.Limits.MaxDependencyVars, Normalizer: s.normalizer(), Log: s.log}
}

// Run sorts fs, interprets the assignments against a fresh network,
// completes the network and then interprets the remaining formulas. A
// formula that fails records its error and does not stop the others. An
// error is returned only when the network cannot be completed.
func (s *Session) Run(fs []Formula) (*Results, error) {
	sr := Sort(fs)
	s.deps = sr.Dependencies
	for _, c := range sr.Cycles {
		s.log.WithError(c).Warn("dependency cycle")
	}

	net := NewNetwork(s.ID)
	s.network = net
	in := s.Interpreter()
	items := make([]Result, len(fs))
	run := func(f Sorted) {
		v, err := in.Eval(f.Text, net)
		log := s.log.WithFields(logrus.Fields{"formula": f.ID, "height": f.Height})
		if err != nil {
			log.WithError(err).Debug("formula failed")
		} else {
			log.WithField("value", v).Debug("formula evaluated")
		}
		items[f.Index] = Result{ID: f.ID, Text: f.Text, Height: f.Height, Assignment: f.Assignment, Value: v, Err: err}
	}

	s.log.WithField("formulas", len(fs)).Debug("interpreting assignments")
	for _, f := range sr.Formulas {
		if f.Assignment {
			run(f)
		}
	}
	s.log.WithField("variables", len(net.Entries)).Debug("completing network")
	if err := s.Completor().Complete(net); err != nil {
		return nil, errors.Wrapf(err, "session %s", s.ID)
	}
	s.log.Debug("interpreting queries")
	for _, f := range sr.Formulas {
		if !f.Assignment {
			run(f)
		}
	}

	return &Results{Session: s.ID, Items: items}, nil
}

// Dependencies returns a copy of the dependency map of the last Run.
func (s *Session) Dependencies() map[string][]string {
	out := make(map[string][]string, len(s.deps))
	for k, v := range s.deps {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Network returns the network built by the last Run.
func (s *Session) Network() *Network {
	return s.network
}
