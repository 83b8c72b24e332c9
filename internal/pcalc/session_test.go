package pcalc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wetGrassFormulas = []Formula{
	{ID: "f1", Text: "pr Rain=0.2"},
	{ID: "f2", Text: "pr Sprinkler:Rain=0.01"},
	{ID: "f3", Text: "pr Sprinkler:-Rain=0.4"},
	{ID: "f4", Text: "pr Wet:-Sprinkler,-Rain=0"},
	{ID: "f5", Text: "pr Wet:-Sprinkler,Rain=0.8"},
	{ID: "f6", Text: "pr Wet:Sprinkler,-Rain=0.9"},
	{ID: "f7", Text: "pr Wet:Sprinkler,Rain=0.99"},
	{ID: "f8", Text: "%pr Wet?"},
}

func quietSession(opts ...Option) *Session {
	log, _ := test.NewNullLogger()
	return NewSession(append([]Option{WithLogger(log)}, opts...)...)
}

func TestSession_WetGrass(t *testing.T) {
	s := quietSession()
	res, err := s.Run(wetGrassFormulas)
	require.NoError(t, err)
	require.Len(t, res.Items, len(wetGrassFormulas))
	assert.Zero(t, res.Failed())

	for i, f := range wetGrassFormulas {
		assert.Equal(t, f.ID, res.Items[i].ID, "results keep input order")
	}
	q, ok := res.Get("f8")
	require.True(t, ok)
	assert.Equal(t, 45.0, q.Value)
	assert.False(t, q.Assignment)

	assert.Equal(t, []string{"Rain", "Sprinkler"}, s.Dependencies()["Wet"])
	assert.Equal(t, s.ID, s.Network().ID)
}

func TestSession_SimpleExample(t *testing.T) {
	res, err := quietSession().Run([]Formula{
		{ID: "a", Text: "probability of Y given X is 50%"},
		{ID: "b", Text: "probability of X is 50%"},
		{ID: "c", Text: "So, the %probability of Y?"},
	})
	require.NoError(t, err)
	a, _ := res.Get("a")
	assert.NoError(t, a.Err)
	assert.Equal(t, 0.5, a.Value)
	c, _ := res.Get("c")
	require.Error(t, c.Err, "leading prose is not part of the grammar")

	res, err = quietSession().Run([]Formula{
		{ID: "a", Text: "probability of Y given X is 50%"},
		{ID: "b", Text: "probability of X is 50%"},
		{ID: "c", Text: "%probability of Y?"},
	})
	require.NoError(t, err)
	c, _ = res.Get("c")
	require.NoError(t, c.Err)
	assert.Equal(t, 25.0, c.Value)
}

func TestSession_FailureIsolated(t *testing.T) {
	res, err := quietSession().Run([]Formula{
		{ID: "x", Text: "pr X = .5"},
		{ID: "y", Text: "pr Y = .8"},
		{ID: "bad", Text: "pr X and Nope"},
		{ID: "and", Text: "pr X and Y"},
		{ID: "or", Text: "pr X or Y"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed())

	bad, ok := res.Get("bad")
	require.True(t, ok)
	var unknown *UnknownVariableError
	assert.True(t, errors.As(bad.Err, &unknown), "got %v", bad.Err)

	and, _ := res.Get("and")
	assert.InDelta(t, 0.4, and.Value, 1e-9)
	or, _ := res.Get("or")
	assert.InDelta(t, 0.9, or.Value, 1e-9)
}

func TestSession_CycleTerminates(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := NewSession(WithLogger(log))
	res, err := s.Run([]Formula{
		{ID: "1", Text: "pr X:Y=.5"},
		{ID: "2", Text: "pr Y:X=.5"},
		{ID: "3", Text: "pr Y?"},
	})
	require.NoError(t, err)
	q, _ := res.Get("3")
	require.NoError(t, q.Err)
	assert.InDelta(t, 0.25, q.Value, 1e-9)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "dependency cycle" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestSession_Limits(t *testing.T) {
	s := quietSession(WithLimits(Limits{MaxNetworkVars: 2}), WithID("limited"))
	assert.Equal(t, "limited", s.ID)
	assert.Equal(t, DefaultMaxDependencyVars, s.Limits.MaxDependencyVars)

	res, err := s.Run([]Formula{
		{ID: "a", Text: "pr A = .5"},
		{ID: "b", Text: "pr B = .5"},
		{ID: "c", Text: "pr C = .5"},
		{ID: "q", Text: "pr A"},
	})
	require.NoError(t, err)
	q, _ := res.Get("q")
	assert.True(t, errors.Is(q.Err, ErrTooManyVariables), "got %v", q.Err)
}

func TestSession_DuplicateIDs(t *testing.T) {
	res, err := quietSession().Run([]Formula{
		{ID: "x", Text: "pr X = .5"},
		{ID: "q", Text: "%pr X"},
		{ID: "q", Text: "pr X"},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, 50.0, res.Items[1].Value)
	assert.Equal(t, 0.5, res.Items[2].Value)

	first, _ := res.Get("q")
	assert.Equal(t, "%pr X", first.Text)
}
