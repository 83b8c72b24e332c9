package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	buildinfo "github.com/pborges/pcalc"
	"github.com/pborges/pcalc/internal/formulafile"
	"github.com/pborges/pcalc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lawn = `rain: pr Rain = 0.2
sprinkler_rain: pr Sprinkler given Rain = 0.01
sprinkler_dry: pr Sprinkler given not Rain = 0.4
wet_none: pr Wet given not Sprinkler and not Rain = 0
wet_rain: pr Wet given not Sprinkler and Rain = 0.8
wet_sprinkler: pr Wet given Sprinkler and not Rain = 0.9
wet_both: pr Wet given Sprinkler and Rain = 0.99
wet: "%pr Wet?"
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, buildinfo.Banner()+"\n", out)
}

func TestEval(t *testing.T) {
	out, _, err := execute(t, "eval", "probability of Y given X is 50%", "probability of X is 50%", "%probability of Y?")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "f1  0.5  probability of Y given X is 50%", lines[0])
	assert.Equal(t, "f3  25  %probability of Y?", lines[2])
}

func TestEval_Failure(t *testing.T) {
	out, _, err := execute(t, "eval", "pr X = .5", "pr Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 formulas failed")
	assert.Contains(t, out, "f2  error: unknown variable in formula: Nope")
}

func TestEval_LimitFlagsAndConfig(t *testing.T) {
	_, _, err := execute(t, "--max-network-vars", "1", "eval", "pr X = .5", "pr Y = .5", "pr X")
	require.Error(t, err)

	cfg := writeFile(t, "pcalc.toml", "[limits]\nmax_network_vars = 1\n")
	out, _, err := execute(t, "--config", cfg, "eval", "pr X = .5", "pr Y = .5", "pr X")
	require.Error(t, err)
	assert.Contains(t, out, "too many variables")

	_, _, err = execute(t, "--max-network-vars", "99", "eval", "pr X = .5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_network_vars")
}

func TestBatch_Stdout(t *testing.T) {
	in := writeFile(t, "lawn.yaml", lawn)
	out, _, err := execute(t, "batch", in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, buildinfo.Banner()+"\n"))

	got, err := testutil.ParseReport([]byte(out))
	require.NoError(t, err)
	require.Len(t, got.Records, 8)
	assert.Equal(t, "wet", got.Records[7].ID)
	assert.Equal(t, 45.0, got.Records[7].Value)
}

func TestBatch_OutputYAML(t *testing.T) {
	a := writeFile(t, "a.yaml", lawn)
	b := writeFile(t, "b.pc", "pr X = .5\npr X and Y\n")
	outPath := filepath.Join(t.TempDir(), "results.yaml")

	_, _, err := execute(t, "batch", "--format", "yaml", "--output", outPath, a, b)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	docs := strings.Split(string(data), "---\n")
	require.Len(t, docs, 3, "leading separator plus one document per file")

	ids, entries, err := formulafile.ReadResults([]byte(docs[1]))
	require.NoError(t, err)
	assert.Len(t, ids, 8)
	assert.Equal(t, 45.0, *entries["wet"].Value)

	ids, entries, err = formulafile.ReadResults([]byte(docs[2]))
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2"}, ids)
	assert.Contains(t, entries["L2"].Error, "unknown variable in formula: Y")
}

func TestBatch_Errors(t *testing.T) {
	_, _, err := execute(t, "batch", "--format", "xml", "x.pc")
	assert.Error(t, err)

	_, _, err = execute(t, "batch", filepath.Join(t.TempDir(), "missing.pc"))
	assert.Error(t, err)
}

func TestDeps(t *testing.T) {
	in := writeFile(t, "cycle.pc", "pr X given Y = .5\npr Y given X = .5\npr Y?\n")
	out, errOut, err := execute(t, "deps", in)
	require.NoError(t, err)
	assert.Contains(t, out, "  X: Y\n")
	assert.Contains(t, out, "  Y: X\n")
	assert.Contains(t, out, "1000  L3  pr Y?")
	assert.Contains(t, errOut, "warning: dependency cycle: X -> Y -> X")
}

func TestDNF(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"not", "(X or Y)"}, "-X & -Y"},
		{[]string{"not not X"}, "X"},
		{[]string{"X and not X"}, "[]"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, _, err := execute(t, append([]string{"dnf"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}

	_, _, err := execute(t, "dnf", "X and")
	assert.Error(t, err)

	out, _, err := execute(t, "dnf", "--minimize", "(A and B) or (A and not B)")
	require.NoError(t, err)
	assert.Equal(t, "A\n", out)

	_, _, err = execute(t, "dnf", "-m", "A given B")
	assert.Error(t, err)
}
