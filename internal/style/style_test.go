package style

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestShouldUseColor(t *testing.T) {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		t.Skip("NO_COLOR is set")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	t.Setenv("CLICOLOR_FORCE", "")
	assert.False(t, ShouldUseColor(f), "regular files are not terminals")

	t.Setenv("CLICOLOR_FORCE", "1")
	assert.True(t, ShouldUseColor(f))

	t.Setenv("NO_COLOR", "")
	assert.False(t, ShouldUseColor(f), "NO_COLOR wins even when empty")
}

func TestPrintPlain(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	var buf bytes.Buffer
	PrintWarning(&buf, "dependency cycle: %s", "X -> Y -> X")
	PrintError(&buf, errors.New("boom"))
	assert.Equal(t, "warning: dependency cycle: X -> Y -> X\nerror: boom\n", buf.String())
}
