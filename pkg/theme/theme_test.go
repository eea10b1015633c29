package theme

import (
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/pp"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func lipglossStyle(marker string) lipgloss.Style {
	return lipgloss.NewStyle().SetString(marker)
}

func TestPalette_LookupPrefersInnermostAndFallsBackToPrefix(t *testing.T) {
	p := Palette{
		"constr":         lipglossStyle("c"),
		"constr.keyword": lipglossStyle("k"),
		"message":        lipglossStyle("m"),
	}

	s, ok := p.Lookup([]string{"message.error", "constr.keyword"})
	require.True(t, ok)
	assert.Equal(t, "k", s.Value())

	s, ok = p.Lookup([]string{"constr.variable"})
	require.True(t, ok)
	assert.Equal(t, "c", s.Value())

	_, ok = p.Lookup([]string{"other"})
	assert.False(t, ok)
}

func TestANSI_PreservesTextAndLines(t *testing.T) {
	d := pp.HVBox(0, pp.Glue(
		pp.Tag("constr.keyword", pp.Text("forall")),
		pp.Space(),
		pp.Tag("constr.variable", pp.Glue(pp.Text("n"), pp.Brk(1, 2), pp.Text("m"))),
	))
	out, err := pp.Render(d, 6)
	require.NoError(t, err)

	styled := ANSI(out.Markup, Default())
	assert.Equal(t, out.Text, ansiEscape.ReplaceAllString(styled, ""))
}

func TestDefault_CoversDiffTags(t *testing.T) {
	p := Default()
	_, ok := p.Lookup([]string{"diff.added"})
	assert.True(t, ok)
	_, ok = p.Lookup([]string{"diff.removed.bg"})
	assert.True(t, ok)
}
