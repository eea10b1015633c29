// Package theme styles rendered Pp markup for terminals.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alantheprice/goalview/pkg/pp"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette
// ---------------------------------------------------------------------------

const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorSky      lipgloss.Color = "#89dceb"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
)

// Palette maps tag names to styles. A tag without an exact entry falls back
// to its dotted prefixes ("constr.keyword" → "constr").
type Palette map[string]lipgloss.Style

// Default returns the palette for the tags the proof engine emits.
func Default() Palette {
	return Palette{
		"constr.keyword":    lipgloss.NewStyle().Foreground(colorMauve).Bold(true),
		"constr.evar":       lipgloss.NewStyle().Foreground(colorPeach),
		"constr.type":       lipgloss.NewStyle().Foreground(colorYellow),
		"constr.notation":   lipgloss.NewStyle().Foreground(colorSubtext0),
		"constr.variable":   lipgloss.NewStyle().Foreground(colorSky),
		"constr.reference":  lipgloss.NewStyle().Foreground(colorBlue),
		"constr.path":       lipgloss.NewStyle().Foreground(colorTeal),
		"module.definition": lipgloss.NewStyle().Foreground(colorBlue).Bold(true),
		"module.keyword":    lipgloss.NewStyle().Foreground(colorMauve),
		"tactic.keyword":    lipgloss.NewStyle().Foreground(colorMauve),
		"tactic.primitive":  lipgloss.NewStyle().Foreground(colorLavender),
		"tactic.string":     lipgloss.NewStyle().Foreground(colorGreen),
		"message.error":     lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		"message.warning":   lipgloss.NewStyle().Foreground(colorYellow),
		"message.debug":     lipgloss.NewStyle().Foreground(colorOverlay1),
		"diff.added":        lipgloss.NewStyle().Foreground(colorGreen),
		"diff.removed":      lipgloss.NewStyle().Foreground(colorRed).Strikethrough(true),
		"goal.header":       lipgloss.NewStyle().Foreground(colorOverlay1),
	}
}

// Lookup returns the style for the innermost styled tag in tags.
func (p Palette) Lookup(tags []string) (lipgloss.Style, bool) {
	for i := len(tags) - 1; i >= 0; i-- {
		name := tags[i]
		for name != "" {
			if s, ok := p[name]; ok {
				return s, true
			}
			dot := strings.LastIndexByte(name, '.')
			if dot < 0 {
				break
			}
			name = name[:dot]
		}
	}
	return lipgloss.Style{}, false
}

// ANSI renders markup with terminal styling. Styles are applied per line so
// lipgloss never pads multi-line spans.
func ANSI(n *pp.Node, p Palette) string {
	var sb strings.Builder
	n.Walk(func(text string, tags []string) {
		style, ok := p.Lookup(tags)
		if !ok {
			sb.WriteString(text)
			return
		}
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if line != "" {
				sb.WriteString(style.Render(line))
			}
		}
	})
	return sb.String()
}
