package utils

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// DefaultWidth is the layout width used when nothing better is known.
const DefaultWidth = 78

// GetTerminalWidth returns the usable width of stdout for goal rendering.
// It prefers the real terminal size, then COLUMNS / GOALVIEW_WIDTH, then DefaultWidth.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		// Subtract 2 to be conservative and avoid wrapping
		return clampWidth(width - 2)
	}
	for _, key := range []string{"GOALVIEW_WIDTH", "COLUMNS"} {
		if val := os.Getenv(key); val != "" {
			if w, err := strconv.Atoi(val); err == nil && w > 0 {
				return clampWidth(w)
			}
		}
	}
	return DefaultWidth
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func clampWidth(w int) int {
	if w > 200 {
		return 200
	}
	if w < 20 {
		return 20
	}
	return w
}
