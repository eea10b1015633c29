package pp

import (
	"unicode"

	"golang.org/x/text/width"
)

// TextWidth returns the number of terminal columns s occupies. East Asian
// wide and fullwidth runes take two columns, combining marks none.
func TextWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	if r == 0 || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
