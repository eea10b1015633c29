package goals

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/alantheprice/goalview/pkg/pp"
)

// Op is the kind of a diff hunk.
type Op int

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

// Change is a run of whole lines that were kept, added or removed.
type Change struct {
	Op    Op
	Lines []string
}

// Diff compares two rendered goal panels line by line.
func Diff(prev, after string) []Change {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(terminated(prev), terminated(after))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	changes := make([]Change, 0, len(diffs))
	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		default:
			op = OpEqual
		}
		if d.Text == "" {
			continue
		}
		text := strings.TrimSuffix(d.Text, "\n")
		changes = append(changes, Change{Op: op, Lines: strings.Split(text, "\n")})
	}
	return changes
}

// terminated ends a non-empty text with a newline so its last line compares
// equal to the same line followed by more text.
func terminated(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// DiffStats counts added and removed lines.
func DiffStats(changes []Change) (added, removed int) {
	for _, c := range changes {
		switch c.Op {
		case OpInsert:
			added += len(c.Lines)
		case OpDelete:
			removed += len(c.Lines)
		}
	}
	return
}

// DiffLayout renders changes as a unified listing: "+ " for added lines,
// "- " for removed ones, and two spaces for context. Added and removed lines
// carry the diff.added and diff.removed tags.
func DiffLayout(changes []Change) pp.Doc {
	var b panelBuilder
	for _, c := range changes {
		for _, l := range c.Lines {
			switch c.Op {
			case OpInsert:
				b.line(pp.Tag("diff.added", pp.Text("+ "+l)))
			case OpDelete:
				b.line(pp.Tag("diff.removed", pp.Text("- "+l)))
			default:
				b.line(pp.Text("  " + l))
			}
		}
	}
	return b.doc()
}
