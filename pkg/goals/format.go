package goals

import (
	"fmt"
	"strings"

	"github.com/alantheprice/goalview/pkg/pp"
)

// DefaultSeparator is the bar drawn between hypotheses and the goal.
const DefaultSeparator = "============================"

// Options tune the textual goal panel.
type Options struct {
	// Separator replaces DefaultSeparator when set.
	Separator string
	// AllHyps shows hypotheses for every focused goal, not only the active one.
	AllHyps bool
	// HideShelved omits the shelf and given-up sections.
	HideShelved bool
}

// Format lays out an answer as a goal panel and renders it at width.
func Format[P pp.Element](a GoalAnswer[P], width int, opts Options) (*pp.Output, error) {
	return pp.Render(Layout(a, opts), width)
}

// Layout builds the goal panel document for an answer.
func Layout[P pp.Element](a GoalAnswer[P], opts Options) pp.Doc {
	var b panelBuilder
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if a.Goals != nil {
		layoutGoals(&b, *a.Goals, opts)
	}
	layoutProgram(&b, a.Program)
	layoutMessages(&b, a.Messages)
	if a.Error != nil {
		b.section()
		b.line(pp.Tag("message.error", pp.Glue(pp.Text("Error: "), pp.HoVBox(0, (*a.Error).Layout()))))
	}
	return b.doc()
}

func layoutGoals[P pp.Element](b *panelBuilder, c GoalConfig[P], opts Options) {
	b.section()
	if c.Completed() {
		if len(c.Shelf) == 0 && len(c.GivenUp) == 0 {
			b.line(header("No more goals."))
		} else {
			b.line(header("All focused goals solved."))
		}
	}

	entries := c.Ordered()
	focused := len(c.Goals)
	depth, bulletShown := -1, false
	for _, e := range entries {
		switch e.Section {
		case SectionFocused:
			if e.Index == 0 {
				b.line(header(plural(focused, "goal", "goals")))
			}
			b.section()
			b.line(header(fmt.Sprintf("Goal %d/%d", e.Index+1, focused)))
			if e.Active || opts.AllHyps {
				layoutGoal(b, e.Goal, opts.Separator)
			} else {
				b.line(indented(e.Goal.Ty.Layout()))
			}
		case SectionStack:
			if e.Depth != depth {
				depth = e.Depth
				if c.Bullet != nil && !bulletShown && depth > 0 {
					// The innermost frame has nothing pending but still
					// owns the bullet.
					frameHeader(b, c, 0)
					b.line(pp.Tag("goal.bullet", (*c.Bullet).Layout()))
					bulletShown = true
				}
				frameHeader(b, c, depth)
				if c.Bullet != nil && !bulletShown {
					b.line(pp.Tag("goal.bullet", (*c.Bullet).Layout()))
					bulletShown = true
				}
			}
			b.line(indented(e.Goal.Ty.Layout()))
		case SectionShelf:
			if opts.HideShelved {
				continue
			}
			if e.Index == 0 {
				b.section()
				b.line(header(plural(len(c.Shelf), "shelved goal", "shelved goals")))
			}
			b.line(indented(e.Goal.Ty.Layout()))
		case SectionGivenUp:
			if opts.HideShelved {
				continue
			}
			if e.Index == 0 {
				b.section()
				b.line(header(plural(len(c.GivenUp), "given up goal", "given up goals")))
			}
			b.line(indented(e.Goal.Ty.Layout()))
		}
	}
	if c.Bullet != nil && !bulletShown {
		if len(c.Stack) > 0 {
			frameHeader(b, c, 0)
		} else {
			b.section()
		}
		b.line(pp.Tag("goal.bullet", (*c.Bullet).Layout()))
	}
}

func frameHeader[P pp.Element](b *panelBuilder, c GoalConfig[P], depth int) {
	b.section()
	pending := len(c.Stack[depth].Pending)
	b.line(header(fmt.Sprintf("%s at depth %d", plural(pending, "remaining goal", "remaining goals"), depth+1)))
}

func layoutGoal[P pp.Element](b *panelBuilder, g Goal[P], sep string) {
	for _, h := range g.Hyps {
		names := make([]pp.Doc, 0, 2*len(h.Names))
		for i, n := range h.Names {
			if i > 0 {
				names = append(names, pp.Text(","), pp.Space())
			}
			names = append(names, n.Layout())
		}
		parts := []pp.Doc{pp.Tag("goal.hyp.name", pp.HoVBox(0, pp.Glue(names...)))}
		if h.Def != nil {
			parts = append(parts, pp.Text(" :="), pp.Space(), pp.HoVBox(0, (*h.Def).Layout()))
		}
		parts = append(parts, pp.Text(" :"), pp.Space(), pp.HoVBox(0, h.Ty.Layout()))
		b.line(pp.HoVBox(2, pp.Glue(parts...)))
	}
	b.line(pp.Tag("goal.separator", pp.Text(sep)))
	b.line(pp.HoVBox(0, g.Ty.Layout()))
}

func layoutProgram(b *panelBuilder, p ProgramInfo) {
	if len(p) == 0 {
		return
	}
	b.section()
	for _, e := range p {
		b.line(header(fmt.Sprintf("Program %s: %s", e.ID, plural(e.View.Remaining, "obligation remaining", "obligations remaining"))))
		for _, o := range e.View.Obligations {
			if o.Solved {
				continue
			}
			line := "  - " + string(o.Name)
			if o.Loc != nil {
				line += fmt.Sprintf(" (line %d)", o.Loc.LineNb)
			}
			b.line(pp.Text(line))
		}
	}
}

func layoutMessages[P pp.Element](b *panelBuilder, m Messages[P]) {
	if m.Len() == 0 {
		return
	}
	b.section()
	b.line(header(plural(m.Len(), "message", "messages")))
	for _, msg := range m.Leveled() {
		name := LevelName(msg.Level)
		label := pp.Text("[" + name + "] ")
		b.line(pp.Tag("message."+strings.ReplaceAll(name, " ", "-"), pp.HoVBox(2, pp.Glue(label, msg.Text.Layout()))))
	}
}

func header(s string) pp.Doc {
	return pp.Tag("goal.header", pp.Text(s))
}

func indented(d pp.Doc) pp.Doc {
	return pp.Glue(pp.Text("  "), pp.HoVBox(0, d))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// panelBuilder stacks lines at column 0. A nil line is a blank separator.
type panelBuilder struct {
	lines []pp.Doc
}

func (b *panelBuilder) line(d pp.Doc) { b.lines = append(b.lines, d) }

// section separates a new block from whatever came before it.
func (b *panelBuilder) section() {
	if len(b.lines) > 0 && b.lines[len(b.lines)-1] != nil {
		b.lines = append(b.lines, nil)
	}
}

func (b *panelBuilder) doc() pp.Doc {
	lines := b.lines
	for len(lines) > 0 && lines[len(lines)-1] == nil {
		lines = lines[:len(lines)-1]
	}
	parts := make([]pp.Doc, 0, 2*len(lines))
	for i, l := range lines {
		if i > 0 {
			parts = append(parts, pp.ForceNewline())
		}
		if l != nil {
			parts = append(parts, l)
		}
	}
	return pp.VBox(0, pp.Glue(parts...))
}
