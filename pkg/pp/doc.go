// Package pp implements the structured pretty-printing documents sent by the
// proof engine and the box-fitting layout that turns them into text.
//
// A Doc is an immutable tree. Width decisions are never stored in the tree;
// they are made by Render for a given maximum width.
package pp

import (
	"fmt"
	"strings"

	"github.com/alantheprice/goalview/pkg/utils"
)

// Doc is a pretty-printing document. The set of implementations is closed:
// EmptyDoc, TextDoc, GlueDoc, BoxDoc, TagDoc, BreakDoc, NewlineDoc and
// CommentDoc.
type Doc interface {
	// Layout returns the document itself so a Doc is usable as an Element.
	Layout() Doc
	isDoc()
}

// BoxMode is the line-breaking discipline of a box.
type BoxMode int

const (
	// BoxH never breaks.
	BoxH BoxMode = iota
	// BoxV breaks at every break hint.
	BoxV
	// BoxHV stays on one line when the whole box fits, otherwise breaks everywhere.
	BoxHV
	// BoxHoV fills lines, breaking only where the next atom would overflow.
	BoxHoV
)

func (m BoxMode) String() string {
	switch m {
	case BoxH:
		return "h"
	case BoxV:
		return "v"
	case BoxHV:
		return "hv"
	case BoxHoV:
		return "hov"
	default:
		return fmt.Sprintf("BoxMode(%d)", int(m))
	}
}

// BoxKind is a box discipline plus the indentation applied to broken lines.
type BoxKind struct {
	Mode   BoxMode
	Indent int
}

type (
	EmptyDoc   struct{}
	NewlineDoc struct{}

	TextDoc struct {
		s string
	}

	GlueDoc struct {
		children []Doc
	}

	BoxDoc struct {
		kind BoxKind
		body Doc
	}

	TagDoc struct {
		tag  string
		body Doc
	}

	BreakDoc struct {
		spaces int
		offset int
	}

	CommentDoc struct {
		lines []string
	}
)

func (EmptyDoc) isDoc()   {}
func (NewlineDoc) isDoc() {}
func (TextDoc) isDoc()    {}
func (GlueDoc) isDoc()    {}
func (BoxDoc) isDoc()     {}
func (TagDoc) isDoc()     {}
func (BreakDoc) isDoc()   {}
func (CommentDoc) isDoc() {}

func (d EmptyDoc) Layout() Doc   { return d }
func (d NewlineDoc) Layout() Doc { return d }
func (d TextDoc) Layout() Doc    { return d }
func (d GlueDoc) Layout() Doc    { return d }
func (d BoxDoc) Layout() Doc     { return d }
func (d TagDoc) Layout() Doc     { return d }
func (d BreakDoc) Layout() Doc   { return d }
func (d CommentDoc) Layout() Doc { return d }

// String returns the literal text.
func (d TextDoc) String() string { return d.s }

// Children returns a copy of the glued documents.
func (d GlueDoc) Children() []Doc { return append([]Doc(nil), d.children...) }

func (d BoxDoc) Kind() BoxKind { return d.kind }
func (d BoxDoc) Body() Doc     { return d.body }

func (d TagDoc) Tag() string { return d.tag }
func (d TagDoc) Body() Doc   { return d.body }

// Spaces is the number of spaces printed when the break is not taken.
func (d BreakDoc) Spaces() int { return d.spaces }

// Offset is added to the box indentation when the break is taken.
func (d BreakDoc) Offset() int { return d.offset }

// Lines returns a copy of the comment lines.
func (d CommentDoc) Lines() []string { return append([]string(nil), d.lines...) }

// Empty returns the document that prints nothing.
func Empty() Doc { return EmptyDoc{} }

// Text returns a literal text document.
func Text(s string) Doc { return TextDoc{s: s} }

// Textf is Text over fmt.Sprintf.
func Textf(format string, args ...interface{}) Doc { return TextDoc{s: fmt.Sprintf(format, args...)} }

// Glue concatenates documents horizontally. Nil children are treated as Empty.
func Glue(children ...Doc) Doc {
	out := make([]Doc, 0, len(children))
	for _, c := range children {
		if c == nil {
			c = EmptyDoc{}
		}
		out = append(out, c)
	}
	return GlueDoc{children: out}
}

// NewBox opens an indentation scope. indent must be non-negative.
func NewBox(mode BoxMode, indent int, body Doc) (Doc, error) {
	if mode < BoxH || mode > BoxHoV {
		return nil, utils.NewLayoutError("unknown box mode %d", int(mode))
	}
	if indent < 0 {
		return nil, utils.NewLayoutError("negative box indent %d", indent)
	}
	if body == nil {
		body = EmptyDoc{}
	}
	return BoxDoc{kind: BoxKind{Mode: mode, Indent: indent}, body: body}, nil
}

// NewBreak returns a break hint. spaces must be non-negative; offset may be
// negative to outdent relative to the enclosing box.
func NewBreak(spaces, offset int) (Doc, error) {
	if spaces < 0 {
		return nil, utils.NewLayoutError("negative break width %d", spaces)
	}
	return BreakDoc{spaces: spaces, offset: offset}, nil
}

// Tag annotates body with tag. Tags do not affect layout.
func Tag(tag string, body Doc) Doc {
	if body == nil {
		body = EmptyDoc{}
	}
	return TagDoc{tag: tag, body: body}
}

// ForceNewline returns an unconditional line break.
func ForceNewline() Doc { return NewlineDoc{} }

// Comment returns a verbatim multi-line block.
func Comment(lines ...string) Doc {
	return CommentDoc{lines: append([]string(nil), lines...)}
}

// Must panics if err is non-nil. It is meant for documents built from constants.
func Must(d Doc, err error) Doc {
	if err != nil {
		panic(err)
	}
	return d
}

// HBox wraps body in a horizontal box.
func HBox(body Doc) Doc { return BoxDoc{kind: BoxKind{Mode: BoxH}, body: orEmpty(body)} }

// VBox wraps body in a vertical box; negative indents are clamped to zero.
func VBox(indent int, body Doc) Doc { return box(BoxV, indent, body) }

// HVBox wraps body in a horizontal-or-vertical box.
func HVBox(indent int, body Doc) Doc { return box(BoxHV, indent, body) }

// HoVBox wraps body in a fill box.
func HoVBox(indent int, body Doc) Doc { return box(BoxHoV, indent, body) }

// Space is Break(1, 0).
func Space() Doc { return BreakDoc{spaces: 1} }

// Cut is Break(0, 0).
func Cut() Doc { return BreakDoc{} }

// Brk is a break hint for constant, non-negative widths; negative widths are clamped.
func Brk(spaces, offset int) Doc {
	if spaces < 0 {
		spaces = 0
	}
	return BreakDoc{spaces: spaces, offset: offset}
}

func box(mode BoxMode, indent int, body Doc) Doc {
	if indent < 0 {
		indent = 0
	}
	return BoxDoc{kind: BoxKind{Mode: mode, Indent: indent}, body: orEmpty(body)}
}

func orEmpty(d Doc) Doc {
	if d == nil {
		return EmptyDoc{}
	}
	return d
}

// Validate checks a tree built outside the constructors (for instance a zero
// value embedded in a struct) against the construction rules.
func Validate(d Doc) error {
	switch d := d.(type) {
	case nil:
		return utils.NewLayoutError("nil document")
	case EmptyDoc, NewlineDoc, TextDoc, CommentDoc:
		return nil
	case GlueDoc:
		for i, c := range d.children {
			if err := Validate(c); err != nil {
				return fmt.Errorf("glue child %d: %w", i, err)
			}
		}
		return nil
	case BoxDoc:
		if d.kind.Indent < 0 {
			return utils.NewLayoutError("negative box indent %d", d.kind.Indent)
		}
		if d.kind.Mode < BoxH || d.kind.Mode > BoxHoV {
			return utils.NewLayoutError("unknown box mode %d", int(d.kind.Mode))
		}
		return Validate(d.body)
	case TagDoc:
		return Validate(d.body)
	case BreakDoc:
		if d.spaces < 0 {
			return utils.NewLayoutError("negative break width %d", d.spaces)
		}
		return nil
	default:
		return utils.NewLayoutError("unsupported document node %T", d)
	}
}

// Equal reports structural equality.
func Equal(a, b Doc) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case EmptyDoc:
		_, ok := b.(EmptyDoc)
		return ok
	case NewlineDoc:
		_, ok := b.(NewlineDoc)
		return ok
	case TextDoc:
		o, ok := b.(TextDoc)
		return ok && a.s == o.s
	case BreakDoc:
		o, ok := b.(BreakDoc)
		return ok && a == o
	case CommentDoc:
		o, ok := b.(CommentDoc)
		if !ok || len(a.lines) != len(o.lines) {
			return false
		}
		for i := range a.lines {
			if a.lines[i] != o.lines[i] {
				return false
			}
		}
		return true
	case GlueDoc:
		o, ok := b.(GlueDoc)
		if !ok || len(a.children) != len(o.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], o.children[i]) {
				return false
			}
		}
		return true
	case BoxDoc:
		o, ok := b.(BoxDoc)
		return ok && a.kind == o.kind && Equal(a.body, o.body)
	case TagDoc:
		o, ok := b.(TagDoc)
		return ok && a.tag == o.tag && Equal(a.body, o.body)
	default:
		return false
	}
}

// Flatten returns the concatenation of the text leaves, ignoring layout.
// Comment lines are joined with newlines.
func Flatten(d Doc) string {
	var sb strings.Builder
	flattenInto(&sb, d)
	return sb.String()
}

func flattenInto(sb *strings.Builder, d Doc) {
	switch d := d.(type) {
	case TextDoc:
		sb.WriteString(d.s)
	case GlueDoc:
		for _, c := range d.children {
			flattenInto(sb, c)
		}
	case BoxDoc:
		flattenInto(sb, d.body)
	case TagDoc:
		flattenInto(sb, d.body)
	case CommentDoc:
		sb.WriteString(strings.Join(d.lines, "\n"))
	}
}

// FlatWidth returns the width of d rendered on a single line. ok is false when
// d cannot be rendered on one line (forced newline, multi-line comment or text).
func FlatWidth(d Doc) (width int, ok bool) {
	switch d := d.(type) {
	case nil, EmptyDoc:
		return 0, true
	case NewlineDoc:
		return 0, false
	case TextDoc:
		if strings.ContainsRune(d.s, '\n') {
			return 0, false
		}
		return TextWidth(d.s), true
	case BreakDoc:
		return d.spaces, true
	case CommentDoc:
		switch len(d.lines) {
		case 0:
			return 0, true
		case 1:
			return TextWidth(d.lines[0]), true
		default:
			return 0, false
		}
	case GlueDoc:
		total := 0
		for _, c := range d.children {
			w, ok := FlatWidth(c)
			if !ok {
				return 0, false
			}
			total += w
		}
		return total, true
	case BoxDoc:
		if d.kind.Mode == BoxV && hasBreak(d.body) {
			return 0, false
		}
		return FlatWidth(d.body)
	case TagDoc:
		return FlatWidth(d.body)
	default:
		return 0, false
	}
}

// hasBreak reports whether d holds a break hint owned by the box around it,
// that is one not nested in a further box.
func hasBreak(d Doc) bool {
	switch d := d.(type) {
	case BreakDoc:
		return true
	case GlueDoc:
		for _, c := range d.children {
			if hasBreak(c) {
				return true
			}
		}
	case TagDoc:
		return hasBreak(d.body)
	}
	return false
}
