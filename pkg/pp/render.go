package pp

import (
	"strings"

	"github.com/alantheprice/goalview/pkg/utils"
)

// Pos is a location in rendered output. Column counts display columns.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// TagSpan maps a Tag onto the rendered text. Start and End are byte offsets
// into Output.Text.
type TagSpan struct {
	Tag   string `json:"tag"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	From  Pos    `json:"from"`
	To    Pos    `json:"to"`
}

// Output is a laid-out document.
type Output struct {
	Text string
	// Spans are ordered by opening position, enclosing tags first.
	Spans  []TagSpan
	Markup *Node
}

// Render lays d out within maxWidth columns. It only fails for a negative
// width; any tree accepted by the constructors renders.
func Render(d Doc, maxWidth int) (*Output, error) {
	if maxWidth < 0 {
		return nil, utils.NewLayoutError("negative render width %d", maxWidth)
	}
	r := &renderer{width: maxWidth, root: &Node{}}
	r.nodes = []*Node{r.root}
	if d == nil {
		d = EmptyDoc{}
	}

	// The document root behaves like a fill box at column zero.
	r.box(BoxDoc{kind: BoxKind{Mode: BoxHoV}, body: d}, false)
	return &Output{Text: r.buf.String(), Spans: r.spans, Markup: r.root}, nil
}

// RenderString is Render returning only the text. Negative widths render flat.
func RenderString(d Doc, maxWidth int) string {
	if maxWidth < 0 {
		maxWidth = int(^uint(0) >> 1)
	}
	out, _ := Render(d, maxWidth)
	return out.Text
}

type itemKind int

const (
	itemDoc itemKind = iota
	itemBreak
	itemOpen
	itemClose
)

type item struct {
	kind itemKind
	doc  Doc
	brk  BreakDoc
	tag  string
}

// frame is the state of the innermost open box.
type frame struct {
	mode   BoxMode
	indent int
	flat   bool
}

type openTag struct {
	span    int
	started bool
}

type renderer struct {
	width int

	buf     strings.Builder
	line    int
	col     int
	pending int // indentation owed to the current line, written lazily

	spans []TagSpan
	open  []openTag
	root  *Node
	nodes []*Node
}

// linearize expands glue and tags into a flat item list so the breaks that
// belong to one box sit at the same level.
func linearize(d Doc, items []item) []item {
	switch d := d.(type) {
	case nil, EmptyDoc:
	case GlueDoc:
		for _, c := range d.children {
			items = linearize(c, items)
		}
	case TagDoc:
		items = append(items, item{kind: itemOpen, tag: d.tag})
		items = linearize(d.body, items)
		items = append(items, item{kind: itemClose})
	case BreakDoc:
		items = append(items, item{kind: itemBreak, brk: d})
	default:
		items = append(items, item{kind: itemDoc, doc: d})
	}
	return items
}

func (r *renderer) box(b BoxDoc, parentFlat bool) {
	f := frame{mode: b.kind.Mode, indent: r.col + b.kind.Indent, flat: parentFlat}
	if !f.flat {
		switch f.mode {
		case BoxH:
			f.flat = true
		case BoxHV, BoxHoV:
			w, ok := FlatWidth(b.body)
			f.flat = ok && w <= r.width-r.col
		}
	}
	r.items(linearize(b.body, nil), f)
}

func (r *renderer) items(items []item, f frame) {
	for i, it := range items {
		switch it.kind {
		case itemOpen:
			r.openTag(it.tag)
		case itemClose:
			r.closeTag()
		case itemDoc:
			r.doc(it.doc, f)
		case itemBreak:
			if r.takeBreak(it.brk, items[i+1:], f) {
				r.newline(f.indent + it.brk.offset)
			} else {
				r.write(strings.Repeat(" ", it.brk.spaces))
			}
		}
	}
}

func (r *renderer) takeBreak(b BreakDoc, rest []item, f frame) bool {
	if f.flat {
		return false
	}
	switch f.mode {
	case BoxV, BoxHV:
		return true
	case BoxHoV:
		return r.col+b.spaces+atomWidth(rest) > r.width
	default:
		return false
	}
}

// atomWidth is the width of everything up to the next break of the same box,
// or up to the first forced line end.
func atomWidth(rest []item) int {
	w, _ := atomWidthStopped(rest)
	return w
}

// prefixWidth is the flat width of d up to its first forced line end.
func prefixWidth(d Doc) (int, bool) {
	switch d := d.(type) {
	case NewlineDoc:
		return 0, true
	case TextDoc:
		if i := strings.IndexByte(d.s, '\n'); i >= 0 {
			return TextWidth(d.s[:i]), true
		}
		return TextWidth(d.s), false
	case CommentDoc:
		if len(d.lines) == 0 {
			return 0, false
		}
		return TextWidth(d.lines[0]), len(d.lines) > 1
	case BreakDoc:
		return d.spaces, false
	case GlueDoc:
		total := 0
		for _, c := range d.children {
			w, stopped := prefixWidth(c)
			total += w
			if stopped {
				return total, true
			}
		}
		return total, false
	case BoxDoc:
		if d.kind.Mode == BoxV {
			// A vertical box ends its first line at its first break.
			return atomWidthStopped(linearize(d.body, nil))
		}
		return prefixWidth(d.body)
	case TagDoc:
		return prefixWidth(d.body)
	default:
		return 0, false
	}
}

func atomWidthStopped(items []item) (int, bool) {
	total := 0
	for _, it := range items {
		switch it.kind {
		case itemBreak:
			return total, true
		case itemDoc:
			w, stopped := prefixWidth(it.doc)
			total += w
			if stopped {
				return total, true
			}
		}
	}
	return total, false
}

func (r *renderer) doc(d Doc, f frame) {
	switch d := d.(type) {
	case TextDoc:
		r.write(d.s)
	case BoxDoc:
		r.box(d, f.flat)
	case NewlineDoc:
		r.newline(f.indent)
	case CommentDoc:
		for i, l := range d.lines {
			if i > 0 {
				r.newline(f.indent)
			}
			r.write(l)
		}
	default:
		// Glue, tags and breaks never reach here; see linearize.
		r.items(linearize(d, nil), f)
	}
}

func (r *renderer) newline(indent int) {
	if indent < 0 {
		indent = 0
	}
	r.emit("\n")
	r.line++
	r.col = indent
	r.pending = indent
}

func (r *renderer) write(s string) {
	if s == "" {
		return
	}
	if r.pending > 0 {
		r.emit(strings.Repeat(" ", r.pending))
		r.pending = 0
	}
	for i := range r.open {
		if !r.open[i].started {
			r.startSpan(&r.open[i])
		}
	}
	r.emit(s)
	if nl := strings.LastIndexByte(s, '\n'); nl >= 0 {
		r.line += strings.Count(s, "\n")
		r.col = TextWidth(s[nl+1:])
	} else {
		r.col += TextWidth(s)
	}
}

// emit writes s to the output and to the markup node of the innermost tag
// that has started. Tags that have not started yet cover none of s, so s is
// placed in front of the outermost of them.
func (r *renderer) emit(s string) {
	r.buf.WriteString(s)
	depth := len(r.open)
	for i, o := range r.open {
		if !o.started {
			depth = i
			break
		}
	}
	cur := r.nodes[depth]
	at := len(cur.Children)
	if depth < len(r.open) {
		// The unstarted tag node is the last child of cur.
		at--
	}
	if at > 0 {
		if prev := cur.Children[at-1]; prev.Tag == "" && prev.Children == nil {
			prev.Text += s
			return
		}
	}
	cur.Children = append(cur.Children, nil)
	copy(cur.Children[at+1:], cur.Children[at:])
	cur.Children[at] = &Node{Text: s}
}

func (r *renderer) here() (int, Pos) {
	return r.buf.Len(), Pos{Line: r.line, Column: r.col}
}

func (r *renderer) startSpan(o *openTag) {
	off, pos := r.here()
	r.spans[o.span].Start, r.spans[o.span].From = off, pos
	o.started = true
}

func (r *renderer) openTag(tag string) {
	r.spans = append(r.spans, TagSpan{Tag: tag})
	r.open = append(r.open, openTag{span: len(r.spans) - 1})

	n := &Node{Tag: tag, Children: []*Node{}}
	parent := r.nodes[len(r.nodes)-1]
	parent.Children = append(parent.Children, n)
	r.nodes = append(r.nodes, n)
}

func (r *renderer) closeTag() {
	o := r.open[len(r.open)-1]
	r.open = r.open[:len(r.open)-1]
	off, pos := r.here()
	if !o.started {
		// Nothing was written inside the tag: collapse to the current point,
		// which skips any pending indentation.
		off, pos = r.buf.Len(), Pos{Line: r.line, Column: r.col - r.pending}
		r.spans[o.span].Start, r.spans[o.span].From = off, pos
	}
	r.spans[o.span].End, r.spans[o.span].To = off, pos
	r.nodes = r.nodes[:len(r.nodes)-1]
}
