package pp

import (
	"html"
	"strings"
)

// Node is the markup form of rendered output. A node is either a text leaf
// (Tag == "" and no children) or a tagged span whose children hold the
// rendered body. The root has no tag.
type Node struct {
	Tag      string  `json:"tag,omitempty"`
	Text     string  `json:"text,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// IsLeaf reports whether n is a text leaf.
func (n *Node) IsLeaf() bool {
	return n.Tag == "" && n.Children == nil
}

// Plain returns the rendered text without annotations.
func (n *Node) Plain() string {
	var sb strings.Builder
	n.Walk(func(text string, _ []string) {
		sb.WriteString(text)
	})
	return sb.String()
}

// Walk calls fn for every text leaf in order, with the stack of enclosing
// tags (outermost first).
func (n *Node) Walk(fn func(text string, tags []string)) {
	n.walk(nil, fn)
}

func (n *Node) walk(tags []string, fn func(string, []string)) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		fn(n.Text, tags)
		return
	}
	if n.Tag != "" {
		tags = append(tags[:len(tags):len(tags)], n.Tag)
	}
	for _, c := range n.Children {
		c.walk(tags, fn)
	}
}

// HTML renders the markup as escaped text with one <span class="..."> per tag.
// Dots in tag names become dashes in the class ("constr.keyword" → "constr-keyword").
func (n *Node) HTML() string {
	var sb strings.Builder
	n.html(&sb)
	return sb.String()
}

func (n *Node) html(sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		sb.WriteString(html.EscapeString(n.Text))
		return
	}
	if n.Tag != "" {
		sb.WriteString(`<span class="`)
		sb.WriteString(html.EscapeString(TagClass(n.Tag)))
		sb.WriteString(`">`)
	}
	for _, c := range n.Children {
		c.html(sb)
	}
	if n.Tag != "" {
		sb.WriteString("</span>")
	}
}

// TagClass maps a tag name to a CSS class name.
func TagClass(tag string) string {
	return strings.ReplaceAll(tag, ".", "-")
}
