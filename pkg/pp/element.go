package pp

import (
	"bytes"
	"encoding/json"
)

// Element is anything a goal view can lay out. Goal data is generic over it,
// with Str (pre-rendered strings), Tree (layout trees) and Any (either) as the
// wire instantiations.
type Element interface {
	Layout() Doc
}

// Validator is implemented by elements that can check their own structure.
type Validator interface {
	Validate() error
}

// Str is a pre-rendered string element.
type Str string

// Layout returns the string as a single text node.
func (s Str) Layout() Doc { return TextDoc{s: string(s)} }

// Tree is a layout-tree element.
type Tree struct {
	Doc Doc
}

// Layout returns the wrapped document, or Empty.
func (t Tree) Layout() Doc { return orEmpty(t.Doc) }

// Validate checks the wrapped document.
func (t Tree) Validate() error {
	if t.Doc == nil {
		return nil
	}
	return Validate(t.Doc)
}

func (t Tree) MarshalJSON() ([]byte, error) { return Encode(t.Doc) }

func (t *Tree) UnmarshalJSON(data []byte) error {
	d, err := Decode(data)
	if err != nil {
		return err
	}
	t.Doc = d
	return nil
}

// Any is a PpString: a layout tree or a pre-rendered string, whichever the
// server sent. It re-encodes in the form it was decoded from.
type Any struct {
	doc   Doc
	str   string
	isStr bool
}

// FromString wraps a pre-rendered string.
func FromString(s string) Any { return Any{str: s, isStr: true} }

// FromDoc wraps a layout tree.
func FromDoc(d Doc) Any { return Any{doc: d} }

// IsString reports whether the element arrived as a plain string.
func (a Any) IsString() bool { return a.isStr }

// Layout returns the element as a document.
func (a Any) Layout() Doc {
	if a.isStr {
		return TextDoc{s: a.str}
	}
	return orEmpty(a.doc)
}

// String returns the flattened text of the element.
func (a Any) String() string {
	if a.isStr {
		return a.str
	}
	return Flatten(a.Layout())
}

// Validate checks the layout tree, if any.
func (a Any) Validate() error {
	if a.isStr || a.doc == nil {
		return nil
	}
	return Validate(a.doc)
}

func (a Any) MarshalJSON() ([]byte, error) {
	if a.isStr {
		return json.Marshal(a.str)
	}
	return Encode(a.doc)
}

func (a *Any) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*a = FromString(s)
		return nil
	}
	d, err := Decode(trimmed)
	if err != nil {
		return err
	}
	*a = FromDoc(d)
	return nil
}
