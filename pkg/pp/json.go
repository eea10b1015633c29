package pp

import (
	"encoding/json"
	"fmt"

	"github.com/alantheprice/goalview/pkg/utils"
)

// Wire constructor names, as produced by the proof engine's serializer.
const (
	wireEmpty        = "Pp_empty"
	wireString       = "Pp_string"
	wireGlue         = "Pp_glue"
	wireBox          = "Pp_box"
	wireTag          = "Pp_tag"
	wireBreak        = "Pp_print_break"
	wireForceNewline = "Pp_force_newline"
	wireComment      = "Pp_comment"

	wireHBox   = "Pp_hbox"
	wireVBox   = "Pp_vbox"
	wireHVBox  = "Pp_hvbox"
	wireHoVBox = "Pp_hovbox"
)

// Decode parses the JSON form of a document, validating it on the way.
// Malformed input yields an InvalidLayout error.
func Decode(data []byte) (Doc, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, utils.NewStructuredError(utils.KindInvalidLayout, "pp node is not an array", err)
	}
	if len(parts) == 0 {
		return nil, utils.NewLayoutError("empty pp node")
	}
	var ctor string
	if err := json.Unmarshal(parts[0], &ctor); err != nil {
		return nil, utils.NewStructuredError(utils.KindInvalidLayout, "pp constructor is not a string", err)
	}

	switch ctor {
	case wireEmpty:
		if err := arity(ctor, parts, 1); err != nil {
			return nil, err
		}
		return EmptyDoc{}, nil

	case wireForceNewline:
		if err := arity(ctor, parts, 1); err != nil {
			return nil, err
		}
		return NewlineDoc{}, nil

	case wireString:
		if err := arity(ctor, parts, 2); err != nil {
			return nil, err
		}
		var s string
		if err := field(ctor, parts[1], &s); err != nil {
			return nil, err
		}
		return TextDoc{s: s}, nil

	case wireGlue:
		if err := arity(ctor, parts, 2); err != nil {
			return nil, err
		}
		var raw []json.RawMessage
		if err := field(ctor, parts[1], &raw); err != nil {
			return nil, err
		}
		children := make([]Doc, 0, len(raw))
		for i, c := range raw {
			d, err := Decode(c)
			if err != nil {
				return nil, fmt.Errorf("glue child %d: %w", i, err)
			}
			children = append(children, d)
		}
		return GlueDoc{children: children}, nil

	case wireBox:
		if err := arity(ctor, parts, 3); err != nil {
			return nil, err
		}
		kind, err := decodeBoxKind(parts[1])
		if err != nil {
			return nil, err
		}
		body, err := Decode(parts[2])
		if err != nil {
			return nil, fmt.Errorf("box body: %w", err)
		}
		return NewBox(kind.Mode, kind.Indent, body)

	case wireTag:
		if err := arity(ctor, parts, 3); err != nil {
			return nil, err
		}
		var tag string
		if err := field(ctor, parts[1], &tag); err != nil {
			return nil, err
		}
		body, err := Decode(parts[2])
		if err != nil {
			return nil, fmt.Errorf("tag %q body: %w", tag, err)
		}
		return TagDoc{tag: tag, body: body}, nil

	case wireBreak:
		if err := arity(ctor, parts, 3); err != nil {
			return nil, err
		}
		var n, off int
		if err := field(ctor, parts[1], &n); err != nil {
			return nil, err
		}
		if err := field(ctor, parts[2], &off); err != nil {
			return nil, err
		}
		return NewBreak(n, off)

	case wireComment:
		if err := arity(ctor, parts, 2); err != nil {
			return nil, err
		}
		var lines []string
		if err := field(ctor, parts[1], &lines); err != nil {
			return nil, err
		}
		return CommentDoc{lines: lines}, nil

	default:
		return nil, utils.NewLayoutError("unknown pp constructor %q", ctor)
	}
}

func decodeBoxKind(data json.RawMessage) (BoxKind, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil || len(parts) == 0 {
		return BoxKind{}, utils.NewLayoutError("box kind is not a constructor array")
	}
	var ctor string
	if err := json.Unmarshal(parts[0], &ctor); err != nil {
		return BoxKind{}, utils.NewLayoutError("box kind constructor is not a string")
	}
	var k BoxKind
	switch ctor {
	case wireHBox:
		k.Mode = BoxH
	case wireVBox:
		k.Mode = BoxV
	case wireHVBox:
		k.Mode = BoxHV
	case wireHoVBox:
		k.Mode = BoxHoV
	default:
		return BoxKind{}, utils.NewLayoutError("unknown box kind %q", ctor)
	}
	switch len(parts) {
	case 1:
		if k.Mode != BoxH {
			return BoxKind{}, utils.NewLayoutError("%s requires an indent", ctor)
		}
	case 2:
		if err := field(ctor, parts[1], &k.Indent); err != nil {
			return BoxKind{}, err
		}
	default:
		return BoxKind{}, utils.NewLayoutError("%s: expected at most 1 argument, got %d", ctor, len(parts)-1)
	}
	return k, nil
}

func arity(ctor string, parts []json.RawMessage, want int) error {
	if len(parts) != want {
		return utils.NewLayoutError("%s: expected %d arguments, got %d", ctor, want-1, len(parts)-1)
	}
	return nil
}

func field(ctor string, data json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return utils.NewStructuredError(utils.KindInvalidLayout, ctor+": bad argument", err)
	}
	return nil
}

// wire converts d into the nested-array form.
func wire(d Doc) interface{} {
	switch d := d.(type) {
	case nil, EmptyDoc:
		return []interface{}{wireEmpty}
	case NewlineDoc:
		return []interface{}{wireForceNewline}
	case TextDoc:
		return []interface{}{wireString, d.s}
	case GlueDoc:
		children := make([]interface{}, 0, len(d.children))
		for _, c := range d.children {
			children = append(children, wire(c))
		}
		return []interface{}{wireGlue, children}
	case BoxDoc:
		return []interface{}{wireBox, wireBoxKind(d.kind), wire(d.body)}
	case TagDoc:
		return []interface{}{wireTag, d.tag, wire(d.body)}
	case BreakDoc:
		return []interface{}{wireBreak, d.spaces, d.offset}
	case CommentDoc:
		lines := d.lines
		if lines == nil {
			lines = []string{}
		}
		return []interface{}{wireComment, lines}
	default:
		return []interface{}{wireEmpty}
	}
}

func wireBoxKind(k BoxKind) []interface{} {
	switch k.Mode {
	case BoxV:
		return []interface{}{wireVBox, k.Indent}
	case BoxHV:
		return []interface{}{wireHVBox, k.Indent}
	case BoxHoV:
		return []interface{}{wireHoVBox, k.Indent}
	default:
		if k.Indent == 0 {
			return []interface{}{wireHBox}
		}
		return []interface{}{wireHBox, k.Indent}
	}
}

// Encode returns the JSON form of d.
func Encode(d Doc) ([]byte, error) {
	return json.Marshal(wire(d))
}

func (d EmptyDoc) MarshalJSON() ([]byte, error)   { return Encode(d) }
func (d NewlineDoc) MarshalJSON() ([]byte, error) { return Encode(d) }
func (d TextDoc) MarshalJSON() ([]byte, error)    { return Encode(d) }
func (d GlueDoc) MarshalJSON() ([]byte, error)    { return Encode(d) }
func (d BoxDoc) MarshalJSON() ([]byte, error)     { return Encode(d) }
func (d TagDoc) MarshalJSON() ([]byte, error)     { return Encode(d) }
func (d BreakDoc) MarshalJSON() ([]byte, error)   { return Encode(d) }
func (d CommentDoc) MarshalJSON() ([]byte, error) { return Encode(d) }
