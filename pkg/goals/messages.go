package goals

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/protocol"
)

// Message severities, numbered as LSP diagnostics.
const (
	LevelError   = 1
	LevelWarning = 2
	LevelInfo    = 3
	LevelHint    = 4
)

// LevelName returns a short label for a severity.
func LevelName(level int) string {
	switch level {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelHint:
		return "hint"
	default:
		return fmt.Sprintf("level %d", level)
	}
}

// Message is a feedback message attached to a document point.
type Message[P pp.Element] struct {
	Range *protocol.Range `json:"range,omitempty"`
	Level int             `json:"level"`
	Text  P               `json:"text"`
}

// Messages is the messages field of a goal answer. Servers send either bare
// elements or leveled messages; both decode, and the list re-encodes in the
// form it arrived in.
type Messages[P pp.Element] struct {
	plain   []P
	leveled []Message[P]
	isLevel bool
}

// PlainMessages builds a list of bare elements.
func PlainMessages[P pp.Element](items ...P) Messages[P] {
	return Messages[P]{plain: items}
}

// LeveledMessages builds a list of leveled messages.
func LeveledMessages[P pp.Element](items ...Message[P]) Messages[P] {
	return Messages[P]{leveled: items, isLevel: true}
}

// IsLeveled reports whether the list carries levels.
func (m Messages[P]) IsLeveled() bool { return m.isLevel }

// Len returns the number of messages.
func (m Messages[P]) Len() int {
	if m.isLevel {
		return len(m.leveled)
	}
	return len(m.plain)
}

// Leveled returns the messages with levels; bare elements become LevelInfo.
func (m Messages[P]) Leveled() []Message[P] {
	if m.isLevel {
		return append([]Message[P](nil), m.leveled...)
	}
	out := make([]Message[P], len(m.plain))
	for i, p := range m.plain {
		out[i] = Message[P]{Level: LevelInfo, Text: p}
	}
	return out
}

// Validate checks each message element.
func (m Messages[P]) Validate() error {
	for i, msg := range m.Leveled() {
		if err := validateElem(msg.Text); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	return nil
}

func (m Messages[P]) MarshalJSON() ([]byte, error) {
	if m.isLevel {
		return json.Marshal(nonNil(m.leveled))
	}
	return json.Marshal(nonNil(m.plain))
}

func (m *Messages[P]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("messages: %w", err)
	}
	if len(raw) == 0 {
		*m = Messages[P]{}
		return nil
	}
	// Pretty elements are strings or arrays, so an object is always a
	// leveled message.
	leveled := isObject(raw[0])
	for i, r := range raw[1:] {
		if isObject(r) != leveled {
			return fmt.Errorf("messages[%d]: mixed bare and leveled messages", i+1)
		}
	}
	if leveled {
		out := make([]Message[P], len(raw))
		for i, r := range raw {
			if err := json.Unmarshal(r, &out[i]); err != nil {
				return fmt.Errorf("messages[%d]: %w", i, err)
			}
		}
		*m = LeveledMessages(out...)
		return nil
	}
	out := make([]P, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	*m = PlainMessages(out...)
	return nil
}

func isObject(data json.RawMessage) bool {
	t := bytes.TrimSpace(data)
	return len(t) > 0 && t[0] == '{'
}
