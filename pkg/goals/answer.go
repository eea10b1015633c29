package goals

import (
	"encoding/json"
	"fmt"

	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

// PpFormat selects how the server should print goal elements.
type PpFormat string

const (
	FormatPp  PpFormat = "Pp"
	FormatStr PpFormat = "Str"
)

func (f *PpFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch PpFormat(s) {
	case FormatPp, FormatStr:
		*f = PpFormat(s)
		return nil
	}
	return utils.NewValidationError(utils.KindInvalidRequest, "pp_format", fmt.Sprintf("unknown format %q", s))
}

// Mode selects whether goals are shown before or after the sentence at the
// requested position.
type Mode string

const (
	ModePrev  Mode = "Prev"
	ModeAfter Mode = "After"
)

func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Mode(s) {
	case ModePrev, ModeAfter:
		*m = Mode(s)
		return nil
	}
	return utils.NewValidationError(utils.KindInvalidRequest, "mode", fmt.Sprintf("unknown mode %q", s))
}

// GoalRequest asks for the proof state at a document position. Optional
// fields left empty are omitted on the wire.
type GoalRequest struct {
	TextDocument protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position                        `json:"position"`
	PpFormat     PpFormat                                 `json:"pp_format,omitempty"`
	Pretac       string                                   `json:"pretac,omitempty"`
	Command      string                                   `json:"command,omitempty"`
	Mode         Mode                                     `json:"mode,omitempty"`
}

// EffectiveMode returns the requested mode, After when unset.
func (r GoalRequest) EffectiveMode() Mode {
	if r.Mode == "" {
		return ModeAfter
	}
	return r.Mode
}

// GoalAnswer is the server's reply to a GoalRequest.
type GoalAnswer[P pp.Element] struct {
	TextDocument protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position                        `json:"position"`
	Goals        *GoalConfig[P]                           `json:"goals,omitempty"`
	Program      ProgramInfo                              `json:"program,omitempty"`
	Messages     Messages[P]                              `json:"messages"`
	Error        *P                                       `json:"error,omitempty"`
}

// Validate checks the goal configuration, the obligations and every element.
func (a GoalAnswer[P]) Validate() error {
	if a.Goals != nil {
		if err := a.Goals.Validate(); err != nil {
			return fmt.Errorf("goals: %w", err)
		}
	}
	if err := a.Program.Validate(); err != nil {
		return fmt.Errorf("program: %w", err)
	}
	if err := a.Messages.Validate(); err != nil {
		return err
	}
	if a.Error != nil {
		if err := validateElem(*a.Error); err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Answers reports whether a targets the document state and position of req.
func (a GoalAnswer[P]) Answers(req GoalRequest) bool {
	return a.TextDocument == req.TextDocument && a.Position == req.Position
}

// DecodeAnswer parses and validates a goal answer.
func DecodeAnswer[P pp.Element](data []byte) (GoalAnswer[P], error) {
	var a GoalAnswer[P]
	if err := json.Unmarshal(data, &a); err != nil {
		return GoalAnswer[P]{}, fmt.Errorf("decode goal answer: %w", err)
	}
	if err := a.Validate(); err != nil {
		return GoalAnswer[P]{}, err
	}
	return a, nil
}
