// Package fleche holds the document-level views of the checker: completion
// status, the span listing returned by coq/getDocument, and per-sentence
// performance telemetry.
package fleche

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

// Status is how far checking of a document version got.
type Status string

const (
	// StatusYes: the whole document was checked.
	StatusYes Status = "Yes"
	// StatusStopped: checking halted cleanly at the end of the range.
	StatusStopped Status = "Stopped"
	// StatusFailed: checking halted on an error at the end of the range.
	StatusFailed Status = "Failed"
)

// Terminal reports whether no further status may follow for the same version.
func (s Status) Terminal() bool {
	return s == StatusYes || s == StatusFailed
}

func (s Status) valid() bool {
	switch s {
	case StatusYes, StatusStopped, StatusFailed:
		return true
	}
	return false
}

// MarshalJSON writes the one-element array form, ["Yes"].
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal([1]string{string(s)})
}

// UnmarshalJSON accepts ["Yes"] as well as a bare "Yes".
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
	} else {
		var tagged []string
		if err := json.Unmarshal(trimmed, &tagged); err != nil {
			return fmt.Errorf("completion status: %w", err)
		}
		if len(tagged) != 1 {
			return fmt.Errorf("completion status: expected 1 element, got %d", len(tagged))
		}
		name = tagged[0]
	}
	if !Status(name).valid() {
		return fmt.Errorf("completion status: unknown status %q", name)
	}
	*s = Status(name)
	return nil
}

// CompletionStatus reports how far a document version has been checked.
type CompletionStatus struct {
	Status Status         `json:"status"`
	Range  protocol.Range `json:"range"`
}

// Initial is the implicit status every new document version starts from.
func Initial() CompletionStatus {
	return CompletionStatus{Status: StatusStopped}
}

// Transition checks that next may follow c for the same document version.
// Stopped may move to any status; Yes and Failed are final.
func (c CompletionStatus) Transition(next CompletionStatus) error {
	if !next.Status.valid() {
		return fmt.Errorf("completion status: unknown status %q", next.Status)
	}
	if c.Status.Terminal() {
		return utils.NewStructuredError(
			utils.KindStatusFinal,
			fmt.Sprintf("status %s is final, cannot move to %s", c.Status, next.Status),
			nil,
		)
	}
	return nil
}

// Done reports whether checking of the version has finished.
func (c CompletionStatus) Done() bool { return c.Status.Terminal() }
