package goals

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

// Id names a program. On the wire it is the tagged pair ["Id", name].
type Id string

func (id Id) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{"Id", string(id)})
}

func (id *Id) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("program id: %w", err)
	}
	if len(pair) != 2 || pair[0] != "Id" {
		return fmt.Errorf("program id: expected [\"Id\", name], got %s", data)
	}
	*id = Id(pair[1])
	return nil
}

// Loc is a source location as reported by the proof engine. Fname is passed
// through untouched.
type Loc struct {
	Fname      protocol.Opaque `json:"fname"`
	LineNb     int             `json:"line_nb"`
	BolPos     int             `json:"bol_pos"`
	LineNbLast int             `json:"line_nb_last"`
	BolPosLast int             `json:"bol_pos_last"`
	Bp         int             `json:"bp"`
	Ep         int             `json:"ep"`
}

// OblStatus is the engine's (flag, definition status) pair. Detail is opaque.
type OblStatus struct {
	Flag   bool
	Detail protocol.Opaque
}

func (s OblStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{s.Flag, s.Detail})
}

func (s *OblStatus) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("obligation status: %w", err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("obligation status: expected 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &s.Flag); err != nil {
		return fmt.Errorf("obligation status flag: %w", err)
	}
	s.Detail = append(protocol.Opaque(nil), parts[1]...)
	return nil
}

// Obl is a single program obligation.
type Obl struct {
	Name   Id        `json:"name"`
	Loc    *Loc      `json:"loc,omitempty"`
	Status OblStatus `json:"status"`
	Solved bool      `json:"solved"`
}

// OblsView summarises the obligations of one program. Remaining always equals
// the number of unsolved obligations.
type OblsView struct {
	Opaque      bool  `json:"opaque"`
	Remaining   int   `json:"remaining"`
	Obligations []Obl `json:"obligations"`
}

// NewOblsView builds a view and checks its counter.
func NewOblsView(opaque bool, remaining int, obligations []Obl) (OblsView, error) {
	v := OblsView{Opaque: opaque, Remaining: remaining, Obligations: obligations}
	if err := v.Validate(); err != nil {
		return OblsView{}, err
	}
	return v, nil
}

// Unsolved counts the obligations not yet solved.
func (v OblsView) Unsolved() int {
	n := 0
	for _, o := range v.Obligations {
		if !o.Solved {
			n++
		}
	}
	return n
}

// Validate reports InconsistentObligations when Remaining disagrees with the
// obligation list.
func (v OblsView) Validate() error {
	if u := v.Unsolved(); v.Remaining != u {
		return utils.NewObligationsError("", v.Remaining, u)
	}
	return nil
}

func (v OblsView) MarshalJSON() ([]byte, error) {
	type wire OblsView
	w := wire(v)
	w.Obligations = nonNil(v.Obligations)
	return json.Marshal(w)
}

func (v *OblsView) UnmarshalJSON(data []byte) error {
	type wire OblsView
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := OblsView(w).Validate(); err != nil {
		return err
	}
	*v = OblsView(w)
	return nil
}

// ProgramEntry pairs a program with its obligations. On the wire it is the
// two-element array [Id, OblsView].
type ProgramEntry struct {
	ID   Id
	View OblsView
}

func (e ProgramEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.ID, e.View})
}

func (e *ProgramEntry) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("program entry: %w", err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("program entry: expected 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &e.ID); err != nil {
		return err
	}
	if err := json.Unmarshal(parts[1], &e.View); err != nil {
		var se *utils.StructuredError
		if errors.As(err, &se) {
			se.WithResource(string(e.ID))
		}
		return err
	}
	return nil
}

// ProgramInfo lists the open programs at a document position.
type ProgramInfo []ProgramEntry

// Validate checks every view and that each program appears once.
func (p ProgramInfo) Validate() error {
	seen := make(map[Id]bool, len(p))
	for _, e := range p {
		if seen[e.ID] {
			return utils.NewValidationError(utils.KindInconsistentObligations, string(e.ID), "program listed twice")
		}
		seen[e.ID] = true
		if u := e.View.Unsolved(); e.View.Remaining != u {
			return utils.NewObligationsError(string(e.ID), e.View.Remaining, u)
		}
	}
	return nil
}

// Lookup returns the view for a program.
func (p ProgramInfo) Lookup(id Id) (OblsView, bool) {
	for _, e := range p {
		if e.ID == id {
			return e.View, true
		}
	}
	return OblsView{}, false
}

// Remaining sums the unsolved obligations over all programs.
func (p ProgramInfo) Remaining() int {
	n := 0
	for _, e := range p {
		n += e.View.Remaining
	}
	return n
}
