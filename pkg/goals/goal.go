// Package goals models the proof state shown by the goal view: goals and
// hypotheses, the goal configuration with its bullet stack, program
// obligations, and the request/answer pair that carries them.
//
// Every type is generic over the pretty element P, instantiated with pp.Str,
// pp.Tree or pp.Any.
package goals

import (
	"encoding/json"
	"fmt"

	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/utils"
)

// Hyp is a group of hypotheses sharing a type and optional body.
type Hyp[P pp.Element] struct {
	Names []P `json:"names"`
	Def   *P  `json:"def,omitempty"`
	Ty    P   `json:"ty"`
}

// Goal is one proof obligation under its hypotheses.
type Goal[P pp.Element] struct {
	Ty   P         `json:"ty"`
	Hyps []Hyp[P] `json:"hyps"`
}

type goalWire[P pp.Element] struct {
	Ty   P         `json:"ty"`
	Hyps []Hyp[P] `json:"hyps"`
}

func (g Goal[P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(goalWire[P]{Ty: g.Ty, Hyps: nonNil(g.Hyps)})
}

// Frame is one enclosing bullet scope: goals already closed there and goals
// still pending there. On the wire it is a two-element array.
type Frame[P pp.Element] struct {
	Closed  []Goal[P]
	Pending []Goal[P]
}

func (f Frame[P]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2][]Goal[P]{nonNil(f.Closed), nonNil(f.Pending)})
}

func (f *Frame[P]) UnmarshalJSON(data []byte) error {
	var pair [][]Goal[P]
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return utils.NewValidationError(utils.KindInvalidGoalConfig, "stack frame", fmt.Sprintf("expected 2 goal lists, got %d", len(pair)))
	}
	f.Closed, f.Pending = pair[0], pair[1]
	return nil
}

// GoalConfig is the full goal state at a point of a proof.
type GoalConfig[P pp.Element] struct {
	// Goals are the focused goals; the first is the active one.
	Goals []Goal[P] `json:"goals"`
	// Stack holds the enclosing bullet scopes, innermost first.
	Stack   []Frame[P] `json:"stack"`
	Bullet  *P         `json:"bullet,omitempty"`
	Shelf   []Goal[P]  `json:"shelf"`
	GivenUp []Goal[P]  `json:"given_up"`
}

type goalConfigWire[P pp.Element] struct {
	Goals   []Goal[P]  `json:"goals"`
	Stack   []Frame[P] `json:"stack"`
	Bullet  *P         `json:"bullet,omitempty"`
	Shelf   []Goal[P]  `json:"shelf"`
	GivenUp []Goal[P]  `json:"given_up"`
}

// MarshalJSON writes empty lists as [] rather than null.
func (c GoalConfig[P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(goalConfigWire[P]{
		Goals:   nonNil(c.Goals),
		Stack:   nonNil(c.Stack),
		Bullet:  c.Bullet,
		Shelf:   nonNil(c.Shelf),
		GivenUp: nonNil(c.GivenUp),
	})
}

// Completed reports whether no goals remain, focused or on the stack.
func (c GoalConfig[P]) Completed() bool {
	if len(c.Goals) > 0 {
		return false
	}
	return c.Pending() == 0
}

// Validate checks the configuration as received from the server.
func (c GoalConfig[P]) Validate() error {
	check := func(where string, gs []Goal[P]) error {
		for i, g := range gs {
			if err := g.validate(); err != nil {
				return fmt.Errorf("%s[%d]: %w", where, i, err)
			}
		}
		return nil
	}
	if err := check("goals", c.Goals); err != nil {
		return err
	}
	for i, f := range c.Stack {
		if err := check(fmt.Sprintf("stack[%d].closed", i), f.Closed); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("stack[%d].pending", i), f.Pending); err != nil {
			return err
		}
	}
	if c.Bullet != nil {
		if len(c.Stack) == 0 {
			return utils.NewValidationError(utils.KindInvalidGoalConfig, "bullet", "bullet without an enclosing stack frame")
		}
		if err := validateElem(*c.Bullet); err != nil {
			return fmt.Errorf("bullet: %w", err)
		}
	}
	if err := check("shelf", c.Shelf); err != nil {
		return err
	}
	return check("given_up", c.GivenUp)
}

func (g Goal[P]) validate() error {
	if err := validateElem(g.Ty); err != nil {
		return fmt.Errorf("ty: %w", err)
	}
	for i, h := range g.Hyps {
		if len(h.Names) == 0 {
			return utils.NewValidationError(utils.KindInvalidGoalConfig, fmt.Sprintf("hyps[%d]", i), "hypothesis without a name")
		}
		for _, n := range h.Names {
			if err := validateElem(n); err != nil {
				return fmt.Errorf("hyps[%d] name: %w", i, err)
			}
		}
		if h.Def != nil {
			if err := validateElem(*h.Def); err != nil {
				return fmt.Errorf("hyps[%d] def: %w", i, err)
			}
		}
		if err := validateElem(h.Ty); err != nil {
			return fmt.Errorf("hyps[%d] ty: %w", i, err)
		}
	}
	return nil
}

func validateElem[P pp.Element](p P) error {
	if v, ok := any(p).(pp.Validator); ok {
		return v.Validate()
	}
	return nil
}

// Section identifies where an Entry comes from in the configuration.
type Section int

const (
	SectionFocused Section = iota
	SectionStack
	SectionShelf
	SectionGivenUp
)

func (s Section) String() string {
	switch s {
	case SectionFocused:
		return "focused"
	case SectionStack:
		return "stack"
	case SectionShelf:
		return "shelf"
	case SectionGivenUp:
		return "given up"
	default:
		return fmt.Sprintf("Section(%d)", int(s))
	}
}

// Entry is one goal in display order.
type Entry[P pp.Element] struct {
	Goal    Goal[P]
	Section Section
	// Depth is the stack frame index (0 = innermost) for SectionStack, else 0.
	Depth int
	// Index is the position within the section, or within the frame.
	Index int
	// Active marks the first focused goal.
	Active bool
}

// Ordered returns the goals in display order: focused goals, the pending goals
// of each stack frame from the innermost out, the shelf, then given-up goals.
// Goals already closed in a frame are not shown.
func (c GoalConfig[P]) Ordered() []Entry[P] {
	var out []Entry[P]
	for i, g := range c.Goals {
		out = append(out, Entry[P]{Goal: g, Section: SectionFocused, Index: i, Active: i == 0})
	}
	for depth, f := range c.Stack {
		for i, g := range f.Pending {
			out = append(out, Entry[P]{Goal: g, Section: SectionStack, Depth: depth, Index: i})
		}
	}
	for i, g := range c.Shelf {
		out = append(out, Entry[P]{Goal: g, Section: SectionShelf, Index: i})
	}
	for i, g := range c.GivenUp {
		out = append(out, Entry[P]{Goal: g, Section: SectionGivenUp, Index: i})
	}
	return out
}

// Pending counts the goals still to prove in the stack frames.
func (c GoalConfig[P]) Pending() int {
	n := 0
	for _, f := range c.Stack {
		n += len(f.Pending)
	}
	return n
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
