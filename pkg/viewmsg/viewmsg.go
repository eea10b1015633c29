// Package viewmsg defines the envelopes pushed to the goal and perf views.
// Each envelope is a JSON object {"method": ..., "params": ...}; the method
// selects exactly one payload shape and unknown methods are rejected.
package viewmsg

import (
	"encoding/json"
	"fmt"

	"github.com/alantheprice/goalview/pkg/fleche"
	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

// Envelope methods.
const (
	MethodRenderGoals    = "renderGoals"
	MethodWaitingForInfo = "waitingForInfo"
	MethodInfoError      = "infoError"
	MethodUpdate         = "update"
	MethodReset          = "reset"
)

// Channel names used in errors and logs.
const (
	ChannelGoals = "goals"
	ChannelPerf  = "perf"
)

// Message is any view envelope.
type Message interface {
	Method() string
	Channel() string
}

// GoalMessage is an envelope of the goal channel: RenderGoals, WaitingForInfo
// or InfoError.
type GoalMessage interface {
	Message
	goalMessage()
}

// PerfMessage is an envelope of the perf channel: Update or Reset.
type PerfMessage interface {
	Message
	perfMessage()
}

// RenderGoals carries a goal answer to display.
type RenderGoals struct {
	Params goals.GoalAnswer[pp.Any]
}

// WaitingForInfo announces that a goal request is in flight.
type WaitingForInfo struct {
	Params goals.GoalRequest
}

// InfoError reports that a goal request failed.
type InfoError struct {
	Params protocol.ErrorData
}

// Update replaces the perf data shown for a document.
type Update struct {
	Params fleche.DocumentPerfParams[protocol.Range]
}

// Reset clears all perf data.
type Reset struct{}

func (RenderGoals) Method() string    { return MethodRenderGoals }
func (WaitingForInfo) Method() string { return MethodWaitingForInfo }
func (InfoError) Method() string      { return MethodInfoError }
func (Update) Method() string         { return MethodUpdate }
func (Reset) Method() string          { return MethodReset }

func (RenderGoals) Channel() string    { return ChannelGoals }
func (WaitingForInfo) Channel() string { return ChannelGoals }
func (InfoError) Channel() string      { return ChannelGoals }
func (Update) Channel() string         { return ChannelPerf }
func (Reset) Channel() string          { return ChannelPerf }

func (RenderGoals) goalMessage()    {}
func (WaitingForInfo) goalMessage() {}
func (InfoError) goalMessage()      {}
func (Update) perfMessage()         {}
func (Reset) perfMessage()          {}

type envelope struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

func encode(method string, params interface{}) ([]byte, error) {
	if params == nil {
		return json.Marshal(envelope{Method: method})
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}
	return json.Marshal(envelope{Method: method, Params: raw})
}

func (m RenderGoals) MarshalJSON() ([]byte, error)    { return encode(m.Method(), m.Params) }
func (m WaitingForInfo) MarshalJSON() ([]byte, error) { return encode(m.Method(), m.Params) }
func (m InfoError) MarshalJSON() ([]byte, error)      { return encode(m.Method(), m.Params) }
func (m Update) MarshalJSON() ([]byte, error)         { return encode(m.Method(), m.Params) }
func (m Reset) MarshalJSON() ([]byte, error)          { return encode(m.Method(), nil) }

func split(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Method == "" {
		return envelope{}, utils.NewUnknownMethodError("view", "")
	}
	return env, nil
}

func params(env envelope, v interface{}) error {
	if len(env.Params) == 0 {
		return fmt.Errorf("%s: missing params", env.Method)
	}
	if err := json.Unmarshal(env.Params, v); err != nil {
		return fmt.Errorf("%s params: %w", env.Method, err)
	}
	return nil
}

// DecodeGoal parses a goal channel envelope. The answer of a renderGoals
// message is validated.
func DecodeGoal(data []byte) (GoalMessage, error) {
	env, err := split(data)
	if err != nil {
		return nil, err
	}
	return decodeGoal(env)
}

func decodeGoal(env envelope) (GoalMessage, error) {
	switch env.Method {
	case MethodRenderGoals:
		var m RenderGoals
		if err := params(env, &m.Params); err != nil {
			return nil, err
		}
		if err := m.Params.Validate(); err != nil {
			return nil, fmt.Errorf("%s params: %w", env.Method, err)
		}
		return m, nil
	case MethodWaitingForInfo:
		var m WaitingForInfo
		if err := params(env, &m.Params); err != nil {
			return nil, err
		}
		return m, nil
	case MethodInfoError:
		var m InfoError
		if err := params(env, &m.Params); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, utils.NewUnknownMethodError(ChannelGoals, env.Method)
}

// DecodePerf parses a perf channel envelope.
func DecodePerf(data []byte) (PerfMessage, error) {
	env, err := split(data)
	if err != nil {
		return nil, err
	}
	return decodePerf(env)
}

func decodePerf(env envelope) (PerfMessage, error) {
	switch env.Method {
	case MethodUpdate:
		var m Update
		if err := params(env, &m.Params); err != nil {
			return nil, err
		}
		if err := m.Params.Validate(); err != nil {
			return nil, fmt.Errorf("%s params: %w", env.Method, err)
		}
		return m, nil
	case MethodReset:
		return Reset{}, nil
	}
	return nil, utils.NewUnknownMethodError(ChannelPerf, env.Method)
}

// Decode parses an envelope of either channel.
func Decode(data []byte) (Message, error) {
	env, err := split(data)
	if err != nil {
		return nil, err
	}
	switch env.Method {
	case MethodRenderGoals, MethodWaitingForInfo, MethodInfoError:
		return decodeGoal(env)
	case MethodUpdate, MethodReset:
		return decodePerf(env)
	}
	return nil, utils.NewUnknownMethodError("view", env.Method)
}
