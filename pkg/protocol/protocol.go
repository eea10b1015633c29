// Package protocol holds the language-server wire types shared by the goal,
// document and perf views. It contains DTOs only.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Method names used on the language-server side of the channel.
const (
	MethodGoals        = "proof/goals"
	MethodGetDocument  = "coq/getDocument"
	MethodSaveVo       = "coq/saveVo"
	MethodViewRange    = "coq/viewRange"
	MethodFileProgress = "$/coq/fileProgress"
	MethodFilePerfData = "$/coq/filePerfData"
)

// ----- JSON-RPC envelope -----

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// ----- Document coordinates -----

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"` // UTF-16 code units
}

// Before reports whether p sorts strictly before q in document order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Character < q.Character
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// ----- Text documents -----

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier pairs a document with the version used to
// detect staleness.
type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// Supersedes reports whether d names a newer version of the same document as o.
func (d VersionedTextDocumentIdentifier) Supersedes(o VersionedTextDocumentIdentifier) bool {
	return d.URI == o.URI && d.Version > o.Version
}

// ErrorData is the payload of an infoError view message.
type ErrorData struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Position     Position                        `json:"position"`
	Message      string                          `json:"message"`
}

// ViewRangeParams asks the server to prioritise checking of a visible range.
type ViewRangeParams struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Range        Range                           `json:"range"`
}

// ----- Opaque payloads -----

// Opaque carries implementation-specific JSON that this module forwards but
// never interprets.
type Opaque json.RawMessage

// MarshalJSON emits the stored bytes, or null when empty.
func (o Opaque) MarshalJSON() ([]byte, error) {
	if len(o) == 0 {
		return []byte("null"), nil
	}
	return o, nil
}

// UnmarshalJSON stores a copy of data.
func (o *Opaque) UnmarshalJSON(data []byte) error {
	if o == nil {
		return fmt.Errorf("protocol.Opaque: UnmarshalJSON on nil pointer")
	}
	*o = append((*o)[0:0], data...)
	return nil
}

// IsNull reports whether the payload is absent or JSON null.
func (o Opaque) IsNull() bool {
	return len(o) == 0 || bytes.Equal(bytes.TrimSpace(o), []byte("null"))
}
