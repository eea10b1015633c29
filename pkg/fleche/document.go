package fleche

import (
	"github.com/alantheprice/goalview/pkg/protocol"
)

// FlecheDocumentParams requests the span listing of a document.
type FlecheDocumentParams struct {
	TextDocument protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
}

// RangedSpan is one checked sentence. Span is the checker's own payload
// (currently its serialized AST) and is forwarded untouched.
type RangedSpan struct {
	Range protocol.Range  `json:"range"`
	Span  protocol.Opaque `json:"span,omitempty"`
}

// FlecheDocument is the reply to coq/getDocument.
type FlecheDocument struct {
	Spans     []RangedSpan     `json:"spans"`
	Completed CompletionStatus `json:"completed"`
}

// SpanAt returns the span whose range contains pos.
func (d FlecheDocument) SpanAt(pos protocol.Position) (RangedSpan, bool) {
	for _, s := range d.Spans {
		if !pos.Before(s.Range.Start) && pos.Before(s.Range.End) {
			return s, true
		}
	}
	return RangedSpan{}, false
}

// FlecheSaveParams asks the server to write the compiled .vo of a document.
type FlecheSaveParams struct {
	TextDocument protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
}
