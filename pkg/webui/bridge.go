package webui

import (
	"encoding/json"
	"fmt"

	"github.com/alantheprice/goalview/pkg/events"
	"github.com/alantheprice/goalview/pkg/fleche"
	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/panel"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
	"github.com/alantheprice/goalview/pkg/viewmsg"
)

// Ingest decodes one envelope and applies it. Besides view envelopes it
// accepts the language server's $/coq/filePerfData notification, which is
// applied as a perf update.
func (ws *ViewServer) Ingest(data []byte) error {
	msg, err := decodeIncoming(data)
	if err != nil {
		ws.discarded.Add(1)
		ws.logger.LogError(err)
		ws.eventBus.Publish(events.EventTypeError, events.ErrorEvent("decode view message", err))
		return err
	}
	return ws.Apply(msg)
}

func decodeIncoming(data []byte) (viewmsg.Message, error) {
	var probe struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if probe.JSONRPC == "" {
		return viewmsg.Decode(data)
	}
	if probe.Method != protocol.MethodFilePerfData {
		return nil, utils.NewUnknownMethodError("server", probe.Method)
	}
	var report panel.PerfReport
	if err := json.Unmarshal(probe.Params, &report); err != nil {
		return nil, fmt.Errorf("%s params: %w", probe.Method, err)
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return viewmsg.Update{Params: report}, nil
}

// Apply hands a decoded envelope to its panel and, when accepted, forwards it
// to view clients. A rendered goal panel follows every accepted renderGoals.
func (ws *ViewServer) Apply(msg viewmsg.Message) error {
	var err error
	switch m := msg.(type) {
	case viewmsg.GoalMessage:
		err = ws.goals.Handle(m)
	case viewmsg.PerfMessage:
		err = ws.perf.Handle(m)
	default:
		err = utils.NewUnknownMethodError(msg.Channel(), msg.Method())
	}
	if err != nil {
		ws.discarded.Add(1)
		return err
	}

	ws.applied.Add(1)
	ws.eventBus.PublishMessage(msg)
	if rg, ok := msg.(viewmsg.RenderGoals); ok {
		if err := ws.publishRendered(rg.Params); err != nil {
			ws.logger.LogError(err)
		}
	}
	return nil
}

// ApplyStatus records a completion status and announces it.
func (ws *ViewServer) ApplyStatus(doc protocol.VersionedTextDocumentIdentifier, status fleche.CompletionStatus) error {
	if err := ws.tracker.Apply(doc, status); err != nil {
		ws.discarded.Add(1)
		ws.logger.LogError(err)
		return err
	}
	ws.eventBus.Publish(events.EventTypeStatus, events.StatusEvent(doc, status))
	return nil
}

func (ws *ViewServer) publishRendered(a panel.Answer) error {
	out, err := goals.Format(a, ws.width, ws.format)
	if err != nil {
		return fmt.Errorf("render goals for %s: %w", a.TextDocument.URI, err)
	}
	ws.eventBus.Publish(events.EventTypeRendered,
		events.RenderedEvent(a.TextDocument.URI, a.TextDocument.Version, out.Text, out.Markup.HTML()))
	return nil
}
