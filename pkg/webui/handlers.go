package webui

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/alantheprice/goalview/pkg/fleche"
	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

const maxBodyBytes = 4 << 20

// handleIndex serves the viewer page
func (ws *ViewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Write(data)
}

// handleStaticFiles serves static files with proper MIME types
func (ws *ViewServer) handleStaticFiles(w http.ResponseWriter, r *http.Request) {
	filePath := strings.TrimPrefix(r.URL.Path, "/static/")
	if filePath == "" || strings.Contains(filePath, "..") || strings.HasPrefix(filePath, "/") {
		http.NotFound(w, r)
		return
	}

	data, err := staticFiles.ReadFile("static/" + filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if contentType := mime.TypeByExtension(path.Ext(filePath)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// panelState is the JSON snapshot of the goal panel.
type panelState struct {
	State   string              `json:"state"`
	Request *goals.GoalRequest  `json:"request,omitempty"`
	Error   *protocol.ErrorData `json:"error,omitempty"`
	Text    string              `json:"text,omitempty"`
	HTML    string              `json:"html,omitempty"`
	URI     string              `json:"uri,omitempty"`
	Version int                 `json:"version,omitempty"`
}

func (ws *ViewServer) snapshot() panelState {
	v := ws.goals.View()
	st := panelState{State: v.State.String(), Request: v.Request, Error: v.Error}
	if v.Answer != nil {
		st.URI = v.Answer.TextDocument.URI
		st.Version = v.Answer.TextDocument.Version
		if out, err := goals.Format(*v.Answer, ws.width, ws.format); err == nil {
			st.Text = out.Text
			st.HTML = out.Markup.HTML()
		}
	}
	return st
}

func (ws *ViewServer) handleAPIState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, ws.snapshot())
}

// handleAPIPerf returns the perf report of ?uri= with its totals and the
// ?slowest= slowest sentences (10 by default).
func (ws *ViewServer) handleAPIPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"documents": ws.perf.Documents()})
		return
	}
	report, ok := ws.perf.Report(uri)
	if !ok {
		http.NotFound(w, r)
		return
	}
	n := 10
	if s := r.URL.Query().Get("slowest"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "slowest must be an integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	totals := report.Totals()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"textDocument": report.TextDocument,
		"summary":      report.Summary,
		"totals":       totals,
		"hitRate":      totals.HitRate(),
		"slowest":      report.Slowest(n),
	})
}

// handleAPIMessages ingests one envelope posted as the request body.
func (ws *ViewServer) handleAPIMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ws.Ingest(body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type statusUpdate struct {
	TextDocument protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	Completed    fleche.CompletionStatus                  `json:"completed"`
}

// handleAPIStatus reports (GET ?uri=) or records (POST) completion status.
func (ws *ViewServer) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		uri := r.URL.Query().Get("uri")
		version, status, ok := ws.tracker.Status(uri)
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, statusUpdate{
			TextDocument: protocol.VersionedTextDocumentIdentifier{URI: uri, Version: version},
			Completed:    status,
		})

	case http.MethodPost:
		var upd statusUpdate
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&upd); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := ws.ApplyStatus(upd.TextDocument, upd.Completed); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeError maps discarded payloads to 409 and malformed ones to 400.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	switch utils.KindOf(err) {
	case utils.KindStaleRequest, utils.KindStatusFinal:
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{
		"kind":  string(utils.KindOf(err)),
		"error": err.Error(),
	})
}
