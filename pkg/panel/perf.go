package panel

import (
	"io"
	"sort"
	"sync"

	"github.com/alantheprice/goalview/pkg/fleche"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
	"github.com/alantheprice/goalview/pkg/viewmsg"
)

// PerfReport is the perf data shown for one document.
type PerfReport = fleche.DocumentPerfParams[protocol.Range]

// PerfPanel holds the latest perf report per document.
type PerfPanel struct {
	mu      sync.Mutex
	reports map[string]PerfReport
	logger  *utils.Logger
}

// NewPerfPanel creates an empty perf panel. A nil logger discards
// diagnostics.
func NewPerfPanel(logger *utils.Logger) *PerfPanel {
	if logger == nil {
		logger = utils.NewLogger(io.Discard, false)
	}
	return &PerfPanel{reports: make(map[string]PerfReport), logger: logger}
}

// Handle applies a perf envelope. An update replaces the report of its
// document wholesale, unless it is for an older version than the one shown;
// a reset clears every document.
func (p *PerfPanel) Handle(msg viewmsg.PerfMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch m := msg.(type) {
	case viewmsg.Update:
		doc := m.Params.TextDocument
		if cur, ok := p.reports[doc.URI]; ok && cur.TextDocument.Supersedes(doc) {
			err := utils.NewStaleError(doc.URI, doc.Version, cur.TextDocument.Version)
			p.logger.LogDiscard(viewmsg.ChannelPerf, m.Method(), err)
			return err
		}
		p.reports[doc.URI] = m.Params
	case viewmsg.Reset:
		p.reports = make(map[string]PerfReport)
	default:
		return utils.NewUnknownMethodError(viewmsg.ChannelPerf, msg.Method())
	}
	return nil
}

// Report returns the report for a document.
func (p *PerfPanel) Report(uri string) (PerfReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.reports[uri]
	return r, ok
}

// Documents lists documents with perf data, sorted.
func (p *PerfPanel) Documents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	uris := make([]string, 0, len(p.reports))
	for uri := range p.reports {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
