package fleche

import (
	"errors"
	"sort"
	"sync"

	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

type docState struct {
	version int
	status  CompletionStatus
}

// Tracker follows the completion status of each open document. It is safe
// for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	docs map[string]docState
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{docs: make(map[string]docState)}
}

// Apply records a status update for a document version. An update for an
// older version fails with StaleRequest; a newer version restarts from
// Initial; an update after Yes or Failed for the same version fails with
// StatusFinal. A rejected update leaves the tracker unchanged.
func (t *Tracker) Apply(doc protocol.VersionedTextDocumentIdentifier, status CompletionStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.docs[doc.URI]
	switch {
	case !ok || doc.Version > cur.version:
		cur = docState{version: doc.Version, status: Initial()}
	case doc.Version < cur.version:
		return utils.NewStaleError(doc.URI, doc.Version, cur.version).WithOperation("status update")
	}
	if err := cur.status.Transition(status); err != nil {
		var se *utils.StructuredError
		if errors.As(err, &se) {
			se.WithResource(doc.URI)
		}
		return err
	}
	cur.status = status
	t.docs[doc.URI] = cur
	return nil
}

// Status returns the latest version seen for uri and its status.
func (t *Tracker) Status(uri string) (version int, status CompletionStatus, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.docs[uri]
	return s.version, s.status, ok
}

// Forget drops a closed document.
func (t *Tracker) Forget(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.docs, uri)
}

// Documents lists tracked URIs in sorted order.
func (t *Tracker) Documents() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	uris := make([]string, 0, len(t.docs))
	for uri := range t.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
