// Package panel keeps the consumer-side state of the goal and perf views:
// what is on screen, which request is in flight, and which answers are
// cached. Stale payloads are dropped, never shown.
package panel

import (
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
	"github.com/alantheprice/goalview/pkg/viewmsg"
)

// DefaultCacheSize bounds the goal answer cache.
const DefaultCacheSize = 256

// State is what the goal panel currently shows.
type State int

const (
	StateIdle State = iota
	StateWaiting
	StateShowing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateShowing:
		return "showing"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Answer is the goal answer type the panel displays.
type Answer = goals.GoalAnswer[pp.Any]

// CacheKey identifies a goal answer: the document state, the position and
// which side of the sentence was asked for.
type CacheKey struct {
	URI      string
	Version  int
	Position protocol.Position
	Mode     goals.Mode
}

// View is a snapshot of the goal panel.
type View struct {
	State   State
	Request *goals.GoalRequest
	Answer  *Answer
	Error   *protocol.ErrorData
}

// GoalPanel tracks the newest goal request per document and the answer on
// screen. It is safe for concurrent use.
type GoalPanel struct {
	mu      sync.Mutex
	latest  map[string]int
	pending map[string]goals.GoalRequest
	view    View
	cache   *lru.Cache[CacheKey, Answer]
	logger  *utils.Logger
}

// NewGoalPanel creates a panel caching up to size answers. A nil logger
// discards diagnostics.
func NewGoalPanel(size int, logger *utils.Logger) (*GoalPanel, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[CacheKey, Answer](size)
	if err != nil {
		return nil, fmt.Errorf("create goal cache: %w", err)
	}
	if logger == nil {
		logger = utils.NewLogger(io.Discard, false)
	}
	return &GoalPanel{
		latest:  make(map[string]int),
		pending: make(map[string]goals.GoalRequest),
		cache:   cache,
		logger:  logger,
	}, nil
}

// Handle dispatches a goal channel envelope.
func (p *GoalPanel) Handle(msg viewmsg.GoalMessage) error {
	var err error
	switch m := msg.(type) {
	case viewmsg.RenderGoals:
		err = p.Render(m.Params)
	case viewmsg.WaitingForInfo:
		err = p.Waiting(m.Params)
	case viewmsg.InfoError:
		err = p.Fail(m.Params)
	default:
		err = utils.NewUnknownMethodError(viewmsg.ChannelGoals, msg.Method())
	}
	if err != nil {
		p.logger.LogDiscard(viewmsg.ChannelGoals, msg.Method(), err)
	}
	return err
}

// Waiting records a request in flight. A request for an older version than
// one already seen is stale.
func (p *GoalPanel) Waiting(req goals.GoalRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkVersion(req.TextDocument); err != nil {
		return err
	}
	p.latest[req.TextDocument.URI] = req.TextDocument.Version
	p.pending[req.TextDocument.URI] = req
	r := req
	p.view = View{State: StateWaiting, Request: &r, Answer: p.view.Answer}
	return nil
}

// Render shows an answer. It is stale when its version is older than the
// newest seen for the document, or when it does not answer the request in
// flight.
func (p *GoalPanel) Render(a Answer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc := a.TextDocument
	if err := p.checkVersion(doc); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	mode := goals.ModeAfter
	if req, ok := p.pending[doc.URI]; ok {
		if !a.Answers(req) {
			return utils.NewStructuredError(
				utils.KindStaleRequest,
				fmt.Sprintf("answer for %d@%s does not match pending request %d@%s",
					doc.Version, a.Position, req.TextDocument.Version, req.Position),
				nil,
			).WithResource(doc.URI)
		}
		mode = req.EffectiveMode()
		delete(p.pending, doc.URI)
	}
	p.latest[doc.URI] = doc.Version
	p.cache.Add(CacheKey{URI: doc.URI, Version: doc.Version, Position: a.Position, Mode: mode}, a)
	shown := a
	p.view = View{State: StateShowing, Answer: &shown}
	return nil
}

// Fail shows an infoError. Errors for superseded requests are stale.
func (p *GoalPanel) Fail(e protocol.ErrorData) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkVersion(e.TextDocument); err != nil {
		return err
	}
	if req, ok := p.pending[e.TextDocument.URI]; ok {
		if req.TextDocument != e.TextDocument || req.Position != e.Position {
			return utils.NewStructuredError(utils.KindStaleRequest, "error does not match pending request", nil).
				WithResource(e.TextDocument.URI)
		}
		delete(p.pending, e.TextDocument.URI)
	}
	p.latest[e.TextDocument.URI] = e.TextDocument.Version
	shown := e
	p.view = View{State: StateFailed, Error: &shown}
	return nil
}

// Lookup returns a cached answer.
func (p *GoalPanel) Lookup(key CacheKey) (Answer, bool) {
	if key.Mode == "" {
		key.Mode = goals.ModeAfter
	}
	return p.cache.Get(key)
}

// View returns what the panel currently shows.
func (p *GoalPanel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Forget drops the state and cached answers of a closed document.
func (p *GoalPanel) Forget(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.latest, uri)
	delete(p.pending, uri)
	for _, k := range p.cache.Keys() {
		if k.URI == uri {
			p.cache.Remove(k)
		}
	}
}

func (p *GoalPanel) checkVersion(doc protocol.VersionedTextDocumentIdentifier) error {
	if latest, ok := p.latest[doc.URI]; ok && doc.Version < latest {
		return utils.NewStaleError(doc.URI, doc.Version, latest)
	}
	return nil
}
