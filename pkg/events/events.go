// Package events fans view updates out to goalview's front ends.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alantheprice/goalview/pkg/fleche"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/viewmsg"
)

// ViewEvent is one update forwarded to view clients.
type ViewEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Event types
const (
	// EventTypeGoals carries a goal channel envelope.
	EventTypeGoals = "goals"
	// EventTypePerf carries a perf channel envelope.
	EventTypePerf     = "perf"
	EventTypeStatus   = "status"
	EventTypeRendered = "rendered"
	EventTypeError    = "error"
)

// SubscriberBuffer is the queue length of each subscriber.
const SubscriberBuffer = 100

// EventBus distributes view events to named subscribers.
type EventBus struct {
	subscribers map[string]chan ViewEvent
	mutex       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]chan ViewEvent),
	}
}

// Subscribe adds a subscriber. Subscribing again under the same name
// replaces the earlier channel, which is closed.
func (eb *EventBus) Subscribe(name string) <-chan ViewEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	if old, exists := eb.subscribers[name]; exists {
		close(old)
	}
	ch := make(chan ViewEvent, SubscriberBuffer)
	eb.subscribers[name] = ch
	return ch
}

// Unsubscribe removes a subscriber from the event bus
func (eb *EventBus) Unsubscribe(name string) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	if ch, exists := eb.subscribers[name]; exists {
		delete(eb.subscribers, name)
		close(ch)
	}
}

// Subscribers returns the number of subscribers.
func (eb *EventBus) Subscribers() int {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return len(eb.subscribers)
}

// Publish broadcasts an event to all subscribers and returns it. Subscribers
// whose queue is full miss the event.
func (eb *EventBus) Publish(eventType string, data any) ViewEvent {
	event := ViewEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	// Hold the read lock while sending so Unsubscribe cannot close a channel
	// mid-send; sends never block.
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return event
}

// PublishMessage publishes a view envelope under its channel's event type.
func (eb *EventBus) PublishMessage(msg viewmsg.Message) ViewEvent {
	eventType := EventTypeGoals
	if msg.Channel() == viewmsg.ChannelPerf {
		eventType = EventTypePerf
	}
	return eb.Publish(eventType, msg)
}

// StatusEvent describes a completion status change.
func StatusEvent(doc protocol.VersionedTextDocumentIdentifier, status fleche.CompletionStatus) map[string]interface{} {
	return map[string]interface{}{
		"uri":     doc.URI,
		"version": doc.Version,
		"status":  string(status.Status),
		"range":   status.Range,
	}
}

// RenderedEvent carries a goal panel rendered for display.
func RenderedEvent(uri string, version int, text, html string) map[string]interface{} {
	return map[string]interface{}{
		"uri":     uri,
		"version": version,
		"text":    text,
		"html":    html,
	}
}

// ErrorEvent creates an error event
func ErrorEvent(message string, err error) map[string]interface{} {
	return map[string]interface{}{
		"message": message,
		"error":   err.Error(),
	}
}
