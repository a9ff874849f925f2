package events

import (
	"sync"

	"github.com/vsinha/fleetdash/pkg/logging"
)

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// InMemoryEventStore versions events per stream in process memory and hands
// them to subscribers. Subscribers are called synchronously from
// AppendEvent, in subscription order, after the store lock is released.
type InMemoryEventStore struct {
	versions    map[string]int
	subscribers map[string][]EventHandler
	mutex       sync.Mutex
}

var _ EventStore = (*InMemoryEventStore)(nil)

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		versions:    make(map[string]int),
		subscribers: make(map[string][]EventHandler),
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()

	s.versions[streamID]++
	versioned := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: s.versions[streamID],
	}
	handlers := s.handlersFor(versioned.EventType)
	s.mutex.Unlock()

	for _, h := range handlers {
		if !h.CanHandle(versioned.EventType) {
			continue
		}
		if err := h.Handle(versioned); err != nil {
			logging.Default().Warn().
				Err(err).
				Str("event", versioned.EventType).
				Str("stream", streamID).
				Msg("event handler failed")
		}
	}
	return nil
}

func (s *InMemoryEventStore) handlersFor(eventType string) []EventHandler {
	var out []EventHandler
	out = append(out, s.subscribers[eventType]...)
	if eventType != Wildcard {
		out = append(out, s.subscribers[Wildcard]...)
	}
	return out
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(eventTypes) == 0 {
		eventTypes = []string{Wildcard}
	}
	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}
