package hub

import (
	"sync"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

// Event is the wire envelope pushed to subscribers. Type discriminates a
// full-replace snapshot from an incremental append.
type Event struct {
	Type     string           `json:"type"`
	Messages []domain.Message `json:"messages,omitempty"`
	Message  *domain.Message  `json:"message,omitempty"`
}

const (
	EventSnapshot = "snapshot"
	EventAppend   = "append"
)

// subscriberBuffer bounds how far a reader may lag before events are
// dropped for it instead of blocking the hub.
const subscriberBuffer = 64

// Subscriber is one live observer of a run's message stream.
type Subscriber struct {
	hub    *Hub
	runID  int
	events chan Event
	once   sync.Once
}

// Events is the channel the subscriber drains. It is never closed; callers
// stop reading after Close.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Close unregisters the subscriber. Safe to call any number of times and
// concurrently with an in-flight broadcast; once it returns no further
// events are delivered.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub fans message-stream events out to any number of live observers per
// run, without the store knowing about transport.
type Hub struct {
	mu   sync.Mutex
	runs map[int]map[*Subscriber]struct{}
}

func New() *Hub {
	return &Hub{runs: map[int]map[*Subscriber]struct{}{}}
}

// Register adds a subscriber for a run and returns its handle.
func (h *Hub) Register(runID int) *Subscriber {
	sub := &Subscriber{
		hub:    h,
		runID:  runID,
		events: make(chan Event, subscriberBuffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	bucket, ok := h.runs[runID]
	if !ok {
		bucket = map[*Subscriber]struct{}{}
		h.runs[runID] = bucket
	}
	bucket[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	bucket, ok := h.runs[sub.runID]
	if !ok {
		return
	}
	delete(bucket, sub)
	if len(bucket) == 0 {
		delete(h.runs, sub.runID)
	}
}

// SendSnapshot delivers the full message list. With a target it goes to just
// that subscriber (the usual case right after Register); with a nil target
// it goes to every subscriber of the run.
func (h *Hub) SendSnapshot(runID int, messages []domain.Message, target *Subscriber) {
	ev := Event{Type: EventSnapshot, Messages: messages}
	h.mu.Lock()
	defer h.mu.Unlock()
	if target != nil {
		h.deliverLocked(runID, target, ev)
		return
	}
	for sub := range h.runs[runID] {
		h.deliverLocked(runID, sub, ev)
	}
}

// SendAppend broadcasts one new message to every current subscriber of the
// run. Appends submitted in order are delivered in order; the mutex
// serializes broadcasts.
func (h *Hub) SendAppend(runID int, message domain.Message) {
	ev := Event{Type: EventAppend, Message: &message}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.runs[runID] {
		h.deliverLocked(runID, sub, ev)
	}
}

func (h *Hub) deliverLocked(runID int, sub *Subscriber, ev Event) {
	if _, ok := h.runs[runID][sub]; !ok {
		// Mid-teardown handle; observed and discarded.
		return
	}
	select {
	case sub.events <- ev:
	default:
		// Reader stopped draining; dropping beats blocking every
		// other subscriber of the run.
	}
}

// SubscriberCount reports the live subscriber count for a run.
func (h *Hub) SubscriberCount(runID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.runs[runID])
}
