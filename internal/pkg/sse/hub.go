package sse

import (
	"sync"
)

const defaultBuffer = 10

// Event is one server-sent event addressed to an employee.
type Event struct {
	EmployeeID string
	Event      string
	ID         string
	Data       any
}

// Hub fans events out to the open streams of each employee.
type Hub struct {
	mu          sync.RWMutex
	buffer      int
	closed      bool
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a hub whose subscriber channels hold buffer events.
// A non-positive buffer uses the default of 10.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		buffer:      buffer,
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for employeeID. The returned cleanup closes the
// channel and is safe to call more than once.
func (h *Hub) Subscribe(employeeID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[employeeID][ch]; !ok {
				return // already closed by Close
			}
			delete(h.subscribers[employeeID], ch)
			close(ch)
			if len(h.subscribers[employeeID]) == 0 {
				delete(h.subscribers, employeeID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends event to every stream of employeeID and returns how many
// streams accepted it. Full channels are skipped.
func (h *Hub) Publish(employeeID string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.EmployeeID = employeeID
	sent := 0
	for ch := range h.subscribers[employeeID] {
		select {
		case ch <- event:
			sent++
		default:
		}
	}
	return sent
}

// PublishToMany sends event to several employees.
func (h *Hub) PublishToMany(employeeIDs []string, event Event) int {
	sent := 0
	for _, id := range employeeIDs {
		sent += h.Publish(id, event)
	}
	return sent
}

// SubscriberCount returns the number of open streams for employeeID.
func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[employeeID])
}

// TotalSubscribers returns the number of open streams across all employees.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// Close ends every open stream. Later subscriptions receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, id)
	}
}
