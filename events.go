package hxfeed

import "sync"

// Event types emitted by a Loader.
const (
	// EventQuery fires after Query starts a new search. Detail is the query.
	EventQuery = "query"
	// EventLoadEntries fires after a response is handled. Detail is the
	// decoded response.
	EventLoadEntries = "loadentries"
)

// Event is delivered to listeners.
type Event struct {
	Type   string
	Detail any
	Target any
}

// Listener handles an event.
type Listener func(Event)

// ListenerID identifies a registration for RemoveEventListener.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// EventTarget is a synchronous publish/subscribe channel. Listeners run on
// the dispatching goroutine in registration order. The zero value is ready
// to use.
type EventTarget struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners map[string][]listenerEntry
}

// AddEventListener registers fn for typ.
func (t *EventTarget) AddEventListener(typ string, fn Listener) ListenerID {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listeners == nil {
		t.listeners = make(map[string][]listenerEntry)
	}
	t.nextID++
	t.listeners[typ] = append(t.listeners[typ], listenerEntry{id: t.nextID, fn: fn})
	return t.nextID
}

// RemoveEventListener unregisters id from typ and reports whether it was
// registered.
func (t *EventTarget) RemoveEventListener(typ string, id ListenerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.listeners[typ]
	for i, e := range entries {
		if e.id == id {
			t.listeners[typ] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// DispatchEvent calls every listener registered for e.Type. Listeners added
// or removed while dispatching take effect from the next event.
func (t *EventTarget) DispatchEvent(e Event) {
	t.mu.Lock()
	entries := append([]listenerEntry(nil), t.listeners[e.Type]...)
	t.mu.Unlock()

	for _, entry := range entries {
		entry.fn(e)
	}
}
