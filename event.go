package posetrack

import "sync"

// Subscription identifies a handler registered with an Event.
type Subscription uint64

// Event is a zero-argument broadcast. Every playback that finishes fires it
// once; it carries no information about which playback that was.
type Event struct {
	mu       sync.Mutex
	next     Subscription
	handlers map[Subscription]func()
	order    []Subscription
}

// Subscribe registers fn and returns a handle for Unsubscribe. Handlers run in
// subscription order. A nil fn is ignored and gets the zero Subscription.
func (e *Event) Subscribe(fn func()) Subscription {
	if fn == nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[Subscription]func())
	}

	e.next++
	id := e.next
	e.handlers[id] = fn
	e.order = append(e.order, id)
	return id
}

// Unsubscribe removes a handler. Removing an unknown subscription is a no-op.
func (e *Event) Unsubscribe(id Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.handlers[id]; !ok {
		return
	}
	delete(e.handlers, id)

	for i, s := range e.order {
		if s == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered handlers.
func (e *Event) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}

// Fire calls every handler registered at the moment of the call. Handlers may
// subscribe or unsubscribe from inside the callback.
func (e *Event) Fire() {
	e.mu.Lock()
	snapshot := make([]func(), 0, len(e.order))
	for _, id := range e.order {
		snapshot = append(snapshot, e.handlers[id])
	}
	e.mu.Unlock()

	for _, fn := range snapshot {
		fn()
	}
}
