package adapter

import (
	"sync"

	"github.com/thenexusengine/tne_adbridge/internal/mediation"
)

// listenerRegistry holds the listener supplied at load time for fullscreen
// placements until show time. The partner SDK's Show call does not accept a
// call-scoped listener, so show-time events must be routed back to the
// listener registered under the originating request ID.
type listenerRegistry struct {
	mu        sync.Mutex
	listeners map[string]mediation.AdListener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{listeners: make(map[string]mediation.AdListener)}
}

// Register stores a listener under a request ID, replacing any previous one
func (r *listenerRegistry) Register(requestID string, l mediation.AdListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[requestID] = l
}

// Take removes and returns the listener for a request ID. Single
// consumption: a second Take for the same ID reports no listener.
func (r *listenerRegistry) Take(requestID string) (mediation.AdListener, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listeners[requestID]
	if ok {
		delete(r.listeners, requestID)
	}
	return l, ok
}

// Remove drops a registered listener without returning it
func (r *listenerRegistry) Remove(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listeners, requestID)
}

// Len reports the number of pending listeners
func (r *listenerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
