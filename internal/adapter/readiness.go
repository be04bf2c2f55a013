package adapter

import "sync"

// readinessTracker records which placements have a loaded, not-yet-shown
// ad. An entry is true only between a successful load callback and the
// next show attempt or invalidation; absent placements are not ready.
type readinessTracker struct {
	mu    sync.Mutex
	ready map[string]bool
}

func newReadinessTracker() *readinessTracker {
	return &readinessTracker{ready: make(map[string]bool)}
}

// Set records readiness for a placement
func (t *readinessTracker) Set(placementID string, ready bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ready {
		t.ready[placementID] = true
		return
	}
	delete(t.ready, placementID)
}

// IsReady reports whether the placement has a loaded ad waiting to show
func (t *readinessTracker) IsReady(placementID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready[placementID]
}

// Clear removes the placement's readiness entry
func (t *readinessTracker) Clear(placementID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ready, placementID)
}

// ReadyCount reports how many placements are currently ready
func (t *readinessTracker) ReadyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ready)
}
