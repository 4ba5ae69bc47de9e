package tui

import (
	"context"
	"sync"
)

// RequestState tracks the cancel functions of in-flight requests with
// thread safety. Commands release their slot when they finish.
type RequestState struct {
	mu      sync.Mutex
	next    int
	cancels map[int]context.CancelFunc
}

// NewRequestState creates an empty request tracker
func NewRequestState() *RequestState {
	return &RequestState{cancels: make(map[int]context.CancelFunc)}
}

// Track registers cancel and returns the function that releases it
func (r *RequestState) Track(cancel context.CancelFunc) (release func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.cancels[id] = cancel

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.cancels[id]; ok {
			c()
			delete(r.cancels, id)
		}
	}
}

// InFlight returns the number of requests not yet released
func (r *RequestState) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cancels)
}

// CancelAll cancels every in-flight request
func (r *RequestState) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cancel := range r.cancels {
		cancel()
		delete(r.cancels, id)
	}
}
