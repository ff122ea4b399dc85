package nav

import "sync"

// Recorder is an in-memory Navigator that keeps the full navigation history.
// It backs the terminal client and doubles as a test double for flow tests.
type Recorder struct {
	mu      sync.Mutex
	current Route
	history []Route
	pending *Message
}

// NewRecorder creates a Recorder positioned at the given starting route.
func NewRecorder(start Route) *Recorder {
	return &Recorder{
		current: start,
		history: []Route{start},
	}
}

func (r *Recorder) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Recorder) GoTo(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
	r.history = append(r.history, route)
	r.pending = nil
}

func (r *Recorder) GoToWithMessage(route Route, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
	r.history = append(r.history, route)
	r.pending = &msg
}

// ConsumeMessage returns the pending one-shot message, if any, and clears it.
func (r *Recorder) ConsumeMessage() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Message{}, false
	}
	msg := *r.pending
	r.pending = nil
	return msg, true
}

// History returns a copy of every route visited, in order.
func (r *Recorder) History() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Route, len(r.history))
	copy(out, r.history)
	return out
}

// Visits counts how many times the given route was navigated to, excluding
// the starting position.
func (r *Recorder) Visits(route Route) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, visited := range r.history[1:] {
		if visited == route {
			n++
		}
	}
	return n
}
