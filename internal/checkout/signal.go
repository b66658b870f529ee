package checkout

import "sync"

// ValueSignal is a minimal Signal implementation: a mutable value with
// change notifications. It stands in for the platform's reactive signal
// primitive in wiring and tests.
type ValueSignal struct {
	mu   sync.Mutex
	val  string
	subs map[int]func(string)
	next int
}

// NewValueSignal creates a ValueSignal holding an initial value.
func NewValueSignal(initial string) *ValueSignal {
	return &ValueSignal{val: initial, subs: make(map[int]func(string))}
}

// Value returns the current value.
func (s *ValueSignal) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// Subscribe registers a change listener and returns its cancel func.
func (s *ValueSignal) Subscribe(fn func(string)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Set stores a new value and notifies subscribers.
func (s *ValueSignal) Set(val string) {
	s.mu.Lock()
	s.val = val
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(val)
	}
}
