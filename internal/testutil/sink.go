package testutil

import (
	"maps"
	"sync"
)

// Recorded is one call captured by MockSink.
type Recorded struct {
	Name  string
	Attrs map[string]any
}

// MockSink is an analytics sink that keeps every recorded event.
type MockSink struct {
	mu     sync.Mutex
	events []Recorded
}

// NewMockSink returns an empty MockSink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Record stores a copy of attrs under name.
func (s *MockSink) Record(name string, attrs map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Recorded{Name: name, Attrs: maps.Clone(attrs)})
}

// Events returns a copy of the recorded events in call order.
func (s *MockSink) Events() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.events))
	copy(out, s.events)
	return out
}

// Named returns the recorded events with the given name.
func (s *MockSink) Named(name string) []Recorded {
	var out []Recorded
	for _, e := range s.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears all recorded events.
func (s *MockSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
