// Package analytics records fire-and-forget user interaction events through
// an injected Sink.
package analytics

// Sink receives analytics events. Record must not block the caller for long
// and must not retain attrs after returning.
type Sink interface {
	Record(name string, attrs map[string]any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(string, map[string]any) {}

// Multi fans each event out to every sink in order.
type Multi []Sink

func (m Multi) Record(name string, attrs map[string]any) {
	for _, s := range m {
		s.Record(name, attrs)
	}
}

// Combine returns a single sink for sinks, dropping nils. No sinks yields Nop.
func Combine(sinks ...Sink) Sink {
	out := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	}
	return out
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name string, attrs map[string]any)

func (f SinkFunc) Record(name string, attrs map[string]any) {
	f(name, attrs)
}
