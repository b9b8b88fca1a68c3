package analytics

import (
	"context"
	"maps"
	"strings"
	"time"

	"github.com/HerbHall/tourstream/internal/event"
)

// TopicPrefix prefixes the bus topic of every analytics event.
const TopicPrefix = "analytics."

// Payload is the event bus payload for an analytics event.
type Payload struct {
	Name  string
	Attrs map[string]any
}

// Bus publishes events asynchronously as "analytics.<name>".
type Bus struct {
	pub event.Publisher
	now func() time.Time
}

// NewBus returns a sink publishing on pub.
func NewBus(pub event.Publisher) *Bus {
	return &Bus{pub: pub, now: time.Now}
}

func (b *Bus) Record(name string, attrs map[string]any) {
	b.pub.PublishAsync(context.Background(), event.Event{
		Topic:     TopicPrefix + name,
		Source:    "analytics",
		Timestamp: b.now().UTC(),
		Payload:   Payload{Name: name, Attrs: maps.Clone(attrs)},
	})
}

// IsAnalyticsTopic reports whether topic carries an analytics event.
func IsAnalyticsTopic(topic string) bool {
	return strings.HasPrefix(topic, TopicPrefix)
}
