package analytics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts events by name. Filter changes also count by dimension and
// value so popular filters are visible on a dashboard.
type Metrics struct {
	events  *prometheus.CounterVec
	filters *prometheus.CounterVec
}

// NewMetrics registers the analytics counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tourstream",
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Analytics events recorded, by event name.",
		}, []string{"event"}),
		filters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tourstream",
			Subsystem: "analytics",
			Name:      "filter_selections_total",
			Help:      "Filter selections, by dimension and value.",
		}, []string{"filter_type", "filter_value"}),
	}
	for _, c := range []prometheus.Collector{m.events, m.filters} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register analytics metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) Record(name string, attrs map[string]any) {
	m.events.WithLabelValues(name).Inc()
	if name != EventFilterChange {
		return
	}
	ft, _ := attrs[AttrFilterType].(string)
	fv, _ := attrs[AttrFilterValue].(string)
	m.filters.WithLabelValues(ft, fv).Inc()
}
