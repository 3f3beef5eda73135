package store

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by every store of a registry.
// All collectors carry a "resource" label.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	stale         *prometheus.CounterVec
	pages         *prometheus.GaugeVec
}

// NewMetrics creates the store collectors and registers them on reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keydesk",
			Subsystem: "store",
			Name:      name,
			Help:      help,
		}, []string{"resource"})
	}
	m := &Metrics{
		hits:          counter("hits_total", "Total number of page reads served from cache"),
		misses:        counter("misses_total", "Total number of page reads that went to the backend"),
		fetchErrors:   counter("fetch_errors_total", "Total number of failed backend fetches"),
		invalidations: counter("invalidations_total", "Total number of store invalidations"),
		stale:         counter("stale_responses_total", "Total number of responses discarded as stale"),
		pages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "keydesk",
			Subsystem: "store",
			Name:      "pages",
			Help:      "Current number of cached pages",
		}, []string{"resource"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.fetchErrors, m.invalidations, m.stale, m.pages} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "error registering store metrics")
		}
	}
	return m, nil
}

func (m *Metrics) hit(resource string)        { m.hits.WithLabelValues(resource).Inc() }
func (m *Metrics) miss(resource string)       { m.misses.WithLabelValues(resource).Inc() }
func (m *Metrics) fetchError(resource string) { m.fetchErrors.WithLabelValues(resource).Inc() }
func (m *Metrics) invalidated(resource string) {
	m.invalidations.WithLabelValues(resource).Inc()
}
func (m *Metrics) staleResponse(resource string) { m.stale.WithLabelValues(resource).Inc() }
func (m *Metrics) setPages(resource string, n int) {
	m.pages.WithLabelValues(resource).Set(float64(n))
}
