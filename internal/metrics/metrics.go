// Package metrics holds the domain counters exported at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "docvault"

// Result labels.
const (
	ResultSuccess       = "success"
	ResultStorageError  = "storage_error"
	ResultPersistError  = "persist_error"
	ResultNotFound      = "not_found"
	ResultInvalidInput  = "invalid_input"
	ResultUnexpectedErr = "error"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	uploads          *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	searches         prometheus.Counter
	orphanCandidates prometheus.Counter
	orphansRemoved   prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Document uploads by result.",
		}, []string{"result"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_urls_total",
			Help:      "Presigned download URL requests by result.",
		}, []string{"result"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed document searches.",
		}),
		orphanCandidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_candidates_total",
			Help:      "Stored objects whose document record could not be written.",
		}),
		orphansRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphans_removed_total",
			Help:      "Unreferenced objects deleted by reconciliation.",
		}),
	}
	for _, c := range []prometheus.Collector{m.uploads, m.downloads, m.searches, m.orphanCandidates, m.orphansRemoved} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Upload(result string) {
	if m != nil {
		m.uploads.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Download(result string) {
	if m != nil {
		m.downloads.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Search() {
	if m != nil {
		m.searches.Inc()
	}
}

func (m *Metrics) OrphanCandidate() {
	if m != nil {
		m.orphanCandidates.Inc()
	}
}

func (m *Metrics) OrphanRemoved() {
	if m != nil {
		m.orphansRemoved.Inc()
	}
}
