package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/krisalay/querycache/types"
)

// Recorder owns the cache event counters, labelled by cache name.
// One Recorder serves any number of Managers.
type Recorder struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	expirations *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them with reg.
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	newVec := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      name,
				Help:      help,
			},
			[]string{"cache"},
		)
	}

	r := &Recorder{
		hits:        newVec("hits_total", "Total cache reads that returned a live value"),
		misses:      newVec("misses_total", "Total cache reads that found nothing or an expired entry"),
		evictions:   newVec("evictions_total", "Total entries removed to make room"),
		expirations: newVec("expirations_total", "Total entries removed for outliving their TTL"),
	}

	for _, c := range []prometheus.Collector{r.hits, r.misses, r.evictions, r.expirations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// For returns a types.Metrics that records under the given cache name.
func (r *Recorder) For(name string) types.Metrics {
	return &cacheMetrics{
		hits:        r.hits.WithLabelValues(name),
		misses:      r.misses.WithLabelValues(name),
		evictions:   r.evictions.WithLabelValues(name),
		expirations: r.expirations.WithLabelValues(name),
	}
}

type cacheMetrics struct {
	hits, misses, evictions, expirations prometheus.Counter
}

func (m *cacheMetrics) Hit()      { m.hits.Inc() }
func (m *cacheMetrics) Miss()     { m.misses.Inc() }
func (m *cacheMetrics) Eviction() { m.evictions.Inc() }
func (m *cacheMetrics) Expire()   { m.expirations.Inc() }
