package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	cache "github.com/krisalay/querycache"
)

// StatsSource is anything that can report a cache.Stats snapshot.
type StatsSource interface {
	Stats() cache.Stats
}

/*
StatsCollector exports Stats snapshots as gauges at scrape time.
Nothing is cached between scrapes; each Collect reads every source once.
*/
type StatsCollector struct {
	mu      sync.Mutex
	sources map[string]StatsSource

	size    *prometheus.Desc
	maxSize *prometheus.Desc
	hitRate *prometheus.Desc
}

// NewStatsCollector builds an empty collector. Register it, then Add sources.
func NewStatsCollector(namespace string) *StatsCollector {
	labels := []string{"cache"}
	return &StatsCollector{
		sources: make(map[string]StatsSource),
		size:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "size"), "Current number of entries", labels, nil),
		maxSize: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "max_size"), "Configured capacity", labels, nil),
		hitRate: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "hit_rate_percent"), "Hit rate since the last clear, 0-100", labels, nil),
	}
}

// Add exports src under name, replacing any previous source with that name.
func (c *StatsCollector) Add(name string, src StatsSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[name] = src
}

// Remove stops exporting name.
func (c *StatsCollector) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, name)
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.maxSize
	ch <- c.hitRate
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, src := range c.sources {
		s := src.Stats()
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size), name)
		ch <- prometheus.MustNewConstMetric(c.maxSize, prometheus.GaugeValue, float64(s.MaxSize), name)
		ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, s.HitRate, name)
	}
}
