package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metric names.
const (
	WidgetRequestsTotal    = "widget_requests_total"
	WidgetRequestDuration  = "widget_request_duration_seconds"
	UpstreamRequestsTotal  = "upstream_requests_total"
	UpstreamRequestLatency = "upstream_request_duration_seconds"
	UpstreamRetriesTotal   = "upstream_retries_total"
	CacheOperationsTotal   = "cache_operations_total"
	RateLimitedTotal       = "rate_limited_total"
	CacheHitRate           = "cache_hit_rate"
	InflightRequests       = "inflight_requests"
)

type Metrics struct {
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}

	m.counters[WidgetRequestsTotal] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: WidgetRequestsTotal,
			Help: "Total number of widget request cycles by surface and outcome",
		},
		[]string{"surface", "outcome"},
	)

	m.counters[UpstreamRequestsTotal] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: UpstreamRequestsTotal,
			Help: "Total number of attempts against the weather and geolocation APIs",
		},
		[]string{"api", "status"},
	)

	m.counters[UpstreamRetriesTotal] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: UpstreamRetriesTotal,
			Help: "Total number of retries after transient network failures",
		},
		[]string{"api"},
	)

	m.counters[CacheOperationsTotal] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: CacheOperationsTotal,
			Help: "Total number of cache lookups by result",
		},
		[]string{"cache_type", "result"},
	)

	m.counters[RateLimitedTotal] = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: RateLimitedTotal,
			Help: "Total number of requests rejected by the per-client rate limiter",
		},
		[]string{"surface"},
	)

	m.histograms[WidgetRequestDuration] = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    WidgetRequestDuration,
			Help:    "Duration of a full widget request cycle",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"surface"},
	)

	m.histograms[UpstreamRequestLatency] = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    UpstreamRequestLatency,
			Help:    "Duration of single upstream API attempts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"api"},
	)

	m.gauges[CacheHitRate] = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: CacheHitRate,
			Help: "Cache hit rate percentage",
		},
		[]string{"cache_type"},
	)

	m.gauges[InflightRequests] = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: InflightRequests,
			Help: "Number of widget request cycles currently in flight",
		},
		[]string{},
	)

	// Register all metrics (gracefully handle already registered metrics)
	for _, counter := range m.counters {
		register(counter)
	}
	for _, histogram := range m.histograms {
		register(histogram)
	}
	for _, gauge := range m.gauges {
		register(gauge)
	}

	return m
}

func register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		// Metric already registered, this is OK in tests
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			panic(err)
		}
	}
}

func (m *Metrics) IncrementCounter(name string, labelValues ...string) {
	if counter, exists := m.counters[name]; exists {
		counter.WithLabelValues(labelValues...).Inc()
	}
}

func (m *Metrics) ObserveHistogram(name string, value float64, labelValues ...string) {
	if histogram, exists := m.histograms[name]; exists {
		histogram.WithLabelValues(labelValues...).Observe(value)
	}
}

func (m *Metrics) SetGauge(name string, value float64, labelValues ...string) {
	if gauge, exists := m.gauges[name]; exists {
		gauge.WithLabelValues(labelValues...).Set(value)
	}
}

// AddGauge adds delta (which may be negative) to a gauge.
func (m *Metrics) AddGauge(name string, delta float64, labelValues ...string) {
	if gauge, exists := m.gauges[name]; exists {
		gauge.WithLabelValues(labelValues...).Add(delta)
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// collect drains a collector into DTOs.
func collect(c prometheus.Collector) []*dto.Metric {
	metricChan := make(chan prometheus.Metric, 16)

	go func() {
		c.Collect(metricChan)
		close(metricChan)
	}()

	var out []*dto.Metric
	for metric := range metricChan {
		dtoMetric := &dto.Metric{}
		if err := metric.Write(dtoMetric); err != nil {
			continue
		}
		out = append(out, dtoMetric)
	}
	return out
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

// GetCacheHitRate reads back the cache hit rate gauge for cacheType.
// Returns 0 until the first cache lookup is recorded.
func (m *Metrics) GetCacheHitRate(cacheType string) float64 {
	gauge, exists := m.gauges[CacheHitRate]
	if !exists {
		return 0
	}

	for _, metric := range collect(gauge) {
		if hasLabel(metric, "cache_type", cacheType) && metric.Gauge != nil {
			return metric.Gauge.GetValue()
		}
	}
	return 0
}

// GetAverageResponseTime returns the mean widget cycle duration in
// milliseconds across all surfaces, or 0 when nothing was observed.
func (m *Metrics) GetAverageResponseTime() float64 {
	histogram, exists := m.histograms[WidgetRequestDuration]
	if !exists {
		return 0
	}

	var totalSum float64
	var totalCount uint64
	for _, metric := range collect(histogram) {
		if metric.Histogram != nil {
			totalSum += metric.Histogram.GetSampleSum()
			totalCount += metric.Histogram.GetSampleCount()
		}
	}

	if totalCount == 0 {
		return 0
	}
	return totalSum / float64(totalCount) * 1000.0
}

// GetCounterTotal sums a counter across every label combination that
// carries the given label pair. An empty labelName sums everything.
func (m *Metrics) GetCounterTotal(name, labelName, labelValue string) float64 {
	counter, exists := m.counters[name]
	if !exists {
		return 0
	}

	var total float64
	for _, metric := range collect(counter) {
		if labelName != "" && !hasLabel(metric, labelName, labelValue) {
			continue
		}
		if metric.Counter != nil {
			total += metric.Counter.GetValue()
		}
	}
	return total
}
