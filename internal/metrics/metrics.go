// Package metrics collects Prometheus metrics for the platform access layer:
// task queue throughput, cache effectiveness, pagination retries and push
// channel reconnects.
//
// All recording methods are safe to call on a nil *Collector, which lets
// components run without metrics in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vrc_link"

// Collector holds every metric exported by the access layer.
type Collector struct {
	tasksEnqueued *prometheus.CounterVec
	tasksStarted  *prometheus.CounterVec
	tasksFailed   *prometheus.CounterVec
	tasksDropped  *prometheus.CounterVec
	taskLatency   *prometheus.HistogramVec
	tasksPending  prometheus.Gauge

	cacheLookups *prometheus.CounterVec
	pageRetries  *prometheus.CounterVec

	realtimeConnects prometheus.Counter
	realtimeFrames   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewCollector creates the collectors and registers them with reg. When reg
// also implements prometheus.Gatherer it is used by [Collector.Handler].
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tasksEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_tasks_enqueued_total",
			Help:      "Total number of tasks enqueued, by type",
		}, []string{"type_id"}),
		tasksStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_tasks_started_total",
			Help:      "Total number of tasks started, by type",
		}, []string{"type_id"}),
		tasksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_tasks_failed_total",
			Help:      "Total number of tasks whose runnable returned an error",
		}, []string{"type_id"}),
		tasksDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_tasks_dropped_total",
			Help:      "Total number of pending tasks replaced before they started",
		}, []string{"type_id"}),
		taskLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_task_duration_seconds",
			Help:      "Runnable execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type_id"}),
		tasksPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_tasks_pending",
			Help:      "Current number of tasks waiting for the rate limiter",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache key and result (hit, miss, expired)",
		}, []string{"cache", "result"}),
		pageRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_page_retries_total",
			Help:      "Pages retried after a throttling response",
		}, []string{"type_id"}),
		realtimeConnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_connects_total",
			Help:      "Push channel connection attempts",
		}),
		realtimeFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_frames_total",
			Help:      "Inbound push frames by type",
		}, []string{"type"}),
	}

	reg.MustRegister(
		c.tasksEnqueued,
		c.tasksStarted,
		c.tasksFailed,
		c.tasksDropped,
		c.taskLatency,
		c.tasksPending,
		c.cacheLookups,
		c.pageRetries,
		c.realtimeConnects,
		c.realtimeFrames,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	} else {
		c.gatherer = prometheus.DefaultGatherer
	}

	return c
}

// TaskEnqueued records a call to the queue.
func (c *Collector) TaskEnqueued(typeID string) {
	if c == nil {
		return
	}
	c.tasksEnqueued.WithLabelValues(label(typeID)).Inc()
}

// TaskStarted records a task leaving the pending list.
func (c *Collector) TaskStarted(typeID string) {
	if c == nil {
		return
	}
	c.tasksStarted.WithLabelValues(label(typeID)).Inc()
}

// TaskFinished records the runnable's duration and, if failed, its failure.
func (c *Collector) TaskFinished(typeID string, d time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.taskLatency.WithLabelValues(label(typeID)).Observe(d.Seconds())
	if failed {
		c.tasksFailed.WithLabelValues(label(typeID)).Inc()
	}
}

// TaskDropped records a pending task removed by a same-type replacement.
func (c *Collector) TaskDropped(typeID string) {
	if c == nil {
		return
	}
	c.tasksDropped.WithLabelValues(label(typeID)).Inc()
}

// SetPending updates the pending-task gauge.
func (c *Collector) SetPending(n int) {
	if c == nil {
		return
	}
	c.tasksPending.Set(float64(n))
}

// CacheLookup records a cache read. result is one of "hit", "miss", "expired".
func (c *Collector) CacheLookup(cache, result string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(label(cache), result).Inc()
}

// PageRetried records a throttled page that is going to be retried.
func (c *Collector) PageRetried(typeID string) {
	if c == nil {
		return
	}
	c.pageRetries.WithLabelValues(label(typeID)).Inc()
}

// RealtimeConnect records a push channel dial attempt.
func (c *Collector) RealtimeConnect() {
	if c == nil {
		return
	}
	c.realtimeConnects.Inc()
}

// RealtimeFrame records an inbound push frame.
func (c *Collector) RealtimeFrame(frameType string) {
	if c == nil {
		return
	}
	c.realtimeFrames.WithLabelValues(label(frameType)).Inc()
}

// Handler returns an HTTP handler exposing the collected metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func label(v string) string {
	if v == "" {
		return "none"
	}
	return v
}
