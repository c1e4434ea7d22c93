// Package metrics exports bus statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/topicbus/internal/bus"
)

// StatsSource provides bus statistics. *bus.Bus implements it.
type StatsSource interface {
	Stats() bus.Stats
}

// Collector is a prometheus.Collector reading a StatsSource on every scrape.
type Collector struct {
	source StatsSource

	published     *prometheus.Desc
	delivered     *prometheus.Desc
	deferred      *prometheus.Desc
	dropped       *prometheus.Desc
	filtered      *prometheus.Desc
	handlerErrors *prometheus.Desc
	handlerPanics *prometheus.Desc
	handlerTime   *prometheus.Desc
	subscriptions *prometheus.Desc
	channels      *prometheus.Desc
	queueDepth    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for source. Metric names are prefixed
// with namespace when it is not empty.
func NewCollector(namespace string, source StatsSource) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "bus", name), help, nil, nil)
	}

	return &Collector{
		source:        source,
		published:     desc("published_total", "Accepted publishes."),
		delivered:     desc("delivered_total", "Successful handler invocations."),
		deferred:      desc("deferred_total", "Deliveries queued for deferred workers."),
		dropped:       desc("dropped_total", "Deferred deliveries dropped because the queue was full."),
		filtered:      desc("filtered_total", "Matched subscribers skipped by their filter."),
		handlerErrors: desc("handler_errors_total", "Handlers that returned an error."),
		handlerPanics: desc("handler_panics_total", "Handlers that panicked."),
		handlerTime:   desc("handler_avg_seconds", "Mean handler execution time."),
		subscriptions: desc("subscriptions", "Active subscriptions."),
		channels:      desc("channels", "Known channels."),
		queueDepth:    desc("deferred_queue_depth", "Deferred deliveries waiting for a worker."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.delivered
	ch <- c.deferred
	ch <- c.dropped
	ch <- c.filtered
	ch <- c.handlerErrors
	ch <- c.handlerPanics
	ch <- c.handlerTime
	ch <- c.subscriptions
	ch <- c.channels
	ch <- c.queueDepth
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.published, s.Published)
	counter(c.delivered, s.Delivered)
	counter(c.deferred, s.Deferred)
	counter(c.dropped, s.Dropped)
	counter(c.filtered, s.Filtered)
	counter(c.handlerErrors, s.HandlerErrors)
	counter(c.handlerPanics, s.HandlerPanics)
	gauge(c.handlerTime, s.AvgHandlerTime.Seconds())
	gauge(c.subscriptions, float64(s.ActiveSubscriptions))
	gauge(c.channels, float64(s.Channels))
	gauge(c.queueDepth, float64(s.QueueDepth))
}

// NewRegistry returns a registry holding the collector plus the standard Go
// and process collectors.
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	for _, col := range []prometheus.Collector{
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
