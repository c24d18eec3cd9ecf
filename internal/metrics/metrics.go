// Package metrics exposes Prometheus counters for upstream traffic and tracking.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the server metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	UpstreamRequests *prometheus.CounterVec
	DataSource       *prometheus.CounterVec
	Classified       *prometheus.CounterVec
	TrackFallbacks   prometheus.Counter
}

// New registers the metrics against reg, defaulting to the global registry when nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	upstream, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satglobe_upstream_requests_total",
		Help: "Requests sent to upstream APIs, labeled by upstream and HTTP status code (0 on transport error).",
	}, []string{"upstream", "code"}), "satglobe_upstream_requests_total")
	if err != nil {
		return nil, err
	}

	source, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satglobe_data_source_total",
		Help: "Catalog responses served, labeled by data source (api, cache, fallback).",
	}, []string{"source"}), "satglobe_data_source_total")
	if err != nil {
		return nil, err
	}

	classified, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satglobe_regime_classified_total",
		Help: "Tracked satellites by orbit regime.",
	}, []string{"tag"}), "satglobe_regime_classified_total")
	if err != nil {
		return nil, err
	}

	fallbacks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satglobe_track_fallbacks_total",
		Help: "Track requests answered with a mock position because the position API failed.",
	}), "satglobe_track_fallbacks_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		UpstreamRequests: upstream,
		DataSource:       source,
		Classified:       classified,
		TrackFallbacks:   fallbacks,
	}, nil
}

// ObserveUpstream counts an upstream request. Use code 0 for transport errors.
func (c *Collector) ObserveUpstream(upstream string, code int) {
	if c == nil || c.UpstreamRequests == nil {
		return
	}
	c.UpstreamRequests.WithLabelValues(upstream, strconv.Itoa(code)).Inc()
}

// ObserveDataSource counts a catalog response by source.
func (c *Collector) ObserveDataSource(source string) {
	if c == nil || c.DataSource == nil {
		return
	}
	c.DataSource.WithLabelValues(source).Inc()
}

// ObserveRegime counts a classified satellite.
func (c *Collector) ObserveRegime(tag string) {
	if c == nil || c.Classified == nil {
		return
	}
	c.Classified.WithLabelValues(tag).Inc()
}

// IncTrackFallback counts a mock-position fallback.
func (c *Collector) IncTrackFallback() {
	if c == nil || c.TrackFallbacks == nil {
		return
	}
	c.TrackFallbacks.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
