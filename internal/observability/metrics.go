package observability

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	gatewayCalls      *prometheus.CounterVec
	gatewayDuration   *prometheus.HistogramVec
	refreshTotal      *prometheus.CounterVec
	blocks            prometheus.Gauge
	lastRefresh       prometheus.Gauge
	cbState           *prometheus.GaugeVec
	eventsPublished   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg (prometheus.DefaultRegisterer in main).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irrixa_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "irrixa_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irrixa_gateway_calls_total",
			Help: "Calls to the remote backend by operation and result.",
		}, []string{"op", "result"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "irrixa_gateway_call_duration_seconds",
			Help:    "Histogram of remote backend call durations by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irrixa_registry_refresh_total",
			Help: "Registry refreshes by result.",
		}, []string{"result"}),
		blocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irrixa_registry_blocks",
			Help: "Blocks in the current registry snapshot.",
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irrixa_registry_last_success_timestamp_seconds",
			Help: "Unix time of the last successful registry refresh.",
		}),
		cbState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irrixa_cb_state",
			Help: "Circuit breaker state gauge (0 closed, 1 half, 2 open).",
		}, []string{"target"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "irrixa_events_published_total",
			Help: "Broker announcements by topic family and result.",
		}, []string{"topic", "result"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.gatewayCalls,
		m.gatewayDuration,
		m.refreshTotal,
		m.blocks,
		m.lastRefresh,
		m.cbState,
		m.eventsPublished,
	)

	m.cbState.WithLabelValues("backend").Set(0)
	m.cbState.WithLabelValues("data").Set(0)

	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveCall implements gateway.Observer.
func (m *Metrics) ObserveCall(op string, err error, elapsed time.Duration) {
	m.gatewayCalls.WithLabelValues(op, result(err)).Inc()
	m.gatewayDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// BreakerState implements gateway.Observer.
func (m *Metrics) BreakerState(name, state string) {
	v := 0.0
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	m.cbState.WithLabelValues(name).Set(v)
}

// RefreshDone implements registry.Observer.
func (m *Metrics) RefreshDone(err error, blocks int) {
	m.refreshTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.blocks.Set(float64(blocks))
		m.lastRefresh.SetToCurrentTime()
	}
}

func (m *Metrics) EventPublished(topic string, err error) {
	m.eventsPublished.WithLabelValues(topic, result(err)).Inc()
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Response().Status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
