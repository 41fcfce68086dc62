package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the webhook pipeline.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	webhooksReceivedTotal *prometheus.CounterVec
	dedupHitsTotal        *prometheus.CounterVec
	pushesSentTotal       *prometheus.CounterVec
	pushesFailedTotal     *prometheus.CounterVec
	pushSendDuration      *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_gateway",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notify_gateway",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		webhooksReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_gateway",
				Name:      "webhooks_received_total",
				Help:      "Total number of webhook deliveries by event type and classification outcome.",
			},
			[]string{"event_type", "outcome"},
		),
		dedupHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_gateway",
				Name:      "dedup_hits_total",
				Help:      "Total number of deliveries suppressed as duplicates within the window.",
			},
			[]string{"event_type"},
		),
		pushesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_gateway",
				Name:      "pushes_sent_total",
				Help:      "Total number of push notifications delivered successfully.",
			},
			[]string{"event_type"},
		),
		pushesFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_gateway",
				Name:      "pushes_failed_total",
				Help:      "Total number of push dispatches that did not deliver, by reason.",
			},
			[]string{"event_type", "reason"},
		),
		pushSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notify_gateway",
				Name:      "push_send_duration_seconds",
				Help:      "Push transport call duration in seconds by event type.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"event_type"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.webhooksReceivedTotal,
		m.dedupHitsTotal,
		m.pushesSentTotal,
		m.pushesFailedTotal,
		m.pushSendDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncWebhookReceived(eventType string, outcome string) {
	if m == nil {
		return
	}
	m.webhooksReceivedTotal.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncDedupHit(eventType string) {
	if m == nil {
		return
	}
	m.dedupHitsTotal.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *Metrics) IncPushSent(eventType string) {
	if m == nil {
		return
	}
	m.pushesSentTotal.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *Metrics) IncPushFailed(eventType string, reason string) {
	if m == nil {
		return
	}
	m.pushesFailedTotal.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}

func (m *Metrics) ObservePushSendDuration(eventType string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.pushSendDuration.WithLabelValues(normalizeLabel(eventType)).Observe(seconds)
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
