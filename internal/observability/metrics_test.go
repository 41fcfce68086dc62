package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsPipelineCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncWebhookReceived("ORDER_STATUS", "processed")
	metrics.IncWebhookReceived("order_status", "duplicate")
	metrics.IncDedupHit("order_status")
	metrics.IncPushSent("order_status")
	metrics.IncPushFailed("order_status", "no_recipient")
	metrics.ObservePushSendDuration("order_status", 80*time.Millisecond)

	if got := testutil.ToFloat64(metrics.webhooksReceivedTotal.WithLabelValues("order_status", "processed")); got != 1 {
		t.Fatalf("webhooks_received_total{processed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.webhooksReceivedTotal.WithLabelValues("order_status", "duplicate")); got != 1 {
		t.Fatalf("webhooks_received_total{duplicate} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.dedupHitsTotal.WithLabelValues("order_status")); got != 1 {
		t.Fatalf("dedup_hits_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.pushesSentTotal.WithLabelValues("order_status")); got != 1 {
		t.Fatalf("pushes_sent_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.pushesFailedTotal.WithLabelValues("order_status", "no_recipient")); got != 1 {
		t.Fatalf("pushes_failed_total = %v, want 1", got)
	}
}

func TestMetricsLabelNormalization(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncPushFailed("  ORDER_STATUS ", "")

	if got := testutil.ToFloat64(metrics.pushesFailedTotal.WithLabelValues("order_status", "unknown")); got != 1 {
		t.Fatalf("pushes_failed_total = %v, want 1 under normalized labels", got)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var metrics *Metrics

	metrics.IncWebhookReceived("order_status", "processed")
	metrics.IncDedupHit("order_status")
	metrics.IncPushSent("order_status")
	metrics.IncPushFailed("order_status", "delivery_error")
	metrics.ObservePushSendDuration("order_status", time.Millisecond)

	if metrics.Handler() == nil {
		t.Fatal("Handler() should fall back to the default registry")
	}
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
