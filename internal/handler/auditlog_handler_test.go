package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pharmakart/notify-gateway/internal/domain"
	"github.com/pharmakart/notify-gateway/internal/repository"
	"github.com/pharmakart/notify-gateway/internal/transport"
	"go.uber.org/zap"
)

type stubAuditService struct {
	records    []domain.WebhookLog
	total      int64
	listErr    error
	getErr     error
	gotParams  repository.ListParams
	gotID      string
}

func (s *stubAuditService) List(ctx context.Context, params repository.ListParams) ([]domain.WebhookLog, int64, error) {
	s.gotParams = params
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.records, s.total, nil
}

func (s *stubAuditService) GetByID(ctx context.Context, id string) (*domain.WebhookLog, error) {
	s.gotID = id
	if s.getErr != nil {
		return nil, s.getErr
	}
	for i := range s.records {
		if s.records[i].ID == id {
			return &s.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func newAuditTestApp(t *testing.T, service AuditLogService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	if err := RegisterAuditLogRoutes(app, service); err != nil {
		t.Fatalf("RegisterAuditLogRoutes() error = %v", err)
	}
	return app
}

func sampleLog(id string) domain.WebhookLog {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.WebhookLog{
		ID:                id,
		Source:            domain.SourceWooCommerce,
		EventType:         domain.EventTypeOrderStatus,
		ResourceID:        "1234",
		Status:            "completed",
		CustomerIdentity:  "a@b.com",
		NotificationTitle: "Order Completed",
		PushSent:          true,
		PushSuccess:       true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestListWebhookLogs(t *testing.T) {
	t.Parallel()

	svc := &stubAuditService{records: []domain.WebhookLog{sampleLog("rec-1")}, total: 1}
	app := newAuditTestApp(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/webhook-logs?eventType=ORDER_STATUS&status=Completed&pushSent=true&page=2&pageSize=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got listWebhookLogsResponse
	decodeBody(t, resp, &got)
	if len(got.Data) != 1 || got.Data[0].ID != "rec-1" {
		t.Fatalf("data = %+v, want one record rec-1", got.Data)
	}
	if got.Meta.Page != 2 || got.Meta.PageSize != 10 || got.Meta.Total != 1 {
		t.Fatalf("meta = %+v", got.Meta)
	}

	if svc.gotParams.EventType == nil || *svc.gotParams.EventType != domain.EventTypeOrderStatus {
		t.Fatalf("eventType param = %v, want ORDER_STATUS", svc.gotParams.EventType)
	}
	if svc.gotParams.Status == nil || *svc.gotParams.Status != "completed" {
		t.Fatalf("status param = %v, want lowercased completed", svc.gotParams.Status)
	}
	if svc.gotParams.PushSent == nil || !*svc.gotParams.PushSent {
		t.Fatalf("pushSent param = %v, want true", svc.gotParams.PushSent)
	}
}

func TestListWebhookLogsValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		query string
	}{
		{name: "page below one", query: "page=0"},
		{name: "page size above max", query: "pageSize=500"},
		{name: "unknown event type", query: "eventType=INVENTORY"},
		{name: "bad from timestamp", query: "from=yesterday"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := newAuditTestApp(t, &stubAuditService{})

			req := httptest.NewRequest(http.MethodGet, "/v1/webhook-logs?"+tc.query, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetWebhookLog(t *testing.T) {
	t.Parallel()

	svc := &stubAuditService{records: []domain.WebhookLog{sampleLog("rec-1")}}
	app := newAuditTestApp(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/webhook-logs/rec-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got webhookLogResponse
	decodeBody(t, resp, &got)
	if got.ID != "rec-1" || got.EventType != "ORDER_STATUS" || !got.PushSuccess {
		t.Fatalf("response = %+v", got)
	}
}

func TestGetWebhookLogNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubAuditService{getErr: fmt.Errorf("%w: record", domain.ErrNotFound)}
	app := newAuditTestApp(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/webhook-logs/missing", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if svc.gotID != "missing" {
		t.Fatalf("id = %q, want missing", svc.gotID)
	}
}
