package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pharmakart/notify-gateway/internal/domain"
	"github.com/pharmakart/notify-gateway/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type AuditLogService interface {
	List(ctx context.Context, params repository.ListParams) ([]domain.WebhookLog, int64, error)
	GetByID(ctx context.Context, id string) (*domain.WebhookLog, error)
}

type AuditLogHandler struct {
	service AuditLogService
}

func NewAuditLogHandler(service AuditLogService) (*AuditLogHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("audit log service is required")
	}
	return &AuditLogHandler{service: service}, nil
}

func RegisterAuditLogRoutes(router fiber.Router, service AuditLogService) error {
	h, err := NewAuditLogHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/webhook-logs", h.ListWebhookLogs)
	v1.Get("/webhook-logs/:id", h.GetWebhookLog)

	return nil
}

type webhookLogResponse struct {
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	EventType         string    `json:"eventType"`
	ResourceID        string    `json:"resourceId"`
	Status            string    `json:"status"`
	CustomerIdentity  string    `json:"customerIdentity,omitempty"`
	NotificationTitle string    `json:"notificationTitle,omitempty"`
	NotificationBody  string    `json:"notificationBody,omitempty"`
	PushSent          bool      `json:"pushSent"`
	PushSuccess       bool      `json:"pushSuccess"`
	PushError         *string   `json:"pushError,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type listWebhookLogsResponse struct {
	Data []webhookLogResponse `json:"data"`
	Meta listMeta             `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *AuditLogHandler) ListWebhookLogs(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	records, total, err := h.service.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]webhookLogResponse, 0, len(records))
	for i := range records {
		data = append(data, toWebhookLogResponse(&records[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listWebhookLogsResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *AuditLogHandler) GetWebhookLog(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	record, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toWebhookLogResponse(record))
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawEventType := strings.TrimSpace(c.Query("eventType")); rawEventType != "" {
		eventType, err := domain.ParseEventTypeFromString(rawEventType)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.EventType = &eventType
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status := strings.ToLower(rawStatus)
		params.Status = &status
	}

	if rawPushSent := strings.TrimSpace(c.Query("pushSent")); rawPushSent != "" {
		pushSent := strings.EqualFold(rawPushSent, "true")
		params.PushSent = &pushSent
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.ListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.ListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}

func toWebhookLogResponse(record *domain.WebhookLog) webhookLogResponse {
	if record == nil {
		return webhookLogResponse{}
	}

	return webhookLogResponse{
		ID:                record.ID,
		Source:            record.Source.String(),
		EventType:         record.EventType.String(),
		ResourceID:        record.ResourceID,
		Status:            record.Status,
		CustomerIdentity:  record.CustomerIdentity,
		NotificationTitle: record.NotificationTitle,
		NotificationBody:  record.NotificationBody,
		PushSent:          record.PushSent,
		PushSuccess:       record.PushSuccess,
		PushError:         record.PushError,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
