package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/pharmakart/notify-gateway/internal/domain"
	"github.com/pharmakart/notify-gateway/internal/observability"
	"github.com/pharmakart/notify-gateway/internal/service"
	"go.uber.org/zap"
)

// Header names used by the upstream platform's webhook deliveries.
const (
	HeaderSignature = "X-WC-Webhook-Signature"
	HeaderTopic     = "X-WC-Webhook-Topic"
	HeaderSource    = "X-WC-Webhook-Source"
)

type WebhookPipeline interface {
	Process(ctx context.Context, delivery service.Delivery) (*service.Receipt, error)
}

type WebhookHandler struct {
	pipeline WebhookPipeline
	logger   *zap.Logger
}

func NewWebhookHandler(pipeline WebhookPipeline, logger *zap.Logger) (*WebhookHandler, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("webhook pipeline is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{pipeline: pipeline, logger: logger}, nil
}

func RegisterWebhookRoutes(router fiber.Router, pipeline WebhookPipeline, logger *zap.Logger) error {
	h, err := NewWebhookHandler(pipeline, logger)
	if err != nil {
		return err
	}

	router.Post("/webhooks/order-status", h.Receive(domain.EventTypeOrderStatus))
	router.Get("/webhooks/order-status", h.Liveness)
	router.Post("/webhooks/subscription-status", h.Receive(domain.EventTypeSubscriptionStatus))
	router.Get("/webhooks/subscription-status", h.Liveness)

	return nil
}

type webhookResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
	Duplicate   bool   `json:"duplicate,omitempty"`
	ResourceID  string `json:"resourceId,omitempty"`
	Status      string `json:"status,omitempty"`
	PushSent    *bool  `json:"pushSent,omitempty"`
	PushSuccess *bool  `json:"pushSuccess,omitempty"`
}

// Receive handles one inbound webhook POST. Every recognized path answers
// HTTP 200: a non-200 would teach the upstream's retry logic to hammer the
// endpoint. Only unexpected internal failures surface as 500.
func (h *WebhookHandler) Receive(eventType domain.EventType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Body() is the exact bytes as received; the signature is
		// computed over them, so no re-serialization may happen first.
		delivery := service.Delivery{
			EventType: eventType,
			Body:      c.Body(),
			Signature: c.Get(HeaderSignature),
			Topic:     c.Get(HeaderTopic),
			SourceURL: c.Get(HeaderSource),
		}

		ctx := observability.WithCorrelationID(c.Context(), correlationID(c))
		receipt, err := h.pipeline.Process(ctx, delivery)
		if err != nil {
			h.logger.Error("webhook processing failed",
				zap.String("eventType", eventType.String()),
				zap.Error(err),
			)
			return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
		}

		if receipt.Rejected {
			return c.Status(fiber.StatusUnauthorized).JSON(webhookResponse{
				Success: false,
				Message: receipt.Message,
			})
		}

		return c.Status(fiber.StatusOK).JSON(toWebhookResponse(receipt))
	}
}

// correlationID pulls the id assigned by the requestid middleware so pipeline
// log lines can be tied back to one delivery.
func correlationID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}

// Liveness answers operator GETs on the webhook paths.
func (h *WebhookHandler) Liveness(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "active",
	})
}

func toWebhookResponse(receipt *service.Receipt) webhookResponse {
	resp := webhookResponse{
		Success:    receipt.Success,
		Message:    receipt.Message,
		Skipped:    receipt.Skipped,
		Duplicate:  receipt.Duplicate,
		ResourceID: receipt.ResourceID,
		Status:     receipt.Status,
	}

	// pushSent/pushSuccess only mean something once an event reached the
	// dispatch stage; ping-class responses omit them entirely.
	if receipt.ResourceID != "" && !receipt.Skipped {
		sent := receipt.PushSent
		success := receipt.PushSuccess
		resp.PushSent = &sent
		resp.PushSuccess = &success
	}

	return resp
}
