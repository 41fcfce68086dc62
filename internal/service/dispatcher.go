package service

import (
	"context"
	"time"

	"github.com/pharmakart/notify-gateway/internal/content"
	"github.com/pharmakart/notify-gateway/internal/directory"
	"github.com/pharmakart/notify-gateway/internal/domain"
	"github.com/pharmakart/notify-gateway/internal/observability"
	"github.com/pharmakart/notify-gateway/internal/provider"
	"go.uber.org/zap"
)

const defaultDispatchTimeout = 10 * time.Second

// Dispatcher resolves a recipient's device token and invokes the push
// transport. It never returns an error for delivery failures: every outcome,
// including "nobody to send to", is a DispatchResult value.
type Dispatcher struct {
	directory directory.RecipientDirectory
	push      provider.PushProvider
	timeout   time.Duration
	logger    *zap.Logger
}

func NewDispatcher(
	dir directory.RecipientDirectory,
	push provider.PushProvider,
	timeout time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		directory: dir,
		push:      push,
		timeout:   timeout,
		logger:    logger,
	}
}

// Dispatch sends one notification for an event. Sent flips to true only when
// the transport is actually invoked; short-circuits (no identity, no token)
// leave it false.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	event *domain.WebhookEvent,
	notification content.Notification,
) domain.DispatchResult {
	if event.CustomerIdentity == "" {
		return domain.DispatchResult{Error: "no recipient identity"}
	}

	token, err := d.directory.ResolveToken(ctx, event.CustomerIdentity)
	if err != nil {
		observability.WithContextLogger(d.logger, ctx).Warn("recipient lookup failed",
			zap.String("identity", event.CustomerIdentity),
			zap.Error(err),
		)
		return domain.DispatchResult{Error: "recipient lookup failed"}
	}
	if token == "" {
		return domain.DispatchResult{Error: "no device token registered"}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	response, err := d.push.Send(sendCtx, provider.PushMessage{
		Token: token,
		Title: notification.Title,
		Body:  notification.Body,
		Data:  dataPayload(event, notification),
	})
	if err != nil {
		// Transport errors here are configuration mistakes, not delivery
		// failures; they still must not fail the webhook response.
		observability.WithContextLogger(d.logger, ctx).Error("push transport error",
			zap.String("resourceId", event.ResourceID),
			zap.Error(err),
		)
		return domain.DispatchResult{Sent: true, Error: err.Error()}
	}

	return domain.DispatchResult{
		Sent:      true,
		Success:   response.Success,
		MessageID: response.MessageID,
		Error:     response.Error,
	}
}

// dataPayload is the structured payload the mobile client acts on, e.g. for
// deep-link navigation.
func dataPayload(event *domain.WebhookEvent, notification content.Notification) map[string]string {
	return map[string]string{
		"type":             "webhook",
		"notificationType": event.EventType.ResourceType() + "_status",
		"icon":             notification.Icon,
		"resourceId":       event.ResourceID,
		"status":           event.Status,
		"deepLinkUrl":      notification.DeepLinkURL,
	}
}
