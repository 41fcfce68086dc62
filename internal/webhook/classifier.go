package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pharmakart/notify-gateway/internal/domain"
)

// pingToken is the field the upstream platform includes in its form-encoded
// endpoint-verification pings.
const pingToken = "webhook_id"

// ClassifiedDelivery is the result of classifying one raw delivery.
// Event is populated only when Class is domain.ClassEvent.
type ClassifiedDelivery struct {
	Class domain.Classification
	Event *domain.WebhookEvent
}

type rawPayload struct {
	ID            any           `json:"id"`
	WebhookID     any           `json:"webhook_id"`
	Status        string        `json:"status"`
	Number        any           `json:"number"`
	OrderNumber   any           `json:"order_number"`
	Email         string        `json:"email"`
	CustomerEmail string        `json:"customer_email"`
	CustomerID    any           `json:"customer_id"`
	Billing       *billingBlock `json:"billing"`
}

type billingBlock struct {
	Email string `json:"email"`
}

// Classify inspects a raw delivery body and decides what it is. First match
// wins:
//
//  1. empty/whitespace body            -> ping
//  2. non-JSON body carrying the ping  -> ping (form-encoded verification)
//     token
//  3. JSON parse failure               -> unparseable
//  4. ping token present, no id        -> ping
//  5. missing id or status            -> irrelevant
//  6. otherwise                        -> event
//
// Event fields use the upstream fallback chains: identity from
// billing.email, then customer_email, then email, then customer_id; display
// number from number, then order_number, then id.
func Classify(body []byte, eventType domain.EventType) ClassifiedDelivery {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ClassifiedDelivery{Class: domain.ClassPing}
	}

	if trimmed[0] != '{' {
		if strings.Contains(string(trimmed), pingToken) {
			return ClassifiedDelivery{Class: domain.ClassPing}
		}
		return ClassifiedDelivery{Class: domain.ClassUnparseable}
	}

	var payload rawPayload
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return ClassifiedDelivery{Class: domain.ClassUnparseable}
	}

	resourceID := stringify(payload.ID)
	if payload.WebhookID != nil && resourceID == "" {
		return ClassifiedDelivery{Class: domain.ClassPing}
	}

	status := strings.TrimSpace(payload.Status)
	if resourceID == "" || status == "" {
		return ClassifiedDelivery{Class: domain.ClassIrrelevant}
	}

	event := &domain.WebhookEvent{
		Source:           domain.SourceWooCommerce,
		EventType:        eventType,
		ResourceID:       resourceID,
		Status:           status,
		CustomerIdentity: customerIdentity(payload),
		DisplayNumber:    displayNumber(payload, resourceID),
		RawPayload:       body,
	}

	return ClassifiedDelivery{Class: domain.ClassEvent, Event: event}
}

func customerIdentity(p rawPayload) string {
	if p.Billing != nil {
		if email := strings.TrimSpace(p.Billing.Email); email != "" {
			return email
		}
	}
	if email := strings.TrimSpace(p.CustomerEmail); email != "" {
		return email
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		return email
	}
	return stringify(p.CustomerID)
}

func displayNumber(p rawPayload, resourceID string) string {
	if number := stringify(p.Number); number != "" {
		return number
	}
	if number := stringify(p.OrderNumber); number != "" {
		return number
	}
	return resourceID
}

// stringify normalizes upstream identifier fields, which arrive either as
// JSON numbers or strings.
func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
