package domain

import (
	"fmt"
	"strings"
)

// Source identifies the upstream platform that originated a webhook delivery.
type Source string

const (
	SourceWooCommerce Source = "WOOCOMMERCE"
)

func (s Source) String() string { return string(s) }

func (s Source) IsValid() bool {
	return s == SourceWooCommerce
}

// EventType distinguishes the webhook endpoints the upstream platform calls.
type EventType string

const (
	EventTypeOrderStatus        EventType = "ORDER_STATUS"
	EventTypeSubscriptionStatus EventType = "SUBSCRIPTION_STATUS"
)

func (t EventType) String() string { return string(t) }

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeOrderStatus, EventTypeSubscriptionStatus:
		return true
	}
	return false
}

// ResourceType returns the user-facing resource name for the event type.
func (t EventType) ResourceType() string {
	if t == EventTypeSubscriptionStatus {
		return "subscription"
	}
	return "order"
}

func ParseEventTypeFromString(s string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid event type %q", ErrValidation, s)
	}
	return t, nil
}

// Classification is the outcome of inspecting a raw webhook delivery.
type Classification string

const (
	// ClassPing is a connectivity check from the upstream platform.
	ClassPing Classification = "PING"
	// ClassUnparseable is a body that failed JSON parsing. It is acknowledged
	// exactly like a ping so the upstream never sees a parse error.
	ClassUnparseable Classification = "UNPARSEABLE"
	// ClassIrrelevant is valid JSON that does not describe a status transition.
	ClassIrrelevant Classification = "IRRELEVANT"
	// ClassEvent is a genuine order/subscription status transition.
	ClassEvent Classification = "EVENT"
)

func (c Classification) String() string { return string(c) }

// WebhookEvent is the normalized form of one status-transition delivery.
// It exists only for the duration of a single HTTP request; the durable
// trace is the WebhookLog written by the pipeline.
type WebhookEvent struct {
	Source           Source
	EventType        EventType
	ResourceID       string
	Status           string
	CustomerIdentity string
	DisplayNumber    string
	RawPayload       []byte
}

// Status values arrive free-form from the upstream platform; new ones may
// appear at any time, so events are only checked for presence, never against
// a closed status enum.
func (e *WebhookEvent) Validate() error {
	if strings.TrimSpace(e.ResourceID) == "" {
		return fmt.Errorf("%w: resource id is required", ErrValidation)
	}
	if strings.TrimSpace(e.Status) == "" {
		return fmt.Errorf("%w: status is required", ErrValidation)
	}
	if !e.EventType.IsValid() {
		return fmt.Errorf("%w: invalid event type %q", ErrValidation, e.EventType)
	}
	return nil
}
