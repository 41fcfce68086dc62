package domain

import (
	"errors"
	"testing"
)

func TestParseEventTypeFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    EventType
		wantErr bool
	}{
		{name: "valid uppercase", input: "ORDER_STATUS", want: EventTypeOrderStatus},
		{name: "valid lowercase with spaces", input: " subscription_status ", want: EventTypeSubscriptionStatus},
		{name: "invalid", input: "inventory", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseEventTypeFromString(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseEventTypeFromString() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseEventTypeFromString() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseEventTypeFromString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEventTypeResourceType(t *testing.T) {
	t.Parallel()

	if got := EventTypeOrderStatus.ResourceType(); got != "order" {
		t.Fatalf("ResourceType() = %s, want order", got)
	}
	if got := EventTypeSubscriptionStatus.ResourceType(); got != "subscription" {
		t.Fatalf("ResourceType() = %s, want subscription", got)
	}
}

func TestWebhookEventValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   WebhookEvent
		wantErr bool
	}{
		{
			name: "valid",
			event: WebhookEvent{
				Source:     SourceWooCommerce,
				EventType:  EventTypeOrderStatus,
				ResourceID: "1234",
				Status:     "completed",
			},
		},
		{
			name: "unknown status value still valid",
			event: WebhookEvent{
				Source:     SourceWooCommerce,
				EventType:  EventTypeOrderStatus,
				ResourceID: "1234",
				Status:     "awaiting-prescription",
			},
		},
		{
			name: "missing resource id",
			event: WebhookEvent{
				EventType: EventTypeOrderStatus,
				Status:    "completed",
			},
			wantErr: true,
		},
		{
			name: "missing status",
			event: WebhookEvent{
				EventType:  EventTypeOrderStatus,
				ResourceID: "1234",
			},
			wantErr: true,
		},
		{
			name: "invalid event type",
			event: WebhookEvent{
				EventType:  EventType("INVENTORY"),
				ResourceID: "1234",
				Status:     "completed",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.event.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}
