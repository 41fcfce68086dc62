package webhook

import (
	"testing"

	"github.com/pharmakart/notify-gateway/internal/domain"
)

func TestClassifyNonEvents(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want domain.Classification
	}{
		{name: "empty body", body: "", want: domain.ClassPing},
		{name: "whitespace body", body: "  \n\t ", want: domain.ClassPing},
		{name: "form-encoded verification ping", body: "webhook_id=42", want: domain.ClassPing},
		{name: "non-json without ping token", body: "hello=world", want: domain.ClassUnparseable},
		{name: "broken json", body: `{"id": 12,`, want: domain.ClassUnparseable},
		{name: "json ping with webhook id only", body: `{"webhook_id": 42}`, want: domain.ClassPing},
		{name: "missing status", body: `{"id": 55}`, want: domain.ClassIrrelevant},
		{name: "missing id", body: `{"status": "completed"}`, want: domain.ClassIrrelevant},
		{name: "empty status string", body: `{"id": 55, "status": "  "}`, want: domain.ClassIrrelevant},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Classify([]byte(tc.body), domain.EventTypeOrderStatus)
			if got.Class != tc.want {
				t.Fatalf("Classify() = %s, want %s", got.Class, tc.want)
			}
			if got.Event != nil {
				t.Fatal("non-event classifications must not carry an event")
			}
		})
	}
}

func TestClassifyEvent(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id": 1234, "status": "completed", "billing": {"email": "a@b.com"}, "number": "1234"}`)

	got := Classify(body, domain.EventTypeOrderStatus)
	if got.Class != domain.ClassEvent {
		t.Fatalf("Classify() = %s, want EVENT", got.Class)
	}

	event := got.Event
	if event.ResourceID != "1234" {
		t.Fatalf("ResourceID = %q, want 1234", event.ResourceID)
	}
	if event.Status != "completed" {
		t.Fatalf("Status = %q, want completed", event.Status)
	}
	if event.CustomerIdentity != "a@b.com" {
		t.Fatalf("CustomerIdentity = %q, want a@b.com", event.CustomerIdentity)
	}
	if event.DisplayNumber != "1234" {
		t.Fatalf("DisplayNumber = %q, want 1234", event.DisplayNumber)
	}
	if event.Source != domain.SourceWooCommerce {
		t.Fatalf("Source = %q, want %q", event.Source, domain.SourceWooCommerce)
	}
	if string(event.RawPayload) != string(body) {
		t.Fatal("RawPayload should retain the raw body")
	}
}

func TestClassifyIdentityFallbackChain(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "billing email wins",
			body: `{"id":1,"status":"processing","billing":{"email":"billing@x.com"},"customer_email":"customer@x.com","email":"plain@x.com"}`,
			want: "billing@x.com",
		},
		{
			name: "customer_email second",
			body: `{"id":1,"status":"processing","billing":{"email":""},"customer_email":"customer@x.com","email":"plain@x.com"}`,
			want: "customer@x.com",
		},
		{
			name: "email third",
			body: `{"id":1,"status":"processing","email":"plain@x.com"}`,
			want: "plain@x.com",
		},
		{
			name: "upstream user id last",
			body: `{"id":1,"status":"processing","customer_id":987}`,
			want: "987",
		},
		{
			name: "no identity at all",
			body: `{"id":1,"status":"processing"}`,
			want: "",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Classify([]byte(tc.body), domain.EventTypeOrderStatus)
			if got.Class != domain.ClassEvent {
				t.Fatalf("Classify() = %s, want EVENT", got.Class)
			}
			if got.Event.CustomerIdentity != tc.want {
				t.Fatalf("CustomerIdentity = %q, want %q", got.Event.CustomerIdentity, tc.want)
			}
		})
	}
}

func TestClassifyDisplayNumberFallbackChain(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{name: "number wins", body: `{"id":77,"status":"active","number":"S-100","order_number":"O-100"}`, want: "S-100"},
		{name: "order_number second", body: `{"id":77,"status":"active","order_number":"O-100"}`, want: "O-100"},
		{name: "id as default", body: `{"id":77,"status":"active"}`, want: "77"},
		{name: "numeric number keeps integer form", body: `{"id":77,"status":"active","number":1234}`, want: "1234"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Classify([]byte(tc.body), domain.EventTypeSubscriptionStatus)
			if got.Class != domain.ClassEvent {
				t.Fatalf("Classify() = %s, want EVENT", got.Class)
			}
			if got.Event.DisplayNumber != tc.want {
				t.Fatalf("DisplayNumber = %q, want %q", got.Event.DisplayNumber, tc.want)
			}
			if got.Event.EventType != domain.EventTypeSubscriptionStatus {
				t.Fatalf("EventType = %s, want SUBSCRIPTION_STATUS", got.Event.EventType)
			}
		})
	}
}
