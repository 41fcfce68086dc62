package provider

import "context"

// PushMessage is one notification to deliver to a single device.
type PushMessage struct {
	Token    string
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}

// PushResponse reports the transport outcome. Delivery failures are carried
// here; Send returns an error only for programming or configuration
// problems, never for a push that could not be delivered.
type PushResponse struct {
	Success   bool
	MessageID string
	Error     string
}

// PushProvider is the outbound push delivery port.
type PushProvider interface {
	Send(ctx context.Context, msg PushMessage) (*PushResponse, error)
}
