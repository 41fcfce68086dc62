package domain

import "time"

// WebhookLog is the durable trace of one accepted webhook event. A record is
// written before the push attempt so that redeliveries can be suppressed even
// if the process dies between the write and the send, and updated once with
// the dispatch outcome afterwards. Records are never deleted by the pipeline.
type WebhookLog struct {
	ID                string
	Source            Source
	EventType         EventType
	ResourceID        string
	Status            string
	CustomerIdentity  string
	NotificationTitle string
	NotificationBody  string
	PushSent          bool
	PushSuccess       bool
	PushError         *string
	RawPayload        []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DispatchResult is the outcome of one push dispatch attempt. Delivery
// failures are values here, never errors: the webhook response is a receipt
// for the attempt, not a guarantee of the outcome.
type DispatchResult struct {
	// Sent is true only when the push transport was actually invoked.
	Sent      bool
	Success   bool
	MessageID string
	Error     string
}
