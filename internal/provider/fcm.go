package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultFCMEndpoint is the FCM legacy HTTP send endpoint.
	DefaultFCMEndpoint = "https://fcm.googleapis.com/fcm/send"

	defaultSendTimeout = 10 * time.Second
)

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
	Sound string `json:"sound,omitempty"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmResult struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

type fcmResponse struct {
	Success int         `json:"success"`
	Failure int         `json:"failure"`
	Results []fcmResult `json:"results"`
}

// FCMProvider delivers pushes through Firebase Cloud Messaging. The HTTP
// call carries a timeout and is never retried here: the upstream webhook's
// own redelivery already provides retry, and retrying locally risks
// double-sending.
type FCMProvider struct {
	client    *resty.Client
	endpoint  string
	serverKey string
}

func NewFCMProvider(endpoint, serverKey string, timeout time.Duration) (*FCMProvider, error) {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	return NewFCMProviderWithClient(endpoint, serverKey, client)
}

func NewFCMProviderWithClient(endpoint, serverKey string, client *resty.Client) (*FCMProvider, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		trimmedEndpoint = DefaultFCMEndpoint
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid fcm endpoint: %w", err)
	}
	if strings.TrimSpace(serverKey) == "" {
		return nil, fmt.Errorf("fcm server key is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultSendTimeout)
	}
	client.SetRetryCount(0)

	return &FCMProvider{
		client:    client,
		endpoint:  trimmedEndpoint,
		serverKey: strings.TrimSpace(serverKey),
	}, nil
}

func (p *FCMProvider) Send(ctx context.Context, msg PushMessage) (*PushResponse, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}
	if strings.TrimSpace(msg.Token) == "" {
		return nil, fmt.Errorf("device token is required")
	}

	reqBody := fcmRequest{
		To: msg.Token,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
			Image: msg.ImageURL,
			Sound: "default",
		},
		Data: msg.Data,
	}

	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "key="+p.serverKey).
		SetBody(reqBody).
		Post(p.endpoint)
	if err != nil {
		return &PushResponse{Error: fmt.Sprintf("fcm request failed: %v", err)}, nil
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return &PushResponse{
			Error: fmt.Sprintf("fcm returned status %d: %s", statusCode, strings.TrimSpace(response.String())),
		}, nil
	}

	var parsed fcmResponse
	if err := json.Unmarshal(response.Body(), &parsed); err != nil {
		return &PushResponse{Error: fmt.Sprintf("fcm response unreadable: %v", err)}, nil
	}

	if len(parsed.Results) > 0 {
		result := parsed.Results[0]
		if result.Error != "" {
			return &PushResponse{Error: fcmErrorMessage(result.Error)}, nil
		}
		return &PushResponse{Success: true, MessageID: result.MessageID}, nil
	}

	if parsed.Success > 0 {
		return &PushResponse{Success: true}, nil
	}

	return &PushResponse{Error: "fcm reported failure without detail"}, nil
}
