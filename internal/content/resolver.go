// Package content maps status transitions to user-facing notification text.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pharmakart/notify-gateway/internal/domain"
)

// numberToken is the single placeholder substituted with the display number.
const numberToken = "{number}"

// Notification is the resolved user-facing content for one event.
type Notification struct {
	Title       string
	Body        string
	Icon        string
	DeepLinkURL string
}

// Template is one status entry, either built-in or administrator-supplied.
// The body may contain the {number} placeholder.
type Template struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Resolver resolves notification content from a status template table.
// Resolution is a pure function: unknown statuses fall back to a generic
// "status updated" message instead of failing.
type Resolver struct {
	overrides map[string]Template
}

func NewResolver(overrides map[string]Template) *Resolver {
	normalized := make(map[string]Template, len(overrides))
	for key, tpl := range overrides {
		normalized[strings.ToLower(strings.TrimSpace(key))] = tpl
	}
	return &Resolver{overrides: normalized}
}

// LoadOverrides reads an administrator-supplied template table from a JSON
// file keyed "order_status:completed" style. An empty path means no
// overrides.
func LoadOverrides(path string) (map[string]Template, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template overrides: %w", err)
	}

	var overrides map[string]Template
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse template overrides: %w", err)
	}
	return overrides, nil
}

// Resolve maps (eventType, status, displayNumber) to notification content.
func (r *Resolver) Resolve(eventType domain.EventType, status, displayNumber string) Notification {
	status = strings.ToLower(strings.TrimSpace(status))

	template, ok := r.lookup(eventType, status)
	if !ok {
		template = fallbackTemplate(eventType, status)
	}

	return Notification{
		Title:       strings.ReplaceAll(template.Title, numberToken, displayNumber),
		Body:        strings.ReplaceAll(template.Body, numberToken, displayNumber),
		Icon:        iconFor(eventType),
		DeepLinkURL: deepLinkFor(eventType),
	}
}

func (r *Resolver) lookup(eventType domain.EventType, status string) (Template, bool) {
	key := overrideKey(eventType, status)
	if r != nil {
		if tpl, ok := r.overrides[key]; ok {
			return tpl, true
		}
	}

	table := orderTemplates
	if eventType == domain.EventTypeSubscriptionStatus {
		table = subscriptionTemplates
	}
	tpl, ok := table[status]
	return tpl, ok
}

func overrideKey(eventType domain.EventType, status string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(eventType.String()), status)
}

func fallbackTemplate(eventType domain.EventType, status string) Template {
	resource := eventType.ResourceType()
	return Template{
		Title: fmt.Sprintf("%s Update", titleCase(resource)),
		Body:  fmt.Sprintf("Your %s #{number} status updated to %s.", resource, status),
	}
}

func iconFor(eventType domain.EventType) string {
	if eventType == domain.EventTypeSubscriptionStatus {
		return "autorenew"
	}
	return "shopping_bag"
}

func deepLinkFor(eventType domain.EventType) string {
	if eventType == domain.EventTypeSubscriptionStatus {
		return "/account/subscriptions"
	}
	return "/account/orders"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var orderTemplates = map[string]Template{
	"pending": {
		Title: "Order Received",
		Body:  "Your order #{number} has been received and is awaiting payment.",
	},
	"processing": {
		Title: "Order Processing",
		Body:  "Your order #{number} is now being processed.",
	},
	"on-hold": {
		Title: "Order On Hold",
		Body:  "Your order #{number} is on hold. We will update you shortly.",
	},
	"completed": {
		Title: "Order Completed",
		Body:  "Your order #{number} has been completed! Thank you for your purchase.",
	},
	"cancelled": {
		Title: "Order Cancelled",
		Body:  "Your order #{number} has been cancelled.",
	},
	"refunded": {
		Title: "Order Refunded",
		Body:  "Your order #{number} has been refunded.",
	},
	"failed": {
		Title: "Order Payment Failed",
		Body:  "Payment for your order #{number} failed. Please try again.",
	},
}

var subscriptionTemplates = map[string]Template{
	"pending": {
		Title: "Subscription Pending",
		Body:  "Your subscription #{number} is awaiting activation.",
	},
	"active": {
		Title: "Subscription Active",
		Body:  "Your subscription #{number} is now active.",
	},
	"on-hold": {
		Title: "Subscription On Hold",
		Body:  "Your subscription #{number} has been placed on hold.",
	},
	"cancelled": {
		Title: "Subscription Cancelled",
		Body:  "Your subscription #{number} has been cancelled.",
	},
	"pending-cancel": {
		Title: "Subscription Ending",
		Body:  "Your subscription #{number} will end at the close of the paid period.",
	},
	"expired": {
		Title: "Subscription Expired",
		Body:  "Your subscription #{number} has expired. Renew to keep your benefits.",
	},
}

// Statuses returns the built-in statuses for an event type.
func Statuses(eventType domain.EventType) []string {
	table := orderTemplates
	if eventType == domain.EventTypeSubscriptionStatus {
		table = subscriptionTemplates
	}
	statuses := make([]string, 0, len(table))
	for status := range table {
		statuses = append(statuses, status)
	}
	return statuses
}
