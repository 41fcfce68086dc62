package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/notify-gateway/internal/content"
	"github.com/pharmakart/notify-gateway/internal/dedup"
	"github.com/pharmakart/notify-gateway/internal/domain"
	"github.com/pharmakart/notify-gateway/internal/observability"
	"github.com/pharmakart/notify-gateway/internal/repository"
	"github.com/pharmakart/notify-gateway/internal/webhook"
	"go.uber.org/zap"
)

// Delivery is one raw inbound webhook request.
type Delivery struct {
	EventType domain.EventType
	Body      []byte
	Signature string
	Topic     string
	SourceURL string
}

// Receipt is the pipeline's answer. It acknowledges the attempt: every
// recognized path produces Success=true regardless of whether a push went
// out. Rejected is set only when signature enforcement is on and the
// delivery failed verification.
type Receipt struct {
	Success     bool
	Message     string
	Skipped     bool
	Duplicate   bool
	Rejected    bool
	ResourceID  string
	Status      string
	PushSent    bool
	PushSuccess bool
}

// Pipeline runs one delivery through verification, classification,
// deduplication, content resolution, logging, and dispatch.
type Pipeline struct {
	logs          repository.WebhookLogRepository
	gate          dedup.Gate
	resolver      *content.Resolver
	dispatcher    *Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
	secret        string
	enforce       bool
	skipStatuses  map[string]struct{}
}

type PipelineParams struct {
	Logs     repository.WebhookLogRepository
	Gate     dedup.Gate
	Resolver *content.Resolver
	// Dispatcher delivers the push once an event survives the gate.
	Dispatcher *Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	// Secret is the shared webhook signing secret.
	Secret string
	// EnforceSignature rejects classified deliveries whose signature does
	// not verify. Off by default: the upstream's signing scheme has changed
	// formats before, and the endpoint must stay operable while a mismatch
	// is investigated.
	EnforceSignature bool
	SkipStatuses     map[string]struct{}
}

func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Logs == nil {
		return nil, fmt.Errorf("webhook log repository is required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("dedup gate is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("content resolver is required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.SkipStatuses == nil {
		params.SkipStatuses = map[string]struct{}{}
	}

	return &Pipeline{
		logs:         params.Logs,
		gate:         params.Gate,
		resolver:     params.Resolver,
		dispatcher:   params.Dispatcher,
		logger:       params.Logger,
		metrics:      params.Metrics,
		secret:       params.Secret,
		enforce:      params.EnforceSignature,
		skipStatuses: params.SkipStatuses,
	}, nil
}

// Process runs the endpoint state machine: received -> verified ->
// classified -> deduplicated -> resolved -> logged(pre) -> dispatched ->
// logged(post). Pings, unparseable bodies, and irrelevant payloads are
// acknowledged without a log record so the upstream's retry logic is never
// provoked.
func (p *Pipeline) Process(ctx context.Context, delivery Delivery) (*Receipt, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	verified := webhook.VerifySignature(delivery.Body, delivery.Signature, p.secret)
	if !verified {
		p.log(ctx).Warn("webhook signature mismatch",
			zap.String("eventType", delivery.EventType.String()),
			zap.String("topic", delivery.Topic),
			zap.Bool("enforced", p.enforce),
		)
	}

	classified := webhook.Classify(delivery.Body, delivery.EventType)

	switch classified.Class {
	case domain.ClassPing, domain.ClassUnparseable:
		p.countOutcome(delivery.EventType, strings.ToLower(classified.Class.String()))
		return &Receipt{Success: true, Message: "webhook received"}, nil
	case domain.ClassIrrelevant:
		if p.enforce && !verified {
			return p.reject(delivery)
		}
		p.countOutcome(delivery.EventType, "irrelevant")
		return &Receipt{Success: true, Message: "no actionable event"}, nil
	}

	if p.enforce && !verified {
		return p.reject(delivery)
	}

	event := classified.Event
	p.log(ctx).Info("webhook event received",
		zap.String("eventType", event.EventType.String()),
		zap.String("resourceId", event.ResourceID),
		zap.String("status", event.Status),
	)

	if _, skipped := p.skipStatuses[strings.ToLower(event.Status)]; skipped {
		return p.processSkipped(ctx, event)
	}

	key := dedup.Key{
		Source:     event.Source,
		EventType:  event.EventType,
		ResourceID: event.ResourceID,
		Status:     event.Status,
	}
	gateResult, err := p.gate.Check(ctx, key)
	if err != nil {
		// Dedup degrades, the event still goes out: a missed suppression is
		// preferable to a dropped notification.
		p.log(ctx).Warn("dedup gate unavailable, proceeding without suppression",
			zap.String("resourceId", event.ResourceID),
			zap.Error(err),
		)
	}
	if gateResult.Duplicate {
		return p.processDuplicate(event, gateResult), nil
	}

	notification := p.resolver.Resolve(event.EventType, event.Status, event.DisplayNumber)

	record := p.preWrite(ctx, event, notification)

	start := time.Now()
	result := p.dispatcher.Dispatch(ctx, event, notification)
	if p.metrics != nil {
		p.metrics.ObservePushSendDuration(event.EventType.String(), time.Since(start))
	}
	p.countDispatch(event.EventType, result)

	p.postWrite(ctx, record, result)

	p.countOutcome(delivery.EventType, "processed")
	return &Receipt{
		Success:     true,
		ResourceID:  event.ResourceID,
		Status:      event.Status,
		PushSent:    result.Sent,
		PushSuccess: result.Success,
	}, nil
}

func (p *Pipeline) reject(delivery Delivery) (*Receipt, error) {
	p.countOutcome(delivery.EventType, "rejected")
	return &Receipt{
		Rejected: true,
		Message:  "signature verification failed",
	}, nil
}

func (p *Pipeline) processSkipped(ctx context.Context, event *domain.WebhookEvent) (*Receipt, error) {
	record := newLogRecord(event)
	if err := p.logs.Create(ctx, record); err != nil {
		p.log(ctx).Warn("failed to log skipped event",
			zap.String("resourceId", event.ResourceID),
			zap.Error(err),
		)
	}

	p.countOutcome(event.EventType, "skipped")
	return &Receipt{
		Success:    true,
		Skipped:    true,
		Message:    "status in skip list",
		ResourceID: event.ResourceID,
		Status:     event.Status,
	}, nil
}

func (p *Pipeline) processDuplicate(event *domain.WebhookEvent, gateResult dedup.Result) *Receipt {
	if p.metrics != nil {
		p.metrics.IncDedupHit(event.EventType.String())
	}
	p.countOutcome(event.EventType, "duplicate")

	receipt := &Receipt{
		Success:    true,
		Duplicate:  true,
		Message:    "duplicate delivery suppressed",
		ResourceID: event.ResourceID,
		Status:     event.Status,
	}
	if gateResult.Prior != nil {
		receipt.PushSent = gateResult.Prior.PushSent
		receipt.PushSuccess = gateResult.Prior.PushSuccess
	}
	return receipt
}

// preWrite persists the record before the push attempt so that a crash
// between write and send still leaves a deduplication trace. A failed write
// is logged and the event proceeds: the user-visible notification outranks
// the audit guarantee.
func (p *Pipeline) preWrite(ctx context.Context, event *domain.WebhookEvent, notification content.Notification) *domain.WebhookLog {
	record := newLogRecord(event)
	record.NotificationTitle = notification.Title
	record.NotificationBody = notification.Body

	if err := p.logs.Create(ctx, record); err != nil {
		p.log(ctx).Warn("log pre-write failed, deduplication trace lost for this event",
			zap.String("resourceId", event.ResourceID),
			zap.String("status", event.Status),
			zap.Error(err),
		)
		return nil
	}
	return record
}

// postWrite updates the record with the dispatch outcome. Failure only
// degrades audit; the HTTP response is already determined.
func (p *Pipeline) postWrite(ctx context.Context, record *domain.WebhookLog, result domain.DispatchResult) {
	if record == nil {
		return
	}

	if err := p.logs.RecordOutcome(ctx, record.ID, result); err != nil {
		p.log(ctx).Warn("log post-write failed",
			zap.String("recordId", record.ID),
			zap.Error(err),
		)
	}
}

// log attaches the delivery's correlation id when the handler provided one.
func (p *Pipeline) log(ctx context.Context) *zap.Logger {
	return observability.WithContextLogger(p.logger, ctx)
}

func (p *Pipeline) countOutcome(eventType domain.EventType, outcome string) {
	if p.metrics != nil {
		p.metrics.IncWebhookReceived(eventType.String(), outcome)
	}
}

func (p *Pipeline) countDispatch(eventType domain.EventType, result domain.DispatchResult) {
	if p.metrics == nil {
		return
	}
	if result.Success {
		p.metrics.IncPushSent(eventType.String())
		return
	}
	reason := "delivery_error"
	if !result.Sent {
		reason = "no_recipient"
	}
	p.metrics.IncPushFailed(eventType.String(), reason)
}

func newLogRecord(event *domain.WebhookEvent) *domain.WebhookLog {
	return &domain.WebhookLog{
		ID:               uuid.NewString(),
		Source:           event.Source,
		EventType:        event.EventType,
		ResourceID:       event.ResourceID,
		Status:           event.Status,
		CustomerIdentity: event.CustomerIdentity,
		RawPayload:       event.RawPayload,
	}
}
