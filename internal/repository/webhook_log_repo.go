package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmakart/notify-gateway/internal/dedup"
	"github.com/pharmakart/notify-gateway/internal/domain"
	"gorm.io/gorm"
)

type ListParams struct {
	Source    *domain.Source
	EventType *domain.EventType
	Status    *string
	PushSent  *bool
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

type WebhookLogRepository interface {
	Create(ctx context.Context, record *domain.WebhookLog) error
	RecordOutcome(ctx context.Context, id string, result domain.DispatchResult) error
	FindRecentDuplicate(ctx context.Context, key dedup.Key, since time.Time) (*domain.WebhookLog, error)
	GetByID(ctx context.Context, id string) (*domain.WebhookLog, error)
	List(ctx context.Context, params ListParams) ([]domain.WebhookLog, int64, error)
}

type GormWebhookLogRepo struct {
	db *gorm.DB
}

func NewGormWebhookLogRepo(db *gorm.DB) *GormWebhookLogRepo {
	return &GormWebhookLogRepo{db: db}
}

func (r *GormWebhookLogRepo) Create(ctx context.Context, record *domain.WebhookLog) error {
	model := webhookLogModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if record != nil {
		*record = *webhookLogModelToDomain(model)
	}
	return nil
}

// RecordOutcome is the post-write phase: it updates the dispatch outcome on
// a record created before the push attempt. The record itself is never
// deleted by the pipeline.
func (r *GormWebhookLogRepo) RecordOutcome(ctx context.Context, id string, result domain.DispatchResult) error {
	updates := map[string]any{
		"push_sent":    result.Sent,
		"push_success": result.Success,
	}
	if result.Error != "" {
		updates["push_error"] = result.Error
	}

	outcome := r.db.WithContext(ctx).
		Model(&WebhookLogModel{}).
		Where("id = ?", id).
		Updates(updates)
	if outcome.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, outcome.Error)
	}
	if outcome.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormWebhookLogRepo) FindRecentDuplicate(ctx context.Context, key dedup.Key, since time.Time) (*domain.WebhookLog, error) {
	var model WebhookLogModel
	err := r.db.WithContext(ctx).
		Where("source = ? AND event_type = ? AND resource_id = ? AND status = ? AND created_at >= ?",
			key.Source, key.EventType, key.ResourceID, key.Status, since).
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return webhookLogModelToDomain(&model), nil
}

func (r *GormWebhookLogRepo) GetByID(ctx context.Context, id string) (*domain.WebhookLog, error) {
	var model WebhookLogModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return webhookLogModelToDomain(&model), nil
}

func (r *GormWebhookLogRepo) List(ctx context.Context, params ListParams) ([]domain.WebhookLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&WebhookLogModel{})

	if params.Source != nil {
		query = query.Where("source = ?", *params.Source)
	}
	if params.EventType != nil {
		query = query.Where("event_type = ?", *params.EventType)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PushSent != nil {
		query = query.Where("push_sent = ?", *params.PushSent)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []WebhookLogModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	records := make([]domain.WebhookLog, 0, len(models))
	for i := range models {
		records = append(records, *webhookLogModelToDomain(&models[i]))
	}

	return records, total, nil
}
