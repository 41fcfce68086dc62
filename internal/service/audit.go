package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pharmakart/notify-gateway/internal/domain"
	"github.com/pharmakart/notify-gateway/internal/repository"
)

// AuditService exposes the webhook log for inspection. The webhook response
// is only a receipt for the attempt; outcome visibility lives here.
type AuditService struct {
	logs repository.WebhookLogRepository
}

func NewAuditService(logs repository.WebhookLogRepository) (*AuditService, error) {
	if logs == nil {
		return nil, fmt.Errorf("webhook log repository is required")
	}
	return &AuditService{logs: logs}, nil
}

func (s *AuditService) List(ctx context.Context, params repository.ListParams) ([]domain.WebhookLog, int64, error) {
	return s.logs.List(ctx, params)
}

func (s *AuditService) GetByID(ctx context.Context, id string) (*domain.WebhookLog, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: record id is required", domain.ErrValidation)
	}
	return s.logs.GetByID(ctx, strings.TrimSpace(id))
}
