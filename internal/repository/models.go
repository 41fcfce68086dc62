package repository

import (
	"time"

	"github.com/pharmakart/notify-gateway/internal/domain"
)

// WebhookLogModel is the persistence model for the webhook_logs table.
type WebhookLogModel struct {
	ID                string           `gorm:"type:uuid;primaryKey"`
	Source            domain.Source    `gorm:"type:varchar(20);not null"`
	EventType         domain.EventType `gorm:"type:varchar(30);not null"`
	ResourceID        string           `gorm:"type:varchar(64);not null"`
	Status            string           `gorm:"type:varchar(64);not null"`
	CustomerIdentity  string           `gorm:"type:varchar(255)"`
	NotificationTitle string           `gorm:"type:varchar(255)"`
	NotificationBody  string           `gorm:"type:text"`
	PushSent          bool             `gorm:"not null;default:false"`
	PushSuccess       bool             `gorm:"not null;default:false"`
	PushError         *string          `gorm:"type:text"`
	RawPayload        []byte           `gorm:"type:bytea"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (WebhookLogModel) TableName() string {
	return "webhook_logs"
}

// DeviceTokenModel is the persistence model for device_tokens, the recipient
// directory maintained by the mobile app's registration flow. Read-only from
// the pipeline's perspective.
type DeviceTokenModel struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	Email          string  `gorm:"type:varchar(255);index"`
	UpstreamUserID *string `gorm:"type:varchar(64);index"`
	Token          string  `gorm:"type:text;not null"`
	Platform       string  `gorm:"type:varchar(20)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DeviceTokenModel) TableName() string {
	return "device_tokens"
}

func webhookLogModelFromDomain(record *domain.WebhookLog) *WebhookLogModel {
	if record == nil {
		return nil
	}

	return &WebhookLogModel{
		ID:                record.ID,
		Source:            record.Source,
		EventType:         record.EventType,
		ResourceID:        record.ResourceID,
		Status:            record.Status,
		CustomerIdentity:  record.CustomerIdentity,
		NotificationTitle: record.NotificationTitle,
		NotificationBody:  record.NotificationBody,
		PushSent:          record.PushSent,
		PushSuccess:       record.PushSuccess,
		PushError:         record.PushError,
		RawPayload:        record.RawPayload,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func webhookLogModelToDomain(m *WebhookLogModel) *domain.WebhookLog {
	if m == nil {
		return nil
	}

	return &domain.WebhookLog{
		ID:                m.ID,
		Source:            m.Source,
		EventType:         m.EventType,
		ResourceID:        m.ResourceID,
		Status:            m.Status,
		CustomerIdentity:  m.CustomerIdentity,
		NotificationTitle: m.NotificationTitle,
		NotificationBody:  m.NotificationBody,
		PushSent:          m.PushSent,
		PushSuccess:       m.PushSuccess,
		PushError:         m.PushError,
		RawPayload:        m.RawPayload,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
