package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pharmakart/notify-gateway/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createWebhookLogsTable(),
		createDeviceTokensTable(),
	})

	return m.Migrate()
}

func createWebhookLogsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_webhook_logs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.WebhookLogModel{}); err != nil {
				return err
			}
			indexes := []string{
				// Composite index serving the dedup window query.
				`CREATE INDEX IF NOT EXISTS idx_webhook_logs_dedup ON webhook_logs (source, event_type, resource_id, status, created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_webhook_logs_created_at ON webhook_logs (created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_webhook_logs_customer ON webhook_logs (customer_identity) WHERE customer_identity <> ''`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.WebhookLogModel{})
		},
	}
}

func createDeviceTokensTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_device_tokens",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.DeviceTokenModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_device_tokens_email_lower ON device_tokens (lower(email))`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DeviceTokenModel{})
		},
	}
}
