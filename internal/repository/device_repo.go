package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pharmakart/notify-gateway/internal/directory"
	"github.com/pharmakart/notify-gateway/internal/domain"
	"gorm.io/gorm"
)

var _ directory.RecipientDirectory = (*GormDeviceRepo)(nil)

// GormDeviceRepo resolves customer identities against the device_tokens
// table shared with the mobile app's registration flow.
type GormDeviceRepo struct {
	db *gorm.DB
}

func NewGormDeviceRepo(db *gorm.DB) *GormDeviceRepo {
	return &GormDeviceRepo{db: db}
}

// ResolveToken returns the most recently registered token for an identity,
// matching either the registered email or the upstream user id. No match
// returns an empty token, not an error.
func (r *GormDeviceRepo) ResolveToken(ctx context.Context, identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", nil
	}

	var model DeviceTokenModel
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?) OR upstream_user_id = ?", identity, identity).
		Order("updated_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	return model.Token, nil
}
