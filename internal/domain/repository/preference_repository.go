package repository

import (
	"context"
	"time"

	"tokoaing/internal/domain/entity"
)

// PreferenceRepository is the per-device local persistence: the theme choice and the
// short-lived bypass-admin flag.
type PreferenceRepository interface {
	GetTheme(ctx context.Context, key string) (entity.Theme, bool, error)
	SetTheme(ctx context.Context, key string, theme entity.Theme) error

	SetBypassFlag(ctx context.Context, key string, ttl time.Duration) error
	HasBypassFlag(ctx context.Context, key string) (bool, error)
	ClearBypassFlag(ctx context.Context, key string) error
}
