package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type redisPreferenceRepository struct {
	client *redis.Client
}

func NewRedisPreferenceRepository(client *redis.Client) repository.PreferenceRepository {
	return &redisPreferenceRepository{
		client: client,
	}
}

func themeKey(key string) string {
	return "theme:" + key
}

func bypassKey(key string) string {
	return "admin_bypass:" + key
}

func (r *redisPreferenceRepository) GetTheme(ctx context.Context, key string) (entity.Theme, bool, error) {
	val, err := r.client.Get(ctx, themeKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Internal("Failed to read theme preference", err)
	}

	theme := entity.Theme(val)
	if !theme.Valid() {
		return "", false, nil
	}
	return theme, true, nil
}

func (r *redisPreferenceRepository) SetTheme(ctx context.Context, key string, theme entity.Theme) error {
	if err := r.client.Set(ctx, themeKey(key), string(theme), 0).Err(); err != nil {
		return errors.Internal("Failed to save theme preference", err)
	}
	return nil
}

func (r *redisPreferenceRepository) SetBypassFlag(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Set(ctx, bypassKey(key), "true", ttl).Err(); err != nil {
		return errors.Internal("Failed to save bypass flag", err)
	}
	return nil
}

func (r *redisPreferenceRepository) HasBypassFlag(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, bypassKey(key)).Result()
	if err != nil {
		return false, errors.Internal("Failed to read bypass flag", err)
	}
	return n > 0, nil
}

func (r *redisPreferenceRepository) ClearBypassFlag(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, bypassKey(key)).Err(); err != nil {
		return errors.Internal("Failed to clear bypass flag", err)
	}
	return nil
}
