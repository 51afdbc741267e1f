package repository

import (
	"context"
	"sync"
	"time"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
)

// memoryPreferenceRepository is used when no REDIS_URL is configured.
type memoryPreferenceRepository struct {
	mu      sync.Mutex
	themes  map[string]entity.Theme
	bypass  map[string]time.Time
	nowFunc func() time.Time
}

func NewMemoryPreferenceRepository() repository.PreferenceRepository {
	return &memoryPreferenceRepository{
		themes:  make(map[string]entity.Theme),
		bypass:  make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

func (r *memoryPreferenceRepository) GetTheme(ctx context.Context, key string) (entity.Theme, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	theme, ok := r.themes[key]
	return theme, ok, nil
}

func (r *memoryPreferenceRepository) SetTheme(ctx context.Context, key string, theme entity.Theme) error {
	r.mu.Lock()
	r.themes[key] = theme
	r.mu.Unlock()
	return nil
}

// SetBypassFlag with a zero ttl keeps the flag until it is cleared.
func (r *memoryPreferenceRepository) SetBypassFlag(ctx context.Context, key string, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = r.nowFunc().Add(ttl)
	}

	r.mu.Lock()
	r.bypass[key] = expires
	r.mu.Unlock()
	return nil
}

func (r *memoryPreferenceRepository) HasBypassFlag(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expires, ok := r.bypass[key]
	if !ok {
		return false, nil
	}
	if !expires.IsZero() && r.nowFunc().After(expires) {
		delete(r.bypass, key)
		return false, nil
	}
	return true, nil
}

func (r *memoryPreferenceRepository) ClearBypassFlag(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.bypass, key)
	r.mu.Unlock()
	return nil
}
