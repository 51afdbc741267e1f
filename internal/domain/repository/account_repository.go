package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, uid string) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	UpdateFields(ctx context.Context, uid string, fields map[string]interface{}) error
	// Watch follows users/{uid}. fn receives nil when the document does not exist.
	Watch(ctx context.Context, uid string, fn func(*entity.Account, error)) Subscription
}
