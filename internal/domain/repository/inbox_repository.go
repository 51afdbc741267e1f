package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
)

type InboxRepository interface {
	List(ctx context.Context, uid string, kind entity.InboxKind) ([]*entity.InboxItem, error)
}
