package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
)

type OrderRepository interface {
	CreatePending(ctx context.Context, order *entity.PendingOrder) error
	GetPending(ctx context.Context, id string) (*entity.PendingOrder, error)
	ListPending(ctx context.Context) ([]*entity.PendingOrder, error)
	ListPendingByUser(ctx context.Context, uid string) ([]*entity.PendingOrder, error)

	ListHistory(ctx context.Context, uid string) ([]*entity.PurchaseHistoryItem, error)
	// ListAllHistory flattens every account's history, stamping each item with the buyer's email.
	ListAllHistory(ctx context.Context) ([]*entity.PurchaseHistoryItem, error)
}

// OrderLogRepository keeps the audit trail of confirm / reject decisions.
type OrderLogRepository interface {
	CreateLog(ctx context.Context, log *entity.OrderLog) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderLog, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.OrderLog, error)
}
