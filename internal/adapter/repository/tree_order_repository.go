package repository

import (
	"context"
	"sort"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type treeOrderRepository struct {
	tree repository.Tree
}

func NewTreeOrderRepository(tree repository.Tree) repository.OrderRepository {
	return &treeOrderRepository{
		tree: tree,
	}
}

func (r *treeOrderRepository) CreatePending(ctx context.Context, order *entity.PendingOrder) error {
	if order.ID == "" {
		order.ID = r.tree.NewKey()
	}

	record := *order
	record.ID = ""
	if err := r.tree.Set(ctx, repository.PendingOrderPath(order.ID), &record); err != nil {
		return errors.Internal("Failed to create order", err)
	}

	return nil
}

func (r *treeOrderRepository) GetPending(ctx context.Context, id string) (*entity.PendingOrder, error) {
	var order entity.PendingOrder
	if err := readOne(ctx, r.tree, repository.PendingOrderPath(id), "Pending order", &order); err != nil {
		return nil, err
	}
	order.ID = id
	return &order, nil
}

func (r *treeOrderRepository) ListPending(ctx context.Context) ([]*entity.PendingOrder, error) {
	return readChildren(ctx, r.tree, repository.PendingOrdersRoot, "pending orders", func(o *entity.PendingOrder, key string) {
		o.ID = key
	})
}

func (r *treeOrderRepository) ListPendingByUser(ctx context.Context, uid string) ([]*entity.PendingOrder, error) {
	var matches map[string]entity.PendingOrder
	if err := r.tree.EqualTo(ctx, repository.PendingOrdersRoot, "userId", uid, &matches); err != nil {
		return nil, errors.Internal("Failed to query pending orders", err)
	}

	orders := make([]*entity.PendingOrder, 0, len(matches))
	for key, order := range matches {
		order := order
		order.ID = key
		orders = append(orders, &order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID < orders[j].ID
	})

	return orders, nil
}

func (r *treeOrderRepository) ListHistory(ctx context.Context, uid string) ([]*entity.PurchaseHistoryItem, error) {
	return readChildren(ctx, r.tree, repository.PurchaseHistoryPath(uid), "purchase history", func(h *entity.PurchaseHistoryItem, key string) {
		h.ID = key
	})
}

func (r *treeOrderRepository) ListAllHistory(ctx context.Context) ([]*entity.PurchaseHistoryItem, error) {
	type accountHistory struct {
		Email           string                                `json:"email"`
		PurchaseHistory map[string]entity.PurchaseHistoryItem `json:"purchaseHistory"`
	}

	accounts, err := readChildren[accountHistory](ctx, r.tree, repository.UsersRoot, "purchase history", nil)
	if err != nil {
		return nil, err
	}

	var items []*entity.PurchaseHistoryItem
	for _, account := range accounts {
		for key, item := range account.PurchaseHistory {
			item := item
			item.ID = key
			item.UserEmail = account.Email
			items = append(items, &item)
		}
	}

	return items, nil
}
