package usecase

import (
	"context"
	"sort"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
)

type HistoryUseCase struct {
	orderRepo repository.OrderRepository
}

func NewHistoryUseCase(orderRepo repository.OrderRepository) *HistoryUseCase {
	return &HistoryUseCase{
		orderRepo: orderRepo,
	}
}

// SalesReport is every fulfilled purchase across accounts plus the revenue they add up to.
type SalesReport struct {
	Items        []*entity.PurchaseHistoryItem `json:"items"`
	TotalRevenue float64                       `json:"totalRevenue"`
	Count        int                           `json:"count"`
}

func (uc *HistoryUseCase) MyHistory(ctx context.Context, actor Actor) ([]*entity.PurchaseHistoryItem, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}

	items, err := uc.orderRepo.ListHistory(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)
	return items, nil
}

func (uc *HistoryUseCase) Report(ctx context.Context) (*SalesReport, error) {
	items, err := uc.orderRepo.ListAllHistory(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(items)

	report := &SalesReport{Items: items, Count: len(items)}
	for _, item := range items {
		report.TotalRevenue += item.Price
	}
	return report, nil
}

func sortNewestFirst(items []*entity.PurchaseHistoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Timestamp != items[j].Timestamp {
			return items[i].Timestamp > items[j].Timestamp
		}
		return items[i].ID < items[j].ID
	})
}
