package usecase

import (
	"context"
	"sort"
	"time"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
)

type OrderUseCase struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	ticketRepo      repository.TicketRepository
	payments        *service.PaymentLinkService
	mysteryBoxPrice float64
	now             Clock
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ticketRepo repository.TicketRepository,
	payments *service.PaymentLinkService,
	mysteryBoxPrice float64,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		ticketRepo:      ticketRepo,
		payments:        payments,
		mysteryBoxPrice: mysteryBoxPrice,
		now:             time.Now,
	}
}

type PlaceOrderInput struct {
	Type   entity.ItemType
	ItemID string
}

type PlacedOrder struct {
	Order      *entity.PendingOrder `json:"order"`
	PaymentURL string               `json:"paymentUrl"`
}

// PlaceOrder records a pending order after checking the item can be bought. Payment happens
// on the returned external page and is confirmed later by an admin.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, actor Actor, input PlaceOrderInput) (*PlacedOrder, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}
	if !input.Type.Valid() {
		return nil, errors.BadRequest("Unknown item type", nil)
	}

	order := &entity.PendingOrder{
		UserID:    actor.UID,
		UserEmail: actor.Email,
		Type:      input.Type,
		Timestamp: millis(uc.now()),
	}

	switch input.Type {
	case entity.ItemProduct:
		product, err := uc.productRepo.GetByID(ctx, input.ItemID)
		if err != nil {
			return nil, err
		}
		if !product.Purchasable() {
			return nil, errors.Unavailable("Product is sold out or unavailable")
		}
		order.ItemID, order.ItemName, order.Price = product.ID, product.Name, product.Price

	case entity.ItemTicket:
		ticket, err := uc.ticketRepo.GetByID(ctx, input.ItemID)
		if err != nil {
			return nil, err
		}
		active, err := uc.ticketRepo.SalesActive(ctx)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, errors.Unavailable("Ticket sales are closed")
		}
		if !ticket.IsAvailable {
			return nil, errors.Unavailable("Ticket is unavailable")
		}
		order.ItemID, order.ItemName, order.Price = ticket.ID, ticket.Name, ticket.Price

	case entity.ItemMysteryBox:
		order.ItemID, order.ItemName, order.Price = entity.MysteryBoxItemID, entity.MysteryBoxItemName, uc.mysteryBoxPrice
	}

	if err := uc.orderRepo.CreatePending(ctx, order); err != nil {
		return nil, err
	}

	logger.Info("Order %s placed by %s for %s %s", order.ID, actor.UID, order.Type, order.ItemID)
	return &PlacedOrder{
		Order:      order,
		PaymentURL: uc.payments.URLFor(order.Type),
	}, nil
}

// ListPending returns every pending order, oldest first.
func (uc *OrderUseCase) ListPending(ctx context.Context) ([]*entity.PendingOrder, error) {
	orders, err := uc.orderRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	sortOldestFirst(orders)
	return orders, nil
}

func (uc *OrderUseCase) ListMyPending(ctx context.Context, actor Actor) ([]*entity.PendingOrder, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}
	orders, err := uc.orderRepo.ListPendingByUser(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	sortOldestFirst(orders)
	return orders, nil
}

// HasPendingMysteryBox tells a buyer whether a mystery box purchase is awaiting confirmation.
func (uc *OrderUseCase) HasPendingMysteryBox(ctx context.Context, actor Actor) (bool, error) {
	orders, err := uc.ListMyPending(ctx, actor)
	if err != nil {
		return false, err
	}
	for _, o := range orders {
		if o.Type == entity.ItemMysteryBox {
			return true, nil
		}
	}
	return false, nil
}

func sortOldestFirst(orders []*entity.PendingOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Timestamp != orders[j].Timestamp {
			return orders[i].Timestamp < orders[j].Timestamp
		}
		return orders[i].ID < orders[j].ID
	})
}
