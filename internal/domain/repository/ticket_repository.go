package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	List(ctx context.Context) ([]*entity.Ticket, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	// SalesActive defaults to true when the switch has never been set.
	SalesActive(ctx context.Context) (bool, error)
	SetSalesActive(ctx context.Context, active bool) error

	ListPurchased(ctx context.Context, uid string) ([]*entity.PurchasedTicket, error)
	GetLookup(ctx context.Context, barcode string) (*entity.TicketLookup, error)
}
