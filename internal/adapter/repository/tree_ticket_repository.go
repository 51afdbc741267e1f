package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type treeTicketRepository struct {
	tree repository.Tree
}

func NewTreeTicketRepository(tree repository.Tree) repository.TicketRepository {
	return &treeTicketRepository{
		tree: tree,
	}
}

func (r *treeTicketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = r.tree.NewKey()
	}

	record := *ticket
	record.ID = ""
	if err := r.tree.Set(ctx, repository.TicketPath(ticket.ID), &record); err != nil {
		return errors.Internal("Failed to create ticket", err)
	}

	return nil
}

func (r *treeTicketRepository) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	var ticket entity.Ticket
	if err := readOne(ctx, r.tree, repository.TicketPath(id), "Ticket", &ticket); err != nil {
		return nil, err
	}
	ticket.ID = id
	return &ticket, nil
}

func (r *treeTicketRepository) List(ctx context.Context) ([]*entity.Ticket, error) {
	return readChildren(ctx, r.tree, repository.TicketsRoot, "tickets", func(t *entity.Ticket, key string) {
		t.ID = key
	})
}

func (r *treeTicketRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.tree.Update(ctx, prefixed(repository.TicketPath(id), fields)); err != nil {
		return errors.Internal("Failed to update ticket", err)
	}
	return nil
}

func (r *treeTicketRepository) Delete(ctx context.Context, id string) error {
	if err := r.tree.Remove(ctx, repository.TicketPath(id)); err != nil {
		return errors.Internal("Failed to delete ticket", err)
	}
	return nil
}

func (r *treeTicketRepository) SalesActive(ctx context.Context) (bool, error) {
	active := true
	if _, err := r.tree.Get(ctx, repository.TicketSalesActive, &active); err != nil {
		return false, errors.Internal("Failed to read ticket sales switch", err)
	}
	return active, nil
}

func (r *treeTicketRepository) SetSalesActive(ctx context.Context, active bool) error {
	if err := r.tree.Set(ctx, repository.TicketSalesActive, active); err != nil {
		return errors.Internal("Failed to update ticket sales switch", err)
	}
	return nil
}

func (r *treeTicketRepository) ListPurchased(ctx context.Context, uid string) ([]*entity.PurchasedTicket, error) {
	return readChildren(ctx, r.tree, repository.PurchasedTicketsPath(uid), "purchased tickets", func(t *entity.PurchasedTicket, key string) {
		t.ID = key
	})
}

func (r *treeTicketRepository) GetLookup(ctx context.Context, barcode string) (*entity.TicketLookup, error) {
	var lookup entity.TicketLookup
	if err := readOne(ctx, r.tree, repository.TicketLookupPath(barcode), "Ticket", &lookup); err != nil {
		return nil, err
	}
	if lookup.BarcodeValue == "" {
		lookup.BarcodeValue = barcode
	}
	return &lookup, nil
}
