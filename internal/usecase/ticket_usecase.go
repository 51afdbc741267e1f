package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
)

type TicketUseCase struct {
	tree       repository.Tree
	ticketRepo repository.TicketRepository
	now        Clock
}

func NewTicketUseCase(tree repository.Tree, ticketRepo repository.TicketRepository) *TicketUseCase {
	return &TicketUseCase{
		tree:       tree,
		ticketRepo: ticketRepo,
		now:        time.Now,
	}
}

type CreateTicketInput struct {
	Name        string
	Description string
	Price       float64
	IsAvailable bool
}

type UpdateTicketInput struct {
	Name        *string
	Description *string
	Price       *float64
	IsAvailable *bool
}

func (uc *TicketUseCase) CreateTicket(ctx context.Context, input CreateTicketInput) (*entity.Ticket, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.BadRequest("Ticket name is required", nil)
	}
	if input.Price < 0 {
		return nil, errors.BadRequest("Price cannot be negative", nil)
	}

	ticket := &entity.Ticket{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		IsAvailable: input.IsAvailable,
	}
	if err := uc.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	return ticket, nil
}

func (uc *TicketUseCase) GetTicket(ctx context.Context, id string) (*entity.Ticket, error) {
	return uc.ticketRepo.GetByID(ctx, id)
}

func (uc *TicketUseCase) ListTickets(ctx context.Context) ([]*entity.Ticket, error) {
	return uc.ticketRepo.List(ctx)
}

func (uc *TicketUseCase) UpdateTicket(ctx context.Context, id string, input UpdateTicketInput) (*entity.Ticket, error) {
	if _, err := uc.ticketRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.BadRequest("Ticket name is required", nil)
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, errors.BadRequest("Price cannot be negative", nil)
		}
		fields["price"] = *input.Price
	}
	if input.IsAvailable != nil {
		fields["isAvailable"] = *input.IsAvailable
	}
	if len(fields) == 0 {
		return nil, errors.BadRequest("Nothing to update", nil)
	}

	if err := uc.ticketRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return uc.ticketRepo.GetByID(ctx, id)
}

func (uc *TicketUseCase) DeleteTicket(ctx context.Context, id string) error {
	if _, err := uc.ticketRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.ticketRepo.Delete(ctx, id)
}

func (uc *TicketUseCase) SalesActive(ctx context.Context) (bool, error) {
	return uc.ticketRepo.SalesActive(ctx)
}

func (uc *TicketUseCase) SetSalesActive(ctx context.Context, active bool) error {
	if err := uc.ticketRepo.SetSalesActive(ctx, active); err != nil {
		return err
	}
	logger.Info("Ticket sales switched to %t", active)
	return nil
}

// ListMyTickets returns the caller's purchased tickets, newest first.
func (uc *TicketUseCase) ListMyTickets(ctx context.Context, actor Actor) ([]*entity.PurchasedTicket, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}

	tickets, err := uc.ticketRepo.ListPurchased(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].PurchaseTimestamp > tickets[j].PurchaseTimestamp
	})
	return tickets, nil
}

func (uc *TicketUseCase) LookupBarcode(ctx context.Context, barcode string) (*entity.TicketLookup, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, errors.BadRequest("Barcode is required", nil)
	}
	return uc.ticketRepo.GetLookup(ctx, barcode)
}

// MarkUsed flags a scanned ticket as used. The barcode lookup is flipped in a transaction,
// so of two scanners admitting the same ticket exactly one succeeds; the buyer's record is
// updated after it.
func (uc *TicketUseCase) MarkUsed(ctx context.Context, barcode string) (*entity.TicketLookup, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, errors.BadRequest("Barcode is required", nil)
	}

	usedAt := millis(uc.now())
	mirror := repository.TicketLookupPath(barcode)
	var lookup entity.TicketLookup

	err := uc.tree.Transaction(ctx, mirror, func(current json.RawMessage) (interface{}, error) {
		var record map[string]interface{}
		if err := json.Unmarshal(current, &record); err != nil {
			return nil, err
		}
		if record == nil {
			return nil, errors.NotFound("Ticket", nil)
		}
		if used, _ := record["isUsed"].(bool); used {
			return nil, errors.Conflict("Ticket has already been used", nil)
		}
		lookup = entity.TicketLookup{}
		if err := json.Unmarshal(current, &lookup); err != nil {
			return nil, err
		}
		record["isUsed"] = true
		record["usedTimestamp"] = usedAt
		return record, nil
	})
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to mark ticket as used", err)
	}
	if lookup.BarcodeValue == "" {
		lookup.BarcodeValue = barcode
	}

	if lookup.UserID != "" && lookup.PurchasedTicketID != "" {
		owned := repository.Join(repository.PurchasedTicketsPath(lookup.UserID), lookup.PurchasedTicketID)
		err := uc.tree.Update(ctx, repository.Batch{
			repository.Join(owned, "isUsed"):        true,
			repository.Join(owned, "usedTimestamp"): usedAt,
		})
		if err != nil {
			uc.unmark(ctx, mirror)
			return nil, errors.Internal("Failed to mark ticket as used", err)
		}
	}

	lookup.IsUsed = true
	lookup.UsedTimestamp = &usedAt
	logger.Info("Ticket %s marked used", lookup.BarcodeValue)
	return &lookup, nil
}

// unmark reopens a lookup whose buyer record could not be updated, keeping the two in step.
func (uc *TicketUseCase) unmark(ctx context.Context, mirror string) {
	err := uc.tree.Transaction(context.WithoutCancel(ctx), mirror, func(current json.RawMessage) (interface{}, error) {
		var record map[string]interface{}
		if err := json.Unmarshal(current, &record); err != nil {
			return nil, err
		}
		if record == nil {
			return current, nil
		}
		record["isUsed"] = false
		delete(record, "usedTimestamp")
		return record, nil
	})
	if err != nil {
		logger.Error("Ticket lookup %s left used after a failed update: %v", mirror, err)
	}
}
