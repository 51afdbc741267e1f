package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
)

// FulfillmentUseCase moves a pending order to its terminal state. The order is claimed
// first so only one admin action can settle it. Every effect of a transition then goes out
// as one multi-path update; the audit log entry is written afterwards and never fails the
// transition.
type FulfillmentUseCase struct {
	tree        repository.Tree
	accountRepo repository.AccountRepository
	productRepo repository.ProductRepository
	logRepo     repository.OrderLogRepository
	now         Clock
	newBarcode  func() string
}

func NewFulfillmentUseCase(
	tree repository.Tree,
	accountRepo repository.AccountRepository,
	productRepo repository.ProductRepository,
	logRepo repository.OrderLogRepository,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		tree:        tree,
		accountRepo: accountRepo,
		productRepo: productRepo,
		logRepo:     logRepo,
		now:         time.Now,
		newBarcode:  NewBarcode,
	}
}

// NewBarcode mints a ticket barcode such as TKT-9F3A61C04B7E2D18.
func NewBarcode() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TKT-" + hex[:16]
}

type FulfillmentResult struct {
	Order   *entity.PendingOrder    `json:"order"`
	Outcome entity.OrderOutcome     `json:"outcome"`
	Ticket  *entity.PurchasedTicket `json:"ticket,omitempty"`
}

func confirmedMessage(item string) string {
	return fmt.Sprintf("Your order for %s has been confirmed!", item)
}

func confirmedNotification(item string) string {
	return fmt.Sprintf("Purchase successful: %s.", item)
}

func declinedNotification(item string) string {
	return fmt.Sprintf("Your purchase for %s was declined.", item)
}

func itemLabel(order *entity.PendingOrder) string {
	if order.ItemName != "" {
		return order.ItemName
	}
	return entity.MysteryBoxItemName
}

func (uc *FulfillmentUseCase) inboxEntry(uid string, kind entity.InboxKind, text string, ts int64) (string, *entity.InboxItem) {
	path := repository.Join(repository.InboxPath(uid, kind), uc.tree.NewKey())
	return path, &entity.InboxItem{Text: text, Read: false, Timestamp: ts}
}

// claimField marks a pending order as being settled. It is removed with the order.
const claimField = "claim"

// claim takes the pending order for one confirm or reject. A second caller gets a conflict
// while the claim is held and not found once the order is gone.
func (uc *FulfillmentUseCase) claim(ctx context.Context, orderID string) (*entity.PendingOrder, string, error) {
	token := uuid.NewString()
	var order entity.PendingOrder

	err := uc.tree.Transaction(ctx, repository.PendingOrderPath(orderID), func(current json.RawMessage) (interface{}, error) {
		var record map[string]interface{}
		if err := json.Unmarshal(current, &record); err != nil {
			return nil, err
		}
		if record == nil {
			return nil, errors.NotFound("Pending order", nil)
		}
		if held, _ := record[claimField].(string); held != "" {
			return nil, errors.Conflict("Order is already being processed", nil)
		}
		order = entity.PendingOrder{}
		if err := json.Unmarshal(current, &order); err != nil {
			return nil, err
		}
		record[claimField] = token
		return record, nil
	})
	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return nil, "", err
		}
		return nil, "", errors.Internal("Failed to claim order", err)
	}

	order.ID = orderID
	return &order, token, nil
}

// release drops a claim that did not end in a transition, leaving the order pending.
func (uc *FulfillmentUseCase) release(ctx context.Context, orderID, token string) {
	ctx = context.WithoutCancel(ctx)
	err := uc.tree.Transaction(ctx, repository.PendingOrderPath(orderID), func(current json.RawMessage) (interface{}, error) {
		var record map[string]interface{}
		if err := json.Unmarshal(current, &record); err != nil {
			return nil, err
		}
		if record == nil || record[claimField] != token {
			return current, nil
		}
		delete(record, claimField)
		return record, nil
	})
	if err != nil {
		logger.Warn("Order %s: failed to release claim: %v", orderID, err)
	}
}

// Confirm fulfils a pending order: history, message, notification, spend, the item effect
// for its type, and removal of the pending record.
func (uc *FulfillmentUseCase) Confirm(ctx context.Context, orderID, adminID string) (*FulfillmentResult, error) {
	order, token, err := uc.claim(ctx, orderID)
	if err != nil {
		return nil, err
	}
	settled := false
	defer func() {
		if !settled {
			uc.release(ctx, order.ID, token)
		}
	}()

	if _, err := uc.accountRepo.GetByID(ctx, order.UserID); err != nil {
		return nil, err
	}

	ts := millis(uc.now())
	label := itemLabel(order)
	uid := order.UserID
	result := &FulfillmentResult{Order: order, Outcome: entity.OrderFulfilled}

	batch := repository.Batch{
		repository.Join(repository.PurchaseHistoryPath(uid), order.ID): &entity.PurchaseHistoryItem{
			Name:      label,
			Type:      order.Type,
			Price:     order.Price,
			Timestamp: ts,
		},
		repository.AccountFieldPath(uid, "totalSpent"): repository.Inc(order.Price),
		repository.PendingOrderPath(order.ID):          nil,
	}

	msgPath, msg := uc.inboxEntry(uid, entity.InboxMessages, confirmedMessage(label), ts)
	batch[msgPath] = msg
	notifPath, notif := uc.inboxEntry(uid, entity.InboxNotifications, confirmedNotification(label), ts)
	batch[notifPath] = notif

	switch order.Type {
	case entity.ItemProduct:
		if _, err := uc.productRepo.GetByID(ctx, order.ItemID); err == nil {
			batch[repository.Join(repository.ProductPath(order.ItemID), "stock")] = repository.Inc(-1)
		} else if errors.Is(err, errors.CodeNotFound) {
			logger.Warn("Order %s: product %s no longer exists, stock left untouched", order.ID, order.ItemID)
		} else {
			return nil, err
		}

	case entity.ItemTicket:
		result.Ticket = uc.issueTicket(batch, order, ts)

	case entity.ItemMysteryBox:
		batch[repository.Join(repository.MysteryBoxStatePath(uid), "canOpen")] = true

	default:
		return nil, errors.BadRequest("Unknown item type: "+string(order.Type), nil)
	}

	if err := uc.tree.Update(ctx, batch); err != nil {
		logger.LogOrderError(order.ID, "confirm", err)
		return nil, errors.Internal("Failed to confirm order", err)
	}
	settled = true

	uc.audit(ctx, order, entity.OrderFulfilled, adminID, "")
	logger.Info("Order %s confirmed by %s", order.ID, adminID)
	return result, nil
}

// issueTicket adds the buyer's ticket and its barcode lookup mirror to batch.
func (uc *FulfillmentUseCase) issueTicket(batch repository.Batch, order *entity.PendingOrder, ts int64) *entity.PurchasedTicket {
	barcode := uc.newBarcode()
	key := uc.tree.NewKey()

	ticket := &entity.PurchasedTicket{
		TicketID:          order.ItemID,
		Name:              itemLabel(order),
		PurchaseTimestamp: ts,
		BarcodeValue:      barcode,
		IsUsed:            false,
	}
	batch[repository.Join(repository.PurchasedTicketsPath(order.UserID), key)] = ticket
	batch[repository.TicketLookupPath(barcode)] = &entity.TicketLookup{
		BarcodeValue:      barcode,
		PurchasedTicketID: key,
		TicketID:          order.ItemID,
		Name:              ticket.Name,
		PurchaseTimestamp: ts,
		IsUsed:            false,
		UserID:            order.UserID,
		UserEmail:         order.UserEmail,
	}

	issued := *ticket
	issued.ID = key
	return &issued
}

// Reject declines a pending order: one notification to the buyer and removal of the order.
func (uc *FulfillmentUseCase) Reject(ctx context.Context, orderID, adminID, reason string) (*FulfillmentResult, error) {
	order, token, err := uc.claim(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ts := millis(uc.now())
	notifPath, notif := uc.inboxEntry(order.UserID, entity.InboxNotifications, declinedNotification(itemLabel(order)), ts)
	batch := repository.Batch{
		notifPath:                             notif,
		repository.PendingOrderPath(order.ID): nil,
	}

	if err := uc.tree.Update(ctx, batch); err != nil {
		logger.LogOrderError(order.ID, "reject", err)
		uc.release(ctx, order.ID, token)
		return nil, errors.Internal("Failed to reject order", err)
	}

	uc.audit(ctx, order, entity.OrderRejected, adminID, reason)
	logger.Info("Order %s rejected by %s", order.ID, adminID)
	return &FulfillmentResult{Order: order, Outcome: entity.OrderRejected}, nil
}

func (uc *FulfillmentUseCase) audit(ctx context.Context, order *entity.PendingOrder, outcome entity.OrderOutcome, adminID, notes string) {
	if uc.logRepo == nil {
		return
	}

	log := &entity.OrderLog{
		OrderID:   order.ID,
		Outcome:   outcome,
		ItemType:  order.Type,
		ItemID:    order.ItemID,
		ItemName:  order.ItemName,
		Price:     order.Price,
		UserID:    order.UserID,
		UserEmail: order.UserEmail,
		AdminID:   adminID,
		Notes:     notes,
		CreatedAt: uc.now(),
	}
	if err := uc.logRepo.CreateLog(ctx, log); err != nil {
		logger.Warn("Order %s: failed to write audit log: %v", order.ID, err)
	}
}

func (uc *FulfillmentUseCase) ListLogs(ctx context.Context, orderID string) ([]*entity.OrderLog, error) {
	return uc.logRepo.ListByOrder(ctx, orderID)
}

func (uc *FulfillmentUseCase) RecentLogs(ctx context.Context, limit int) ([]*entity.OrderLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.logRepo.ListRecent(ctx, limit)
}
