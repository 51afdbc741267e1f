package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoaing/internal/domain/entity"
	"tokoaing/pkg/errors"
)

func TestPlaceOrderRecordsPendingOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	buyer := s.addAccount(t, "u1", "buyer@example.com")
	product := s.addProduct(t, "Headset", 250000, 2)

	placed, err := s.orderUC.PlaceOrder(ctx, buyer, PlaceOrderInput{Type: entity.ItemProduct, ItemID: product.ID})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/product", placed.PaymentURL)

	stored, err := s.orders.GetPending(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.UID, stored.UserID)
	assert.Equal(t, buyer.Email, stored.UserEmail)
	assert.Equal(t, "Headset", stored.ItemName)
	assert.Equal(t, 250000.0, stored.Price)
	assert.Equal(t, millis(fixedNow), stored.Timestamp)
}

func TestPlaceOrderGates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	buyer := s.addAccount(t, "u1", "buyer@example.com")

	hidden := &entity.Product{Name: "Hidden", Price: 1, Stock: 5, IsAvailable: false}
	require.NoError(t, s.products.Create(ctx, hidden))
	empty := s.addProduct(t, "Empty", 1, 0)
	ticket := s.addTicket(t, "Day Pass", 10)
	closed := &entity.Ticket{Name: "Closed", Price: 10, IsAvailable: false}
	require.NoError(t, s.tickets.Create(ctx, closed))

	tests := []struct {
		name  string
		input PlaceOrderInput
		code  string
	}{
		{"unavailable product", PlaceOrderInput{Type: entity.ItemProduct, ItemID: hidden.ID}, errors.CodeUnavailable},
		{"sold out product", PlaceOrderInput{Type: entity.ItemProduct, ItemID: empty.ID}, errors.CodeUnavailable},
		{"missing product", PlaceOrderInput{Type: entity.ItemProduct, ItemID: "nope"}, errors.CodeNotFound},
		{"unavailable ticket", PlaceOrderInput{Type: entity.ItemTicket, ItemID: closed.ID}, errors.CodeUnavailable},
		{"unknown type", PlaceOrderInput{Type: "voucher", ItemID: "x"}, errors.CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.orderUC.PlaceOrder(ctx, buyer, tt.input)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}

	require.NoError(t, s.tickets.SetSalesActive(ctx, false))
	_, err := s.orderUC.PlaceOrder(ctx, buyer, PlaceOrderInput{Type: entity.ItemTicket, ItemID: ticket.ID})
	assert.True(t, errors.Is(err, errors.CodeUnavailable))

	pending, err := s.orderUC.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPlaceOrderRequiresAccount(t *testing.T) {
	s := newStore(t)

	_, err := s.orderUC.PlaceOrder(context.Background(), Actor{}, PlaceOrderInput{Type: entity.ItemMysteryBox})
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestHasPendingMysteryBox(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	buyer := s.addAccount(t, "u1", "buyer@example.com")
	other := s.addAccount(t, "u2", "other@example.com")

	s.place(t, other, entity.ItemMysteryBox, "")
	has, err := s.orderUC.HasPendingMysteryBox(ctx, buyer)
	require.NoError(t, err)
	assert.False(t, has)

	order := s.place(t, buyer, entity.ItemMysteryBox, "")
	has, err = s.orderUC.HasPendingMysteryBox(ctx, buyer)
	require.NoError(t, err)
	assert.True(t, has)

	_, err = s.fulfillmentUC.Confirm(ctx, order.ID, "admin")
	require.NoError(t, err)
	has, err = s.orderUC.HasPendingMysteryBox(ctx, buyer)
	require.NoError(t, err)
	assert.False(t, has)
}
