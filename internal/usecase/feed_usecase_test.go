package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoaing/internal/domain/entity"
	"tokoaing/pkg/errors"
)

func TestFeedAccess(t *testing.T) {
	s := newStore(t)
	uc := NewFeedUseCase(s.tree)
	guest := Viewer{}
	user := Viewer{Actor: Actor{UID: "u1", Email: "u1@example.com"}}
	admin := Viewer{Actor: Actor{UID: "bypass-admin", Bypass: true}, Admin: true}

	path, err := uc.Resolve(guest, "products")
	require.NoError(t, err)
	assert.Equal(t, "products", path)

	_, err = uc.Resolve(guest, "messages")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	path, err = uc.Resolve(user, "purchasedTickets")
	require.NoError(t, err)
	assert.Equal(t, "users/u1/purchasedTickets", path)

	_, err = uc.Resolve(user, "pendingOrders")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	path, err = uc.Resolve(admin, "pendingOrders")
	require.NoError(t, err)
	assert.Equal(t, "pendingOrders", path)

	_, err = uc.Resolve(admin, "notifications")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = uc.Resolve(admin, "secrets")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestFeedSubscribeDeliversChanges(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	uc := NewFeedUseCase(s.tree)

	updates := make(chan FeedUpdate, 8)
	sub, err := uc.Subscribe(ctx, Viewer{}, "products", func(u FeedUpdate) { updates <- u })
	require.NoError(t, err)
	defer sub.Cancel()

	first := <-updates
	assert.Equal(t, "products", first.Channel)
	assert.JSONEq(t, "null", string(first.Data))

	product := s.addProduct(t, "Lamp", 1000, 1)

	require.Eventually(t, func() bool {
		select {
		case u := <-updates:
			var products map[string]entity.Product
			if err := json.Unmarshal(u.Data, &products); err != nil {
				return false
			}
			_, ok := products[product.ID]
			return ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
