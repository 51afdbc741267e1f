package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoaing/internal/domain/entity"
	"tokoaing/pkg/errors"
)

func TestInboxMarkAllRead(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	buyer := s.addAccount(t, "u1", "buyer@example.com")
	product := s.addProduct(t, "Sticker", 5000, 10)
	for i := 0; i < 2; i++ {
		order := s.place(t, buyer, entity.ItemProduct, product.ID)
		_, err := s.fulfillmentUC.Confirm(ctx, order.ID, "admin")
		require.NoError(t, err)
	}

	view, err := s.inboxUC.List(ctx, buyer, entity.InboxNotifications)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.Unread)

	n, err := s.inboxUC.MarkAllRead(ctx, buyer, entity.InboxNotifications)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	view, err = s.inboxUC.List(ctx, buyer, entity.InboxNotifications)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Unread)

	messages, err := s.inboxUC.List(ctx, buyer, entity.InboxMessages)
	require.NoError(t, err)
	assert.Equal(t, 2, messages.Unread)

	n, err = s.inboxUC.MarkAllRead(ctx, buyer, entity.InboxNotifications)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.inboxUC.List(ctx, buyer, "spam")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}
