package usecase

import (
	"context"
	"encoding/json"
	"sort"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type channelAccess int

const (
	accessPublic channelAccess = iota
	accessUser
	accessAdmin
)

type channelDef struct {
	access channelAccess
	path   func(uid string) string
}

func fixed(path string) func(string) string {
	return func(string) string { return path }
}

var channels = map[string]channelDef{
	"products":         {accessPublic, fixed(repository.ProductsRoot)},
	"tickets":          {accessPublic, fixed(repository.TicketsRoot)},
	"ticketSettings":   {accessPublic, fixed("ticketSettings")},
	"leaderboard":      {accessPublic, fixed(repository.LeaderboardRoot)},
	"messages":         {accessUser, func(uid string) string { return repository.InboxPath(uid, entity.InboxMessages) }},
	"notifications":    {accessUser, func(uid string) string { return repository.InboxPath(uid, entity.InboxNotifications) }},
	"purchaseHistory":  {accessUser, repository.PurchaseHistoryPath},
	"purchasedTickets": {accessUser, repository.PurchasedTicketsPath},
	"mysteryBoxState":  {accessUser, repository.MysteryBoxStatePath},
	"pendingOrders":    {accessAdmin, fixed(repository.PendingOrdersRoot)},
	"users":            {accessAdmin, fixed(repository.UsersRoot)},
}

// Channels lists every live channel name.
func Channels() []string {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Viewer is who a live channel is opened for.
type Viewer struct {
	Actor
	Admin bool
}

// FeedUpdate is pushed to a subscriber every time the channel's subtree changes.
type FeedUpdate struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type FeedUseCase struct {
	tree repository.Tree
}

func NewFeedUseCase(tree repository.Tree) *FeedUseCase {
	return &FeedUseCase{tree: tree}
}

// Resolve maps a channel to the subtree it mirrors for viewer, enforcing who may see it.
func (uc *FeedUseCase) Resolve(viewer Viewer, channel string) (string, error) {
	def, ok := channels[channel]
	if !ok {
		return "", errors.BadRequest("Unknown channel: "+channel, nil)
	}

	switch def.access {
	case accessUser:
		if err := viewer.requireAccount(); err != nil {
			return "", err
		}
	case accessAdmin:
		if !viewer.Admin {
			return "", errors.Forbidden("Admin access required", nil)
		}
	}
	return def.path(viewer.UID), nil
}

// Subscribe watches the channel's subtree until the returned subscription is cancelled.
func (uc *FeedUseCase) Subscribe(ctx context.Context, viewer Viewer, channel string, fn func(FeedUpdate)) (repository.Subscription, error) {
	path, err := uc.Resolve(viewer, channel)
	if err != nil {
		return nil, err
	}

	return uc.tree.Watch(ctx, path, func(s repository.Snapshot) {
		update := FeedUpdate{Channel: channel}
		switch {
		case s.Err != nil:
			update.Error = s.Err.Error()
		case s.Exists():
			update.Data = s.Raw
		default:
			update.Data = json.RawMessage("null")
		}
		fn(update)
	}), nil
}
