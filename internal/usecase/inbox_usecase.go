package usecase

import (
	"context"
	"sort"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type InboxUseCase struct {
	tree      repository.Tree
	inboxRepo repository.InboxRepository
}

func NewInboxUseCase(tree repository.Tree, inboxRepo repository.InboxRepository) *InboxUseCase {
	return &InboxUseCase{
		tree:      tree,
		inboxRepo: inboxRepo,
	}
}

type InboxView struct {
	Items  []*entity.InboxItem `json:"items"`
	Unread int                 `json:"unread"`
}

// List returns the caller's messages or notifications, newest first.
func (uc *InboxUseCase) List(ctx context.Context, actor Actor, kind entity.InboxKind) (*InboxView, error) {
	if err := actor.requireAccount(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, errors.BadRequest("Unknown inbox: "+string(kind), nil)
	}

	items, err := uc.inboxRepo.List(ctx, actor.UID, kind)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})

	view := &InboxView{Items: items}
	for _, item := range items {
		if !item.Read {
			view.Unread++
		}
	}
	return view, nil
}

// MarkAllRead flips every unread item of the inbox in one update and reports how many.
func (uc *InboxUseCase) MarkAllRead(ctx context.Context, actor Actor, kind entity.InboxKind) (int, error) {
	if err := actor.requireAccount(); err != nil {
		return 0, err
	}
	if !kind.Valid() {
		return 0, errors.BadRequest("Unknown inbox: "+string(kind), nil)
	}

	items, err := uc.inboxRepo.List(ctx, actor.UID, kind)
	if err != nil {
		return 0, err
	}

	batch := repository.Batch{}
	for _, item := range items {
		if !item.Read {
			batch[repository.Join(repository.InboxPath(actor.UID, kind), item.ID, "read")] = true
		}
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := uc.tree.Update(ctx, batch); err != nil {
		return 0, errors.Internal("Failed to mark items as read", err)
	}
	return len(batch), nil
}
