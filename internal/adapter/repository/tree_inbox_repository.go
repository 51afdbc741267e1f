package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
)

type treeInboxRepository struct {
	tree repository.Tree
}

func NewTreeInboxRepository(tree repository.Tree) repository.InboxRepository {
	return &treeInboxRepository{
		tree: tree,
	}
}

func (r *treeInboxRepository) List(ctx context.Context, uid string, kind entity.InboxKind) ([]*entity.InboxItem, error) {
	return readChildren(ctx, r.tree, repository.InboxPath(uid, kind), string(kind), func(item *entity.InboxItem, key string) {
		item.ID = key
	})
}
