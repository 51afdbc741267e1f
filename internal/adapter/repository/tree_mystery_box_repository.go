package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/pkg/errors"
)

type treeMysteryBoxRepository struct {
	tree repository.Tree
}

func NewTreeMysteryBoxRepository(tree repository.Tree) repository.MysteryBoxRepository {
	return &treeMysteryBoxRepository{
		tree: tree,
	}
}

// GetState returns the zero state when the account was never armed.
func (r *treeMysteryBoxRepository) GetState(ctx context.Context, uid string) (*entity.MysteryBoxState, error) {
	var state entity.MysteryBoxState
	if _, err := r.tree.Get(ctx, repository.MysteryBoxStatePath(uid), &state); err != nil {
		return nil, errors.Internal("Failed to read mystery box state", err)
	}
	return &state, nil
}

func (r *treeMysteryBoxRepository) SetFlag(ctx context.Context, uid, field string, value bool) error {
	if field != "canOpen" && field != "willWin" {
		return errors.BadRequest("Unknown mystery box flag: "+field, nil)
	}

	path := repository.Join(repository.MysteryBoxStatePath(uid), field)
	if err := r.tree.Set(ctx, path, value); err != nil {
		return errors.Internal("Failed to update mystery box state", err)
	}
	return nil
}

type treeLeaderboardRepository struct {
	tree repository.Tree
}

func NewTreeLeaderboardRepository(tree repository.Tree) repository.LeaderboardRepository {
	return &treeLeaderboardRepository{
		tree: tree,
	}
}

func (r *treeLeaderboardRepository) Append(ctx context.Context, entry *entity.LeaderboardEntry) error {
	record := *entry
	record.ID = ""

	key, err := r.tree.Push(ctx, repository.LeaderboardRoot, &record)
	if err != nil {
		return errors.Internal("Failed to record leaderboard entry", err)
	}
	entry.ID = key

	return nil
}

func (r *treeLeaderboardRepository) List(ctx context.Context) ([]*entity.LeaderboardEntry, error) {
	return readChildren(ctx, r.tree, repository.LeaderboardRoot, "leaderboard", func(e *entity.LeaderboardEntry, key string) {
		e.ID = key
	})
}
