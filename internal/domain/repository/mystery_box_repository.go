package repository

import (
	"context"

	"tokoaing/internal/domain/entity"
)

type MysteryBoxRepository interface {
	GetState(ctx context.Context, uid string) (*entity.MysteryBoxState, error)
	SetFlag(ctx context.Context, uid, field string, value bool) error
}

type LeaderboardRepository interface {
	Append(ctx context.Context, entry *entity.LeaderboardEntry) error
	List(ctx context.Context) ([]*entity.LeaderboardEntry, error)
}
