package usecase

import (
	"context"
	"sort"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
)

type LeaderboardUseCase struct {
	leaderboardRepo repository.LeaderboardRepository
}

func NewLeaderboardUseCase(leaderboardRepo repository.LeaderboardRepository) *LeaderboardUseCase {
	return &LeaderboardUseCase{
		leaderboardRepo: leaderboardRepo,
	}
}

func (uc *LeaderboardUseCase) Leaderboard(ctx context.Context) ([]*entity.LeaderboardRow, error) {
	entries, err := uc.leaderboardRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateLeaderboard(entries), nil
}

// AggregateLeaderboard folds win entries into one row per email carrying the latest win and
// the win count, ordered by count then by latest win, both descending.
func AggregateLeaderboard(entries []*entity.LeaderboardEntry) []*entity.LeaderboardRow {
	byEmail := make(map[string]*entity.LeaderboardRow)
	for _, e := range entries {
		row, ok := byEmail[e.Email]
		if !ok {
			row = &entity.LeaderboardRow{Email: e.Email}
			byEmail[e.Email] = row
		}
		row.WinCount++
		if !ok || e.Timestamp > row.Timestamp {
			row.ID = e.ID
			row.ItemWon = e.ItemWon
			row.Timestamp = e.Timestamp
		}
	}

	rows := make([]*entity.LeaderboardRow, 0, len(byEmail))
	for _, row := range byEmail {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WinCount != rows[j].WinCount {
			return rows[i].WinCount > rows[j].WinCount
		}
		if rows[i].Timestamp != rows[j].Timestamp {
			return rows[i].Timestamp > rows[j].Timestamp
		}
		return rows[i].Email < rows[j].Email
	})
	return rows
}
