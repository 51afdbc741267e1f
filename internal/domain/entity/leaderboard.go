package entity

type LeaderboardEntry struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	ItemWon   string `json:"itemWon"`
	Timestamp int64  `json:"timestamp"`
}

// LeaderboardRow is one email's aggregate: its latest win plus the number of wins.
type LeaderboardRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	ItemWon   string `json:"itemWon"`
	Timestamp int64  `json:"timestamp"`
	WinCount  int    `json:"winCount"`
}
