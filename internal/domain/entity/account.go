package entity

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the profile document stored at users/{uid}. The per-account subtrees
// (messages, purchaseHistory, ...) live under the same node but are read separately.
type Account struct {
	UID             string  `json:"uid"`
	Email           string  `json:"email"`
	Role            Role    `json:"role"`
	TotalSpent      float64 `json:"totalSpent"`
	MysteryBoxPlays int     `json:"mysteryBoxPlays"`
	CreatedAt       int64   `json:"createdAt"`
}
