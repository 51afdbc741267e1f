package entity

// MysteryBoxState is users/{uid}/mysteryBoxState. WillWin is decided by an admin before play.
type MysteryBoxState struct {
	CanOpen bool `json:"canOpen"`
	WillWin bool `json:"willWin"`
}

type MysteryBoxResult struct {
	Won     bool   `json:"won"`
	Voucher string `json:"voucher,omitempty"`
}

// MysteryBoxCandidate is an account an admin may arm for play.
type MysteryBoxCandidate struct {
	UID             string          `json:"uid"`
	Email           string          `json:"email"`
	MysteryBoxPlays int             `json:"mysteryBoxPlays"`
	HasPendingOrder bool            `json:"hasPendingOrder"`
	State           MysteryBoxState `json:"state"`
}
