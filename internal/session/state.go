package session

import (
	"tokoaing/internal/domain/entity"
)

type View string

const (
	ViewAdmin View = "admin"
	ViewUser  View = "user"
	ViewGuest View = "guest"
)

// State is a point-in-time copy of a session. Error is set when the profile subscription
// failed, which ends loading instead of leaving the client waiting forever.
type State struct {
	Identity *entity.Identity `json:"identity"`
	Profile  *entity.Account  `json:"profile"`
	Role     entity.Role      `json:"role,omitempty"`
	Loading  bool             `json:"loading"`
	Theme    entity.Theme     `json:"theme"`
	Error    string           `json:"error,omitempty"`
}

// View picks which top-level surface the client should render.
func (s State) View() View {
	switch {
	case s.Role == entity.RoleAdmin:
		return ViewAdmin
	case s.Identity != nil:
		return ViewUser
	default:
		return ViewGuest
	}
}

func (s State) Dark() bool {
	return s.Theme == entity.ThemeDark
}

func (s State) IsAdmin() bool {
	return s.Role == entity.RoleAdmin
}

func (s State) UID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.UID
}

func (s State) Email() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Email
}

func (s State) clone() State {
	out := s
	out.Identity = cloneIdentity(s.Identity)
	if s.Profile != nil {
		profile := *s.Profile
		out.Profile = &profile
	}
	return out
}
