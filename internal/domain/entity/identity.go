package entity

// Identity is who is using a session. Bypass identities are not issued by the auth backend
// and never have an Account document.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IDToken string `json:"-"`
	Bypass  bool   `json:"bypass"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
