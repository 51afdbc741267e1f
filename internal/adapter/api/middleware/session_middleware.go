package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/session"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

const (
	SessionCookie = "sid"
	SessionHeader = "X-Session-ID"
	ThemeHeader   = "Sec-CH-Prefers-Color-Scheme"

	contextSession = "session"
)

type AuthMiddleware struct {
	sessions     *session.Manager
	readyTimeout time.Duration
	secureCookie bool
}

func NewAuthMiddleware(sessions *session.Manager, readyTimeout time.Duration, secureCookie bool) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:     sessions,
		readyTimeout: readyTimeout,
		secureCookie: secureCookie,
	}
}

func sessionID(c echo.Context) string {
	if id := c.Request().Header.Get(SessionHeader); id != "" {
		return id
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func themeHint(c echo.Context) entity.Theme {
	hint := entity.Theme(strings.Trim(c.Request().Header.Get(ThemeHeader), `" `))
	if hint.Valid() {
		return hint
	}
	return ""
}

func bearerToken(c echo.Context) string {
	parts := strings.Split(c.Request().Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Session attaches the caller's Session Context, creating one when the client has none.
// A bearer ID token adopts the identity behind it.
func (m *AuthMiddleware) Session(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		requested := sessionID(c)
		sess := m.sessions.Get(ctx, requested, themeHint(c))

		if sess.ID() != requested {
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   m.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Response().Header().Set(SessionHeader, sess.ID())

		if token := bearerToken(c); token != "" {
			if err := sess.RestoreToken(ctx, token); err != nil {
				return response.Error(c, err)
			}
		}

		c.Set(contextSession, sess)
		return next(c)
	}
}

// ready waits for a pending profile load so role decisions see the loaded role. A bypass
// identity is dropped here once its flag has expired.
func (m *AuthMiddleware) ready(c echo.Context) session.State {
	sess := SessionFrom(c)
	if sess == nil {
		return session.State{}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), m.readyTimeout)
	defer cancel()
	state, _ := sess.WaitReady(ctx)
	if state.Identity != nil && state.Identity.Bypass && !sess.CheckBypass(ctx) {
		state = sess.State()
	}
	return state
}

// RequireUser rejects requests whose session has no identity.
func (m *AuthMiddleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := m.ready(c)
		if state.UID() == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}
		c.Set("uid", state.UID())
		return next(c)
	}
}

func SessionFrom(c echo.Context) *session.Session {
	sess, _ := c.Get(contextSession).(*session.Session)
	return sess
}

// ActorFrom is the identity the request acts for, empty for guests.
func ActorFrom(c echo.Context) usecase.Actor {
	sess := SessionFrom(c)
	if sess == nil {
		return usecase.Actor{}
	}
	return usecase.ActorFrom(sess.State().Identity)
}

func ViewerFrom(c echo.Context) usecase.Viewer {
	sess := SessionFrom(c)
	if sess == nil {
		return usecase.Viewer{}
	}
	state := sess.State()
	return usecase.Viewer{Actor: usecase.ActorFrom(state.Identity), Admin: state.IsAdmin()}
}
