package handler

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/domain/entity"
	"tokoaing/internal/session"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

type sessionResponse struct {
	SessionID string           `json:"sessionId"`
	View      session.View     `json:"view"`
	Dark      bool             `json:"dark"`
	Identity  *entity.Identity `json:"identity"`
	Profile   *entity.Account  `json:"profile"`
	Role      entity.Role      `json:"role,omitempty"`
	Loading   bool             `json:"loading"`
	Theme     entity.Theme     `json:"theme"`
	Error     string           `json:"error,omitempty"`
}

func toSessionResponse(id string, st session.State) sessionResponse {
	return sessionResponse{
		SessionID: id,
		View:      st.View(),
		Dark:      st.Dark(),
		Identity:  st.Identity,
		Profile:   st.Profile,
		Role:      st.Role,
		Loading:   st.Loading,
		Theme:     st.Theme,
		Error:     st.Error,
	}
}

func (h *SessionHandler) current(c echo.Context) (*session.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, errors.Internal("Session middleware not installed", nil)
	}
	return sess, nil
}

// GetSession reports the session state. ?wait=true blocks until a pending profile load ends.
func (h *SessionHandler) GetSession(c echo.Context) error {
	sess, err := h.current(c)
	if err != nil {
		return response.Error(c, err)
	}

	st := sess.State()
	if c.QueryParam("wait") == "true" {
		st, _ = sess.WaitReady(c.Request().Context())
	}
	return response.Success(c, toSessionResponse(sess.ID(), st))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	IDToken string          `json:"idToken"`
	Session sessionResponse `json:"session"`
}

func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sess, err := h.current(c)
	if err != nil {
		return response.Error(c, err)
	}

	identity, err := sess.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	st, _ := sess.WaitReady(c.Request().Context())
	return response.Success(c, loginResponse{
		IDToken: identity.IDToken,
		Session: toSessionResponse(sess.ID(), st),
	})
}

type bypassRequest struct {
	Secret string `json:"secret" validate:"required"`
}

func (h *SessionHandler) Bypass(c echo.Context) error {
	var req bypassRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sess, err := h.current(c)
	if err != nil {
		return response.Error(c, err)
	}

	if !sess.BypassAdminLogin(c.Request().Context(), req.Secret) {
		return response.Error(c, errors.Unauthorized("Invalid secret", nil))
	}
	return response.Success(c, toSessionResponse(sess.ID(), sess.State()))
}

func (h *SessionHandler) Logout(c echo.Context) error {
	sess, err := h.current(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := sess.Logout(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}

	st, _ := sess.WaitReady(c.Request().Context())
	return response.Success(c, toSessionResponse(sess.ID(), st))
}

func (h *SessionHandler) ToggleTheme(c echo.Context) error {
	sess, err := h.current(c)
	if err != nil {
		return response.Error(c, err)
	}

	sess.ToggleTheme(c.Request().Context())
	return response.Success(c, toSessionResponse(sess.ID(), sess.State()))
}

// End drops the session entirely, closing its subscriptions.
func (h *SessionHandler) End(c echo.Context) error {
	sess, err := h.current(c)
	if err != nil {
		return response.Error(c, err)
	}

	h.sessions.Remove(sess.ID())
	return response.Success(c, map[string]string{"message": "Session ended"})
}
