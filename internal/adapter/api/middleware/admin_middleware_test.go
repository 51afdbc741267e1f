package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoaing/internal/adapter/repository"
	"tokoaing/internal/infrastructure/firebase"
	"tokoaing/internal/infrastructure/memtree"
	"tokoaing/internal/session"
)

func TestAdminOnlyDropsExpiredBypass(t *testing.T) {
	tree := memtree.New()
	sessions := session.NewManager(session.Dependencies{
		Preferences: repository.NewMemoryPreferenceRepository(),
		Accounts:    repository.NewTreeAccountRepository(tree),
		Identity:    firebase.NewLocalIdentityService(),
		BypassTTL:   200 * time.Millisecond,
	}, time.Hour)
	t.Cleanup(sessions.CloseAll)

	auth := NewAuthMiddleware(sessions, time.Second, false)
	admin := NewAdminMiddleware(auth)

	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, auth.Session, admin.AdminOnly)

	sess := sessions.Get(context.Background(), "", "")
	require.True(t, sess.BypassAdminLogin(context.Background(), session.BypassSecret))

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(SessionHeader, sess.ID())
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call())
	assert.Eventually(t, func() bool { return call() == http.StatusUnauthorized }, 2*time.Second, 20*time.Millisecond)
	assert.Nil(t, sess.State().Identity)
}
