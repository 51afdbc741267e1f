package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoaing/internal/adapter/api"
	"tokoaing/internal/adapter/api/handler"
	"tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/adapter/api/router"
	"tokoaing/internal/adapter/repository"
	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/service"
	"tokoaing/internal/infrastructure/firebase"
	"tokoaing/internal/infrastructure/memtree"
	"tokoaing/internal/infrastructure/ratelimit"
	"tokoaing/internal/infrastructure/websocket"
	"tokoaing/internal/session"
	"tokoaing/internal/usecase"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	e *echo.Echo
}

func newTestServer(t *testing.T, loginPerMinute int) *testServer {
	t.Helper()

	tree := memtree.New()
	identity := firebase.NewLocalIdentityService()

	accountRepo := repository.NewTreeAccountRepository(tree)
	productRepo := repository.NewTreeProductRepository(tree)
	ticketRepo := repository.NewTreeTicketRepository(tree)
	orderRepo := repository.NewTreeOrderRepository(tree)
	payments := service.NewPaymentLinkService("https://pay.example/product", "https://pay.example/ticket", "https://pay.example/box")

	sessions := session.NewManager(session.Dependencies{
		Preferences: repository.NewMemoryPreferenceRepository(),
		Accounts:    accountRepo,
		Identity:    identity,
		BypassTTL:   time.Hour,
	}, time.Hour)
	t.Cleanup(sessions.CloseAll)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	handler.Setup(handler.UseCases{
		Auth:        usecase.NewAuthUseCase(accountRepo, identity),
		User:        usecase.NewUserUseCase(accountRepo, identity),
		Product:     usecase.NewProductUseCase(productRepo, nil),
		Ticket:      usecase.NewTicketUseCase(tree, ticketRepo),
		Order:       usecase.NewOrderUseCase(orderRepo, productRepo, ticketRepo, payments, 25000),
		Fulfillment: usecase.NewFulfillmentUseCase(tree, accountRepo, productRepo, repository.NewMemoryOrderLogRepository()),
		MysteryBox:  usecase.NewMysteryBoxUseCase(tree, repository.NewTreeMysteryBoxRepository(tree), accountRepo, orderRepo),
		Leaderboard: usecase.NewLeaderboardUseCase(repository.NewTreeLeaderboardRepository(tree)),
		Inbox:       usecase.NewInboxUseCase(tree, repository.NewTreeInboxRepository(tree)),
		History:     usecase.NewHistoryUseCase(orderRepo),
		Feed:        usecase.NewFeedUseCase(tree),
	}, sessions, wsManager, "https://wa.me/620000")

	e := echo.New()
	e.Validator = api.NewValidator()

	auth := middleware.NewAuthMiddleware(sessions, 2*time.Second, false)
	router.Setup(e, router.Middlewares{
		Auth:      auth,
		Admin:     middleware.NewAdminMiddleware(auth),
		RateLimit: middleware.NewRateLimitMiddleware(ratelimit.NewRateLimiter(loginPerMinute)),
	})

	return &testServer{e: e}
}

// do sends a request on behalf of sessionID (empty for a fresh client) and returns the
// session id the server answered with.
func (s *testServer) do(t *testing.T, method, path, sessionID string, body interface{}) (*httptest.ResponseRecorder, envelope, string) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env, rec.Header().Get(middleware.SessionHeader)
}

type sessionView struct {
	SessionID string           `json:"sessionId"`
	View      session.View     `json:"view"`
	Identity  *entity.Identity `json:"identity"`
	Profile   *entity.Account  `json:"profile"`
	Loading   bool             `json:"loading"`
	Theme     entity.Theme     `json:"theme"`
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func (s *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	rec, _, _ := s.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, env, sid := s.do(t, http.MethodPost, "/v1/session/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		IDToken string      `json:"idToken"`
		Session sessionView `json:"session"`
	}
	decode(t, env.Data, &out)
	assert.NotEmpty(t, out.IDToken)
	assert.Equal(t, sid, out.Session.SessionID)
	return sid
}

func (s *testServer) bypass(t *testing.T) string {
	t.Helper()
	rec, env, sid := s.do(t, http.MethodPost, "/v1/session/bypass", "", map[string]string{"secret": session.BypassSecret})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view sessionView
	decode(t, env.Data, &view)
	assert.Equal(t, session.ViewAdmin, view.View)
	return sid
}

func TestHealthAndContact(t *testing.T) {
	s := newTestServer(t, 100)

	rec, _, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")

	rec, env, _ := s.do(t, http.MethodGet, "/v1/contact", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contactUrl":"https://wa.me/620000"}`, string(env.Data))
}

func TestGuestSession(t *testing.T) {
	s := newTestServer(t, 100)

	rec, env, sid := s.do(t, http.MethodGet, "/v1/session", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, sid)

	var view sessionView
	decode(t, env.Data, &view)
	assert.Equal(t, session.ViewGuest, view.View)
	assert.Nil(t, view.Identity)
	assert.Equal(t, sid, view.SessionID)

	// The same id keeps the same session.
	_, _, again := s.do(t, http.MethodGet, "/v1/session", sid, nil)
	assert.Equal(t, sid, again)

	// Garbage ids are replaced.
	_, _, replaced := s.do(t, http.MethodGet, "/v1/session", "not-a-uuid", nil)
	assert.NotEqual(t, "not-a-uuid", replaced)
}

func TestThemeToggle(t *testing.T) {
	s := newTestServer(t, 100)
	_, env, sid := s.do(t, http.MethodGet, "/v1/session", "", nil)
	var before sessionView
	decode(t, env.Data, &before)

	rec, env, _ := s.do(t, http.MethodPost, "/v1/session/theme/toggle", sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var after sessionView
	decode(t, env.Data, &after)
	assert.NotEqual(t, before.Theme, after.Theme)
}

func TestLoginAndLogout(t *testing.T) {
	s := newTestServer(t, 100)
	s.register(t, "buyer@example.com", "secret123")

	sid := s.login(t, "buyer@example.com", "secret123")

	rec, env, _ := s.do(t, http.MethodGet, "/v1/session?wait=true", sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view sessionView
	decode(t, env.Data, &view)
	assert.Equal(t, session.ViewUser, view.View)
	assert.False(t, view.Loading)
	require.NotNil(t, view.Profile)
	assert.Equal(t, entity.RoleUser, view.Profile.Role)

	rec, _, _ = s.do(t, http.MethodGet, "/v1/me", sid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env, _ = s.do(t, http.MethodPost, "/v1/session/logout", sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &view)
	assert.Equal(t, session.ViewGuest, view.View)

	rec, _, _ = s.do(t, http.MethodGet, "/v1/me", sid, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t, 100)
	s.register(t, "buyer@example.com", "secret123")

	rec, _, _ := s.do(t, http.MethodPost, "/v1/session/login", "", map[string]string{"email": "buyer@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env, _ := s.do(t, http.MethodPost, "/v1/session/login", "", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _, _ = s.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{"email": "BUYER@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBypassSecret(t *testing.T) {
	s := newTestServer(t, 100)

	rec, env, _ := s.do(t, http.MethodPost, "/v1/session/bypass", "", map[string]string{"secret": "guess"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid secret", env.Error.Message)

	sid := s.bypass(t)
	rec, _, _ = s.do(t, http.MethodGet, "/v1/admin/users", sid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The bypass identity has no account to buy with.
	rec, _, _ = s.do(t, http.MethodPost, "/v1/orders", sid, map[string]string{"type": "mystery_box"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminGating(t *testing.T) {
	s := newTestServer(t, 100)
	s.register(t, "buyer@example.com", "secret123")
	user := s.login(t, "buyer@example.com", "secret123")

	rec, _, _ := s.do(t, http.MethodGet, "/v1/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _, _ = s.do(t, http.MethodGet, "/v1/admin/orders", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _, _ = s.do(t, http.MethodPost, "/v1/admin/products", user, map[string]interface{}{"name": "Mouse", "price": 10})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPromotedAdminGetsAdminView(t *testing.T) {
	s := newTestServer(t, 100)
	s.register(t, "staff@example.com", "secret123")
	staff := s.login(t, "staff@example.com", "secret123")
	admin := s.bypass(t)

	_, env, _ := s.do(t, http.MethodGet, "/v1/me", staff, nil)
	var me entity.Account
	decode(t, env.Data, &me)

	rec, _, _ := s.do(t, http.MethodPut, "/v1/admin/users/"+me.UID+"/role", admin, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Eventually(t, func() bool {
		_, env, _ := s.do(t, http.MethodGet, "/v1/session?wait=true", staff, nil)
		var view sessionView
		decode(t, env.Data, &view)
		return view.View == session.ViewAdmin
	}, 2*time.Second, 20*time.Millisecond)
}

func TestOrderFulfillmentFlow(t *testing.T) {
	s := newTestServer(t, 100)
	s.register(t, "buyer@example.com", "secret123")
	buyer := s.login(t, "buyer@example.com", "secret123")
	admin := s.bypass(t)

	rec, env, _ := s.do(t, http.MethodPost, "/v1/admin/products", admin, map[string]interface{}{
		"name": "Mouse", "description": "Wireless", "price": 150000, "stock": 2, "isAvailable": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product entity.Product
	decode(t, env.Data, &product)
	require.NotEmpty(t, product.ID)

	rec, env, _ = s.do(t, http.MethodPost, "/v1/orders", buyer, map[string]string{"type": "product", "itemId": product.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed usecase.PlacedOrder
	decode(t, env.Data, &placed)
	assert.Equal(t, "https://pay.example/product", placed.PaymentURL)
	require.NotNil(t, placed.Order)
	assert.Equal(t, "Mouse", placed.Order.ItemName)

	rec, env, _ = s.do(t, http.MethodGet, "/v1/admin/orders", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []*entity.PendingOrder
	decode(t, env.Data, &pending)
	require.Len(t, pending, 1)

	rec, env, _ = s.do(t, http.MethodPost, "/v1/admin/orders/"+pending[0].ID+"/confirm", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result usecase.FulfillmentResult
	decode(t, env.Data, &result)
	assert.Equal(t, entity.OrderFulfilled, result.Outcome)

	// Confirming again finds nothing pending.
	rec, _, _ = s.do(t, http.MethodPost, "/v1/admin/orders/"+pending[0].ID+"/confirm", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env, _ = s.do(t, http.MethodGet, "/v1/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, env.Data, &product)
	assert.Equal(t, 1, product.Stock)

	rec, env, _ = s.do(t, http.MethodGet, "/v1/me/history", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []*entity.PurchaseHistoryItem
	decode(t, env.Data, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "Mouse", history[0].Name)

	rec, env, _ = s.do(t, http.MethodGet, "/v1/me/inbox/messages", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox usecase.InboxView
	decode(t, env.Data, &inbox)
	assert.Equal(t, 1, inbox.Unread)

	rec, env, _ = s.do(t, http.MethodPost, "/v1/me/inbox/messages/read", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"marked":1}`, string(env.Data))

	rec, _, _ = s.do(t, http.MethodGet, "/v1/me/inbox/spam", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env, _ = s.do(t, http.MethodGet, "/v1/admin/orders/"+pending[0].ID+"/logs", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []*entity.OrderLog
	decode(t, env.Data, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.OrderFulfilled, logs[0].Outcome)
}

func TestPlaceOrderValidation(t *testing.T) {
	s := newTestServer(t, 100)
	s.register(t, "buyer@example.com", "secret123")
	buyer := s.login(t, "buyer@example.com", "secret123")

	rec, _, _ := s.do(t, http.MethodPost, "/v1/orders", "", map[string]string{"type": "mystery_box"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _, _ = s.do(t, http.MethodPost, "/v1/orders", buyer, map[string]string{"type": "product"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _, _ = s.do(t, http.MethodPost, "/v1/orders", buyer, map[string]string{"type": "voucher", "itemId": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _, _ = s.do(t, http.MethodPost, "/v1/orders", buyer, map[string]string{"type": "mystery_box"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestBypassRateLimited(t *testing.T) {
	s := newTestServer(t, 100)

	for i := 0; i < 3; i++ {
		rec, _, _ := s.do(t, http.MethodPost, "/v1/session/bypass", "", map[string]string{"secret": "guess"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, env, _ := s.do(t, http.MethodPost, "/v1/session/bypass", "", map[string]string{"secret": session.BypassSecret})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.NotNil(t, env.Error)
}

func TestLiveEndpointRequiresUpgrade(t *testing.T) {
	s := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/v1/ws", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	// A plain GET is refused by the upgrader.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLiveChannelsClosedOnLogout(t *testing.T) {
	s := newTestServer(t, 100)
	admin := s.bypass(t)

	srv := httptest.NewServer(s.e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, http.Header{middleware.SessionHeader: {admin}})
	require.NoError(t, err)
	defer conn.Close()

	next := func(kind string) websocket.Envelope {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		for {
			var env websocket.Envelope
			require.NoError(t, conn.ReadJSON(&env))
			if env.Type == kind {
				return env
			}
		}
	}

	next(websocket.TypeSession)
	require.NoError(t, conn.WriteJSON(websocket.Request{Action: websocket.ActionSubscribe, Channel: "pendingOrders"}))
	require.NoError(t, conn.WriteJSON(websocket.Request{Action: websocket.ActionSubscribe, Channel: "products"}))
	next(websocket.TypeSubscribed)

	rec, _, _ := s.do(t, http.MethodPost, "/v1/session/logout", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := next(websocket.TypeUnsubscribed)
	assert.Equal(t, "pendingOrders", env.Channel)
	assert.Equal(t, "access revoked", env.Error)

	// Public channels stay open.
	require.NoError(t, conn.WriteJSON(websocket.Request{Action: websocket.ActionPing}))
	for {
		var env websocket.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == websocket.TypePong {
			break
		}
		assert.NotEqual(t, websocket.TypeUnsubscribed, env.Type, env.Channel)
	}
}
