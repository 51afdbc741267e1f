package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
	ws "tokoaing/internal/infrastructure/websocket"
	"tokoaing/internal/session"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
	"tokoaing/pkg/response"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	feedUseCase *usecase.FeedUseCase
	upgrader    gorillaws.Upgrader
}

func NewWebSocketHandler(wsManager *ws.Manager, feedUseCase *usecase.FeedUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		feedUseCase: feedUseCase,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func viewerOf(st session.State) usecase.Viewer {
	return usecase.Viewer{Actor: usecase.ActorFrom(st.Identity), Admin: st.IsAdmin()}
}

// grants remembers the subtree each channel of one connection was opened on, so a session
// change can close the channels the new identity may no longer see.
type grants struct {
	feed  *usecase.FeedUseCase
	mu    sync.Mutex
	paths map[string]string
}

func (g *grants) record(channel, path string) {
	g.mu.Lock()
	g.paths[channel] = path
	g.mu.Unlock()
}

// allows reports whether viewer still resolves channel to the subtree it was opened on.
func (g *grants) allows(viewer usecase.Viewer, channel string) bool {
	path, err := g.feed.Resolve(viewer, channel)
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil || g.paths[channel] != path {
		delete(g.paths, channel)
		return false
	}
	return true
}

// subscriber opens feed channels with the session's identity at the time of each subscribe.
func (h *WebSocketHandler) subscriber(sess *session.Session, g *grants) ws.Subscriber {
	return func(ctx context.Context, channel string, push func(json.RawMessage, string)) (ws.Cancel, error) {
		sess.CheckBypass(ctx)
		viewer := viewerOf(sess.State())
		path, err := h.feedUseCase.Resolve(viewer, channel)
		if err != nil {
			return nil, err
		}
		sub, err := h.feedUseCase.Subscribe(ctx, viewer, channel, func(u usecase.FeedUpdate) {
			push(u.Data, u.Error)
		})
		if err != nil {
			return nil, err
		}
		g.record(channel, path)
		return sub.Cancel, nil
	}
}

// HandleWebSocket upgrades the request and serves live channels for the caller's session.
// The session state itself is pushed as "session" messages whenever it changes, and
// channels the new state may not see are closed.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return response.Error(c, errors.Internal("Session middleware not installed", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed: %v", err)
		return nil
	}

	client := ws.NewClient(context.Background(), uuid.New().String(), sess.ID(), conn)
	access := &grants{feed: h.feedUseCase, paths: make(map[string]string)}

	sessionSub := sess.Subscribe(func(st session.State) {
		viewer := viewerOf(st)
		revoked := client.Revoke(func(channel string) bool {
			return access.allows(viewer, channel)
		}, "access revoked")
		if len(revoked) > 0 {
			logger.Info("Live client %s lost access to %v", client.ID, revoked)
		}

		payload, err := json.Marshal(toSessionResponse(sess.ID(), st))
		if err != nil {
			return
		}
		client.Push(ws.Envelope{Type: ws.TypeSession, Data: payload})
	})
	go func() {
		<-client.Done()
		sessionSub.Cancel()
	}()

	h.wsManager.Add(client)

	go client.ReadPump(h.wsManager, h.subscriber(sess, access))
	go client.WritePump()

	return nil
}
