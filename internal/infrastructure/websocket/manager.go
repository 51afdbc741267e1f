package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tokoaing/pkg/logger"
)

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionPing        = "ping"

	TypeSubscribed   = "subscribed"
	TypeUnsubscribed = "unsubscribed"
	TypeUpdate       = "update"
	TypeError        = "error"
	TypePong         = "pong"
	TypeSession      = "session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 4096
)

// Request is what a client sends.
type Request struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// Envelope is what a client receives.
type Envelope struct {
	Type      string          `json:"type"`
	Channel   string          `json:"channel,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// Cancel stops one channel subscription.
type Cancel func()

// Subscriber opens channel for a client and pushes encoded updates through push until the
// returned Cancel runs.
type Subscriber func(ctx context.Context, channel string, push func(data json.RawMessage, errMsg string)) (Cancel, error)

// Client represents a WebSocket connection client
type Client struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	subs   map[string]Cancel
	closed bool
}

func NewClient(ctx context.Context, id, sessionID string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		ID:        id,
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		ctx:       ctx,
		cancel:    cancel,
		subs:      make(map[string]Cancel),
	}
}

// Manager manages all active WebSocket connections
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
	done       chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Debug("Live client registered: %s (session %s)", client.ID, client.SessionID)

			case client := <-m.Unregister:
				m.drop(client)
				logger.Debug("Live client unregistered: %s", client.ID)

			case <-ctx.Done():
				close(m.done)
				m.mutex.Lock()
				clients := make([]*Client, 0, len(m.clients))
				for _, c := range m.clients {
					clients = append(clients, c)
				}
				m.mutex.Unlock()
				for _, c := range clients {
					m.drop(c)
				}
				return
			}
		}
	}()
}

// Add registers client. Once the manager has stopped the client is shut down instead.
func (m *Manager) Add(client *Client) {
	select {
	case m.Register <- client:
	case <-m.done:
		client.shutdown()
	}
}

// Remove unregisters client. It never blocks on a stopped manager.
func (m *Manager) Remove(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.done:
		client.shutdown()
	}
}

func (m *Manager) drop(client *Client) {
	m.mutex.Lock()
	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
	}
	m.mutex.Unlock()
	client.shutdown()
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// SendToSession pushes message to every connection opened by the session.
func (m *Manager) SendToSession(sessionID string, message []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, c := range m.clients {
		if c.SessionID == sessionID {
			c.enqueue(message)
		}
	}
}

// Done is closed once the client has been unregistered.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Subscriptions returns the channels the client currently watches.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.subs))
	for name := range c.subs {
		names = append(names, name)
	}
	return names
}

// Push encodes and queues an envelope. A full buffer drops the message rather than block
// the tree watcher feeding it.
func (c *Client) Push(env Envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to encode live message: %v", err)
		return
	}
	c.enqueue(payload)
}

func (c *Client) enqueue(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- payload:
	default:
		logger.Warn("Live client %s is not keeping up, message dropped", c.ID)
	}
}

func (c *Client) subscribe(channel string, subscribe Subscriber) {
	c.mu.Lock()
	_, exists := c.subs[channel]
	c.mu.Unlock()
	if exists {
		c.Push(Envelope{Type: TypeSubscribed, Channel: channel})
		return
	}

	cancel, err := subscribe(c.ctx, channel, func(data json.RawMessage, errMsg string) {
		if errMsg != "" {
			c.Push(Envelope{Type: TypeError, Channel: channel, Error: errMsg})
			return
		}
		c.Push(Envelope{Type: TypeUpdate, Channel: channel, Data: data})
	})
	if err != nil {
		c.Push(Envelope{Type: TypeError, Channel: channel, Error: err.Error()})
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return
	}
	c.subs[channel] = cancel
	c.mu.Unlock()
	c.Push(Envelope{Type: TypeSubscribed, Channel: channel})
}

func (c *Client) unsubscribe(channel string) {
	c.mu.Lock()
	cancel, ok := c.subs[channel]
	delete(c.subs, channel)
	c.mu.Unlock()
	if ok {
		cancel()
	}
	c.Push(Envelope{Type: TypeUnsubscribed, Channel: channel})
}

// Revoke ends every subscription keep rejects and sends the client an unsubscribed
// message carrying reason. It returns the channels it closed.
func (c *Client) Revoke(keep func(channel string) bool, reason string) []string {
	c.mu.Lock()
	revoked := make(map[string]Cancel)
	for channel, cancel := range c.subs {
		if !keep(channel) {
			revoked[channel] = cancel
			delete(c.subs, channel)
		}
	}
	c.mu.Unlock()

	names := make([]string, 0, len(revoked))
	for channel, cancel := range revoked {
		cancel()
		c.Push(Envelope{Type: TypeUnsubscribed, Channel: channel, Error: reason})
		names = append(names, channel)
	}
	return names
}

// shutdown cancels every subscription and closes Send exactly once.
func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[string]Cancel)
	close(c.Send)
	c.mu.Unlock()

	for _, cancel := range subs {
		cancel()
	}
	c.cancel()
}

// Handle applies one client request.
func (c *Client) Handle(req Request, subscribe Subscriber) {
	switch req.Action {
	case ActionSubscribe:
		c.subscribe(req.Channel, subscribe)
	case ActionUnsubscribe:
		c.unsubscribe(req.Channel)
	case ActionPing:
		c.Push(Envelope{Type: TypePong})
	default:
		c.Push(Envelope{Type: TypeError, Error: "unknown action: " + req.Action})
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager, subscribe Subscriber) {
	defer func() {
		m.Remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessage)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req Request
		if err := c.Conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Live client %s read error: %v", c.ID, err)
			}
			if _, ok := err.(*json.SyntaxError); ok {
				c.Push(Envelope{Type: TypeError, Error: "malformed request"})
				continue
			}
			return
		}
		c.Handle(req, subscribe)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Live client %s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
