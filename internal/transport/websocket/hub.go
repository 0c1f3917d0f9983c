package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/go2048/internal/game/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer      = 256
	broadcastBuffer = 1024
)

// ForwardedEvents are the bus event types relayed to spectators
var ForwardedEvents = []string{
	events.TypeMoveApplied,
	events.TypeTileSpawned,
	events.TypeGameEnded,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Spectating is read-only, so any origin may watch
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one JSON frame sent to spectators
type Message struct {
	GameID string      `json:"game_id"`
	Event  string      `json:"event"`
	Data   interface{} `json:"data,omitempty"`
}

// Client is one spectator connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

// Hub fans game events out to the spectators of each game
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger zerolog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "SpectatorHub").Logger(),
	}
}

// Run starts the hub's event loop and returns when ctx is done. It must be
// called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Subscribe forwards the bus events spectators care about. The returned
// function removes the subscriptions.
func (h *Hub) Subscribe(bus *events.EventBus) func() {
	ids := make([]string, 0, len(ForwardedEvents))
	for _, eventType := range ForwardedEvents {
		ids = append(ids, bus.SubscribeFunc(eventType, h.Forward))
	}
	return func() {
		for _, id := range ids {
			bus.UnsubscribeFunc(id)
		}
	}
}

// Forward queues e for the spectators of its game. It never blocks: the bus
// publishes while the game is locked, so a full queue drops the event.
func (h *Hub) Forward(e events.Event) {
	if h.ClientCount(e.GameID()) == 0 {
		return
	}

	select {
	case h.broadcast <- &Message{GameID: e.GameID(), Event: e.Type(), Data: e}:
	default:
		h.logger.Warn().
			Str("game_id", e.GameID()).
			Str("event_type", e.Type()).
			Msg("Broadcast queue full, dropping event")
	}
}

// ServeWS upgrades /ws?game=<id> requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		gameID: gameID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of spectators watching gameID
func (h *Hub) ClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.games[client.gameID] == nil {
		h.games[client.gameID] = make(map[*Client]bool)
	}
	h.games[client.gameID][client] = true

	h.logger.Debug().
		Str("game_id", client.gameID).
		Int("clients", len(h.games[client.gameID])).
		Msg("Spectator registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.games[client.gameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.games, client.gameID)
	}

	h.logger.Debug().
		Str("game_id", client.gameID).
		Int("remaining", len(clients)).
		Msg("Spectator unregistered")
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", message.Event).Msg("Failed to marshal spectator message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.games[message.GameID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.games {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// readPump discards client frames and keeps the connection alive
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("game_id", c.gameID).Msg("WebSocket error")
			}
			return
		}
	}
}

// writePump sends queued frames and pings, one JSON message per frame
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
