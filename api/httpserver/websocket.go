package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"talos/domain/book"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled by the outer handler.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the active WebSocket connections and pushes market data to
// clients subscribed to a symbol's channel ("md.<symbol>").
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client

	mu  sync.RWMutex
	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        log,
	}
}

// Run handles client registration. Broadcasting goes straight through
// Publish, which only takes the read lock.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Info("ws client connected", zap.String("client", c.id))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Info("ws client disconnected", zap.String("client", c.id))
		}
	}
}

// Publish pushes one processed command's result to every client subscribed
// to the symbol's channel. Implements the engine's notification interface.
func (h *Hub) Publish(snap *book.Snapshot, trades []book.Trade) error {
	channel := "md." + snap.Symbol
	payload, err := json.Marshal(wsMarketData{
		Channel:  channel,
		Snapshot: snap,
		Trades:   trades,
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.isSubscribed(channel) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// slow client, drop the message rather than block the engine
		}
	}
	return nil
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	subsMu sync.RWMutex
	subs   map[string]bool
}

func (c *client) isSubscribed(channel string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return c.subs[channel]
}

func (c *client) subscribe(channel string) {
	c.subsMu.Lock()
	c.subs[channel] = true
	c.subsMu.Unlock()
}

func (c *client) unsubscribe(channel string) {
	c.subsMu.Lock()
	delete(c.subs, channel)
	c.subsMu.Unlock()
}

func (c *client) readPump(log *zap.Logger) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("ws read error", zap.Error(err))
			}
			return
		}

		var req wsSubscribeRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Warn("ws invalid message", zap.Error(err))
			continue
		}

		switch req.Op {
		case "subscribe":
			for _, ch := range req.Channels {
				c.subscribe(ch)
			}
		case "unsubscribe":
			for _, ch := range req.Channels {
				c.unsubscribe(ch)
			}
		default:
			log.Warn("ws unknown op", zap.String("op", req.Op))
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
		id:   conn.RemoteAddr().String(),
		subs: make(map[string]bool),
	}
	s.hub.register <- c

	go c.writePump()
	go c.readPump(s.log)
}
