package websocket

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/notifications"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// client is one websocket listener subscribed to a single topic
type client struct {
	topic string
	conn  *websocket.Conn
	send  chan notifications.WebSocketMessage
}

type countRequest struct {
	topic string
	reply chan int
}

// Hub fans published events out to the websocket listeners of each topic
type Hub struct {
	logger     *zap.Logger
	upgrader   websocket.Upgrader
	clients    map[*client]struct{}
	broadcast  chan notifications.WebSocketMessage
	register   chan *client
	unregister chan *client
	counts     chan countRequest
	stop       chan struct{}
	now        func() time.Time
}

// NewHub creates a hub and starts its run loop. Origins are checked by
// checkOrigin; nil accepts only same-host origins.
func NewHub(logger *zap.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = AllowOrigins()
	}
	h := &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan notifications.WebSocketMessage, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		counts:     make(chan countRequest),
		stop:       make(chan struct{}),
		now:        time.Now,
	}
	go h.run()
	return h
}

// AllowOrigins accepts handshakes without an Origin header, from the
// request's own host, or from one of origins ("https://portal.example.com").
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}

// Publish queues event for every listener on topic. Events are dropped when
// the hub is saturated or closed.
func (h *Hub) Publish(topic string, event any) {
	msg := notifications.WebSocketMessage{
		Type:      notifications.WSMessageTypeEvent,
		Topic:     topic,
		Data:      event,
		Timestamp: h.now(),
	}
	select {
	case h.broadcast <- msg:
	case <-h.stop:
	default:
		h.logger.Warn("Broadcast channel full, dropping event", zap.String("topic", topic))
	}
}

// Serve upgrades the request and streams topic events until the peer goes
// away. It blocks for the lifetime of the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	c := &client{
		topic: topic,
		conn:  conn,
		send:  make(chan notifications.WebSocketMessage, sendBuffer),
	}
	c.send <- notifications.WebSocketMessage{
		Type:      notifications.WSMessageTypeStatus,
		Topic:     topic,
		Data:      map[string]string{"status": "connected"},
		Timestamp: h.now(),
	}
	select {
	case h.register <- c:
	case <-h.stop:
		conn.Close()
		return fmt.Errorf("hub closed")
	}

	go h.writePump(c)
	return h.readPump(c)
}

// Count returns the number of listeners on topic
func (h *Hub) Count(topic string) int {
	req := countRequest{topic: topic, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.stop:
		return 0
	}
}

// Close disconnects every listener and stops the run loop
func (h *Hub) Close() {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
}

// readPump discards inbound frames; it exists to process control messages
// and notice when the peer disconnects.
func (h *Hub) readPump(c *client) error {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stop:
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}
	}
}

func (h *Hub) writePump(c *client) {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
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

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("Listener registered", zap.String("topic", c.topic))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("Listener unregistered", zap.String("topic", c.topic))
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				if c.topic != message.Topic {
					continue
				}
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}

		case req := <-h.counts:
			n := 0
			for c := range h.clients {
				if c.topic == req.topic {
					n++
				}
			}
			req.reply <- n

		case <-h.stop:
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		}
	}
}
