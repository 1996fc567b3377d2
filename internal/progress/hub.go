// Package progress fans batch progress events out to WebSocket
// subscribers.
package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"WCSPull/pkg/logger"
)

// Event is one progress update for a batch job.
type Event struct {
	BatchID   string    `json:"batch_id"`
	Type      string    `json:"type"` // file_done, file_failed, batch_finished
	File      string    `json:"file,omitempty"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Error     string    `json:"error,omitempty"`
	Time      time.Time `json:"time"`
}

const (
	EventFileDone      = "file_done"
	EventFileFailed    = "file_failed"
	EventBatchFinished = "batch_finished"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// CORS for the API is enforced by middleware; the ws endpoint
		// accepts any origin.
		return true
	},
}

// Hub manages WebSocket subscribers and broadcasts events to them.
// A client that connects with ?batch_id= only receives that batch.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	mu         sync.RWMutex
	log        *logger.Logger
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	batchID string // empty means all batches
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 64),
		log:        log,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Debug("progress client registered", logger.String("batch_id", c.batchID))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			msg, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("marshal progress event", logger.Error(err))
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				if c.batchID != "" && c.batchID != ev.BatchID {
					continue
				}
				select {
				case c.send <- msg:
				default:
					// slow client, drop it
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish enqueues an event without blocking the caller. Events are
// dropped when the hub is saturated; progress is advisory.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("progress channel full, dropping event", logger.String("batch_id", ev.BatchID))
	}
}

// ServeWS upgrades an echo request into a subscriber connection.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		batchID: c.QueryParam("batch_id"),
	}
	h.register <- cl

	go cl.writePump()
	go cl.readPump()
	return nil
}

// readPump drains the connection so pings and closes are processed.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("progress client read error", logger.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
