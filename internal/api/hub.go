package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pnl-dashboard/internal/dashboard"
)

// HubConfig configures websocket client handling.
type HubConfig struct {
	// PingInterval is the interval between ping frames.
	PingInterval time.Duration
	// ReadTimeout closes a client that sends nothing, not even a pong, for this long.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
	// SendBuffer is the per-client queue length. Slow clients are dropped when it fills.
	SendBuffer int
}

// DefaultHubConfig returns default websocket settings.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   16,
	}
}

type hubClient struct {
	conn *websocket.Conn
	send chan dashboard.Event
}

// Hub fans service events out to websocket clients.
// A single goroutine (Run) owns the client set.
type Hub struct {
	config   HubConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader

	register   chan *hubClient
	unregister chan *hubClient
	events     chan dashboard.Event

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(config *HubConfig, logger *zap.Logger) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		config: cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		events:     make(chan dashboard.Event, 64),
		done:       make(chan struct{}),
	}
}

// Publish queues an event for broadcast. It never blocks; events are dropped
// when the hub is stopped or its queue is full.
func (h *Hub) Publish(e dashboard.Event) {
	select {
	case <-h.done:
	case h.events <- e:
	default:
		h.logger.Warn("event queue full, dropping event", zap.String("type", string(e.Type)))
	}
}

// Run delivers events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*hubClient]struct{})
	defer func() {
		h.stopOnce.Do(func() { close(h.done) })
		for c := range clients {
			close(c.send)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.logger.Debug("websocket client connected", zap.Int("clients", len(clients)))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.logger.Debug("websocket client disconnected", zap.Int("clients", len(clients)))
			}
		case e := <-h.events:
			for c := range clients {
				select {
				case c.send <- e:
				default:
					delete(clients, c)
					close(c.send)
					h.logger.Warn("dropping slow websocket client")
				}
			}
		}
	}
}

// ServeHTTP upgrades the request and streams events to the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &hubClient{conn: conn, send: make(chan dashboard.Event, h.config.SendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client frames and keeps the read deadline fresh on pongs.
func (h *Hub) readLoop(c *hubClient) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
