package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
	"github.com/autopeer-io/gcslink/pkg/log"
)

const (
	clientBuffer = 64
	writeWait    = 5 * time.Second
	pingPeriod   = 30 * time.Second
)

type logEvent struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Text  string `json:"text"`
}

type client struct {
	send chan []byte
}

// Hub fans vehicle events and log lines out to websocket subscribers. It
// implements core.Notifier; a subscriber that falls behind misses messages
// rather than slowing the vehicle down.
type Hub struct {
	logger   log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

var _ core.Notifier = (*Hub)(nil)

func NewHub(logger log.Logger) *Hub {
	return &Hub{
		logger:   logger,
		upgrader: websocket.Upgrader{EnableCompression: false},
		clients:  make(map[*client]struct{}),
		done:     make(chan struct{}),
	}
}

// Close ends every open event stream.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) NotifyEvent(ev core.Event) {
	h.broadcast(ev)
}

func (h *Hub) LogMessage(level core.LogLevel, text string) {
	h.broadcast(logEvent{Type: "log", Level: level.String(), Text: text})
}

func (h *Hub) broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error(err, "Failed to encode event")
		return
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	metrics.EventClients.Set(float64(len(h.clients)))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	metrics.EventClients.Set(float64(len(h.clients)))
}

// ServeHTTP upgrades the request and streams events until the peer goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Unable to upgrade event websocket", "error", err)
		return
	}
	defer conn.Close()

	c := &client{send: make(chan []byte, clientBuffer)}
	h.add(c)
	defer h.remove(c)
	h.logger.Debug("Event subscriber connected", "remote", r.RemoteAddr)

	// The read side only notices the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-h.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case <-r.Context().Done():
			return
		case data := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
