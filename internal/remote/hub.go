package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/relive/internal/engine/camera"
	"github.com/Faultbox/relive/internal/viewport"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 64
)

// Command is an inbound bridge message.
type Command struct {
	Op     string  `json:"op"` // "load", "zoom" or "mode"
	URL    string  `json:"url,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	Mode   string  `json:"mode,omitempty"`
}

// Event is an outbound bridge message.
type Event struct {
	Event   string  `json:"event"` // "progress", "error" or "complete"
	Percent float64 `json:"percent,omitempty"`
	Message string  `json:"message,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (cl *client) close() {
	cl.once.Do(func() { close(cl.send) })
}

// Hub is the websocket bridge. It serves connections on any path it is
// mounted at and broadcasts load outcomes to every client.
type Hub struct {
	target   Target
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub driving target. log may be nil.
func NewHub(target Target, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		target: target,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Callbacks wraps next so load outcomes are also broadcast.
func (h *Hub) Callbacks(next viewport.Callbacks) viewport.Callbacks {
	return viewport.Callbacks{
		OnProgress: func(p float64) {
			h.Broadcast(Event{Event: "progress", Percent: p})
			if next.OnProgress != nil {
				next.OnProgress(p)
			}
		},
		OnError: func(msg string) {
			h.Broadcast(Event{Event: "error", Message: msg})
			if next.OnError != nil {
				next.OnError(msg)
			}
		},
		OnComplete: func() {
			h.Broadcast(Event{Event: "complete"})
			if next.OnComplete != nil {
				next.OnComplete()
			}
		},
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends ev to every client. Clients that cannot keep up are
// disconnected.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal event", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			h.log.Warn("dropping slow client", zap.Stringer("addr", cl.conn.RemoteAddr()))
			delete(h.clients, cl)
			cl.close()
		}
	}
}

func (h *Hub) reply(cl *client, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; !ok {
		return
	}
	select {
	case cl.send <- data:
	default:
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	h.log.Info("remote client connected", zap.Stringer("addr", conn.RemoteAddr()))

	go h.writePump(cl)
	h.readPump(cl)

	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		cl.close()
	}
	h.mu.Unlock()
	h.log.Info("remote client disconnected", zap.Stringer("addr", conn.RemoteAddr()))
}

func (h *Hub) readPump(cl *client) {
	cl.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read", zap.Error(err))
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(cl, Event{Event: "error", Message: "malformed command: " + err.Error()})
			continue
		}
		apply, err := h.command(cmd)
		if err != nil {
			h.reply(cl, Event{Event: "error", Message: err.Error()})
			continue
		}
		h.target.Enqueue(func() {
			if err := apply(); err != nil {
				h.log.Warn("remote command failed", zap.String("op", cmd.Op), zap.Error(err))
				h.reply(cl, Event{Event: "error", Message: err.Error()})
			}
		})
	}
}

func (h *Hub) writePump(cl *client) {
	defer cl.conn.Close()
	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("websocket write", zap.Error(err))
			return
		}
	}
	cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// command validates cmd off the UI thread and returns the call to run on it.
func (h *Hub) command(cmd Command) (func() error, error) {
	switch cmd.Op {
	case "load":
		url := cmd.URL
		return func() error { return h.target.LoadMesh(url) }, nil
	case "zoom":
		factor := cmd.Factor
		return func() error { return h.target.SetZoom(factor) }, nil
	case "mode":
		mode, err := camera.ParseMode(cmd.Mode)
		if err != nil {
			return nil, err
		}
		return func() error { return h.target.SetInteractionMode(mode) }, nil
	case "":
		return nil, errors.New("command has no op")
	}
	return nil, fmt.Errorf("unknown op %q", cmd.Op)
}

// Serve runs the bridge on addr, with the websocket endpoint at /ws, until
// ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	h.log.Info("remote bridge listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return fmt.Errorf("remote bridge: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	h.mu.Lock()
	for cl := range h.clients {
		delete(h.clients, cl)
		cl.close()
	}
	h.mu.Unlock()
	return err
}
