// internal/broadcast/ws/hub.go
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// Observers only listen; anything they send is read and discarded.
	maxMessageSize = 4096

	// Per-observer queue. A full queue means the observer is too slow and
	// is dropped rather than waited on.
	sendBuffer = 16
)

// Recorder observes observer churn (metrics).
type Recorder interface {
	ObserversChanged(n int)
	ObserverDropped()
}

type nopRecorder struct{}

func (nopRecorder) ObserversChanged(int) {}
func (nopRecorder) ObserverDropped()     {}

type observer struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
}

// Hub keeps the set of connected observer windows and pushes event
// frames to them. Implements broadcast.Emitter.
type Hub struct {
	upgrader websocket.Upgrader

	register   chan *observer
	unregister chan *observer
	broadcast  chan []byte
	done       chan struct{}

	mu        sync.RWMutex
	observers map[string]*observer
	last      []byte

	log *logrus.Entry
	rec Recorder
}

// Option customizes a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l.WithField("component", "observers")
		}
	}
}

// WithRecorder sets the churn recorder.
func WithRecorder(r Recorder) Option {
	return func(h *Hub) {
		if r != nil {
			h.rec = r
		}
	}
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The command surface only listens on loopback.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		register:   make(chan *observer),
		unregister: make(chan *observer),
		// Capacity 1: a pending frame is replaced by a newer one.
		broadcast: make(chan []byte, 1),
		done:      make(chan struct{}),
		observers: make(map[string]*observer),
		log:       logrus.StandardLogger().WithField("component", "observers"),
		rec:       nopRecorder{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves register/unregister/broadcast until ctx is done, then
// closes every observer connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case o := <-h.register:
			h.mu.Lock()
			h.observers[o.id] = o
			last := h.last
			n := len(h.observers)
			h.mu.Unlock()

			// Late joiners get the current state right away.
			if last != nil {
				o.send <- last
			}

			h.rec.ObserversChanged(n)
			h.log.WithField("observer", o.id).Info("observer connected")

		case o := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.observers[o.id]; ok {
				delete(h.observers, o.id)
				close(o.send)
				h.log.WithField("observer", o.id).Info("observer disconnected")
			}
			n := len(h.observers)
			h.mu.Unlock()
			h.rec.ObserversChanged(n)

		case frame := <-h.broadcast:
			h.mu.Lock()
			h.last = frame
			for id, o := range h.observers {
				select {
				case o.send <- frame:
				default:
					close(o.send)
					delete(h.observers, id)
					h.rec.ObserverDropped()
					h.log.WithField("observer", id).Warn("observer too slow; dropped")
				}
			}
			n := len(h.observers)
			h.mu.Unlock()
			h.rec.ObserversChanged(n)

		case <-ctx.Done():
			h.mu.Lock()
			for id, o := range h.observers {
				_ = o.conn.Close()
				close(o.send)
				delete(h.observers, id)
			}
			h.mu.Unlock()
			h.rec.ObserversChanged(0)
			return
		}
	}
}

// Emit queues frame for every observer without blocking.
// If a frame is still pending, the newer one replaces it.
func (h *Hub) Emit(event string, frame []byte) {
	for {
		select {
		case h.broadcast <- frame:
			return
		default:
		}
		select {
		case <-h.broadcast:
		default:
		}
	}
}

// Count returns the number of connected observers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// ServeHTTP upgrades the request and registers the connection as an
// observer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("observer upgrade failed")
		return
	}

	o := &observer{
		hub:  h,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- o:
	case <-h.done:
		_ = conn.Close()
		return
	case <-r.Context().Done():
		_ = conn.Close()
		return
	}

	go o.writePump()
	go o.readPump()
}

// readPump drains the connection so pongs and close frames are handled.
func (o *observer) readPump() {
	defer func() {
		select {
		case o.hub.unregister <- o:
		case <-o.hub.done:
		}
		_ = o.conn.Close()
	}()

	o.conn.SetReadLimit(maxMessageSize)
	_ = o.conn.SetReadDeadline(time.Now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		return o.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				o.hub.log.WithError(err).WithField("observer", o.id).Debug("observer read error")
			}
			return
		}
	}
}

// writePump pushes queued frames, one websocket message per frame.
func (o *observer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = o.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-o.send:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = o.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := o.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
