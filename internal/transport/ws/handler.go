// Package ws pushes change events to websocket clients.
//
// Each connection subscribes to the notifier and gets its own writer
// goroutine that drains the subscription channel. The HTTP handler goroutine
// runs the read loop, which only processes control frames and detects
// disconnects.
package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartmarshall/civic-registry/internal/domain"
	"github.com/heartmarshall/civic-registry/internal/notify"
)

type notifier interface {
	Subscribe() *notify.Subscription
	Unsubscribe(sub *notify.Subscription)
	Fail(sub *notify.Subscription, err error)
}

// Options tunes connection handling.
type Options struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	// CheckOrigin decides which browser origins may connect. Nil keeps the
	// websocket default of same-origin only.
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades requests to websocket connections that receive
// serviceCreated events.
type Handler struct {
	events   notifier
	opts     Options
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(events notifier, opts Options, logger *slog.Logger) *Handler {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	h := &Handler{
		events: events,
		opts:   opts,
		log:    logger.With("handler", "ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     opts.CheckOrigin,
	}
	return h
}

// ServeHTTP handles GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wc, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written an HTTP error
		h.log.DebugContext(r.Context(), "upgrade failed", slog.String("error", err.Error()))
		return
	}

	// Subscribe before greeting so every event created after the client
	// sees "connected" is delivered.
	sub := h.events.Subscribe()
	c := &conn{
		wc:           wc,
		sub:          sub,
		events:       h.events,
		writeTimeout: h.opts.WriteTimeout,
		pingInterval: h.opts.PingInterval,
		log:          h.log.With(slog.Uint64("subscription_id", sub.ID())),
	}
	c.log.DebugContext(r.Context(), "client connected", slog.String("remote_addr", r.RemoteAddr))

	if err := c.write(domain.Event{Kind: domain.EventConnected}); err != nil {
		h.events.Fail(sub, err)
		wc.Close()
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop()
	h.events.Unsubscribe(sub)
	<-done
	c.log.DebugContext(r.Context(), "client disconnected")
}

type conn struct {
	wc           *websocket.Conn
	sub          *notify.Subscription
	events       notifier
	writeTimeout time.Duration
	pingInterval time.Duration
	log          *slog.Logger
}

func (c *conn) write(ev domain.Event) error {
	c.wc.SetWriteDeadline(time.Now().Add(c.writeTimeout)) //nolint:errcheck
	return c.wc.WriteJSON(ev)
}

// writeLoop delivers events until the subscription ends or a write fails.
func (c *conn) writeLoop() {
	defer c.wc.Close()

	t := time.NewTicker(c.pingInterval)
	defer t.Stop()

	for {
		select {
		case ev, ok := <-c.sub.Events():
			if !ok {
				c.wc.SetWriteDeadline(time.Now().Add(c.writeTimeout)) //nolint:errcheck
				c.wc.WriteMessage(websocket.CloseMessage, //nolint:errcheck
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.write(ev); err != nil {
				c.events.Fail(c.sub, err)
				return
			}
		case <-t.C:
			c.wc.SetWriteDeadline(time.Now().Add(c.writeTimeout)) //nolint:errcheck
			if err := c.wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.events.Fail(c.sub, err)
				return
			}
		}
	}
}

// readLoop discards client messages and returns when the peer goes away or
// stops answering pings.
func (c *conn) readLoop() {
	deadline := 2 * c.pingInterval
	c.wc.SetReadDeadline(time.Now().Add(deadline)) //nolint:errcheck
	c.wc.SetPongHandler(func(string) error {
		return c.wc.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		if _, _, err := c.wc.NextReader(); err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) {
				c.log.Debug("read loop ended", slog.String("error", err.Error()))
			}
			return
		}
	}
}
