// Package ws fans ChangeEvents out to connected clients over websockets.
// Each board gets one upstream broadcast subscription shared by all of its
// connections; a slow client is dropped rather than allowed to stall the
// board's feed.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"boardroom/internal/delivery/http/helpers"
	"boardroom/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Hub multiplexes board broadcast subscriptions onto websocket connections.
type Hub struct {
	logger     *slog.Logger
	subscriber domain.BroadcastSubscriber
	verifier   domain.TokenVerifier
	upgrader   websocket.Upgrader

	mu     sync.Mutex
	boards map[string]*boardFeed
}

// boardFeed is one upstream subscription plus the connections it feeds.
type boardFeed struct {
	sub     domain.BroadcastSubscription
	done    <-chan struct{}
	cancel  context.CancelFunc
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger *slog.Logger, subscriber domain.BroadcastSubscriber, verifier domain.TokenVerifier) *Hub {
	return &Hub{
		logger:     logger,
		subscriber: subscriber,
		verifier:   verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Session tokens gate the stream, not origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		boards: make(map[string]*boardFeed),
	}
}

// Stream handles GET /boards/{boardID}/stream. The session token is passed as
// the "token" query parameter because browsers cannot set headers on websocket
// upgrades.
func (h *Hub) Stream(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing token")
		return
	}
	tokenBoardID, _, err := h.verifier.Verify(token)
	if err != nil || tokenBoardID != boardID {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if err := h.attach(boardID, c); err != nil {
		h.logger.ErrorContext(r.Context(), "broadcast subscribe failed", "board_id", boardID, "error", err)
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(boardID, c)
}

// attach registers the client with the board's feed, opening the upstream
// subscription if this is the board's first connection.
func (h *Hub) attach(boardID string, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	feed, ok := h.boards[boardID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		sub, err := h.subscriber.Subscribe(ctx, boardID)
		if err != nil {
			cancel()
			return err
		}
		feed = &boardFeed{sub: sub, done: ctx.Done(), cancel: cancel, clients: make(map[*client]struct{})}
		h.boards[boardID] = feed
		go h.pump(boardID, feed)
	}
	feed.clients[c] = struct{}{}
	return nil
}

// detach removes the client and tears the feed down when it was the last one.
func (h *Hub) detach(boardID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	feed, ok := h.boards[boardID]
	if !ok {
		return
	}
	if _, ok := feed.clients[c]; !ok {
		return
	}
	delete(feed.clients, c)
	close(c.send)
	if len(feed.clients) == 0 {
		feed.cancel()
		_ = feed.sub.Close()
		delete(h.boards, boardID)
	}
}

// pump consumes the board's upstream subscription and copies each event to
// every connected client's send buffer. A client whose buffer is full is
// dropped; it can reconnect and re-fetch the grid.
func (h *Hub) pump(boardID string, feed *boardFeed) {
	for {
		select {
		case <-feed.done:
			return
		case ev, ok := <-feed.sub.Events():
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("marshal change event", "board_id", boardID, "error", err)
				continue
			}
			h.mu.Lock()
			var slow []*client
			for c := range feed.clients {
				select {
				case c.send <- payload:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()
			for _, c := range slow {
				h.logger.Warn("dropping slow websocket client", "board_id", boardID)
				h.detach(boardID, c)
				_ = c.conn.Close()
			}
		case err, ok := <-feed.sub.Errors():
			if !ok {
				return
			}
			h.logger.Error("board feed error", "board_id", boardID, "error", err)
		}
	}
}

// readPump blocks until the connection closes. Clients never send events over
// the stream; mutations go through the HTTP API.
func (h *Hub) readPump(boardID string, c *client) {
	defer func() {
		h.detach(boardID, c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
