package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boardroom/internal/adapters/auth"
	"boardroom/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeSubscriber hands out scripted subscriptions.
type fakeSubscriber struct {
	events chan domain.ChangeEvent
	errs   chan error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		events: make(chan domain.ChangeEvent, 16),
		errs:   make(chan error, 16),
	}
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, boardID string) (domain.BroadcastSubscription, error) {
	return &fakeSubscription{f: f}, nil
}

type fakeSubscription struct {
	f *fakeSubscriber
}

func (s *fakeSubscription) Events() <-chan domain.ChangeEvent { return s.f.events }
func (s *fakeSubscription) Errors() <-chan error              { return s.f.errs }
func (s *fakeSubscription) Close() error                      { return nil }

func newStreamServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boards/{boardID}/stream", hub.Stream)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, boardID, token string) string {
	return strings.Replace(srv.URL, "http://", "ws://", 1) + "/boards/" + boardID + "/stream?token=" + token
}

func TestHub_StreamDeliversEvents(t *testing.T) {
	tokens := auth.NewJWTTokens("test-secret")
	sub := newFakeSubscriber()
	hub := NewHub(testLogger, sub, tokens)
	srv := newStreamServer(t, hub)

	token, err := tokens.Issue("board-1", "session-1", time.Hour)
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "board-1", token), nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	sent := domain.ChangeEvent{
		Type:          domain.ChangeCreated,
		ItemID:        "item-1",
		OriginSession: "session-2",
		Timestamp:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Snapshot:      &domain.Item{ID: "item-1", Title: "Talk"},
	}
	sub.events <- sent

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.ChangeEvent
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, sent.Type, got.Type)
	assert.Equal(t, sent.ItemID, got.ItemID)
	assert.Equal(t, sent.OriginSession, got.OriginSession)
	require.NotNil(t, got.Snapshot)
	assert.Equal(t, "Talk", got.Snapshot.Title)
}

func TestHub_StreamFansOutToAllConnections(t *testing.T) {
	tokens := auth.NewJWTTokens("test-secret")
	sub := newFakeSubscriber()
	hub := NewHub(testLogger, sub, tokens)
	srv := newStreamServer(t, hub)

	token, err := tokens.Issue("board-1", "session-1", time.Hour)
	require.NoError(t, err)

	first, resp1, err := websocket.DefaultDialer.Dial(wsURL(srv, "board-1", token), nil)
	require.NoError(t, err)
	defer first.Close()
	defer resp1.Body.Close()
	second, resp2, err := websocket.DefaultDialer.Dial(wsURL(srv, "board-1", token), nil)
	require.NoError(t, err)
	defer second.Close()
	defer resp2.Body.Close()

	sub.events <- domain.ChangeEvent{Type: domain.ChangeDeleted, ItemID: "item-1"}

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		var got domain.ChangeEvent
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, domain.ChangeDeleted, got.Type)
	}
}

func TestHub_StreamRejectsBadTokens(t *testing.T) {
	tokens := auth.NewJWTTokens("test-secret")
	hub := NewHub(testLogger, newFakeSubscriber(), tokens)
	srv := newStreamServer(t, hub)

	t.Run("missing token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/boards/board-1/stream")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token for another board", func(t *testing.T) {
		token, err := tokens.Issue("board-other", "session-1", time.Hour)
		require.NoError(t, err)
		resp, err := http.Get(srv.URL + "/boards/board-1/stream?token=" + token)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/boards/board-1/stream?token=junk")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
