package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boardroom/internal/delivery/http/helpers"
	"boardroom/internal/delivery/http/middleware"
	"boardroom/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeBoardService implements domain.BoardService for handler tests.
type fakeBoardService struct {
	createBoardErr   error
	createBoardKey   string
	openSessionErr   error
	inviteErr        error
	createRoomErr    error
	createSlotErr    error
	deleteRoomErr    error
	deleteSlotErr    error
	lastBoardName    string
	lastAccessKey    string
	lastInviteEmail  string
	lastRoomName     string
	lastSlotStartsAt time.Time
}

func (f *fakeBoardService) CreateBoard(ctx context.Context, name string) (*domain.Board, string, error) {
	f.lastBoardName = name
	if f.createBoardErr != nil {
		return nil, "", f.createBoardErr
	}
	return &domain.Board{ID: "board-1", Name: name}, f.createBoardKey, nil
}

func (f *fakeBoardService) OpenSession(ctx context.Context, boardID, accessKey string) (*domain.BoardSession, error) {
	f.lastAccessKey = accessKey
	if f.openSessionErr != nil {
		return nil, f.openSessionErr
	}
	return &domain.BoardSession{BoardID: boardID, SessionID: "session-1", Token: "token-1"}, nil
}

func (f *fakeBoardService) InviteOperator(ctx context.Context, boardID, email string) error {
	f.lastInviteEmail = email
	return f.inviteErr
}

func (f *fakeBoardService) CreateRoom(ctx context.Context, boardID, name string, hasDisplay, hasWhiteboard bool) (*domain.Room, error) {
	f.lastRoomName = name
	if f.createRoomErr != nil {
		return nil, f.createRoomErr
	}
	return &domain.Room{ID: "room-1", BoardID: boardID, Name: name, HasDisplay: hasDisplay, HasWhiteboard: hasWhiteboard}, nil
}

func (f *fakeBoardService) CreateSlot(ctx context.Context, boardID string, startsAt, endsAt time.Time, highlighted bool) (*domain.Slot, error) {
	f.lastSlotStartsAt = startsAt
	if f.createSlotErr != nil {
		return nil, f.createSlotErr
	}
	return &domain.Slot{ID: "slot-1", BoardID: boardID, StartsAt: startsAt, EndsAt: endsAt, Highlighted: highlighted}, nil
}

func (f *fakeBoardService) ListRooms(ctx context.Context, boardID string) ([]*domain.Room, error) {
	return []*domain.Room{}, nil
}

func (f *fakeBoardService) ListSlots(ctx context.Context, boardID string) ([]*domain.Slot, error) {
	return []*domain.Slot{}, nil
}

func (f *fakeBoardService) DeleteRoom(ctx context.Context, roomID string) error { return f.deleteRoomErr }
func (f *fakeBoardService) DeleteSlot(ctx context.Context, slotID string) error { return f.deleteSlotErr }

// fakeItemSvc implements domain.ItemService for handler tests.
type fakeItemSvc struct {
	createErr    error
	updateErr    error
	deleteErr    error
	swapErr      error
	gridErr      error
	suggestErr   error
	suggestCell  domain.Cell
	lastSession  string
	lastBoardID  string
	lastOverride bool
	lastPatch    domain.ItemPatch
}

func (f *fakeItemSvc) CreateItem(ctx context.Context, boardID string, draft domain.ItemDraft, cell domain.Cell, opts domain.PlaceOptions, session string) (*domain.Item, error) {
	f.lastBoardID, f.lastSession, f.lastOverride = boardID, session, opts.Override
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Item{ID: "item-1", BoardID: boardID, Title: draft.Title, RoomID: cell.RoomID, SlotID: cell.SlotID}, nil
}

func (f *fakeItemSvc) UpdateItem(ctx context.Context, boardID, itemID string, patch domain.ItemPatch, opts domain.PlaceOptions, session string) (*domain.Item, error) {
	f.lastBoardID, f.lastSession, f.lastPatch, f.lastOverride = boardID, session, patch, opts.Override
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	item := &domain.Item{ID: itemID, BoardID: boardID}
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	return item, nil
}

func (f *fakeItemSvc) DeleteItem(ctx context.Context, boardID, itemID string, session string) error {
	f.lastBoardID, f.lastSession = boardID, session
	return f.deleteErr
}

func (f *fakeItemSvc) SwapItems(ctx context.Context, boardID, itemAID, itemBID string, session string) (*domain.Item, *domain.Item, error) {
	f.lastBoardID, f.lastSession = boardID, session
	if f.swapErr != nil {
		return nil, nil, f.swapErr
	}
	return &domain.Item{ID: itemAID, BoardID: boardID}, &domain.Item{ID: itemBID, BoardID: boardID}, nil
}

func (f *fakeItemSvc) Grid(ctx context.Context, boardID string) (*domain.Grid, error) {
	f.lastBoardID = boardID
	if f.gridErr != nil {
		return nil, f.gridErr
	}
	return &domain.Grid{Rooms: []*domain.Room{}, Slots: []*domain.Slot{}, Items: []*domain.Item{}}, nil
}

func (f *fakeItemSvc) SuggestPlacement(ctx context.Context, boardID string, draft domain.ItemDraft) (domain.Cell, error) {
	f.lastBoardID = boardID
	if f.suggestErr != nil {
		return domain.Cell{}, f.suggestErr
	}
	return f.suggestCell, nil
}

// doRequest executes a handler with an optional path value and an authorized
// board session in the context.
func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, body any, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	req = req.WithContext(middleware.SetBoardSession(req.Context(), "board-1", "session-1"))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
}
