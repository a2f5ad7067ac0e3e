package services

import (
	"context"
	"fmt"
	"time"

	"boardroom/internal/domain"
)

// fakeBoardRepo is an in-memory BoardRepository for tests.
type fakeBoardRepo struct {
	byID   map[string]*domain.Board
	nextID int
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{byID: make(map[string]*domain.Board), nextID: 1}
}

func (f *fakeBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	b.ID = fmt.Sprintf("board-%d", f.nextID)
	f.nextID++
	f.byID[b.ID] = b
	return nil
}

func (f *fakeBoardRepo) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

// fakeGridRepo is an in-memory GridRepository for tests.
type fakeGridRepo struct {
	rooms  map[string]*domain.Room
	slots  map[string]*domain.Slot
	nextID int
}

func newFakeGridRepo() *fakeGridRepo {
	return &fakeGridRepo{
		rooms: make(map[string]*domain.Room),
		slots: make(map[string]*domain.Slot),
	}
}

func (f *fakeGridRepo) CreateRoom(ctx context.Context, room *domain.Room) error {
	f.nextID++
	room.ID = fmt.Sprintf("room-%d", f.nextID)
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeGridRepo) GetRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	if r, ok := f.rooms[roomID]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGridRepo) ListRoomsByBoardID(ctx context.Context, boardID string) ([]*domain.Room, error) {
	var out []*domain.Room
	for _, r := range f.rooms {
		if r.BoardID == boardID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeGridRepo) DeleteRoom(ctx context.Context, roomID string) error {
	if _, ok := f.rooms[roomID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rooms, roomID)
	return nil
}

func (f *fakeGridRepo) CreateSlot(ctx context.Context, slot *domain.Slot) error {
	f.nextID++
	slot.ID = fmt.Sprintf("slot-%d", f.nextID)
	f.slots[slot.ID] = slot
	return nil
}

func (f *fakeGridRepo) GetSlotByID(ctx context.Context, slotID string) (*domain.Slot, error) {
	if s, ok := f.slots[slotID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGridRepo) ListSlotsByBoardID(ctx context.Context, boardID string) ([]*domain.Slot, error) {
	var out []*domain.Slot
	for _, s := range f.slots {
		if s.BoardID == boardID && s.Ordinal >= 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeGridRepo) DeleteSlot(ctx context.Context, slotID string) error {
	if _, ok := f.slots[slotID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.slots, slotID)
	return nil
}

func (f *fakeGridRepo) NextSlotOrdinal(ctx context.Context, boardID string) (int, error) {
	next := 0
	for _, s := range f.slots {
		if s.BoardID == boardID && s.Ordinal >= next {
			next = s.Ordinal + 1
		}
	}
	return next, nil
}

// addRoom and addSlot seed the fake grid directly.
func (f *fakeGridRepo) addRoom(id, boardID string, hasDisplay, hasWhiteboard bool) {
	f.rooms[id] = &domain.Room{ID: id, BoardID: boardID, Name: id, HasDisplay: hasDisplay, HasWhiteboard: hasWhiteboard}
}

func (f *fakeGridRepo) addSlot(id, boardID string, ordinal int) {
	f.slots[id] = &domain.Slot{ID: id, BoardID: boardID, Label: id, Ordinal: ordinal}
}

// fakeItemRepo is an in-memory ItemRepository enforcing cell uniqueness the
// way the real unique index does.
type fakeItemRepo struct {
	byID   map[string]*domain.Item
	nextID int
	err    error // if set, mutating calls return this error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{byID: make(map[string]*domain.Item)}
}

func (f *fakeItemRepo) occupant(roomID, slotID, excludeID string) *domain.Item {
	for _, it := range f.byID {
		if it.RoomID == roomID && it.SlotID == slotID && it.ID != excludeID {
			return it
		}
	}
	return nil
}

func (f *fakeItemRepo) Create(ctx context.Context, item *domain.Item) error {
	if f.err != nil {
		return f.err
	}
	if f.occupant(item.RoomID, item.SlotID, "") != nil {
		return &domain.OccupiedSlotError{}
	}
	f.nextID++
	item.ID = fmt.Sprintf("item-%d", f.nextID)
	f.byID[item.ID] = item
	return nil
}

func (f *fakeItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	if it, ok := f.byID[id]; ok {
		copied := *it
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeItemRepo) GetByCell(ctx context.Context, roomID, slotID string) (*domain.Item, error) {
	if it := f.occupant(roomID, slotID, ""); it != nil {
		copied := *it
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeItemRepo) Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	it, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		it.Title = *patch.Title
	}
	if patch.Presenter != nil {
		it.Presenter = *patch.Presenter
	}
	if patch.NeedsDisplay != nil {
		it.NeedsDisplay = *patch.NeedsDisplay
	}
	if patch.NeedsWhiteboard != nil {
		it.NeedsWhiteboard = *patch.NeedsWhiteboard
	}
	if patch.RoomID != nil && patch.SlotID != nil {
		if f.occupant(*patch.RoomID, *patch.SlotID, id) != nil {
			return nil, &domain.OccupiedSlotError{}
		}
		it.RoomID = *patch.RoomID
		it.SlotID = *patch.SlotID
	}
	it.UpdatedAt = time.Now()
	copied := *it
	return &copied, nil
}

func (f *fakeItemRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeItemRepo) Swap(ctx context.Context, itemAID, itemBID string) (*domain.Item, *domain.Item, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	a, okA := f.byID[itemAID]
	b, okB := f.byID[itemBID]
	if !okA || !okB {
		return nil, nil, domain.ErrNotFound
	}
	a.RoomID, a.SlotID, b.RoomID, b.SlotID = b.RoomID, b.SlotID, a.RoomID, a.SlotID
	copiedA, copiedB := *a, *b
	return &copiedA, &copiedB, nil
}

func (f *fakeItemRepo) ListByBoardID(ctx context.Context, boardID string) ([]*domain.Item, error) {
	var out []*domain.Item
	for _, it := range f.byID {
		if it.BoardID == boardID {
			copied := *it
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeAdvisor returns a fixed cell.
type fakeAdvisor struct {
	cell domain.Cell
	err  error
}

func (f *fakeAdvisor) Suggest(ctx context.Context, req domain.PlacementRequest) (domain.Cell, error) {
	return f.cell, f.err
}

// fakeBroadcaster records every published event.
type fakeBroadcaster struct {
	events []domain.ChangeEvent
	err    error
}

func (f *fakeBroadcaster) Publish(ctx context.Context, boardID string, ev domain.ChangeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

// fakeHasher does reversible "hashing" so tests can assert on stored values.
type fakeHasher struct{}

func (fakeHasher) Hash(key string) (string, error) { return "hash:" + key, nil }

func (fakeHasher) Compare(hash, key string) error {
	if hash != "hash:"+key {
		return domain.ErrUnauthorized
	}
	return nil
}

// fakeTokens issues predictable tokens.
type fakeTokens struct{}

func (fakeTokens) Issue(boardID, sessionID string, expiry time.Duration) (string, error) {
	return "token:" + boardID + ":" + sessionID, nil
}

// fakeMailer records sent mail.
type fakeMailer struct {
	to      []string
	subject []string
	err     error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.subject = append(f.subject, subject)
	return nil
}
