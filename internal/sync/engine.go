// Package sync holds the per-client engine that keeps a local cache of the
// board grid in step with the authoritative store. Mutations are applied to
// the cache optimistically and reconciled with the store's response; remote
// ChangeEvents received from the broadcast channel are applied after echo
// suppression and deduplication. The store always wins: any error restores
// the pre-mutation snapshot before it is returned to the caller.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"boardroom/internal/domain"
)

// DefaultDedupWindow is how long a delivered event's key is remembered for
// duplicate suppression.
const DefaultDedupWindow = 500 * time.Millisecond

// Options tunes an Engine. The zero value is usable.
type Options struct {
	// Session overrides the generated client session id. Tests use this to
	// impersonate another client.
	Session string
	// DedupWindow overrides DefaultDedupWindow.
	DedupWindow time.Duration
	// OnRemoteActivity, if set, is called after every applied remote event.
	// Hosting UIs use it to drive an ambient activity indicator.
	OnRemoteActivity func(domain.ChangeEvent)
	// Clock overrides time.Now for the dedup window.
	Clock func() time.Time
}

// Engine is the client-side sync component. All exported methods are safe for
// concurrent use; mutations issued concurrently are serialized, never
// interleaved, so a second mutation cannot race the first one's snapshot.
type Engine struct {
	svc        domain.ItemService
	boardID    string
	session    string
	logger     *slog.Logger
	onActivity func(domain.ChangeEvent)
	clock      func() time.Time

	mu    gosync.Mutex
	items map[string]domain.Item
	seen  *dedupWindow
}

// NewEngine creates an engine for one board and loads the initial grid state.
// The client session id is generated once here and tags every mutation the
// engine originates for the rest of its lifetime.
func NewEngine(ctx context.Context, svc domain.ItemService, boardID string, logger *slog.Logger, opts Options) (*Engine, error) {
	session := opts.Session
	if session == "" {
		session = uuid.NewString()
	}
	window := opts.DedupWindow
	if window <= 0 {
		window = DefaultDedupWindow
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	e := &Engine{
		svc:        svc,
		boardID:    boardID,
		session:    session,
		logger:     logger,
		onActivity: opts.OnRemoteActivity,
		clock:      clock,
		items:      make(map[string]domain.Item),
		seen:       newDedupWindow(window),
	}
	if err := e.Resync(ctx); err != nil {
		return nil, fmt.Errorf("initial state load: %w", err)
	}
	return e, nil
}

// Session returns the client session id attached to this engine's mutations.
func (e *Engine) Session() string {
	return e.session
}

// Items returns a copy of the cached items, ordered by id.
func (e *Engine) Items() []domain.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Item, 0, len(e.items))
	for _, item := range e.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Item returns the cached item with the given id.
func (e *Engine) Item(id string) (domain.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.items[id]
	return item, ok
}

func (e *Engine) snapshotLocked() map[string]domain.Item {
	snap := make(map[string]domain.Item, len(e.items))
	for id, item := range e.items {
		snap[id] = item
	}
	return snap
}

// Create optimistically inserts the item at the target cell, then reconciles
// the cache with the store's response. On failure the cache is restored to
// the pre-mutation snapshot before the error is returned.
func (e *Engine) Create(ctx context.Context, draft domain.ItemDraft, cell domain.Cell, opts domain.PlaceOptions) (*domain.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.snapshotLocked()
	tempID := "pending-" + uuid.NewString()
	e.items[tempID] = domain.Item{
		ID:              tempID,
		BoardID:         e.boardID,
		Title:           draft.Title,
		Presenter:       draft.Presenter,
		NeedsDisplay:    draft.NeedsDisplay,
		NeedsWhiteboard: draft.NeedsWhiteboard,
		RoomID:          cell.RoomID,
		SlotID:          cell.SlotID,
	}

	item, err := e.svc.CreateItem(ctx, e.boardID, draft, cell, opts, e.session)
	if err != nil {
		e.items = snapshot
		return nil, err
	}
	delete(e.items, tempID)
	e.items[item.ID] = *item
	return item, nil
}

// Drop moves an item to the target cell. This is the handler behind the
// interaction adapter's onDrop intent.
func (e *Engine) Drop(ctx context.Context, itemID, roomID, slotID string, opts domain.PlaceOptions) (*domain.Item, error) {
	return e.Update(ctx, itemID, domain.ItemPatch{RoomID: &roomID, SlotID: &slotID}, opts)
}

// Update applies the patch optimistically and reconciles with the store.
func (e *Engine) Update(ctx context.Context, itemID string, patch domain.ItemPatch, opts domain.PlaceOptions) (*domain.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.snapshotLocked()
	if cached, ok := e.items[itemID]; ok {
		e.items[itemID] = patched(cached, patch)
	}

	item, err := e.svc.UpdateItem(ctx, e.boardID, itemID, patch, opts, e.session)
	if err != nil {
		e.items = snapshot
		return nil, err
	}
	e.items[item.ID] = *item
	return item, nil
}

// Delete removes the item optimistically and confirms with the store.
func (e *Engine) Delete(ctx context.Context, itemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.snapshotLocked()
	delete(e.items, itemID)

	if err := e.svc.DeleteItem(ctx, e.boardID, itemID, e.session); err != nil {
		e.items = snapshot
		return err
	}
	return nil
}

// Swap exchanges two items' cells optimistically, then reconciles both with
// the store's post-swap state. This is the handler behind the interaction
// adapter's onSwapDetected intent.
func (e *Engine) Swap(ctx context.Context, itemAID, itemBID string) (*domain.Item, *domain.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.snapshotLocked()
	a, okA := e.items[itemAID]
	b, okB := e.items[itemBID]
	if okA && okB {
		a.RoomID, a.SlotID, b.RoomID, b.SlotID = b.RoomID, b.SlotID, a.RoomID, a.SlotID
		e.items[itemAID] = a
		e.items[itemBID] = b
	}

	newA, newB, err := e.svc.SwapItems(ctx, e.boardID, itemAID, itemBID, e.session)
	if err != nil {
		e.items = snapshot
		return nil, nil, err
	}
	e.items[newA.ID] = *newA
	e.items[newB.ID] = *newB
	return newA, newB, nil
}

// ApplyRemote applies a ChangeEvent received from the broadcast channel.
// The engine's own echoes are discarded, as are duplicate deliveries within
// the dedup window. Swapped events trigger a full re-fetch instead of a
// partial patch, because two interdependent placements changed atomically.
func (e *Engine) ApplyRemote(ctx context.Context, ev domain.ChangeEvent) {
	if ev.OriginSession == e.session {
		return
	}
	if !e.seen.observe(dedupKey(ev), e.clock()) {
		return
	}

	switch ev.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		if ev.Snapshot != nil {
			e.mu.Lock()
			e.items[ev.Snapshot.ID] = *ev.Snapshot
			e.mu.Unlock()
		}
	case domain.ChangeDeleted:
		e.mu.Lock()
		delete(e.items, ev.ItemID)
		e.mu.Unlock()
	case domain.ChangeSwapped:
		if err := e.Resync(ctx); err != nil {
			e.logger.WarnContext(ctx, "re-fetch after remote swap failed", "board_id", e.boardID, "err", err)
		}
	}

	if e.onActivity != nil {
		e.onActivity(ev)
	}
}

// Resync replaces the cache with the store's full state. This is the
// consistency backstop for missed or out-of-order broadcast deliveries;
// hosts call it on reconnect or view focus.
func (e *Engine) Resync(ctx context.Context) error {
	grid, err := e.svc.Grid(ctx, e.boardID)
	if err != nil {
		return fmt.Errorf("fetch grid: %w", err)
	}
	fresh := make(map[string]domain.Item, len(grid.Items))
	for _, item := range grid.Items {
		fresh[item.ID] = *item
	}
	e.mu.Lock()
	e.items = fresh
	e.mu.Unlock()
	return nil
}

// Run consumes a broadcast subscription until ctx is cancelled or the
// subscription closes. Subscription errors are logged and tolerated; a
// disconnected client simply misses events until the next Resync.
func (e *Engine) Run(ctx context.Context, sub domain.BroadcastSubscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			e.ApplyRemote(ctx, ev)
		case err, ok := <-sub.Errors():
			if !ok {
				return
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				e.logger.WarnContext(ctx, "broadcast delivery error", "board_id", e.boardID, "err", err)
			}
		}
	}
}

func patched(item domain.Item, patch domain.ItemPatch) domain.Item {
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Presenter != nil {
		item.Presenter = *patch.Presenter
	}
	if patch.NeedsDisplay != nil {
		item.NeedsDisplay = *patch.NeedsDisplay
	}
	if patch.NeedsWhiteboard != nil {
		item.NeedsWhiteboard = *patch.NeedsWhiteboard
	}
	if patch.RoomID != nil {
		item.RoomID = *patch.RoomID
	}
	if patch.SlotID != nil {
		item.SlotID = *patch.SlotID
	}
	return item
}
