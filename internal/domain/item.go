package domain

import (
	"context"
	"time"
)

// Cell is the addressable pair of a room and a time slot. At most one item
// occupies a cell at any committed instant, enforced by a unique index on
// (room_id, slot_id) in the store.
type Cell struct {
	RoomID string `json:"room_id"`
	SlotID string `json:"slot_id"`
}

// Item is a talk or session card placed on the board grid.
type Item struct {
	ID              string    `json:"id"`
	BoardID         string    `json:"board_id"`
	Title           string    `json:"title"`
	Presenter       string    `json:"presenter,omitempty"`
	NeedsDisplay    bool      `json:"needs_display"`
	NeedsWhiteboard bool      `json:"needs_whiteboard"`
	RoomID          string    `json:"room_id"`
	SlotID          string    `json:"slot_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Cell returns the item's current placement.
func (i *Item) Cell() Cell {
	return Cell{RoomID: i.RoomID, SlotID: i.SlotID}
}

// ItemDraft carries the operator-supplied fields of a new item.
type ItemDraft struct {
	Title           string `json:"title"`
	Presenter       string `json:"presenter,omitempty"`
	NeedsDisplay    bool   `json:"needs_display"`
	NeedsWhiteboard bool   `json:"needs_whiteboard"`
}

// ItemPatch is a partial update. Nil fields are left unchanged. RoomID and
// SlotID must be set together: a move always targets a full cell.
type ItemPatch struct {
	Title           *string `json:"title,omitempty"`
	Presenter       *string `json:"presenter,omitempty"`
	NeedsDisplay    *bool   `json:"needs_display,omitempty"`
	NeedsWhiteboard *bool   `json:"needs_whiteboard,omitempty"`
	RoomID          *string `json:"room_id,omitempty"`
	SlotID          *string `json:"slot_id,omitempty"`
}

// PlaceOptions tunes placement validation. Override skips the room capability
// check, letting an operator place a resource-requiring item anyway.
type PlaceOptions struct {
	Override bool
}

// ItemRepository defines storage operations for items, including the atomic
// placement exchange.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	// GetByCell returns the item at (roomID, slotID), or ErrNotFound if the cell is free.
	GetByCell(ctx context.Context, roomID, slotID string) (*Item, error)
	Update(ctx context.Context, id string, patch ItemPatch) (*Item, error)
	Delete(ctx context.Context, id string) error
	// Swap atomically exchanges the placements of two items. Either both items
	// end up with each other's original cell, or neither moves.
	Swap(ctx context.Context, itemAID, itemBID string) (*Item, *Item, error)
	ListByBoardID(ctx context.Context, boardID string) ([]*Item, error)
}

// ItemService defines the authoritative mutation operations on placed items.
// Every mutation is scoped to a board: items belonging to a different board
// are treated as absent. The session argument identifies the originating
// client and tags the ChangeEvent published after a successful commit.
type ItemService interface {
	CreateItem(ctx context.Context, boardID string, draft ItemDraft, cell Cell, opts PlaceOptions, session string) (*Item, error)
	UpdateItem(ctx context.Context, boardID, itemID string, patch ItemPatch, opts PlaceOptions, session string) (*Item, error)
	DeleteItem(ctx context.Context, boardID, itemID string, session string) error
	SwapItems(ctx context.Context, boardID, itemAID, itemBID string, session string) (*Item, *Item, error)
	Grid(ctx context.Context, boardID string) (*Grid, error)
	// SuggestPlacement asks the advisory service for a candidate cell and
	// revalidates it through the same checks as a manual drop target.
	SuggestPlacement(ctx context.Context, boardID string, draft ItemDraft) (Cell, error)
}
