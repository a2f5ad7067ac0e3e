package domain

import (
	"context"
	"time"
)

// Room represents a physical room or track on the board grid.
type Room struct {
	ID            string    `json:"id"`
	BoardID       string    `json:"board_id"`
	Name          string    `json:"name"`
	HasDisplay    bool      `json:"has_display"`
	HasWhiteboard bool      `json:"has_whiteboard"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewRoom returns a new Room with the given fields. ID is typically set by the repository on create.
func NewRoom(boardID, name string, hasDisplay, hasWhiteboard bool, createdAt, updatedAt time.Time) *Room {
	return &Room{
		BoardID:       boardID,
		Name:          name,
		HasDisplay:    hasDisplay,
		HasWhiteboard: hasWhiteboard,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// PlaceholderOrdinal marks a slot as a transaction-scoped placeholder used
// while exchanging two items' placements. Placeholder slots are never listed
// and never outlive the swap transaction that created them.
const PlaceholderOrdinal = -1

// Slot represents one time column of the board grid.
type Slot struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"board_id"`
	Label       string    `json:"label"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Ordinal     int       `json:"ordinal"`
	Highlighted bool      `json:"highlighted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSlot returns a new Slot with the given fields. ID is typically set by the repository on create.
func NewSlot(boardID, label string, startsAt, endsAt time.Time, ordinal int, highlighted bool, createdAt, updatedAt time.Time) *Slot {
	return &Slot{
		BoardID:     boardID,
		Label:       label,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Ordinal:     ordinal,
		Highlighted: highlighted,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Grid bundles the full authoritative state of a board: the static room and
// slot axes plus every placed item. Clients re-fetch it to resynchronize.
type Grid struct {
	Rooms []*Room `json:"rooms"`
	Slots []*Slot `json:"slots"`
	Items []*Item `json:"items"`
}

// GridRepository defines storage for the static room and slot axes of a board.
type GridRepository interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoomByID(ctx context.Context, roomID string) (*Room, error)
	ListRoomsByBoardID(ctx context.Context, boardID string) ([]*Room, error)
	DeleteRoom(ctx context.Context, roomID string) error

	CreateSlot(ctx context.Context, slot *Slot) error
	GetSlotByID(ctx context.Context, slotID string) (*Slot, error)
	ListSlotsByBoardID(ctx context.Context, boardID string) ([]*Slot, error)
	DeleteSlot(ctx context.Context, slotID string) error
	NextSlotOrdinal(ctx context.Context, boardID string) (int, error)
}
