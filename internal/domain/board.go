package domain

import (
	"context"
	"time"
)

// Board is the aggregate that scopes rooms, slots, items, and the broadcast topic.
type Board struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AccessKeyHash string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewBoard returns a new Board with the given fields. ID is typically set by the repository on create.
func NewBoard(name, accessKeyHash string, createdAt, updatedAt time.Time) *Board {
	return &Board{
		Name:          name,
		AccessKeyHash: accessKeyHash,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// BoardSession is a per-connection identity issued when a client joins a board.
// SessionID tags every ChangeEvent the client originates and is used purely for
// echo suppression; the token authorizes mutations on the board.
type BoardSession struct {
	BoardID   string `json:"board_id"`
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// BoardRepository defines the interface for board storage
type BoardRepository interface {
	Create(ctx context.Context, board *Board) error
	GetByID(ctx context.Context, id string) (*Board, error)
}

// BoardService defines board lifecycle and static grid configuration operations.
type BoardService interface {
	// CreateBoard creates a board and returns it together with the plaintext
	// access key. The key is returned exactly once; only its hash is stored.
	CreateBoard(ctx context.Context, name string) (*Board, string, error)
	// OpenSession verifies the board access key and issues a fresh client
	// session id plus a token authorizing mutations on the board.
	OpenSession(ctx context.Context, boardID, accessKey string) (*BoardSession, error)
	// InviteOperator emails a join link for the board.
	InviteOperator(ctx context.Context, boardID, email string) error

	CreateRoom(ctx context.Context, boardID, name string, hasDisplay, hasWhiteboard bool) (*Room, error)
	CreateSlot(ctx context.Context, boardID string, startsAt, endsAt time.Time, highlighted bool) (*Slot, error)
	ListRooms(ctx context.Context, boardID string) ([]*Room, error)
	ListSlots(ctx context.Context, boardID string) ([]*Slot, error)
	DeleteRoom(ctx context.Context, roomID string) error
	DeleteSlot(ctx context.Context, slotID string) error
}
