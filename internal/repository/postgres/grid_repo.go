package postgres

import (
	"context"
	"database/sql"
	"errors"

	"boardroom/internal/domain"
)

type GridRepository struct {
	DB *sql.DB
}

func NewGridRepository(db *sql.DB) domain.GridRepository {
	return &GridRepository{
		DB: db,
	}
}

func (r *GridRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (board_id, name, has_display, has_whiteboard, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, room.BoardID, room.Name, room.HasDisplay, room.HasWhiteboard, room.CreatedAt, room.UpdatedAt).Scan(&room.ID)
}

func (r *GridRepository) GetRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	query := `
		SELECT id, board_id, name, has_display, has_whiteboard, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`
	room := &domain.Room{}
	err := r.DB.QueryRowContext(ctx, query, roomID).Scan(&room.ID, &room.BoardID, &room.Name, &room.HasDisplay, &room.HasWhiteboard, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *GridRepository) ListRoomsByBoardID(ctx context.Context, boardID string) ([]*domain.Room, error) {
	query := `
		SELECT id, board_id, name, has_display, has_whiteboard, created_at, updated_at
		FROM rooms
		WHERE board_id = $1
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var rooms []*domain.Room
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.ID, &room.BoardID, &room.Name, &room.HasDisplay, &room.HasWhiteboard, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *GridRepository) DeleteRoom(ctx context.Context, roomID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GridRepository) CreateSlot(ctx context.Context, slot *domain.Slot) error {
	query := `
		INSERT INTO slots (board_id, label, starts_at, ends_at, ordinal, highlighted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, slot.BoardID, slot.Label, slot.StartsAt, slot.EndsAt, slot.Ordinal, slot.Highlighted, slot.CreatedAt, slot.UpdatedAt).Scan(&slot.ID)
}

func (r *GridRepository) GetSlotByID(ctx context.Context, slotID string) (*domain.Slot, error) {
	query := `
		SELECT id, board_id, label, starts_at, ends_at, ordinal, highlighted, created_at, updated_at
		FROM slots
		WHERE id = $1
	`
	slot := &domain.Slot{}
	err := r.DB.QueryRowContext(ctx, query, slotID).Scan(&slot.ID, &slot.BoardID, &slot.Label, &slot.StartsAt, &slot.EndsAt, &slot.Ordinal, &slot.Highlighted, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return slot, nil
}

// ListSlotsByBoardID returns the board's slots in display order. Placeholder
// slots reserved by in-flight swap transactions are excluded.
func (r *GridRepository) ListSlotsByBoardID(ctx context.Context, boardID string) ([]*domain.Slot, error) {
	query := `
		SELECT id, board_id, label, starts_at, ends_at, ordinal, highlighted, created_at, updated_at
		FROM slots
		WHERE board_id = $1 AND ordinal >= 0
		ORDER BY ordinal, starts_at
	`
	rows, err := r.DB.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []*domain.Slot
	for rows.Next() {
		slot := &domain.Slot{}
		if err := rows.Scan(&slot.ID, &slot.BoardID, &slot.Label, &slot.StartsAt, &slot.EndsAt, &slot.Ordinal, &slot.Highlighted, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *GridRepository) DeleteSlot(ctx context.Context, slotID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, slotID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReferenced
		}
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GridRepository) NextSlotOrdinal(ctx context.Context, boardID string) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(ordinal), -1) + 1 FROM slots WHERE board_id = $1 AND ordinal >= 0`
	if err := r.DB.QueryRowContext(ctx, query, boardID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}
