package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"boardroom/internal/domain"
)

const itemColumns = `id, board_id, title, presenter, needs_display, needs_whiteboard, room_id, slot_id, created_at, updated_at`

type ItemRepository struct {
	DB *sql.DB
}

func NewItemRepository(db *sql.DB) domain.ItemRepository {
	return &ItemRepository{
		DB: db,
	}
}

func scanItem(row *sql.Row) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.BoardID, &item.Title, &item.Presenter, &item.NeedsDisplay, &item.NeedsWhiteboard, &item.RoomID, &item.SlotID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (board_id, title, presenter, needs_display, needs_whiteboard, room_id, slot_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		item.BoardID, item.Title, item.Presenter, item.NeedsDisplay, item.NeedsWhiteboard,
		item.RoomID, item.SlotID, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.OccupiedSlotError{}
		}
		return err
	}
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(r.DB.QueryRowContext(ctx, query, id))
}

func (r *ItemRepository) GetByCell(ctx context.Context, roomID, slotID string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE room_id = $1 AND slot_id = $2`
	return scanItem(r.DB.QueryRowContext(ctx, query, roomID, slotID))
}

func (r *ItemRepository) Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *patch.Title)
		n++
	}
	if patch.Presenter != nil {
		setClauses = append(setClauses, fmt.Sprintf("presenter = $%d", n))
		args = append(args, *patch.Presenter)
		n++
	}
	if patch.NeedsDisplay != nil {
		setClauses = append(setClauses, fmt.Sprintf("needs_display = $%d", n))
		args = append(args, *patch.NeedsDisplay)
		n++
	}
	if patch.NeedsWhiteboard != nil {
		setClauses = append(setClauses, fmt.Sprintf("needs_whiteboard = $%d", n))
		args = append(args, *patch.NeedsWhiteboard)
		n++
	}
	if patch.RoomID != nil {
		setClauses = append(setClauses, fmt.Sprintf("room_id = $%d", n))
		args = append(args, *patch.RoomID)
		n++
	}
	if patch.SlotID != nil {
		setClauses = append(setClauses, fmt.Sprintf("slot_id = $%d", n))
		args = append(args, *patch.SlotID)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE items SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, itemColumns)
	item, err := scanItem(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.OccupiedSlotError{}
		}
		return nil, err
	}
	return item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) ListByBoardID(ctx context.Context, boardID string) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE board_id = $1 ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		if err := rows.Scan(&item.ID, &item.BoardID, &item.Title, &item.Presenter, &item.NeedsDisplay, &item.NeedsWhiteboard, &item.RoomID, &item.SlotID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Swap exchanges the placements of two items in a single transaction.
//
// The unique index on (room_id, slot_id) forbids a direct two-step exchange:
// the first move would land on the other item's still-occupied cell. Instead,
// a disposable placeholder slot is reserved for the duration of the
// transaction and item A is relocated through it in three phases:
//
//	A -> (roomB, placeholder)
//	B -> A's original cell
//	A -> B's original cell
//
// If any phase fails the transaction rolls back and both items keep their
// original placements; no reader ever observes the placeholder.
func (r *ItemRepository) Swap(ctx context.Context, itemAID, itemBID string) (*domain.Item, *domain.Item, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin swap transaction: %w", err)
	}
	defer tx.Rollback()

	a, err := getItemForUpdate(ctx, tx, itemAID)
	if err != nil {
		return nil, nil, err
	}
	b, err := getItemForUpdate(ctx, tx, itemBID)
	if err != nil {
		return nil, nil, err
	}

	placeholderID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO slots (id, board_id, label, starts_at, ends_at, ordinal, highlighted, created_at, updated_at)
		VALUES ($1, $2, '', NOW(), NOW(), $3, false, NOW(), NOW())
	`, placeholderID, a.BoardID, domain.PlaceholderOrdinal)
	if err != nil {
		return nil, nil, fmt.Errorf("reserve placeholder slot: %w", err)
	}

	if err := moveItem(ctx, tx, a.ID, b.RoomID, placeholderID); err != nil {
		return nil, nil, fmt.Errorf("park first item: %w", err)
	}
	if err := moveItem(ctx, tx, b.ID, a.RoomID, a.SlotID); err != nil {
		return nil, nil, fmt.Errorf("move second item: %w", err)
	}
	if err := moveItem(ctx, tx, a.ID, b.RoomID, b.SlotID); err != nil {
		return nil, nil, fmt.Errorf("move first item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, placeholderID); err != nil {
		return nil, nil, fmt.Errorf("release placeholder slot: %w", err)
	}

	a, err = getItemTx(ctx, tx, itemAID)
	if err != nil {
		return nil, nil, err
	}
	b, err = getItemTx(ctx, tx, itemBID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit swap transaction: %w", err)
	}
	return a, b, nil
}

func getItemForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	return scanItem(tx.QueryRowContext(ctx, query, id))
}

func getItemTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(tx.QueryRowContext(ctx, query, id))
}

func moveItem(ctx context.Context, tx *sql.Tx, id, roomID, slotID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE items SET room_id = $1, slot_id = $2, updated_at = NOW() WHERE id = $3`, roomID, slotID, id)
	return err
}
