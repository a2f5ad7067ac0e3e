package postgres

import (
	"context"
	"database/sql"
	"errors"

	"boardroom/internal/domain"
)

type BoardRepository struct {
	DB *sql.DB
}

func NewBoardRepository(db *sql.DB) domain.BoardRepository {
	return &BoardRepository{
		DB: db,
	}
}

func (r *BoardRepository) Create(ctx context.Context, board *domain.Board) error {
	query := `
		INSERT INTO boards (name, access_key_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, board.Name, board.AccessKeyHash, board.CreatedAt, board.UpdatedAt).Scan(&board.ID)
}

func (r *BoardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	query := `
		SELECT id, name, access_key_hash, created_at, updated_at
		FROM boards
		WHERE id = $1
	`
	board := &domain.Board{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&board.ID, &board.Name, &board.AccessKeyHash, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return board, nil
}
