package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// schema is applied idempotently at startup. The unique index on
// (room_id, slot_id) is the sole arbiter of conflicting concurrent
// placements; application code never takes locks to coordinate them.
const schema = `
CREATE TABLE IF NOT EXISTS boards (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name text NOT NULL,
	access_key_hash text NOT NULL,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	board_id uuid NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	name text NOT NULL,
	has_display boolean NOT NULL DEFAULT false,
	has_whiteboard boolean NOT NULL DEFAULT false,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS slots (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	board_id uuid NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	label text NOT NULL,
	starts_at timestamptz NOT NULL,
	ends_at timestamptz NOT NULL,
	ordinal integer NOT NULL,
	highlighted boolean NOT NULL DEFAULT false,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	board_id uuid NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	title text NOT NULL,
	presenter text NOT NULL DEFAULT '',
	needs_display boolean NOT NULL DEFAULT false,
	needs_whiteboard boolean NOT NULL DEFAULT false,
	room_id uuid NOT NULL REFERENCES rooms(id) ON DELETE RESTRICT,
	slot_id uuid NOT NULL REFERENCES slots(id) ON DELETE RESTRICT,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS items_room_slot_key ON items (room_id, slot_id);
`

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a Postgres foreign key constraint violation.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
