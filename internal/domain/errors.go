package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a board, room, slot, or item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation is returned for requests that are rejected before any
	// store call, such as swapping an item with itself.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrUnauthorized is returned when a board access key or token does not check out.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrReferenced is returned when deleting a room or slot that still has items placed in it.
	ErrReferenced = errors.New("still referenced by items")
)

// OccupiedSlotError reports a placement that collides with an existing item.
// Conflicting is the item already occupying the target cell, when known.
type OccupiedSlotError struct {
	Conflicting *Item
}

func (e *OccupiedSlotError) Error() string {
	if e.Conflicting != nil {
		return fmt.Sprintf("slot already occupied by %q", e.Conflicting.Title)
	}
	return "slot already occupied"
}

// ResourceMismatchError reports capabilities an item requires that the target room lacks.
// It is a warning: callers may retry with the override flag set.
type ResourceMismatchError struct {
	Missing []string
}

func (e *ResourceMismatchError) Error() string {
	return "room lacks required resources: " + strings.Join(e.Missing, ", ")
}
