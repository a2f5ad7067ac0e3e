package domain

import "context"

// PlacementRequest is the state handed to the advisory placement service:
// the item's requirements plus the current grid occupancy.
type PlacementRequest struct {
	BoardID         string  `json:"board_id"`
	NeedsDisplay    bool    `json:"needs_display"`
	NeedsWhiteboard bool    `json:"needs_whiteboard"`
	Rooms           []*Room `json:"rooms"`
	Slots           []*Slot `json:"slots"`
	Items           []*Item `json:"items"`
}

// PlacementAdvisor proposes a candidate cell for an item. The suggestion is
// advisory only: callers revalidate it through the same conflict checks as a
// manual placement before committing.
type PlacementAdvisor interface {
	Suggest(ctx context.Context, req PlacementRequest) (Cell, error)
}
