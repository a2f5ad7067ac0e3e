package controllers

import (
	"log/slog"
	"net/http"

	"boardroom/internal/delivery/http/helpers"
	"boardroom/internal/delivery/http/middleware"
	"boardroom/internal/domain"
)

// CreateItemRequest is the request body for POST /items. The board is taken
// from the session token, not the body.
type CreateItemRequest struct {
	Title           string `json:"title"`
	Presenter       string `json:"presenter"`
	NeedsDisplay    bool   `json:"needs_display"`
	NeedsWhiteboard bool   `json:"needs_whiteboard"`
	RoomID          string `json:"room_id"`
	SlotID          string `json:"slot_id"`
	Override        bool   `json:"override"`
}

// Validate implements Validator.
func (c CreateItemRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.RoomID == "" {
		errs = append(errs, "room_id is required")
	}
	if c.SlotID == "" {
		errs = append(errs, "slot_id is required")
	}
	return errs
}

// UpdateItemRequest is the request body for PATCH /items/{itemID}. Absent
// fields are left unchanged; room_id and slot_id must be sent together.
type UpdateItemRequest struct {
	Title           *string `json:"title"`
	Presenter       *string `json:"presenter"`
	NeedsDisplay    *bool   `json:"needs_display"`
	NeedsWhiteboard *bool   `json:"needs_whiteboard"`
	RoomID          *string `json:"room_id"`
	SlotID          *string `json:"slot_id"`
	Override        bool    `json:"override"`
}

// Validate implements Validator.
func (c UpdateItemRequest) Validate() []string {
	var errs []string
	if c.Title == nil && c.Presenter == nil && c.NeedsDisplay == nil &&
		c.NeedsWhiteboard == nil && c.RoomID == nil && c.SlotID == nil {
		errs = append(errs, "at least one field is required")
	}
	if (c.RoomID == nil) != (c.SlotID == nil) {
		errs = append(errs, "room_id and slot_id must be set together")
	}
	if c.Title != nil && *c.Title == "" {
		errs = append(errs, "title must not be empty")
	}
	return errs
}

// SwapItemsRequest is the request body for POST /items/swap.
type SwapItemsRequest struct {
	ItemAID string `json:"item_a_id"`
	ItemBID string `json:"item_b_id"`
}

// Validate implements Validator.
func (c SwapItemsRequest) Validate() []string {
	var errs []string
	if c.ItemAID == "" {
		errs = append(errs, "item_a_id is required")
	}
	if c.ItemBID == "" {
		errs = append(errs, "item_b_id is required")
	}
	return errs
}

// SuggestRequest is the request body for POST /boards/{boardID}/suggest.
type SuggestRequest struct {
	Title           string `json:"title"`
	Presenter       string `json:"presenter"`
	NeedsDisplay    bool   `json:"needs_display"`
	NeedsWhiteboard bool   `json:"needs_whiteboard"`
}

// Validate implements Validator.
func (c SuggestRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// SwapItemsResponse returns both items at their post-swap placements.
type SwapItemsResponse struct {
	ItemA *domain.Item `json:"item_a"`
	ItemB *domain.Item `json:"item_b"`
}

type ItemController struct {
	Logger  *slog.Logger
	Service domain.ItemService
}

func NewItemController(logger *slog.Logger, svc domain.ItemService) *ItemController {
	return &ItemController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateItem godoc
// @Summary Place a new item on the grid
// @Description Creates an item in the given cell. Fails with 409 if the cell is occupied, or if the room lacks a required resource and override is false.
// @Tags items
// @Accept json
// @Produce json
// @Param item body CreateItemRequest true "Item data and target cell"
// @Success 201 {object} helpers.APIResponse "data contains the created item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: occupied_slot or resource_mismatch"
// @Security BearerAuth
// @Router /items [post]
func (c *ItemController) CreateItem(w http.ResponseWriter, r *http.Request) {
	boardID, ok := middleware.BoardIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing session")
		return
	}
	session, _ := middleware.SessionIDFromContext(r.Context())
	var req CreateItemRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	draft := domain.ItemDraft{
		Title:           req.Title,
		Presenter:       req.Presenter,
		NeedsDisplay:    req.NeedsDisplay,
		NeedsWhiteboard: req.NeedsWhiteboard,
	}
	cell := domain.Cell{RoomID: req.RoomID, SlotID: req.SlotID}
	item, err := c.Service.CreateItem(r.Context(), boardID, draft, cell, domain.PlaceOptions{Override: req.Override}, session)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update or move an item
// @Description Applies a partial update. Sending room_id and slot_id together moves the item; the target cell must be free.
// @Tags items
// @Accept json
// @Produce json
// @Param itemID path string true "Item ID (UUID)"
// @Param item body UpdateItemRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated item"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: occupied_slot or resource_mismatch"
// @Security BearerAuth
// @Router /items/{itemID} [patch]
func (c *ItemController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	boardID, ok := middleware.BoardIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing session")
		return
	}
	itemID := r.PathValue("itemID")
	if itemID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing itemID")
		return
	}
	session, _ := middleware.SessionIDFromContext(r.Context())
	var req UpdateItemRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.ItemPatch{
		Title:           req.Title,
		Presenter:       req.Presenter,
		NeedsDisplay:    req.NeedsDisplay,
		NeedsWhiteboard: req.NeedsWhiteboard,
		RoomID:          req.RoomID,
		SlotID:          req.SlotID,
	}
	item, err := c.Service.UpdateItem(r.Context(), boardID, itemID, patch, domain.PlaceOptions{Override: req.Override}, session)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Remove an item from the grid
// @Tags items
// @Produce json
// @Param itemID path string true "Item ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /items/{itemID} [delete]
func (c *ItemController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	boardID, ok := middleware.BoardIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing session")
		return
	}
	itemID := r.PathValue("itemID")
	if itemID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing itemID")
		return
	}
	session, _ := middleware.SessionIDFromContext(r.Context())
	if err := c.Service.DeleteItem(r.Context(), boardID, itemID, session); err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SwapItems godoc
// @Summary Exchange the placements of two items
// @Description Atomically swaps the cells of two items on the same board. Either both move or neither does.
// @Tags items
// @Accept json
// @Produce json
// @Param swap body SwapItemsRequest true "Item pair"
// @Success 200 {object} helpers.APIResponse "data contains both items at their new cells"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_operation"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /items/swap [post]
func (c *ItemController) SwapItems(w http.ResponseWriter, r *http.Request) {
	boardID, ok := middleware.BoardIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing session")
		return
	}
	session, _ := middleware.SessionIDFromContext(r.Context())
	var req SwapItemsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	itemA, itemB, err := c.Service.SwapItems(r.Context(), boardID, req.ItemAID, req.ItemBID, session)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SwapItemsResponse{ItemA: itemA, ItemB: itemB})
}

// GetGrid godoc
// @Summary Fetch the full board grid
// @Description Returns the board's rooms, slots, and all placed items in one snapshot.
// @Tags grid
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the grid"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /boards/{boardID}/grid [get]
func (c *ItemController) GetGrid(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	grid, err := c.Service.Grid(r.Context(), boardID)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, grid)
}

// Suggest godoc
// @Summary Suggest a placement for an item
// @Description Asks the advisory service for a candidate cell and revalidates it against current occupancy and room resources.
// @Tags items
// @Accept json
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Param item body SuggestRequest true "Item properties"
// @Success 200 {object} helpers.APIResponse "data contains the suggested cell"
// @Failure 409 {object} helpers.APIResponse "error.code: occupied_slot or resource_mismatch"
// @Security BearerAuth
// @Router /boards/{boardID}/suggest [post]
func (c *ItemController) Suggest(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	var req SuggestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	draft := domain.ItemDraft{
		Title:           req.Title,
		Presenter:       req.Presenter,
		NeedsDisplay:    req.NeedsDisplay,
		NeedsWhiteboard: req.NeedsWhiteboard,
	}
	cell, err := c.Service.SuggestPlacement(r.Context(), boardID, draft)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, cell)
}
