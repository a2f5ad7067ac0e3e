package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"boardroom/internal/delivery/http/helpers"
	"boardroom/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// CreateBoardRequest is the request body for POST /boards. Only name is accepted.
type CreateBoardRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator. Returns error messages for required rules.
func (c CreateBoardRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// CreateBoardResponse is the response body for POST /boards. AccessKey is
// returned exactly once; only its hash is stored.
type CreateBoardResponse struct {
	Board     *domain.Board `json:"board"`
	AccessKey string        `json:"access_key"`
}

// OpenSessionRequest is the request body for POST /boards/{boardID}/sessions.
type OpenSessionRequest struct {
	AccessKey string `json:"access_key"`
}

// Validate implements Validator.
func (c OpenSessionRequest) Validate() []string {
	var errs []string
	if c.AccessKey == "" {
		errs = append(errs, "access_key is required")
	}
	return errs
}

// InviteRequest is the request body for POST /boards/{boardID}/invitations.
type InviteRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (c InviteRequest) Validate() []string {
	var errs []string
	if c.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(c.Email) {
		errs = append(errs, "email is invalid")
	}
	return errs
}

// CreateRoomRequest is the request body for POST /boards/{boardID}/rooms.
type CreateRoomRequest struct {
	Name          string `json:"name"`
	HasDisplay    bool   `json:"has_display"`
	HasWhiteboard bool   `json:"has_whiteboard"`
}

// Validate implements Validator.
func (c CreateRoomRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// CreateSlotRequest is the request body for POST /boards/{boardID}/slots.
type CreateSlotRequest struct {
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Highlighted bool      `json:"highlighted"`
}

// Validate implements Validator.
func (c CreateSlotRequest) Validate() []string {
	var errs []string
	if c.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	if c.EndsAt.IsZero() {
		errs = append(errs, "ends_at is required")
	}
	return errs
}

type BoardController struct {
	Logger  *slog.Logger
	Service domain.BoardService
}

func NewBoardController(logger *slog.Logger, svc domain.BoardService) *BoardController {
	return &BoardController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateBoard godoc
// @Summary Create a new board
// @Description Create a new schedule board. The access key is returned exactly once; only its hash is stored.
// @Tags boards
// @Accept json
// @Produce json
// @Param board body CreateBoardRequest true "Board data (name only)"
// @Success 201 {object} helpers.APIResponse "data contains the board and its access key"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /boards [post]
func (c *BoardController) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req CreateBoardRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	board, key, err := c.Service.CreateBoard(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateBoardResponse{Board: board, AccessKey: key})
}

// OpenSession godoc
// @Summary Open a client session on a board
// @Description Verifies the board access key and issues a fresh client session id plus a token authorizing mutations.
// @Tags boards
// @Accept json
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Param session body OpenSessionRequest true "Board access key"
// @Success 201 {object} helpers.APIResponse "data contains the session id and token"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /boards/{boardID}/sessions [post]
func (c *BoardController) OpenSession(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	var req OpenSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.OpenSession(r.Context(), boardID, req.AccessKey)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, session)
}

// InviteOperator godoc
// @Summary Invite an operator to a board
// @Description Emails a join link for the board to the given address.
// @Tags boards
// @Accept json
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Param invitation body InviteRequest true "Invitee email"
// @Success 202 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /boards/{boardID}/invitations [post]
func (c *BoardController) InviteOperator(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.InviteOperator(r.Context(), boardID, req.Email); err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusAccepted, map[string]string{"status": "invitation sent"})
}

// CreateRoom godoc
// @Summary Add a room to a board
// @Tags grid
// @Accept json
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Param room body CreateRoomRequest true "Room data"
// @Success 201 {object} helpers.APIResponse "data contains the created room"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /boards/{boardID}/rooms [post]
func (c *BoardController) CreateRoom(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	var req CreateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	room, err := c.Service.CreateRoom(r.Context(), boardID, req.Name, req.HasDisplay, req.HasWhiteboard)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, room)
}

// CreateSlot godoc
// @Summary Add a time slot to a board
// @Tags grid
// @Accept json
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Param slot body CreateSlotRequest true "Slot data"
// @Success 201 {object} helpers.APIResponse "data contains the created slot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /boards/{boardID}/slots [post]
func (c *BoardController) CreateSlot(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	var req CreateSlotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot, err := c.Service.CreateSlot(r.Context(), boardID, req.StartsAt, req.EndsAt, req.Highlighted)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, slot)
}

// ListRooms godoc
// @Summary List a board's rooms
// @Tags grid
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the rooms"
// @Router /boards/{boardID}/rooms [get]
func (c *BoardController) ListRooms(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	rooms, err := c.Service.ListRooms(r.Context(), boardID)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rooms)
}

// ListSlots godoc
// @Summary List a board's time slots
// @Tags grid
// @Produce json
// @Param boardID path string true "Board ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the slots"
// @Router /boards/{boardID}/slots [get]
func (c *BoardController) ListSlots(w http.ResponseWriter, r *http.Request) {
	boardID := r.PathValue("boardID")
	if boardID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing boardID")
		return
	}
	slots, err := c.Service.ListSlots(r.Context(), boardID)
	if err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// DeleteRoom godoc
// @Summary Delete a room
// @Description Fails with 409 if any item is still placed in the room.
// @Tags grid
// @Produce json
// @Param roomID path string true "Room ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /rooms/{roomID} [delete]
func (c *BoardController) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if roomID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing roomID")
		return
	}
	if err := c.Service.DeleteRoom(r.Context(), roomID); err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteSlot godoc
// @Summary Delete a time slot
// @Description Fails with 409 if any item is still placed in the slot.
// @Tags grid
// @Produce json
// @Param slotID path string true "Slot ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /slots/{slotID} [delete]
func (c *BoardController) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("slotID")
	if slotID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slotID")
		return
	}
	if err := c.Service.DeleteSlot(r.Context(), slotID); err != nil {
		writeDomainError(w, c.Logger, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
