package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"boardroom/internal/delivery/http/helpers"
	"boardroom/internal/domain"
)

// writeDomainError maps service errors onto the API error envelope. Conflict
// errors carry machine-readable details so the hosting UI can name the item
// occupying the contested cell or the capabilities the room lacks.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	var occupied *domain.OccupiedSlotError
	var mismatch *domain.ResourceMismatchError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrReferenced):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.As(err, &occupied):
		helpers.WriteJSONErrorDetails(w, http.StatusConflict, helpers.ErrCodeOccupiedSlot, occupied.Error(), map[string]any{
			"conflicting_item": occupied.Conflicting,
		})
	case errors.As(err, &mismatch):
		helpers.WriteJSONErrorDetails(w, http.StatusConflict, helpers.ErrCodeResourceMismatch, mismatch.Error(), map[string]any{
			"missing": mismatch.Missing,
		})
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
