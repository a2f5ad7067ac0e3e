package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"boardroom/internal/delivery/http/controllers"
	"boardroom/internal/delivery/http/middleware"
	"boardroom/internal/delivery/ws"
	"boardroom/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	boardController *controllers.BoardController,
	itemController *controllers.ItemController,
	hub *ws.Hub,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	authed := middleware.RequireSession(verifier)

	// Board lifecycle
	mux.HandleFunc("POST /boards", boardController.CreateBoard)
	mux.HandleFunc("POST /boards/{boardID}/sessions", boardController.OpenSession)
	mux.HandleFunc("POST /boards/{boardID}/invitations", authed(boardController.InviteOperator))

	// Grid configuration
	mux.HandleFunc("POST /boards/{boardID}/rooms", authed(boardController.CreateRoom))
	mux.HandleFunc("POST /boards/{boardID}/slots", authed(boardController.CreateSlot))
	mux.HandleFunc("GET /boards/{boardID}/rooms", authed(boardController.ListRooms))
	mux.HandleFunc("GET /boards/{boardID}/slots", authed(boardController.ListSlots))
	mux.HandleFunc("DELETE /rooms/{roomID}", authed(boardController.DeleteRoom))
	mux.HandleFunc("DELETE /slots/{slotID}", authed(boardController.DeleteSlot))

	// Grid and items
	mux.HandleFunc("GET /boards/{boardID}/grid", authed(itemController.GetGrid))
	mux.HandleFunc("POST /boards/{boardID}/suggest", authed(itemController.Suggest))
	mux.HandleFunc("POST /items", authed(itemController.CreateItem))
	mux.HandleFunc("PATCH /items/{itemID}", authed(itemController.UpdateItem))
	mux.HandleFunc("DELETE /items/{itemID}", authed(itemController.DeleteItem))
	mux.HandleFunc("POST /items/swap", authed(itemController.SwapItems))

	// Event stream (token passed as query parameter, see ws.Hub.Stream)
	mux.HandleFunc("GET /boards/{boardID}/stream", hub.Stream)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
