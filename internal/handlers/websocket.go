package handlers

import (
	"context"
	"net/http"

	"challenge-feed-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles live feed WebSocket connections
type WebSocketHandler struct {
	hub           *services.FeedHub
	userService   *services.UserService
	friendService *services.FriendService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.FeedHub,
	userService *services.UserService,
	friendService *services.FriendService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		userService:   userService,
		friendService: friendService,
	}
}

// HandleWebSocket handles GET /ws. The token is passed as a query parameter
// because browsers cannot set headers on WebSocket upgrades.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	ctx := r.Context()
	friendIDs := h.friendIDs(ctx, userID)
	h.hub.NotifyPresence(userID, friendIDs, true)
	defer h.hub.NotifyPresence(userID, friendIDs, false)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}
		// The feed stream is server-push only; client messages are ignored.
	}
}

// friendIDs is a best-effort lookup for presence fan-out; failures log and
// yield no notifications.
func (h *WebSocketHandler) friendIDs(ctx context.Context, userID string) []string {
	friends, err := h.friendService.Friends(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends for presence")
		return nil
	}

	ids := make([]string, 0, len(friends))
	for _, friend := range friends {
		ids = append(ids, friend.ID)
	}
	return ids
}
