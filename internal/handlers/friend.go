package handlers

import (
	"encoding/json"
	"net/http"

	"challenge-feed-backend/internal/middleware"
	"challenge-feed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FriendHandler handles friendship HTTP requests
type FriendHandler struct {
	friendService *services.FriendService
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// ListFriends handles GET /api/v1/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friends, err := h.friendService.Friends(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends")
		respondError(w, "Failed to list friends", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// RemoveFriend handles DELETE /api/v1/friends/{friend_id}
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	friendID := chi.URLParam(r, "friend_id")

	if err := h.friendService.RemoveFriend(r.Context(), userID, friendID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("friend_id", friendID).
			Msg("Failed to remove friend")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendRequestBody represents a new friend request
type SendRequestBody struct {
	ToUserID string `json:"to_user_id"`
}

// SendRequest handles POST /api/v1/friend-requests
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var body SendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.ToUserID == "" {
		respondError(w, "to_user_id is required", http.StatusBadRequest)
		return
	}

	req, err := h.friendService.SendRequest(r.Context(), userID, body.ToUserID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("request_id", req.ID).
		Str("from_user_id", userID).
		Str("to_user_id", body.ToUserID).
		Msg("Friend request sent")

	respondJSON(w, http.StatusCreated, req)
}

// ListRequests handles GET /api/v1/friend-requests
func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	requests, err := h.friendService.PendingRequests(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friend requests")
		respondError(w, "Failed to list friend requests", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// AcceptRequest handles POST /api/v1/friend-requests/{request_id}/accept
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID := chi.URLParam(r, "request_id")

	if err := h.friendService.AcceptRequest(r.Context(), userID, requestID); err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("request_id", requestID).
		Str("user_id", userID).
		Msg("Friend request accepted")

	w.WriteHeader(http.StatusNoContent)
}

// RejectRequest handles POST /api/v1/friend-requests/{request_id}/reject
func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID := chi.URLParam(r, "request_id")

	if err := h.friendService.RejectRequest(r.Context(), userID, requestID); err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
