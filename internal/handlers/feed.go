package handlers

import (
	"net/http"

	"challenge-feed-backend/internal/middleware"
	"challenge-feed-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// FeedHandler handles feed HTTP requests
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /api/v1/feed
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	feed, err := h.feedService.BuildFeed(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build feed")
		respondError(w, "Failed to build feed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"feed": feed})
}
