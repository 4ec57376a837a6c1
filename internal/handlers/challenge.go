package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"challenge-feed-backend/internal/middleware"
	"challenge-feed-backend/internal/models"
	"challenge-feed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ChallengeHandler handles challenge catalog and completion HTTP requests
type ChallengeHandler struct {
	challengeService *services.ChallengeService
	evidenceService  *services.EvidenceService
	friendService    *services.FriendService
	userService      *services.UserService
	hub              *services.FeedHub
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(
	challengeService *services.ChallengeService,
	evidenceService *services.EvidenceService,
	friendService *services.FriendService,
	userService *services.UserService,
	hub *services.FeedHub,
) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		evidenceService:  evidenceService,
		friendService:    friendService,
		userService:      userService,
		hub:              hub,
	}
}

// ListCategories handles GET /api/v1/categories
func (h *ChallengeHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.challengeService.Categories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		respondError(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// ListChallenges handles GET /api/v1/categories/{category_id}/challenges
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "category_id")

	var maxSequence *int
	if seqStr := r.URL.Query().Get("max_sequence"); seqStr != "" {
		seq, err := strconv.Atoi(seqStr)
		if err != nil {
			respondError(w, "max_sequence must be an integer", http.StatusBadRequest)
			return
		}
		maxSequence = &seq
	}

	challenges, err := h.challengeService.Challenges(r.Context(), categoryID, maxSequence)
	if err != nil {
		log.Error().Err(err).Str("category_id", categoryID).Msg("Failed to list challenges")
		respondError(w, "Failed to list challenges", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"challenges": challenges})
}

// GetChallenge handles GET /api/v1/categories/{category_id}/challenges/{challenge_id}
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "category_id")
	challengeID := chi.URLParam(r, "challenge_id")

	challenge, err := h.challengeService.Challenge(r.Context(), categoryID, challengeID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusOK, challenge)
}

// CreateChallengeRequest represents a new catalog challenge
type CreateChallengeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Sequence    int    `json:"sequence"`
}

// CreateChallenge handles POST /api/v1/categories/{category_id}/challenges
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "category_id")

	var req CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	challenge, err := h.challengeService.CreateChallenge(r.Context(), &models.Challenge{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		Sequence:    req.Sequence,
	})
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, challenge)
}

// UploadEvidence handles POST /api/v1/categories/{category_id}/challenges/{challenge_id}/evidence.
// The request is a multipart form with an "image" file and an optional
// "comment" field; success marks the challenge complete and notifies online
// friends over the feed hub.
func (h *ChallengeHandler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	categoryID := chi.URLParam(r, "category_id")
	challengeID := chi.URLParam(r, "challenge_id")

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		respondError(w, "Failed to read image", http.StatusBadRequest)
		return
	}

	comment := r.FormValue("comment")
	contentType := header.Header.Get("Content-Type")

	completed, err := h.evidenceService.UploadEvidence(ctx, userID, categoryID, challengeID, image, contentType, comment)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("challenge_id", challengeID).
			Msg("Failed to upload evidence")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("challenge_id", challengeID).
		Int("points", completed.Points).
		Msg("Challenge completed")

	go h.notifyFriends(userID, *completed)

	respondJSON(w, http.StatusOK, completed)
}

// notifyFriends pushes the new completion to online friends. Best-effort:
// lookup failures only log. Runs detached from the request context.
func (h *ChallengeHandler) notifyFriends(userID string, completed models.CompletedChallenge) {
	ctx := context.Background()
	user, err := h.userService.Resolve(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve user for feed event")
		return
	}

	friends, err := h.friendService.Friends(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends for feed event")
		return
	}

	friendIDs := make([]string, 0, len(friends))
	for _, friend := range friends {
		friendIDs = append(friendIDs, friend.ID)
	}

	h.hub.NotifyChallengeCompleted(*user, friendIDs, completed)
}

// ListCompleted handles GET /api/v1/me/completed-challenges
func (h *ChallengeHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	completed, err := h.challengeService.CompletedChallenges(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list completed challenges")
		respondError(w, "Failed to list completed challenges", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"completed_challenges": completed})
}

// GetProgress handles GET /api/v1/me/progress
func (h *ChallengeHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	total, achievements, err := h.challengeService.Progress(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to compute progress")
		respondError(w, "Failed to compute progress", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_points": total,
		"achievements": achievements,
	})
}

// GetEvidenceURL handles GET /api/v1/users/{user_id}/challenges/{challenge_id}/evidence-url
func (h *ChallengeHandler) GetEvidenceURL(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	challengeID := chi.URLParam(r, "challenge_id")

	url, err := h.evidenceService.EvidenceDownloadURL(r.Context(), userID, challengeID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("challenge_id", challengeID).
			Msg("Failed to presign evidence URL")
		respondError(w, "Failed to generate download URL", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
