package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"challenge-feed-backend/internal/middleware"
	"challenge-feed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxImageBytes = 10 << 20 // 10 MiB

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Email *string `json:"email,omitempty"`
}

// CreateUserResponse carries the new user and its token
type CreateUserResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if r.Body != nil {
		// An empty body creates an anonymous account
		json.NewDecoder(r.Body).Decode(&req)
	}

	user, token, err := h.userService.CreateUser(r.Context(), req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user")
		respondError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Bool("anonymous", user.IsAnonymous).
		Msg("User created")

	respondJSON(w, http.StatusOK, CreateUserResponse{User: user, Token: token})
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	user, err := h.userService.Resolve(r.Context(), userID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// GetMe handles GET /api/v1/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.Resolve(r.Context(), userID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// SearchUsers handles GET /api/v1/users/search?q=
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		respondError(w, "q is required", http.StatusBadRequest)
		return
	}

	users, err := h.userService.Search(r.Context(), term)
	if err != nil {
		log.Error().Err(err).Str("term", term).Msg("Failed to search users")
		respondError(w, "Failed to search users", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// UpdateUsernameRequest represents a username change
type UpdateUsernameRequest struct {
	Username string `json:"username"`
}

// UpdateUsername handles PATCH /api/v1/me/username
func (h *UserHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		respondError(w, "username is required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateUsername(r.Context(), userID, req.Username)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UploadProfilePicture handles PUT /api/v1/me/profile-picture
func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	image, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil || len(image) == 0 {
		respondError(w, "image body is required", http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	user, err := h.userService.UpdateProfilePicture(r.Context(), userID, image, contentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to upload profile picture")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdatePushTokenRequest represents an APNs token update
type UpdatePushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdatePushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), userID, req.PushToken); err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
