package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"challenge-feed-backend/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrChallengeNotFound),
		errors.Is(err, models.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotRecipient):
		return http.StatusForbidden
	case errors.Is(err, models.ErrSelfFriend),
		errors.Is(err, models.ErrAlreadyFriends),
		errors.Is(err, models.ErrDuplicateRequest),
		errors.Is(err, models.ErrRequestNotPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
