package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"challenge-feed-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Online    *bool       `json:"online,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// FeedHub manages WebSocket connections and pushes live feed events to
// online friends. One connection per user; a reconnect replaces the old one.
type FeedHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewFeedHub creates a new feed hub
func NewFeedHub() *FeedHub {
	return &FeedHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a WebSocket connection for a user
func (h *FeedHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's WebSocket connection
func (h *FeedHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[userID]; ok {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *FeedHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user has an active connection
func (h *FeedHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// NotifyChallengeCompleted pushes a feed event to each online friend of the
// user who completed a challenge. Offline friends are skipped silently.
func (h *FeedHub) NotifyChallengeCompleted(user models.User, friendIDs []string, cc models.CompletedChallenge) {
	message := WSMessage{
		Type:      "friend_completed_challenge",
		Timestamp: time.Now().UnixMilli(),
		UserID:    user.ID,
		Data:      models.FeedEntry{User: user, Challenge: cc},
	}

	for _, friendID := range friendIDs {
		if !h.IsOnline(friendID) {
			continue
		}
		if err := h.SendToUser(friendID, message); err != nil {
			log.Error().
				Err(err).
				Str("friend_id", friendID).
				Msg("Failed to push feed event")
		}
	}
}

// NotifyPresence tells each online friend that a user went online or offline
func (h *FeedHub) NotifyPresence(userID string, friendIDs []string, online bool) {
	message := WSMessage{
		Type:   "friend_status",
		UserID: userID,
		Online: &online,
	}

	for _, friendID := range friendIDs {
		if !h.IsOnline(friendID) {
			continue
		}
		if err := h.SendToUser(friendID, message); err != nil {
			log.Error().
				Err(err).
				Str("friend_id", friendID).
				Msg("Failed to push presence event")
		}
	}
}
