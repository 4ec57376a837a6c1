package models

import "time"

// User represents a user in the system
type User struct {
	ID          string    `json:"id"`
	Email       *string   `json:"email,omitempty"`
	Username    *string   `json:"username,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	PushToken   *string   `json:"push_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FriendEdge represents one direction of a friendship. Edges are always
// written in symmetric pairs: an edge A->B is paired with an edge B->A.
type FriendEdge struct {
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestStatus is the state of a friend request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
)

// FriendRequest represents a pending friendship proposal
type FriendRequest struct {
	ID         string        `json:"id"`
	FromUserID string        `json:"from_user_id"`
	ToUserID   string        `json:"to_user_id"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Category represents a challenge category in the catalog
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Challenge represents one challenge in a category
type Challenge struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Sequence    int    `json:"sequence"`
}

// CompletedChallenge records one user finishing one challenge. At most one
// exists per (user, challenge); completing again replaces it.
type CompletedChallenge struct {
	ChallengeID    string    `json:"challenge_id"`
	CategoryID     string    `json:"category_id"`
	EvidenceID     string    `json:"evidence_id"`
	ImageURL       string    `json:"image_url"`
	Comment        string    `json:"comment"`
	CompletionTime time.Time `json:"completion_time"`
	Points         int       `json:"points"`
}

// FeedEntry is one completed challenge tagged with the friend who owns it
type FeedEntry struct {
	User      User               `json:"user"`
	Challenge CompletedChallenge `json:"challenge"`
}

// Achievement is unlocked when a user's total points reach its threshold
type Achievement struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	PointThreshold int    `json:"point_threshold"`
	Unlocked       bool   `json:"unlocked"`
}
