package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"challenge-feed-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendRepository handles database operations for friend edges and requests
type FriendRepository struct {
	db *pgxpool.Pool
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{db: db}
}

// ListEdges retrieves all friend edges for a user in creation order
func (r *FriendRepository) ListEdges(ctx context.Context, userID string) ([]models.FriendEdge, error) {
	query := `
		SELECT user_id, friend_id, created_at
		FROM friend_edges
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend edges: %w", err)
	}
	defer rows.Close()

	var edges []models.FriendEdge
	for rows.Next() {
		var edge models.FriendEdge
		if err := rows.Scan(&edge.UserID, &edge.FriendID, &edge.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend edge: %w", err)
		}
		edges = append(edges, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend edges: %w", err)
	}

	return edges, nil
}

// EdgeExists checks whether an edge from userID to friendID exists
func (r *FriendRepository) EdgeExists(ctx context.Context, userID, friendID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM friend_edges WHERE user_id = $1 AND friend_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, friendID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check friend edge: %w", err)
	}
	return exists, nil
}

// CreateEdgePair writes both directions of a friendship. The two inserts are
// independent statements, not a transaction: a failure after the first write
// can leave a one-sided edge (best-effort symmetry).
func (r *FriendRepository) CreateEdgePair(ctx context.Context, userID, friendID string) error {
	query := `
		INSERT INTO friend_edges (user_id, friend_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`
	now := time.Now()
	if _, err := r.db.Exec(ctx, query, userID, friendID, now); err != nil {
		return fmt.Errorf("failed to create friend edge: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, friendID, userID, now); err != nil {
		return fmt.Errorf("failed to create reverse friend edge: %w", err)
	}
	return nil
}

// DeleteEdgePair removes both directions of a friendship. Both deletes are
// attempted even if the first fails.
func (r *FriendRepository) DeleteEdgePair(ctx context.Context, userID, friendID string) error {
	query := `DELETE FROM friend_edges WHERE user_id = $1 AND friend_id = $2`
	_, err1 := r.db.Exec(ctx, query, userID, friendID)
	_, err2 := r.db.Exec(ctx, query, friendID, userID)
	if err1 != nil {
		return fmt.Errorf("failed to delete friend edge: %w", err1)
	}
	if err2 != nil {
		return fmt.Errorf("failed to delete reverse friend edge: %w", err2)
	}
	return nil
}

// CreateRequest creates a new friend request
func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, from_user_id, to_user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, req.ID, req.FromUserID, req.ToUserID, req.Status, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

// GetRequest retrieves a friend request by ID
func (r *FriendRepository) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friend_requests
		WHERE id = $1
	`
	var req models.FriendRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	return &req, nil
}

// ListPendingForUser retrieves pending requests addressed to a user
func (r *FriendRepository) ListPendingForUser(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friend_requests
		WHERE to_user_id = $1 AND status = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID, models.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FriendRequest
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend requests: %w", err)
	}

	return requests, nil
}

// PendingBetween checks whether a pending request exists between two users
// in either direction
func (r *FriendRepository) PendingBetween(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE status = $3
			  AND ((from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1))
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userA, userB, models.RequestPending).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists, nil
}

// UpdateRequestStatus sets the status of a friend request
func (r *FriendRepository) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) error {
	query := `UPDATE friend_requests SET status = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrRequestNotFound
	}
	return nil
}

// DeleteRequest removes a friend request
func (r *FriendRepository) DeleteRequest(ctx context.Context, id string) error {
	query := `DELETE FROM friend_requests WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrRequestNotFound
	}
	return nil
}
