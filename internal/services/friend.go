package services

import (
	"context"
	"time"

	"challenge-feed-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FriendStore is the persistence surface the friend service needs
type FriendStore interface {
	ListEdges(ctx context.Context, userID string) ([]models.FriendEdge, error)
	EdgeExists(ctx context.Context, userID, friendID string) (bool, error)
	CreateEdgePair(ctx context.Context, userID, friendID string) error
	DeleteEdgePair(ctx context.Context, userID, friendID string) error
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id string) (*models.FriendRequest, error)
	ListPendingForUser(ctx context.Context, userID string) ([]models.FriendRequest, error)
	PendingBetween(ctx context.Context, userA, userB string) (bool, error)
	UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) error
	DeleteRequest(ctx context.Context, id string) error
}

// UserResolver is the cache-or-fetch user lookup path
type UserResolver interface {
	Resolve(ctx context.Context, userID string) (*models.User, error)
}

// FriendNotifier delivers friend-request notifications out of band.
// Implementations must never fail the triggering operation.
type FriendNotifier interface {
	RequestReceived(to, from models.User)
	RequestAccepted(to, from models.User)
}

// PendingRequest is a friend request enriched with its sender
type PendingRequest struct {
	Request models.FriendRequest `json:"request"`
	From    models.User          `json:"from"`
}

// FriendService handles friendship business logic
type FriendService struct {
	friendRepo FriendStore
	users      UserResolver
	notifier   FriendNotifier
}

// NewFriendService creates a new friend service. notifier may be nil when
// push delivery is disabled.
func NewFriendService(friendRepo FriendStore, users UserResolver, notifier FriendNotifier) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		users:      users,
		notifier:   notifier,
	}
}

// Friends returns a user's friends as enriched user records. A friend whose
// lookup fails is dropped from the result, not surfaced as an error.
func (s *FriendService) Friends(ctx context.Context, userID string) ([]models.User, error) {
	edges, err := s.friendRepo.ListEdges(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]models.User, 0, len(edges))
	for _, edge := range edges {
		friend, err := s.users.Resolve(ctx, edge.FriendID)
		if err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("friend_id", edge.FriendID).
				Msg("Dropping unresolvable friend from listing")
			continue
		}
		friends = append(friends, *friend)
	}

	return friends, nil
}

// SendRequest creates a pending friend request from one user to another
func (s *FriendService) SendRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	if fromUserID == toUserID {
		return nil, models.ErrSelfFriend
	}

	recipient, err := s.users.Resolve(ctx, toUserID)
	if err != nil {
		return nil, err
	}

	alreadyFriends, err := s.friendRepo.EdgeExists(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if alreadyFriends {
		return nil, models.ErrAlreadyFriends
	}

	pending, err := s.friendRepo.PendingBetween(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, models.ErrDuplicateRequest
	}

	req := &models.FriendRequest{
		ID:         uuid.New().String(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}
	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if sender, err := s.users.Resolve(ctx, fromUserID); err == nil {
			go s.notifier.RequestReceived(*recipient, *sender)
		}
	}

	return req, nil
}

// PendingRequests returns pending requests addressed to a user, enriched
// with their senders. Requests whose sender cannot be resolved are dropped.
func (s *FriendService) PendingRequests(ctx context.Context, userID string) ([]PendingRequest, error) {
	requests, err := s.friendRepo.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	enriched := make([]PendingRequest, 0, len(requests))
	for _, req := range requests {
		sender, err := s.users.Resolve(ctx, req.FromUserID)
		if err != nil {
			log.Warn().
				Err(err).
				Str("request_id", req.ID).
				Str("from_user_id", req.FromUserID).
				Msg("Dropping friend request with unresolvable sender")
			continue
		}
		enriched = append(enriched, PendingRequest{Request: req, From: *sender})
	}

	return enriched, nil
}

// AcceptRequest accepts a pending friend request addressed to userID,
// creating both directions of the friendship
func (s *FriendService) AcceptRequest(ctx context.Context, userID, requestID string) error {
	req, err := s.friendRepo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != userID {
		return models.ErrNotRecipient
	}
	if req.Status != models.RequestPending {
		return models.ErrRequestNotPending
	}

	if err := s.friendRepo.CreateEdgePair(ctx, req.FromUserID, req.ToUserID); err != nil {
		return err
	}
	if err := s.friendRepo.UpdateRequestStatus(ctx, requestID, models.RequestAccepted); err != nil {
		return err
	}

	if s.notifier != nil {
		sender, senderErr := s.users.Resolve(ctx, req.FromUserID)
		recipient, recipientErr := s.users.Resolve(ctx, req.ToUserID)
		if senderErr == nil && recipientErr == nil {
			go s.notifier.RequestAccepted(*sender, *recipient)
		}
	}

	return nil
}

// RejectRequest rejects a pending friend request addressed to userID by
// deleting it
func (s *FriendService) RejectRequest(ctx context.Context, userID, requestID string) error {
	req, err := s.friendRepo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != userID {
		return models.ErrNotRecipient
	}
	if req.Status != models.RequestPending {
		return models.ErrRequestNotPending
	}

	return s.friendRepo.DeleteRequest(ctx, requestID)
}

// RemoveFriend deletes both directions of a friendship
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return s.friendRepo.DeleteEdgePair(ctx, userID, friendID)
}
