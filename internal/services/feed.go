package services

import (
	"context"
	"sort"
	"sync"

	"challenge-feed-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// FriendLister resolves a user's friend set
type FriendLister interface {
	Friends(ctx context.Context, userID string) ([]models.User, error)
}

// CompletedLister fetches the completed challenges of one user
type CompletedLister interface {
	CompletedChallenges(ctx context.Context, userID string) ([]models.CompletedChallenge, error)
}

// FeedService builds the merged activity feed of a user's friends.
//
// Friend resolution failing fails the whole build. Per-friend challenge
// fetches fan out concurrently and fail independently: a failed branch
// contributes zero entries and is only logged. Any subset of friends
// succeeding yields a usable feed.
type FeedService struct {
	friends   FriendLister
	completed CompletedLister
}

// NewFeedService creates a new feed service
func NewFeedService(friends FriendLister, completed CompletedLister) *FeedService {
	return &FeedService{
		friends:   friends,
		completed: completed,
	}
}

type branchResult struct {
	friend  models.User
	entries []models.CompletedChallenge
	err     error
}

// BuildFeed returns all completed challenges of userID's friends, ordered
// by completion time descending
func (s *FeedService) BuildFeed(ctx context.Context, userID string) ([]models.FeedEntry, error) {
	friends, err := s.friends.Friends(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]branchResult, len(friends))
	var wg sync.WaitGroup
	for i, friend := range friends {
		wg.Add(1)
		go func(i int, friend models.User) {
			defer wg.Done()
			entries, err := s.completed.CompletedChallenges(ctx, friend.ID)
			results[i] = branchResult{friend: friend, entries: entries, err: err}
		}(i, friend)
	}
	wg.Wait()

	feed := make([]models.FeedEntry, 0)
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			log.Error().
				Err(res.err).
				Str("user_id", userID).
				Str("friend_id", res.friend.ID).
				Msg("Failed to fetch friend's completed challenges")
			continue
		}
		for _, cc := range res.entries {
			feed = append(feed, models.FeedEntry{User: res.friend, Challenge: cc})
		}
	}

	if failed > 0 {
		log.Warn().
			Str("user_id", userID).
			Int("failed", failed).
			Int("total", len(friends)).
			Msg("Feed built from partial results")
	}

	sort.Slice(feed, func(i, j int) bool {
		return feed[i].Challenge.CompletionTime.After(feed[j].Challenge.CompletionTime)
	})

	return feed, nil
}
