package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"challenge-feed-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendListerStub struct {
	friendsFn func(context.Context, string) ([]models.User, error)
}

func (s *friendListerStub) Friends(ctx context.Context, userID string) ([]models.User, error) {
	return s.friendsFn(ctx, userID)
}

type completedListerStub struct {
	completedFn func(context.Context, string) ([]models.CompletedChallenge, error)
}

func (s *completedListerStub) CompletedChallenges(ctx context.Context, userID string) ([]models.CompletedChallenge, error) {
	return s.completedFn(ctx, userID)
}

func at(unix int64) time.Time { return time.Unix(unix, 0) }

func completedAt(challengeID string, unix int64) models.CompletedChallenge {
	return models.CompletedChallenge{ChallengeID: challengeID, CompletionTime: at(unix)}
}

func TestBuildFeedMergesAndTolerateFailedBranch(t *testing.T) {
	// A has friends B and C. B has completions at t=10 and t=20; C's fetch
	// fails. Expected feed: [B@20, B@10], no error.
	friends := &friendListerStub{
		friendsFn: func(_ context.Context, _ string) ([]models.User, error) {
			return []models.User{{ID: "b"}, {ID: "c"}}, nil
		},
	}
	completed := &completedListerStub{
		completedFn: func(_ context.Context, userID string) ([]models.CompletedChallenge, error) {
			switch userID {
			case "b":
				return []models.CompletedChallenge{
					completedAt("ch1", 10),
					completedAt("ch2", 20),
				}, nil
			default:
				return nil, errors.New("deadline exceeded")
			}
		},
	}
	svc := NewFeedService(friends, completed)

	feed, err := svc.BuildFeed(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, "ch2", feed[0].Challenge.ChallengeID)
	assert.Equal(t, "ch1", feed[1].Challenge.ChallengeID)
	assert.Equal(t, "b", feed[0].User.ID)
}

func TestBuildFeedSortedDescending(t *testing.T) {
	friends := &friendListerStub{
		friendsFn: func(_ context.Context, _ string) ([]models.User, error) {
			return []models.User{{ID: "b"}, {ID: "c"}, {ID: "d"}}, nil
		},
	}
	completed := &completedListerStub{
		completedFn: func(_ context.Context, userID string) ([]models.CompletedChallenge, error) {
			switch userID {
			case "b":
				return []models.CompletedChallenge{completedAt("b1", 15), completedAt("b2", 5)}, nil
			case "c":
				return []models.CompletedChallenge{completedAt("c1", 30)}, nil
			default:
				return []models.CompletedChallenge{completedAt("d1", 20), completedAt("d2", 1)}, nil
			}
		},
	}
	svc := NewFeedService(friends, completed)

	feed, err := svc.BuildFeed(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, feed, 5)

	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Challenge.CompletionTime.After(feed[i-1].Challenge.CompletionTime),
			"feed must be ordered by completion time descending")
	}
	assert.Equal(t, "c1", feed[0].Challenge.ChallengeID)
}

func TestBuildFeedTimestampTiesKeepBothEntries(t *testing.T) {
	friends := &friendListerStub{
		friendsFn: func(_ context.Context, _ string) ([]models.User, error) {
			return []models.User{{ID: "b"}, {ID: "c"}}, nil
		},
	}
	completed := &completedListerStub{
		completedFn: func(_ context.Context, userID string) ([]models.CompletedChallenge, error) {
			return []models.CompletedChallenge{completedAt(userID+"-ch", 42)}, nil
		},
	}
	svc := NewFeedService(friends, completed)

	feed, err := svc.BuildFeed(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, feed, 2, "tied timestamps leave order unspecified but keep both entries")
}

func TestBuildFeedAllBranchesFail(t *testing.T) {
	friends := &friendListerStub{
		friendsFn: func(_ context.Context, _ string) ([]models.User, error) {
			return []models.User{{ID: "b"}, {ID: "c"}}, nil
		},
	}
	completed := &completedListerStub{
		completedFn: func(_ context.Context, _ string) ([]models.CompletedChallenge, error) {
			return nil, errors.New("unavailable")
		},
	}
	svc := NewFeedService(friends, completed)

	feed, err := svc.BuildFeed(context.Background(), "a")
	require.NoError(t, err, "branch failures must never fail the aggregation")
	assert.Empty(t, feed)
	assert.NotNil(t, feed)
}

func TestBuildFeedFriendStageFailurePropagates(t *testing.T) {
	stageErr := errors.New("network unavailable")
	friends := &friendListerStub{
		friendsFn: func(_ context.Context, _ string) ([]models.User, error) {
			return nil, stageErr
		},
	}
	svc := NewFeedService(friends, &completedListerStub{})

	feed, err := svc.BuildFeed(context.Background(), "a")
	assert.ErrorIs(t, err, stageErr)
	assert.Nil(t, feed, "no partial feed when friend resolution fails")
}

func TestBuildFeedNoFriends(t *testing.T) {
	friends := &friendListerStub{
		friendsFn: func(_ context.Context, _ string) ([]models.User, error) {
			return nil, nil
		},
	}
	svc := NewFeedService(friends, &completedListerStub{})

	feed, err := svc.BuildFeed(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, feed)
}
