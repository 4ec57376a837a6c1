package services

import (
	"context"
	"fmt"
	"time"

	"challenge-feed-backend/internal/models"

	"github.com/google/uuid"
)

// Achievement thresholds mirror the in-app achievement list
var achievementDefs = []models.Achievement{
	{ID: 1, Title: "Newbie", Description: "Complete your first challenge!", PointThreshold: 10},
	{ID: 2, Title: "Adventurer", Description: "Accumulate 100 points.", PointThreshold: 100},
	{ID: 3, Title: "Challenge Master", Description: "Accumulate 500 points.", PointThreshold: 500},
}

// ChallengeStore is the persistence surface the challenge service needs
type ChallengeStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListChallenges(ctx context.Context, categoryID string, maxSequence *int) ([]models.Challenge, error)
	GetChallenge(ctx context.Context, categoryID, challengeID string) (*models.Challenge, error)
	CreateChallenge(ctx context.Context, ch *models.Challenge) error
	UpsertCompleted(ctx context.Context, userID string, cc *models.CompletedChallenge) error
	ListCompleted(ctx context.Context, userID string) ([]models.CompletedChallenge, error)
}

// ChallengeService handles the challenge catalog, completions and points
type ChallengeService struct {
	repo ChallengeStore
}

// NewChallengeService creates a new challenge service
func NewChallengeService(repo ChallengeStore) *ChallengeService {
	return &ChallengeService{repo: repo}
}

// Categories lists all challenge categories
func (s *ChallengeService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// Challenges lists challenges in a category by sequence, optionally capped
func (s *ChallengeService) Challenges(ctx context.Context, categoryID string, maxSequence *int) ([]models.Challenge, error) {
	return s.repo.ListChallenges(ctx, categoryID, maxSequence)
}

// Challenge fetches one challenge from a category
func (s *ChallengeService) Challenge(ctx context.Context, categoryID, challengeID string) (*models.Challenge, error) {
	return s.repo.GetChallenge(ctx, categoryID, challengeID)
}

// CreateChallenge adds a challenge to a category
func (s *ChallengeService) CreateChallenge(ctx context.Context, ch *models.Challenge) (*models.Challenge, error) {
	if ch.CategoryID == "" {
		return nil, fmt.Errorf("category id is required")
	}
	if ch.Name == "" {
		return nil, fmt.Errorf("challenge name is required")
	}
	if ch.Points <= 0 {
		return nil, fmt.Errorf("challenge points must be positive")
	}
	if ch.ID == "" {
		ch.ID = uuid.New().String()
	}
	if err := s.repo.CreateChallenge(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// CompleteChallenge marks a challenge as completed by a user, copying the
// challenge's point value into the record. Completing an already-completed
// challenge replaces the earlier record rather than adding a second one.
func (s *ChallengeService) CompleteChallenge(ctx context.Context, userID, categoryID, challengeID, evidenceID, imageURL, comment string) (*models.CompletedChallenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, categoryID, challengeID)
	if err != nil {
		return nil, err
	}

	cc := &models.CompletedChallenge{
		ChallengeID:    challenge.ID,
		CategoryID:     categoryID,
		EvidenceID:     evidenceID,
		ImageURL:       imageURL,
		Comment:        comment,
		CompletionTime: time.Now(),
		Points:         challenge.Points,
	}
	if err := s.repo.UpsertCompleted(ctx, userID, cc); err != nil {
		return nil, err
	}

	return cc, nil
}

// CompletedChallenges lists a user's completed challenges
func (s *ChallengeService) CompletedChallenges(ctx context.Context, userID string) ([]models.CompletedChallenge, error) {
	return s.repo.ListCompleted(ctx, userID)
}

// Progress reports a user's total points and achievement status
func (s *ChallengeService) Progress(ctx context.Context, userID string) (int, []models.Achievement, error) {
	completed, err := s.repo.ListCompleted(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	total := 0
	for _, cc := range completed {
		total += cc.Points
	}

	achievements := make([]models.Achievement, len(achievementDefs))
	copy(achievements, achievementDefs)
	for i := range achievements {
		achievements[i].Unlocked = total >= achievements[i].PointThreshold
	}

	return total, achievements, nil
}
