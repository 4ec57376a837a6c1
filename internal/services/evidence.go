package services

import (
	"context"
	"fmt"

	"challenge-feed-backend/internal/models"

	"github.com/google/uuid"
)

// ChallengeCompleter marks a challenge complete with its evidence pointer
type ChallengeCompleter interface {
	CompleteChallenge(ctx context.Context, userID, categoryID, challengeID, evidenceID, imageURL, comment string) (*models.CompletedChallenge, error)
}

// EvidenceBlobs is the blob surface evidence upload needs
type EvidenceBlobs interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// EvidenceService uploads completion evidence: write the image to the blob
// store, then write the completion record pointing at it. The two steps are
// not atomic; a failure after upload leaves an orphaned blob, never a
// completion without evidence.
type EvidenceService struct {
	blobs      EvidenceBlobs
	challenges ChallengeCompleter
}

// NewEvidenceService creates a new evidence service
func NewEvidenceService(blobs EvidenceBlobs, challenges ChallengeCompleter) *EvidenceService {
	return &EvidenceService{
		blobs:      blobs,
		challenges: challenges,
	}
}

func evidenceKey(userID, challengeID string) string {
	return fmt.Sprintf("evidence/%s_%s.jpg", userID, challengeID)
}

// UploadEvidence stores the evidence image and marks the challenge complete
func (s *EvidenceService) UploadEvidence(ctx context.Context, userID, categoryID, challengeID string, image []byte, contentType, comment string) (*models.CompletedChallenge, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("evidence image is required")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	evidenceID := uuid.New().String()
	imageURL, err := s.blobs.Upload(ctx, evidenceKey(userID, challengeID), image, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload evidence: %w", err)
	}

	return s.challenges.CompleteChallenge(ctx, userID, categoryID, challengeID, evidenceID, imageURL, comment)
}

// EvidenceDownloadURL returns a temporary URL for a user's evidence image
func (s *EvidenceService) EvidenceDownloadURL(ctx context.Context, userID, challengeID string) (string, error) {
	return s.blobs.PresignDownload(ctx, evidenceKey(userID, challengeID))
}
