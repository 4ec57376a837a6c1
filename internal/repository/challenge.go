package repository

import (
	"context"
	"errors"
	"fmt"

	"challenge-feed-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChallengeRepository handles database operations for the challenge catalog
// and completed challenges
type ChallengeRepository struct {
	db *pgxpool.Pool
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// ListCategories retrieves all challenge categories
func (r *ChallengeRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// ListChallenges retrieves challenges in a category ordered by sequence.
// When maxSequence is non-nil only challenges up to that sequence are returned.
func (r *ChallengeRepository) ListChallenges(ctx context.Context, categoryID string, maxSequence *int) ([]models.Challenge, error) {
	query := `
		SELECT id, category_id, name, description, points, sequence
		FROM challenges
		WHERE category_id = $1 AND ($2::int IS NULL OR sequence <= $2)
		ORDER BY sequence
	`
	rows, err := r.db.Query(ctx, query, categoryID, maxSequence)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		var ch models.Challenge
		err := rows.Scan(&ch.ID, &ch.CategoryID, &ch.Name, &ch.Description, &ch.Points, &ch.Sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}

	return challenges, nil
}

// GetChallenge retrieves a single challenge from a category
func (r *ChallengeRepository) GetChallenge(ctx context.Context, categoryID, challengeID string) (*models.Challenge, error) {
	query := `
		SELECT id, category_id, name, description, points, sequence
		FROM challenges
		WHERE category_id = $1 AND id = $2
	`
	var ch models.Challenge
	err := r.db.QueryRow(ctx, query, categoryID, challengeID).Scan(
		&ch.ID, &ch.CategoryID, &ch.Name, &ch.Description, &ch.Points, &ch.Sequence,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return &ch, nil
}

// CreateChallenge adds a challenge to a category
func (r *ChallengeRepository) CreateChallenge(ctx context.Context, ch *models.Challenge) error {
	query := `
		INSERT INTO challenges (id, category_id, name, description, points, sequence)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, ch.ID, ch.CategoryID, ch.Name, ch.Description, ch.Points, ch.Sequence)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// UpsertCompleted records a completed challenge for a user. Keyed by
// (user_id, challenge_id), so re-completing the same challenge overwrites
// the previous record instead of adding a second one.
func (r *ChallengeRepository) UpsertCompleted(ctx context.Context, userID string, cc *models.CompletedChallenge) error {
	query := `
		INSERT INTO completed_challenges
			(user_id, challenge_id, category_id, evidence_id, image_url, comment, completion_time, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, challenge_id) DO UPDATE SET
			evidence_id = EXCLUDED.evidence_id,
			image_url = EXCLUDED.image_url,
			comment = EXCLUDED.comment,
			completion_time = EXCLUDED.completion_time,
			points = EXCLUDED.points
	`
	_, err := r.db.Exec(ctx, query,
		userID, cc.ChallengeID, cc.CategoryID, cc.EvidenceID,
		cc.ImageURL, cc.Comment, cc.CompletionTime, cc.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to record completed challenge: %w", err)
	}
	return nil
}

// ListCompleted retrieves all completed challenges for a user
func (r *ChallengeRepository) ListCompleted(ctx context.Context, userID string) ([]models.CompletedChallenge, error) {
	query := `
		SELECT challenge_id, category_id, evidence_id, image_url, comment, completion_time, points
		FROM completed_challenges
		WHERE user_id = $1
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed challenges: %w", err)
	}
	defer rows.Close()

	var completed []models.CompletedChallenge
	for rows.Next() {
		var cc models.CompletedChallenge
		err := rows.Scan(
			&cc.ChallengeID, &cc.CategoryID, &cc.EvidenceID,
			&cc.ImageURL, &cc.Comment, &cc.CompletionTime, &cc.Points,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completed challenge: %w", err)
		}
		completed = append(completed, cc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed challenges: %w", err)
	}

	return completed, nil
}
