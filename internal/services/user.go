package services

import (
	"context"
	"fmt"
	"time"

	"challenge-feed-backend/internal/cache"
	"challenge-feed-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	jwtExpDays         = 365
	profilePictureKey  = "profile_pictures/%s.jpg"
	searchResultsLimit = 20
)

// UserStore is the persistence surface the user service needs
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Search(ctx context.Context, term string, limit int) ([]models.User, error)
	UpdateUsername(ctx context.Context, userID, username string) error
	UpdatePhotoURL(ctx context.Context, userID, photoURL string) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// Uploader stores blobs and returns their public URL
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// UserService handles user-related business logic. Lookups by id go through
// an in-process cache; concurrent cold misses for the same id are coalesced
// into one store fetch.
type UserService struct {
	userRepo  UserStore
	blobs     Uploader
	userCache *cache.Cache[string, models.User]
	flight    singleflight.Group
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, blobs Uploader, jwtSecret string) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blobs:     blobs,
		userCache: cache.New[string, models.User](),
		jwtSecret: jwtSecret,
	}
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// CreateUser creates a new user. A nil email creates an anonymous account.
func (s *UserService) CreateUser(ctx context.Context, email *string) (*models.User, string, error) {
	user := &models.User{
		ID:          uuid.New().String(),
		Email:       email,
		IsAnonymous: email == nil,
		CreatedAt:   time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.userCache.Put(user.ID, *user)
	return user, token, nil
}

// Resolve returns the user for an id, serving from the cache when possible.
// A miss issues one store fetch and populates the cache; concurrent misses
// for the same cold id share a single fetch.
func (s *UserService) Resolve(ctx context.Context, userID string) (*models.User, error) {
	if cached, ok := s.userCache.Get(userID); ok {
		return &cached, nil
	}

	v, err, _ := s.flight.Do(userID, func() (interface{}, error) {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.userCache.Put(userID, *user)
		return user, nil
	})
	if err != nil {
		return nil, err
	}

	user := *v.(*models.User)
	return &user, nil
}

// Invalidate drops the cached copy of a user
func (s *UserService) Invalidate(userID string) {
	s.userCache.Invalidate(userID)
}

// Search finds users by email or username
func (s *UserService) Search(ctx context.Context, term string) ([]models.User, error) {
	if term == "" {
		return nil, fmt.Errorf("search term is required")
	}
	return s.userRepo.Search(ctx, term, searchResultsLimit)
}

// UpdateUsername changes a user's display name
func (s *UserService) UpdateUsername(ctx context.Context, userID, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if err := s.userRepo.UpdateUsername(ctx, userID, username); err != nil {
		return nil, err
	}
	s.userCache.Invalidate(userID)
	return s.Resolve(ctx, userID)
}

// UpdateProfilePicture stores a new profile picture and updates the user's
// photo URL
func (s *UserService) UpdateProfilePicture(ctx context.Context, userID string, image []byte, contentType string) (*models.User, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image is required")
	}

	key := fmt.Sprintf(profilePictureKey, userID)
	url, err := s.blobs.Upload(ctx, key, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	if err := s.userRepo.UpdatePhotoURL(ctx, userID, url); err != nil {
		return nil, err
	}
	s.userCache.Invalidate(userID)
	return s.Resolve(ctx, userID)
}

// UpdatePushToken stores the APNs device token for a user. A nil token
// clears it.
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	if err := s.userRepo.UpdatePushToken(ctx, userID, pushToken); err != nil {
		return err
	}
	s.userCache.Invalidate(userID)
	return nil
}
