package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"challenge-feed-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userStoreStub struct {
	createFn          func(context.Context, *models.User) error
	getByIDFn         func(context.Context, string) (*models.User, error)
	searchFn          func(context.Context, string, int) ([]models.User, error)
	updateUsernameFn  func(context.Context, string, string) error
	updatePhotoURLFn  func(context.Context, string, string) error
	updatePushTokenFn func(context.Context, string, *string) error
}

func (s *userStoreStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userStoreStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userStoreStub) Search(ctx context.Context, term string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, term, limit)
}
func (s *userStoreStub) UpdateUsername(ctx context.Context, userID, username string) error {
	return s.updateUsernameFn(ctx, userID, username)
}
func (s *userStoreStub) UpdatePhotoURL(ctx context.Context, userID, photoURL string) error {
	return s.updatePhotoURLFn(ctx, userID, photoURL)
}
func (s *userStoreStub) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.updatePushTokenFn(ctx, userID, pushToken)
}

type uploaderStub struct {
	uploadFn func(context.Context, string, []byte, string) (string, error)
}

func (s *uploaderStub) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.uploadFn(ctx, key, data, contentType)
}

func strPtr(s string) *string { return &s }

func TestResolveCachesUser(t *testing.T) {
	var fetches int32
	store := &userStoreStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			atomic.AddInt32(&fetches, 1)
			return &models.User{ID: id, Username: strPtr("alice")}, nil
		},
	}
	svc := NewUserService(store, nil, "secret")

	first, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "second resolve must be a cache hit")
}

func TestResolveNotFound(t *testing.T) {
	var fetches int32
	store := &userStoreStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			atomic.AddInt32(&fetches, 1)
			return nil, models.ErrUserNotFound
		},
	}
	svc := NewUserService(store, nil, "secret")

	_, err := svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	// Failures are not cached
	_, err = svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))
}

func TestResolveCoalescesConcurrentMisses(t *testing.T) {
	var fetches int32
	store := &userStoreStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			atomic.AddInt32(&fetches, 1)
			time.Sleep(50 * time.Millisecond)
			return &models.User{ID: id}, nil
		},
	}
	svc := NewUserService(store, nil, "secret")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := svc.Resolve(context.Background(), "cold")
			assert.NoError(t, err)
			assert.Equal(t, "cold", user.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "concurrent cold misses share one fetch")
}

func TestUpdateUsernameInvalidatesCache(t *testing.T) {
	name := "old"
	store := &userStoreStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: strPtr(name)}, nil
		},
		updateUsernameFn: func(_ context.Context, _, username string) error {
			name = username
			return nil
		},
	}
	svc := NewUserService(store, nil, "secret")

	cached, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "old", *cached.Username)

	updated, err := svc.UpdateUsername(context.Background(), "u1", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", *updated.Username)

	resolved, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", *resolved.Username)
}

func TestCreateUserAnonymous(t *testing.T) {
	var created *models.User
	store := &userStoreStub{
		createFn: func(_ context.Context, user *models.User) error {
			created = user
			return nil
		},
	}
	svc := NewUserService(store, nil, "secret")

	user, token, err := svc.CreateUser(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.True(t, user.IsAnonymous)
	assert.Nil(t, user.Email)
	assert.NotEmpty(t, user.ID)

	// The issued token must round-trip back to the same user
	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestCreateUserWithEmail(t *testing.T) {
	store := &userStoreStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
	}
	svc := NewUserService(store, nil, "secret")

	user, _, err := svc.CreateUser(context.Background(), strPtr("a@b.se"))
	require.NoError(t, err)
	assert.False(t, user.IsAnonymous)
	assert.Equal(t, "a@b.se", *user.Email)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	svc := NewUserService(&userStoreStub{}, nil, "secret")

	_, err := svc.ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewUserService(&userStoreStub{}, nil, "secret-a")
	verifier := NewUserService(&userStoreStub{}, nil, "secret-b")

	token, err := issuer.GenerateJWT("u1")
	require.NoError(t, err)

	_, err = verifier.ValidateJWT(token)
	assert.Error(t, err)
}

func TestUpdateProfilePicture(t *testing.T) {
	var uploadedKey string
	photoURL := ""
	store := &userStoreStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, PhotoURL: &photoURL}, nil
		},
		updatePhotoURLFn: func(_ context.Context, _, url string) error {
			photoURL = url
			return nil
		},
	}
	blobs := &uploaderStub{
		uploadFn: func(_ context.Context, key string, _ []byte, _ string) (string, error) {
			uploadedKey = key
			return "https://bucket.s3.eu-north-1.amazonaws.com/" + key, nil
		},
	}
	svc := NewUserService(store, blobs, "secret")

	user, err := svc.UpdateProfilePicture(context.Background(), "u1", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "profile_pictures/u1.jpg", uploadedKey)
	assert.Contains(t, *user.PhotoURL, uploadedKey)
}
