package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *mockRepo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockRepo) DeleteSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) ResetRateLimit(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestFailoverSessionRepository(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()
	session := &models.Session{ID: "s1", UserID: "u1"}

	t.Run("PrimaryHealthy", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := NewMemorySessionRepository()
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		primary.On("SaveSession", ctx, session, time.Hour).Return(nil).Once()
		primary.On("GetSession", ctx, "s1").Return(session, nil).Once()

		require.NoError(t, repo.SaveSession(ctx, session, time.Hour))
		got, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, session, got)

		fromFallback, _ := fallback.GetSession(ctx, "s1")
		assert.Nil(t, fromFallback)
		primary.AssertExpectations(t)
	})

	t.Run("FallsBackAndRecovers", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := NewMemorySessionRepository()
		repo := NewFailoverSessionRepository(primary, fallback, &logger)
		now := time.Now()
		repo.now = func() time.Time { return now }

		primary.On("SaveSession", ctx, session, time.Hour).Return(errors.New("redis down")).Once()
		require.NoError(t, repo.SaveSession(ctx, session, time.Hour))

		// still inside the recovery interval: primary is skipped
		got, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)

		now = now.Add(2 * time.Minute)
		primary.On("GetSession", ctx, "s1").Return(nil, nil).Once()
		got, err = repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, got, "session issued during outage must still resolve")

		primary.On("CheckRateLimit", ctx, "k", 1, time.Minute).Return(true, nil).Once()
		allowed, err := repo.CheckRateLimit(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		primary.AssertExpectations(t)
	})

	t.Run("DeleteClearsBoth", func(t *testing.T) {
		primary := new(mockRepo)
		fallback := NewMemorySessionRepository()
		repo := NewFailoverSessionRepository(primary, fallback, &logger)
		require.NoError(t, fallback.SaveSession(ctx, session, time.Hour))

		primary.On("DeleteSession", ctx, "s1").Return(nil).Once()
		require.NoError(t, repo.DeleteSession(ctx, "s1"))

		got, _ := fallback.GetSession(ctx, "s1")
		assert.Nil(t, got)
		primary.AssertExpectations(t)
	})

	t.Run("RateLimitFallback", func(t *testing.T) {
		primary := new(mockRepo)
		repo := NewFailoverSessionRepository(primary, NewMemorySessionRepository(), &logger)

		primary.On("CheckRateLimit", ctx, "k", 1, time.Minute).Return(false, errors.New("boom")).Once()
		allowed, err := repo.CheckRateLimit(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		primary.On("ResetRateLimit", mock.Anything, mock.Anything).Maybe().Return(nil)
		assert.NoError(t, repo.ResetRateLimit(ctx, "k"))
	})
}
