package repository

import (
	"context"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestRedisSessionRepository(t *testing.T) {
	s, client := newMiniredis(t)
	repo := NewRedisSessionRepository(client)
	ctx := context.Background()

	session := &models.Session{
		ID:        "jti-1",
		UserID:    "user-1",
		UserType:  models.UserTypeStartup,
		ProfileID: "startup-1",
		Email:     "a@b.io",
	}

	t.Run("SaveAndGet", func(t *testing.T) {
		require.NoError(t, repo.SaveSession(ctx, session, time.Hour))

		got, err := repo.GetSession(ctx, "jti-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, session.UserID, got.UserID)
		assert.Equal(t, models.UserTypeStartup, got.UserType)
		assert.True(t, s.Exists("session:jti-1"))
	})

	t.Run("Expires", func(t *testing.T) {
		s.FastForward(2 * time.Hour)
		got, err := repo.GetSession(ctx, "jti-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.SaveSession(ctx, session, time.Hour))
		require.NoError(t, repo.DeleteSession(ctx, "jti-1"))
		got, err := repo.GetSession(ctx, "jti-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := repo.CheckRateLimit(ctx, "signin:a@b.io", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := repo.CheckRateLimit(ctx, "signin:a@b.io", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		require.NoError(t, repo.ResetRateLimit(ctx, "signin:a@b.io"))
		allowed, err = repo.CheckRateLimit(ctx, "signin:a@b.io", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		s.FastForward(2 * time.Minute)
		assert.False(t, s.Exists("rate_limit:signin:a@b.io"))
	})

	t.Run("NilClient", func(t *testing.T) {
		nilRepo := NewRedisSessionRepository(nil)
		_, err := nilRepo.GetSession(ctx, "x")
		assert.Error(t, err)
		assert.Error(t, nilRepo.SaveSession(ctx, session, time.Minute))
	})

	t.Run("ServerDown", func(t *testing.T) {
		bad := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer bad.Close()
		_, err := NewRedisSessionRepository(bad).GetSession(ctx, "jti-1")
		assert.Error(t, err)
		assert.Error(t, Ping(ctx, bad))
		assert.NoError(t, Ping(ctx, client))
	})
}
