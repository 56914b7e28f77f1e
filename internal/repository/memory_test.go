package repository

import (
	"context"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, &models.Session{ID: "s1", UserID: "u1"}, time.Hour))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)

	now = now.Add(2 * time.Hour)
	got, err = repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.SaveSession(ctx, &models.Session{ID: "s2"}, time.Hour))
	require.NoError(t, repo.DeleteSession(ctx, "s2"))
	got, _ = repo.GetSession(ctx, "s2")
	assert.Nil(t, got)

	t.Run("RateLimit", func(t *testing.T) {
		allowed, _ := repo.CheckRateLimit(ctx, "k", 2, time.Minute)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, "k", 2, time.Minute)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, "k", 2, time.Minute)
		assert.False(t, allowed)

		now = now.Add(2 * time.Minute)
		allowed, _ = repo.CheckRateLimit(ctx, "k", 2, time.Minute)
		assert.True(t, allowed)

		require.NoError(t, repo.ResetRateLimit(ctx, "k"))
		allowed, _ = repo.CheckRateLimit(ctx, "k", 1, time.Minute)
		assert.True(t, allowed)
	})
}
