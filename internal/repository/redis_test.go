package repository

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SaveAndGetDraft", func(t *testing.T) {
		draft := &models.BookingDraft{
			SessionID:   "web-abc",
			GuestName:   "Marco",
			Phone:       "+39333000111",
			PartySize:   2,
			Date:        time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			StartMin:    1170,
			DurationMin: 90,
			Origin:      models.OriginWeb,
		}

		err := repo.SaveDraft(ctx, draft)
		require.NoError(t, err)

		got, err := repo.GetDraft(ctx, "web-abc")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, draft.GuestName, got.GuestName)
		assert.Equal(t, draft.StartMin, got.StartMin)
		assert.Equal(t, draft.Origin, got.Origin)
	})

	t.Run("GetNonExistentDraft", func(t *testing.T) {
		got, err := repo.GetDraft(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearDraft", func(t *testing.T) {
		repo.SaveDraft(ctx, &models.BookingDraft{SessionID: "web-del"})

		err := repo.ClearDraft(ctx, "web-del")
		require.NoError(t, err)

		got, _ := repo.GetDraft(ctx, "web-del")
		assert.Nil(t, got)
	})

	t.Run("DraftExpires", func(t *testing.T) {
		repo.SaveDraft(ctx, &models.BookingDraft{SessionID: "web-ttl"})
		s.FastForward(time.Hour + time.Minute)

		got, err := repo.GetDraft(ctx, "web-ttl")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "session:789"
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisSessionRepository(nil, time.Hour)
		_, err := repo.GetDraft(ctx, "x")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		err := Ping(ctx, client)
		assert.NoError(t, err)
	})

	t.Run("Close", func(t *testing.T) {
		err := Close(client)
		assert.NoError(t, err)
	})
}
