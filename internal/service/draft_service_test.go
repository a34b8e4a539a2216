package service

import (
	"context"
	"io"
	"testing"
	"time"

	"tablebook/internal/models"
	"tablebook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftService(rateLimit int) *DraftService {
	logger := zerolog.New(io.Discard)
	sessions := repository.NewMemorySessionRepository(30 * time.Minute)
	return NewDraftService(sessions, rateLimit, time.Minute, &logger)
}

func TestDraftLifecycle(t *testing.T) {
	svc := newDraftService(10)
	ctx := context.Background()

	got, err := svc.GetDraft(ctx, "web-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	draft := &models.BookingDraft{
		SessionID: "web-1",
		GuestName: "Marco",
		PartySize: 2,
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartMin:  1170,
		Origin:    models.OriginWeb,
	}
	require.NoError(t, svc.SaveDraft(ctx, draft))

	got, err = svc.GetDraft(ctx, "web-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Marco", got.GuestName)

	require.NoError(t, svc.ClearDraft(ctx, "web-1"))
	got, err = svc.GetDraft(ctx, "web-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftRateLimit(t *testing.T) {
	svc := newDraftService(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := svc.Allowed(ctx, "web-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := svc.Allowed(ctx, "web-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = svc.Allowed(ctx, "web-2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestDraftServiceDefaults(t *testing.T) {
	logger := zerolog.New(io.Discard)
	svc := NewDraftService(repository.NewMemorySessionRepository(time.Minute), 0, 0, &logger)
	assert.Equal(t, models.RateLimitRequests, svc.rateLimit)
	assert.Equal(t, models.RateLimitWindow*time.Second, svc.rateWin)
}
