package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"tablebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingDraft), args.Error(1)
}

func (m *mockRepo) SaveDraft(ctx context.Context, draft *models.BookingDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *mockRepo) ClearDraft(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverSessionRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverSessionRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		draft := &models.BookingDraft{SessionID: "s1"}
		primary.On("GetDraft", ctx, "s1").Return(draft, nil).Once()

		got, err := repo.GetDraft(ctx, "s1")
		assert.NoError(t, err)
		assert.Equal(t, draft, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		draft := &models.BookingDraft{SessionID: "s2"}
		primary.On("GetDraft", ctx, "s2").Return(nil, errors.New("fail")).Once()
		fallback.On("GetDraft", ctx, "s2").Return(draft, nil).Once()

		got, err := repo.GetDraft(ctx, "s2")
		assert.NoError(t, err)
		assert.Equal(t, draft, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		draft := &models.BookingDraft{SessionID: "s3"}
		primary.On("GetDraft", ctx, "s3").Return(draft, nil).Once()

		got, err := repo.GetDraft(ctx, "s3")
		assert.NoError(t, err)
		assert.Equal(t, draft, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetDraft", ctx, "s4").Return(nil, errors.New("still fail")).Once()
		fallback.On("GetDraft", ctx, "s4").Return(nil, nil).Once()

		_, err := repo.GetDraft(ctx, "s4")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SaveDraftSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		draft := &models.BookingDraft{SessionID: "s5"}
		primary.On("SaveDraft", ctx, draft).Return(nil).Once()

		err := repo.SaveDraft(ctx, draft)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("SaveDraftFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		draft := &models.BookingDraft{SessionID: "s6"}
		primary.On("SaveDraft", ctx, draft).Return(errors.New("fail")).Once()
		fallback.On("SaveDraft", ctx, draft).Return(nil).Once()

		err := repo.SaveDraft(ctx, draft)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearDraftFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("ClearDraft", ctx, "s7").Return(errors.New("fail")).Once()
		fallback.On("ClearDraft", ctx, "s7").Return(nil).Once()

		err := repo.ClearDraft(ctx, "s7")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("CheckRateLimitFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, "k1", 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, "k1", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "k1", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDownUsesFallback", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now()
		draft := &models.BookingDraft{SessionID: "s8"}
		fallback.On("SaveDraft", ctx, draft).Return(nil).Once()
		fallback.On("ClearDraft", ctx, "s8").Return(nil).Once()
		fallback.On("CheckRateLimit", ctx, "k2", 10, time.Minute).Return(true, nil).Once()

		assert.NoError(t, repo.SaveDraft(ctx, draft))
		assert.NoError(t, repo.ClearDraft(ctx, "s8"))
		allowed, err := repo.CheckRateLimit(ctx, "k2", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		fallback.AssertExpectations(t)
	})
}
