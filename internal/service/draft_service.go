package service

import (
	"context"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"

	"github.com/rs/zerolog"
)

// DraftService manages booking drafts for interactive sessions and applies
// per-session rate limiting.
type DraftService struct {
	sessions  domain.SessionRepository
	rateLimit int
	rateWin   time.Duration
	logger    *zerolog.Logger
}

func NewDraftService(sessions domain.SessionRepository, rateLimit int, rateWindow time.Duration, logger *zerolog.Logger) *DraftService {
	if rateLimit <= 0 {
		rateLimit = models.RateLimitRequests
	}
	if rateWindow <= 0 {
		rateWindow = models.RateLimitWindow * time.Second
	}
	return &DraftService{
		sessions:  sessions,
		rateLimit: rateLimit,
		rateWin:   rateWindow,
		logger:    logger,
	}
}

func (s *DraftService) GetDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error) {
	draft, err := s.sessions.GetDraft(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get draft")
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) SaveDraft(ctx context.Context, draft *models.BookingDraft) error {
	return s.sessions.SaveDraft(ctx, draft)
}

func (s *DraftService) ClearDraft(ctx context.Context, sessionID string) error {
	return s.sessions.ClearDraft(ctx, sessionID)
}

// Allowed checks the session against the sliding rate limit window.
func (s *DraftService) Allowed(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.CheckRateLimit(ctx, sessionID, s.rateLimit, s.rateWin)
}
