package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tablebook/internal/config"
	"tablebook/internal/database"
	"tablebook/internal/domain"
	"tablebook/internal/export"
	"tablebook/internal/metrics"
	"tablebook/internal/schedule"
	"tablebook/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the reservation API: availability checks, bookings,
// status transitions, alternatives, and the admin surface for hours, tables
// and settings.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings *service.BookingService
	drafts   *service.DraftService
	exports  *export.ExportService
	store    domain.Store
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, bookings *service.BookingService, drafts *service.DraftService, exports *export.ExportService, store domain.Store, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		drafts:   drafts,
		exports:  exports,
		store:    store,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/alternatives", srv.handleAlternatives)
	mux.HandleFunc("/api/v1/overview", srv.handleOverview)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationByID)
	mux.HandleFunc("/api/v1/tables/", srv.handleTableCheck)
	mux.HandleFunc("/api/v1/sessions/", srv.handleSessionDraft)
	mux.HandleFunc("/api/v1/admin/hours", srv.handleWeeklyHours)
	mux.HandleFunc("/api/v1/admin/exceptions", srv.handleExceptions)
	mux.HandleFunc("/api/v1/admin/settings/default-duration", srv.handleDefaultDuration)
	mux.HandleFunc("/api/v1/admin/tables", srv.handleTables)
	mux.HandleFunc("/api/v1/admin/export", srv.handleExport)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeRejection maps the typed scheduling errors onto HTTP responses that
// explain themselves: every rejection carries a reason and, where one
// exists, a concrete suggestion.
func (s *HTTPServer) writeRejection(w http.ResponseWriter, err error) {
	var validationErr *schedule.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid":  false,
			"reason": "validation",
			"field":  validationErr.Field,
			"error":  validationErr.Message,
		})
		return
	}

	var closedErr *schedule.ClosedError
	if errors.As(err, &closedErr) {
		body := map[string]any{
			"valid":  false,
			"reason": "closed",
			"date":   closedErr.Date.Format("2006-01-02"),
		}
		if !closedErr.NextOpenDate.IsZero() {
			body["next_open_date"] = closedErr.NextOpenDate.Format("2006-01-02")
			body["opens_at"] = closedErr.OpensAt
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}

	var windowErr *schedule.InsufficientWindowError
	if errors.As(err, &windowErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid":             false,
			"reason":            "insufficient_window",
			"available_minutes": windowErr.AvailableMinutes,
			"required_minutes":  windowErr.RequiredMinutes,
		})
		return
	}

	var boundaryErr *schedule.BoundaryError
	if errors.As(err, &boundaryErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid":      false,
			"reason":     boundaryErr.Reason,
			"requested":  boundaryErr.Requested,
			"suggestion": boundaryErr.Suggestion,
		})
		return
	}

	var conflictErr *schedule.ConflictError
	if errors.As(err, &conflictErr) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"valid":        false,
			"reason":       "conflict",
			"conflicts":    conflictErr.Conflicts,
			"alternatives": conflictErr.Alternatives,
		})
		return
	}

	var transientErr *schedule.TransientStorageError
	if errors.As(err, &transientErr) {
		writeError(w, http.StatusServiceUnavailable, "temporary storage failure, retry")
		return
	}

	switch {
	case errors.Is(err, database.ErrPastDate):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid": false, "reason": "past_date",
		})
	case errors.Is(err, database.ErrDateTooFar):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid": false, "reason": "date_too_far",
		})
	case errors.Is(err, database.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, map[string]any{
			"valid": false, "reason": "slot_taken",
		})
	case errors.Is(err, database.ErrConcurrentModification):
		writeJSON(w, http.StatusConflict, map[string]any{
			"valid": false, "reason": "concurrent_modification",
		})
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error().Err(err).Msg("unhandled api error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
