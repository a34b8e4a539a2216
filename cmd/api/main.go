package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tablebook/internal/api"
	"tablebook/internal/config"
	"tablebook/internal/database"
	"tablebook/internal/domain"
	"tablebook/internal/events"
	"tablebook/internal/export"
	"tablebook/internal/logging"
	"tablebook/internal/metrics"
	"tablebook/internal/models"
	"tablebook/internal/repository"
	"tablebook/internal/schedule"
	"tablebook/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := logging.Component(baseLogger, "api-main")

	if err := prepareDirectories(cfg); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedVenue(ctx, db, cfg, &logger); err != nil {
		return err
	}

	metrics.Register()

	sessions := initSessions(ctx, cfg, &logger)

	eventBus := events.NewEventBus()
	subscribeReservationEvents(eventBus, &logger)

	engine := schedule.NewEngine(db, schedule.Config{
		NextOpenSearchDays: cfg.Booking.NextOpenSearchDays,
		Search:             cfg.ScheduleSearchConfig(),
	}, &logger)

	bookingService := service.NewBookingService(db, engine, eventBus, cfg.Booking.MaxDaysAhead, &logger)
	draftService := service.NewDraftService(sessions, models.RateLimitRequests, models.RateLimitWindow*time.Second, &logger)
	exportService := export.NewExportService(db, cfg.API.Exports.Path, &logger)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	apiServer := api.NewHTTPServer(cfg.API, bookingService, draftService, exportService, db, &logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}

func prepareDirectories(cfg *config.Config) error {
	dirs := []string{
		filepath.Dir(cfg.Database.Path),
		cfg.API.Exports.Path,
	}
	if cfg.Backup.Enabled {
		dirs = append(dirs, cfg.Backup.StoragePath)
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// seedVenue loads tables, weekly hours and the default duration from the
// config on first start. Existing rows are left untouched: the database is
// the source of truth once the venue is live.
func seedVenue(ctx context.Context, db *database.DB, cfg *config.Config, logger *zerolog.Logger) error {
	if err := db.SeedTables(ctx, cfg.Venue.TableModels()); err != nil {
		return fmt.Errorf("failed to seed tables: %w", err)
	}
	if err := db.SeedWeeklyHours(ctx, cfg.Venue.WeeklyHoursModels()); err != nil {
		return fmt.Errorf("failed to seed weekly hours: %w", err)
	}
	if err := db.SeedDefaultDuration(ctx, cfg.Venue.DefaultDurationMin); err != nil {
		return fmt.Errorf("failed to seed default duration: %w", err)
	}
	logger.Info().Str("venue", cfg.Venue.Name).Msg("venue seeded")
	return nil
}

// initSessions wires the draft store: Redis with memory failover when
// configured, plain memory otherwise.
func initSessions(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.SessionRepository {
	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second
	memory := repository.NewMemorySessionRepository(ttl)

	if cfg.Redis.Address == "" {
		logger.Info().Msg("Redis not configured, using in-memory session store")
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unreachable at startup, failover will retry")
	}

	primary := repository.NewRedisSessionRepository(client, ttl)
	return repository.NewFailoverSessionRepository(primary, memory, logger)
}

func subscribeReservationEvents(bus *events.EventBus, logger *zerolog.Logger) {
	audit := func(event *events.Event) error {
		logger.Info().
			Str("event_type", event.Type).
			RawJSON("payload", event.Payload).
			Msg("reservation event")
		return nil
	}

	for _, eventType := range []string{
		events.EventReservationCreated,
		events.EventReservationConfirmed,
		events.EventReservationCancelled,
		events.EventReservationCompleted,
		events.EventReservationNoShow,
		events.EventReservationRescheduled,
	} {
		bus.Subscribe(eventType, audit)
	}
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
