package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/api"
	"github.com/SamFelix03/cummadashboard/internal/auth"
	"github.com/SamFelix03/cummadashboard/internal/bot"
	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/database"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/events"
	"github.com/SamFelix03/cummadashboard/internal/google"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/metrics"
	"github.com/SamFelix03/cummadashboard/internal/notify"
	"github.com/SamFelix03/cummadashboard/internal/repository"
	"github.com/SamFelix03/cummadashboard/internal/service"
	"github.com/SamFelix03/cummadashboard/internal/validation"
	"github.com/SamFelix03/cummadashboard/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, sqliteDB, err := repository.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("open store")
		return err
	}
	defer repo.Close()

	sessions, redisClient := repository.OpenSessions(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	eventBus := events.NewEventBus()
	eventBus.OnError(func(e *events.Event, err error) {
		logger.Error().Err(err).Str("event_type", e.Type).Msg("event handler failed")
	})

	ledger := initLedger(ctx, cfg, redisClient, logger)
	var ledgerQueue domain.LedgerQueue
	if ledger != nil {
		ledgerQueue = ledger
		goRun(func() { ledger.Start(ctx) })
	}

	if notifier := initOpsNotifier(cfg, eventBus, logger); notifier != nil {
		goRun(func() { notifier.Run(ctx) })
	}

	svc, err := buildServices(cfg, repo, sessions, eventBus, ledgerQueue, logger)
	if err != nil {
		return err
	}

	if sqliteDB != nil && cfg.Backup.Enabled {
		backup := database.NewBackupService(sqliteDB, cfg.Backup, logger)
		goRun(func() { backup.Start(ctx) })
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		goRun(func() { startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger) })
	}

	httpServer := api.NewHTTPServer(cfg.API, cfg.Session, svc, logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API, repo, logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
		goRun(func() { grpcServer.WatchHealth(ctx) })
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	logger.Info().
		Int("http_port", cfg.API.HTTP.Port).
		Bool("grpc", grpcServer != nil).
		Str("driver", cfg.Database.Driver).
		Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("background workers did not stop in time")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

func buildServices(
	cfg *config.Config,
	repo domain.Repository,
	sessions domain.SessionRepository,
	eventBus *events.EventBus,
	ledger domain.LedgerQueue,
	logger *zerolog.Logger,
) (api.Services, error) {
	tokens, err := auth.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.Issuer)
	if err != nil {
		return api.Services{}, fmt.Errorf("init tokens: %w", err)
	}
	authorizer, err := auth.NewAuthorizer(cfg.RBAC)
	if err != nil {
		return api.Services{}, err
	}

	var mailer domain.Mailer
	if cfg.Mail.Enabled() {
		mailer = notify.NewSMTPMailer(cfg.Mail, logger)
	} else {
		logger.Warn().Msg("smtp not configured, verification links are only logged")
		mailer = notify.NewLogMailer(logger)
	}

	v := validation.New()
	return api.Services{
		Auth: service.NewAuthService(repo, sessions, tokens, v, mailer, eventBus, cfg.Session, cfg.App.PublicURL,
			logging.Component(logger, "auth_service")),
		Facilities: service.NewFacilityService(repo, eventBus, v, logging.Component(logger, "facility_service")),
		Bookings:   service.NewBookingService(repo, eventBus, ledger, v, logging.Component(logger, "booking_service")),
		Profiles:   service.NewProfileService(repo, v, logging.Component(logger, "profile_service")),
		Authorizer: authorizer,
		Store:      repo,
	}, nil
}

// initLedger returns nil when the spreadsheet is not configured or the
// Sheets API cannot be reached at startup.
func initLedger(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *worker.LedgerWorker {
	if !cfg.Google.Enabled() {
		logger.Info().Msg("ledger spreadsheet not configured")
		return nil
	}

	sheets, err := google.NewLedgerService(ctx, cfg.Google, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without ledger")
		return nil
	}
	if err := sheets.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("ledger spreadsheet unreachable, continuing without ledger")
		return nil
	}
	if err := sheets.EnsureHeader(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to write ledger header")
	}
	if err := sheets.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to warm up ledger row cache")
	}

	logger.Info().Str("spreadsheet", cfg.Google.LedgerSpreadsheetID).Msg("google sheets connected")
	return worker.NewLedgerWorker(sheets, redisClient, cfg.Ledger, logger)
}

func initOpsNotifier(cfg *config.Config, eventBus *events.EventBus, logger *zerolog.Logger) *notify.OpsNotifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.OpsChatID == 0 {
		return nil
	}

	tg, err := bot.Connect(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, ops notifications disabled")
		return nil
	}

	notifier := notify.NewOpsNotifier(tg, cfg.Telegram.OpsChatID, logger)
	notifier.Subscribe(eventBus)
	return notifier
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
