package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SamFelix03/cummadashboard/internal/bot"
	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/events"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/notify"
	"github.com/SamFelix03/cummadashboard/internal/repository"
	"github.com/SamFelix03/cummadashboard/internal/service"
	"github.com/SamFelix03/cummadashboard/internal/validation"

	"github.com/rs/zerolog"
)

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
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if cfg.Telegram.BotToken == "" {
		return errors.New("telegram bot_token is required for the moderation bot")
	}
	if len(cfg.Telegram.Admins) == 0 {
		logger.Warn().Msg("no telegram admins configured, every command will be refused")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, _, err := repository.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("open store")
		return err
	}
	defer repo.Close()

	sessions, redisClient := repository.OpenSessions(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	tg, err := bot.Connect(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		return err
	}

	eventBus := events.NewEventBus()
	if cfg.Telegram.OpsChatID != 0 {
		notifier := notify.NewOpsNotifier(tg, cfg.Telegram.OpsChatID, logger)
		notifier.Subscribe(eventBus)
		go notifier.Run(ctx)
	}

	facilities := service.NewFacilityService(repo, eventBus, validation.New(), logging.Component(logger, "facility_service"))

	moderationBot, err := bot.NewBot(tg, cfg.Telegram, facilities, sessions, logger)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	go func() {
		<-ctx.Done()
		moderationBot.Stop()
	}()

	moderationBot.Start(ctx)
	logger.Info().Msg("bot stopped")
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
	return cfg, logging.Component(baseLogger, "bot-main"), closer, nil
}
