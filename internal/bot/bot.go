package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/metrics"
	"github.com/SamFelix03/cummadashboard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Moderator is the part of the facility service the bot drives.
type Moderator interface {
	ListForModeration(ctx context.Context, status models.FacilityStatus, limit, offset int) ([]*models.Facility, error)
	SetStatus(ctx context.Context, id string, status models.FacilityStatus, changedBy string) (*models.Facility, error)
}

// RateLimiter is satisfied by the session repositories.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Bot is the back office moderation bot. Only configured admin ids may
// list pending facilities and publish or reject them.
type Bot struct {
	tgService  domain.TelegramSender
	facilities Moderator
	limiter    RateLimiter
	admins     map[int64]bool
	config     config.TelegramConfig
	logger     *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramSender,
	cfg config.TelegramConfig,
	facilities Moderator,
	limiter RateLimiter,
	logger *zerolog.Logger,
) (*Bot, error) {
	if tgService == nil {
		return nil, fmt.Errorf("telegram client is required")
	}
	if facilities == nil {
		return nil, fmt.Errorf("facility moderator is required")
	}

	admins := make(map[int64]bool, len(cfg.Admins))
	for _, id := range cfg.Admins {
		admins[id] = true
	}

	return &Bot{
		tgService:  tgService,
		facilities: facilities,
		limiter:    limiter,
		admins:     admins,
		config:     cfg,
		logger:     logging.Component(logger, "moderation_bot"),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Int("admins", len(b.admins)).Msg("authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("bot stopping")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		metrics.ObserveBotUpdate(time.Since(start))
	}()

	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	l := b.logger.With().Str("request_id", uuid.New().String()).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		from := senderOf(update)
		if from == nil {
			return
		}

		if !b.isAdmin(from.ID) && !b.allow(updateCtx, from.ID) {
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update.CallbackQuery)
			return
		}
		if update.Message != nil {
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

func senderOf(update tgbotapi.Update) *tgbotapi.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	}
	return nil
}

// changedBy names the moderator in facility events and logs.
func changedBy(user *tgbotapi.User) string {
	if user.UserName != "" {
		return "telegram:" + user.UserName
	}
	return fmt.Sprintf("telegram:%d", user.ID)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.tgService.Send(c); err != nil {
		b.logger.Error().Err(err).Msg("failed to send telegram message")
	}
}
