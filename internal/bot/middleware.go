package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("recovered from panic in update handler")
		}
	}()
	handler()
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}

// allow applies the per-sender message limit. A failing limiter lets the
// update through.
func (b *Bot) allow(ctx context.Context, userID int64) bool {
	if b.limiter == nil || b.config.RateLimitMessages <= 0 {
		return true
	}

	window := time.Duration(b.config.RateLimitWindowSec) * time.Second
	allowed, err := b.limiter.CheckRateLimit(ctx, fmt.Sprintf("bot:%d", userID), b.config.RateLimitMessages, window)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
		return true
	}
	if !allowed {
		zerolog.Ctx(ctx).Warn().Int64("user_id", userID).Msg("rate limit exceeded")
	}
	return allowed
}
