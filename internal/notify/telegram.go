package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/events"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const opsQueueSize = 100

// OpsNotifier posts marketplace events to the operators chat. Handlers only
// queue the text; Run delivers it so request paths never wait on Telegram.
type OpsNotifier struct {
	bot    domain.TelegramSender
	chatID int64
	queue  chan string
	cb     *gobreaker.CircuitBreaker
	logger *zerolog.Logger
}

func NewOpsNotifier(bot domain.TelegramSender, chatID int64, logger *zerolog.Logger) *OpsNotifier {
	l := logging.Component(logger, "ops_notifier")
	return &OpsNotifier{
		bot:    bot,
		chatID: chatID,
		queue:  make(chan string, opsQueueSize),
		cb:     NewBreaker("telegram", time.Minute, l),
		logger: l,
	}
}

// Subscribe registers the notifier on the events operators care about.
func (n *OpsNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventFacilitySubmitted, n.onFacility)
	bus.Subscribe(events.EventFacilityStatusChanged, n.onFacility)
	bus.Subscribe(events.EventBookingRequested, n.onBooking)
	bus.Subscribe(events.EventBookingApproved, n.onBooking)
	bus.Subscribe(events.EventUserRegistered, n.onUser)
}

func (n *OpsNotifier) onFacility(e *events.Event) error {
	var p events.FacilityEventPayload
	if err := e.Decode(&p); err != nil {
		return fmt.Errorf("decode facility event: %w", err)
	}
	label := models.FacilityType(p.FacilityType).Label()

	var text string
	switch e.Type {
	case events.EventFacilitySubmitted:
		text = fmt.Sprintf("🆕 Facility awaiting review\n%s (%s)\nID: %s\nUse /approve %s or /reject %s",
			p.Name, label, p.FacilityID, p.FacilityID, p.FacilityID)
	default:
		text = fmt.Sprintf("Facility %s (%s) is now %s (was %s) by %s",
			p.Name, label, p.Status, p.PreviousStatus, p.ChangedBy)
	}
	n.enqueue(text)
	return nil
}

func (n *OpsNotifier) onBooking(e *events.Event) error {
	var p events.BookingEventPayload
	if err := e.Decode(&p); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}

	verb := "requested"
	if e.Type == events.EventBookingApproved {
		verb = "approved"
	}
	n.enqueue(fmt.Sprintf("📅 Booking %s\n%s → %s\nPlan: %s, amount %.2f",
		verb, p.StartupName, p.FacilityName, p.RentalPlan, p.Amount))
	return nil
}

func (n *OpsNotifier) onUser(e *events.Event) error {
	var p events.UserEventPayload
	if err := e.Decode(&p); err != nil {
		return fmt.Errorf("decode user event: %w", err)
	}
	n.enqueue(fmt.Sprintf("👤 New %s account: %s (%s)", p.UserType, p.DisplayName, p.Email))
	return nil
}

func (n *OpsNotifier) enqueue(text string) {
	select {
	case n.queue <- text:
	default:
		n.logger.Warn().Msg("ops notification queue full, dropping message")
	}
}

// Run delivers queued messages until ctx is cancelled.
func (n *OpsNotifier) Run(ctx context.Context) {
	n.logger.Info().Int64("chat_id", n.chatID).Msg("ops notifier started")
	for {
		select {
		case <-ctx.Done():
			n.logger.Info().Msg("ops notifier stopped")
			return
		case text := <-n.queue:
			if err := n.Send(text); err != nil {
				n.logger.Error().Err(err).Msg("failed to send ops notification")
			}
		}
	}
}

// Send posts text to the ops chat through the circuit breaker.
func (n *OpsNotifier) Send(text string) error {
	_, err := n.cb.Execute(func() (interface{}, error) {
		return n.bot.Send(tgbotapi.NewMessage(n.chatID, text))
	})
	return err
}
