package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/SamFelix03/cummadashboard/internal/metrics"
	"github.com/SamFelix03/cummadashboard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	cmdStart   = "start"
	cmdHelp    = "help"
	cmdPending = "pending"
	cmdApprove = "approve"
	cmdReject  = "reject"

	callbackApprove = "approve:"
	callbackReject  = "reject:"

	// pendingPageSize keeps a /pending reply within one Telegram message.
	pendingPageSize = 10
)

const helpText = `Facility moderation
/pending - facilities awaiting review
/approve <id> - publish a facility
/reject <id> - reject a facility`

// parseCommand splits "/approve@cumma_bot abc" into ("approve", "abc").
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", ""
	}
	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd, strings.Join(fields[1:], " ")
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	cmd, arg := parseCommand(msg.Text)
	if cmd == "" {
		return
	}

	if !b.isAdmin(msg.From.ID) {
		metrics.IncBotCommand(cmd, "denied")
		zerolog.Ctx(ctx).Warn().Int64("user_id", msg.From.ID).Str("command", cmd).Msg("command from non-admin")
		b.sendMessage(msg.Chat.ID, "⛔ This bot is for marketplace moderators only.")
		return
	}

	switch cmd {
	case cmdStart, cmdHelp:
		b.sendMessage(msg.Chat.ID, helpText)
	case cmdPending:
		b.handlePending(ctx, msg.Chat.ID)
	case cmdApprove:
		b.handleDecision(ctx, msg.Chat.ID, msg.From, arg, models.FacilityActive)
	case cmdReject:
		b.handleDecision(ctx, msg.Chat.ID, msg.From, arg, models.FacilityRejected)
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if !b.isAdmin(cq.From.ID) {
		metrics.IncBotCommand("callback", "denied")
		b.answerCallback(cq.ID, "Not allowed")
		return
	}
	if cq.Message == nil {
		b.answerCallback(cq.ID, "")
		return
	}

	var (
		id     string
		status models.FacilityStatus
	)
	switch {
	case strings.HasPrefix(cq.Data, callbackApprove):
		id, status = strings.TrimPrefix(cq.Data, callbackApprove), models.FacilityActive
	case strings.HasPrefix(cq.Data, callbackReject):
		id, status = strings.TrimPrefix(cq.Data, callbackReject), models.FacilityRejected
	default:
		b.answerCallback(cq.ID, "Unknown action")
		return
	}

	b.answerCallback(cq.ID, "")
	b.handleDecision(ctx, cq.Message.Chat.ID, cq.From, id, status)
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.tgService.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Error().Err(err).Msg("failed to answer callback query")
	}
}

func (b *Bot) handlePending(ctx context.Context, chatID int64) {
	pending, err := b.facilities.ListForModeration(ctx, models.FacilityPending, pendingPageSize, 0)
	if err != nil {
		metrics.IncBotCommand(cmdPending, "error")
		zerolog.Ctx(ctx).Error().Err(err).Msg("list pending facilities")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	metrics.IncBotCommand(cmdPending, "ok")

	if len(pending) == 0 {
		b.sendMessage(chatID, "✅ No facilities awaiting review.")
		return
	}

	for _, f := range pending {
		msg := tgbotapi.NewMessage(chatID, formatFacility(f))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Approve", callbackApprove+f.ID),
				tgbotapi.NewInlineKeyboardButtonData("❌ Reject", callbackReject+f.ID),
			),
		)
		b.send(msg)
	}
}

func (b *Bot) handleDecision(ctx context.Context, chatID int64, from *tgbotapi.User, id string, status models.FacilityStatus) {
	command := cmdApprove
	if status == models.FacilityRejected {
		command = cmdReject
	}

	id = strings.TrimSpace(id)
	if id == "" {
		b.sendMessage(chatID, fmt.Sprintf("Usage: /%s <facility id>", command))
		return
	}

	f, err := b.facilities.SetStatus(ctx, id, status, changedBy(from))
	if err != nil {
		metrics.IncBotCommand(command, "error")
		zerolog.Ctx(ctx).Error().Err(err).Str("facility_id", id).Str("status", string(status)).Msg("set facility status")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	metrics.IncBotCommand(command, "ok")

	verb := "published"
	if status == models.FacilityRejected {
		verb = "rejected"
	}
	b.sendMessage(chatID, fmt.Sprintf("Facility %q (%s) %s.", f.Details.Name, f.FacilityType.Label(), verb))
}

func formatFacility(f *models.Facility) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏢 %s\n", f.Details.Name)
	fmt.Fprintf(&sb, "Type: %s\n", f.FacilityType.Label())
	fmt.Fprintf(&sb, "Submitted: %s\n", f.UpdatedAt.Format("02 Jan 2006 15:04"))
	for _, p := range f.Details.RentalPlans {
		fmt.Fprintf(&sb, "• %s: %.2f\n", p.Name, p.Price)
	}
	fmt.Fprintf(&sb, "ID: %s", f.ID)
	return sb.String()
}
