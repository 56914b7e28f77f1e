package bot

import (
	"errors"

	"github.com/SamFelix03/cummadashboard/internal/domain"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, domain.ErrNotFound) {
		return "⚠️ No facility with that id."
	}

	if domain.IsValidation(err) {
		return "⚠️ " + err.Error()
	}

	return "❌ Something went wrong while processing the command. Check the service logs."
}
