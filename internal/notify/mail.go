package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

const verificationSubject = "Verify your email address"

var verificationBody = template.Must(template.New("verify").Parse(
	`<p>Hi {{.Name}},</p>
<p>Please confirm your email address to finish setting up your account.</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>The link expires in 24 hours.</p>`))

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through an SMTP relay behind a circuit breaker.
type SMTPMailer struct {
	dialer sender
	from   string
	cb     *gobreaker.CircuitBreaker
	logger *zerolog.Logger
}

var _ domain.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg config.MailConfig, logger *zerolog.Logger) *SMTPMailer {
	l := logging.Component(logger, "mailer")
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		cb:     NewBreaker("smtp", 30*time.Second, l),
		logger: l,
	}
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, name, link string) error {
	var body bytes.Buffer
	if err := verificationBody.Execute(&body, struct{ Name, Link string }{name, link}); err != nil {
		return fmt.Errorf("render verification mail: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", verificationSubject)
	msg.SetBody("text/html", body.String())

	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.dialer.DialAndSend(msg)
	})
	if err != nil {
		metrics.IncMail("failed")
		return fmt.Errorf("send verification mail to %s: %w", to, err)
	}

	metrics.IncMail("sent")
	m.logger.Info().Str("to", to).Msg("verification mail sent")
	return nil
}

// LogMailer writes the verification link to the log instead of sending
// mail. It is used when no SMTP relay is configured.
type LogMailer struct {
	logger *zerolog.Logger
}

func NewLogMailer(logger *zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logging.Component(logger, "mailer")}
}

func (m *LogMailer) SendVerification(_ context.Context, to, name, link string) error {
	metrics.IncMail("logged")
	m.logger.Info().Str("to", to).Str("name", name).Str("link", link).Msg("verification mail (smtp disabled)")
	return nil
}
