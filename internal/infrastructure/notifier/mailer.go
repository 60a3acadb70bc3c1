package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/wolf-checkout-service/internal/domain"
	"github.com/wneessen/go-mail"
)

const channelEmail = "email"

type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// SMTPMailer sends customer emails. Unlike the operator notifiers it reports
// delivery failures to the caller.
type SMTPMailer struct {
	cfg      SMTPConfig
	logger   *slog.Logger
	failures FailureRecorder
}

func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger, failures FailureRecorder) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{
		cfg:      cfg,
		logger:   logger.With("component", "smtp_mailer"),
		failures: failures,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, email domain.Email) error {
	msg, err := m.buildMessage(email)
	if err != nil {
		return err
	}

	client, err := m.newClient()
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("failed to send email", "to", email.To, "subject", email.Subject, "error", err)
		if m.failures != nil {
			m.failures.RecordNotificationFailure(channelEmail)
		}
		return fmt.Errorf("%w: send email to %s: %v", domain.ErrNotificationFailed, email.To, err)
	}

	m.logger.Info("email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (m *SMTPMailer) buildMessage(email domain.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("%w: invalid recipient %q: %v", domain.ErrNotificationFailed, email.To, err)
	}
	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, email.HTMLBody)
	return msg, nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         m.cfg.Host,
			InsecureSkipVerify: m.cfg.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		}),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}
