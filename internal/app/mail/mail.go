/*
Package mail delivers account emails.

The Dispatcher interface is what the HTTP account routes depend on. SMTPDispatcher
hands OTP emails to an SMTP relay through go-mail and insists on STARTTLS before any
credentials are sent; LogDispatcher only logs and is used in development when no relay
is configured.
*/
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"backbench/internal/pkg/logx"
)

// Dispatcher sends one HTML email.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// Plaintext disables STARTTLS. Only local mail catchers should need it.
	Plaintext bool
}

// SMTPDispatcher sends mail through an SMTP relay.
type SMTPDispatcher struct {
	cfg    SMTPConfig
	logger zerolog.Logger
}

// NewSMTPDispatcher returns a dispatcher for cfg.
func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	return &SMTPDispatcher{
		cfg:    cfg,
		logger: logx.Component("Mail"),
	}
}

// Send delivers one message. The context bounds the whole SMTP conversation.
func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := d.message(to, subject, htmlBody)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(d.cfg.Host, d.clientOptions()...)
	if err != nil {
		return fmt.Errorf("mail: new client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}

	d.logger.Info().Str("to", to).Str("subject", subject).Msg("Email sent.")
	return nil
}

func (d *SMTPDispatcher) message(to, subject, htmlBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(d.cfg.From); err != nil {
		return nil, fmt.Errorf("mail: invalid sender %q: %w", d.cfg.From, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)
	return msg, nil
}

func (d *SMTPDispatcher) clientOptions() []gomail.Option {
	policy := gomail.TLSMandatory
	if d.cfg.Plaintext {
		policy = gomail.NoTLS
	}
	opts := []gomail.Option{
		gomail.WithPort(d.cfg.Port),
		gomail.WithTLSPolicy(policy),
	}
	if d.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(d.cfg.Username),
			gomail.WithPassword(d.cfg.Password),
		)
	}
	return opts
}

// LogDispatcher logs emails instead of sending them.
type LogDispatcher struct {
	logger zerolog.Logger
}

// NewLogDispatcher returns a LogDispatcher.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{logger: logx.Component("Mail")}
}

func (d *LogDispatcher) Send(_ context.Context, to, subject, htmlBody string) error {
	d.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(htmlBody)).
		Msg("SMTP not configured; email logged instead of sent.")
	return nil
}

// OTPSubject is the subject line of registration and resend emails.
const OTPSubject = "Welcome to Backbenchers"

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #fff; padding: 20px;">
    <h1 style="color: #333;">Welcome to Backbenchers</h1>
    <p>Hello {{.Email}},</p>
    <p>Thanks for registering. Explore our learning videos and don't forget to review the site.</p>
    <p>Here is your OTP: <strong style="font-size: 24px; color: #d41811;">{{.OTP}}</strong></p>
    <p>It expires in {{.Minutes}} minutes. Never share it with anyone.</p>
  </div>
</div>`))

// RenderOTP renders the OTP email body.
func RenderOTP(email, otp string, ttl time.Duration) (string, error) {
	var b bytes.Buffer
	err := otpTemplate.Execute(&b, struct {
		Email   string
		OTP     string
		Minutes int
	}{email, otp, int(ttl.Minutes())})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
