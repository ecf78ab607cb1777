// Package mailx delivers transactional mail such as one-time passcodes.
package mailx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/knadh/smtppool"
)

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

var ErrNoRecipient = errors.New("mailx: message has no recipient")

// SMTPConfig describes one SMTP relay.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	From               string
	MaxConns           int
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SMTPSender sends through a pooled set of SMTP connections.
type SMTPSender struct {
	pool *smtppool.Pool
	from string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("mailx: smtp host and from address are required")
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            cfg.Host,
		Port:            cfg.Port,
		MaxConns:        cfg.MaxConns,
		IdleTimeout:     cfg.Timeout,
		PoolWaitTimeout: cfg.Timeout,
		TLSConfig: &tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.InsecureSkipVerify, // #nosec G402 - opt-in for local relays
		},
		Auth: auth,
	})
	if err != nil {
		return nil, fmt.Errorf("mailx: smtp pool: %w", err)
	}

	return &SMTPSender{pool: pool, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.pool.Send(smtppool.Email{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    []byte(msg.Body),
	})
}

func (s *SMTPSender) Close() error {
	s.pool.Close()
	return nil
}

// LogSender writes messages to the logger instead of sending them. It is the
// development mailer and the only place a passcode is ever logged.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	s.log.InfoContext(ctx, "mail (not sent)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

func (s *LogSender) Close() error { return nil }

// PasscodeMessage renders the mail carrying a one-time passcode.
func PasscodeMessage(to, purpose, code string, validFor time.Duration) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s code", strings.ToLower(purpose)),
		Body: fmt.Sprintf(
			"Your one-time passcode is %s.\n\nIt expires in %s. If you did not request it, ignore this email.\n",
			code, humanDuration(validFor),
		),
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
