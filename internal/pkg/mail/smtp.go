package mail

import (
	"context"
	"crypto/tls"
	"errors"

	"gopkg.in/gomail.v2"
)

var (
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	ErrSMTPNoRecipients     = errors.New("no recipients provided")
	// ErrSMTPNoSender means neither Message.From nor SMTPConfig.From is set.
	ErrSMTPNoSender = errors.New("no sender provided")
)

// SMTPConfig configures the SMTP sender. From and DisplayName form the
// default sender used when Message.From is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	From        string
	DisplayName string

	// InsecureSkipVerify disables certificate checks. Local relays only.
	InsecureSkipVerify bool
}

// SMTP sends mail through gomail. STARTTLS is used when the server offers
// it; port 465 switches to implicit TLS.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

// NewSMTP validates cfg and returns a sender. No connection is made until Send.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for local relays
	}

	return &SMTP{dialer: d, from: cfg.From, name: cfg.DisplayName}, nil
}

// Send opens one connection per message. When ctx ends first Send returns
// ctx.Err(); the dial finishes in the background and its result is dropped.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is a no-op; Send does not keep connections open.
func (s *SMTP) Close() error {
	return nil
}

func (s *SMTP) build(msg Message) (*gomail.Message, error) {
	if len(msg.Recipients()) == 0 {
		return nil, ErrSMTPNoRecipients
	}

	m := gomail.NewMessage()
	switch {
	case msg.From != "":
		m.SetHeader("From", msg.From)
	case s.from != "":
		m.SetAddressHeader("From", s.from, s.name)
	default:
		return nil, ErrSMTPNoSender
	}

	for header, addrs := range map[string][]string{"To": msg.To, "Cc": msg.Cc, "Bcc": msg.Bcc} {
		if len(addrs) > 0 {
			m.SetHeader(header, addrs...)
		}
	}
	m.SetHeader("Subject", msg.Subject)

	if msg.TextBody != "" || msg.HTMLBody == "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	return m, nil
}
