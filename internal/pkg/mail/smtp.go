package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

var (
	// ErrSMTPHostPortRequired is returned when Host/Port are missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipients is returned when To is empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when both Message.From and the configured default From are empty.
	ErrSMTPNoSender = errors.New("no sender provided")
	// ErrSMTPStartTLSUnsupported is returned when TLS is required but the server does not offer STARTTLS.
	ErrSMTPStartTLSUnsupported = errors.New("smtp server does not support STARTTLS")
	// ErrAuthentication wraps every failure of the AUTH exchange.
	ErrAuthentication = errors.New("smtp authentication failed")
)

// ProtocolError is an error reply from the SMTP server at a given stage of
// the exchange (starttls, auth, mail, rcpt, data, quit).
type ProtocolError struct {
	Stage string
	Code  int
	Msg   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Stage, e.Code, e.Msg)
}

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port.
	Port int
	// Username is the SMTP authentication username.
	Username string
	// Password is the SMTP authentication password.
	Password string
	// From is the default sender when Message.From is empty.
	From string
	// RequireTLS fails the send when the server does not offer STARTTLS.
	RequireTLS bool
	// TLSConfig overrides the STARTTLS client configuration.
	TLSConfig *tls.Config
	// Timeout bounds dialing and the whole exchange when ctx has no deadline.
	Timeout time.Duration
}

// SMTP is a Mail implementation backed by net/smtp. Each Send opens its own
// connection and always closes it.
type SMTP struct {
	cfg  SMTPConfig
	addr string
	now  func() time.Time
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &SMTP{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		now:  time.Now,
	}, nil
}

// Send delivers a message over SMTP.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.cfg.From
	}
	if from == "" {
		return ErrSMTPNoSender
	}

	raw, err := Build(from, msg, s.now())
	if err != nil {
		return fmt.Errorf("mail: build message: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", s.addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return classify("greeting", err)
	}
	defer c.Close()

	if err := s.exchange(c, from, msg.To, raw); err != nil {
		return err
	}

	if err := c.Quit(); err != nil {
		return classify("quit", err)
	}

	return nil
}

func (s *SMTP) exchange(c *smtp.Client, from string, to []string, raw []byte) error {
	if ok, _ := c.Extension("STARTTLS"); ok {
		tlsCfg := s.cfg.TLSConfig
		if tlsCfg == nil {
			tlsCfg = &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
		}
		if err := c.StartTLS(tlsCfg); err != nil {
			return classify("starttls", err)
		}
	} else if s.cfg.RequireTLS {
		return ErrSMTPStartTLSUnsupported
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("%w: %w", ErrAuthentication, classify("auth", err))
		}
	}

	if err := c.Mail(from); err != nil {
		return classify("mail", err)
	}

	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return classify("rcpt", err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return classify("data", err)
	}

	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return classify("data", err)
	}

	if err := w.Close(); err != nil {
		return classify("data", err)
	}

	return nil
}

// Close implements io.Closer; SMTP keeps no connection between sends.
func (s *SMTP) Close() error {
	return nil
}

func classify(stage string, err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return &ProtocolError{Stage: stage, Code: tpErr.Code, Msg: tpErr.Msg}
	}
	return fmt.Errorf("mail: %s: %w", stage, err)
}
