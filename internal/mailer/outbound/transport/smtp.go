package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/mail"
)

const msgSMTPAuth = "Authentication failed. Please check your email credentials."

type smtpSender struct {
	client mail.Mail
	err    error
}

func newSMTPSender(cfg entity.TransportConfig, dep Dependency) *smtpSender {
	host, err := cfg.SMTPHost()
	if err != nil {
		return &smtpSender{err: err}
	}

	port := cfg.SMTPPort
	if port == 0 {
		port = entity.DefaultSMTPPort
	}

	client, err := mail.NewSMTP(mail.SMTPConfig{
		Host:       host,
		Port:       port,
		Username:   cfg.SenderEmail,
		Password:   cfg.SenderPassword,
		From:       cfg.SenderEmail,
		RequireTLS: cfg.SMTPRequireTLS,
		TLSConfig:  dep.SMTPTLSConfig,
		Timeout:    dep.SMTPTimeout,
	})
	if err != nil {
		return &smtpSender{err: fmt.Errorf("%w: %w", entity.ErrConfig, err)}
	}

	return &smtpSender{client: client}
}

func (s *smtpSender) send(ctx context.Context, msg entity.OutgoingMessage) (entity.SendResult, error) {
	if s.err != nil {
		return entity.Failed("An error occurred while sending email: " + s.err.Error()), s.err
	}

	err := s.client.Send(ctx, mail.Message{
		From:     msg.From,
		To:       []string{msg.To},
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
		Inline: lo.Map(msg.Images, func(img entity.InlineImage, _ int) mail.Inline {
			return mail.Inline{
				ContentID:   img.ContentID,
				Filename:    img.Filename,
				ContentType: img.ContentType,
				Data:        img.Content,
			}
		}),
	})
	if err == nil {
		return entity.Sent(), nil
	}

	var protoErr *mail.ProtocolError
	switch {
	case errors.Is(err, mail.ErrAuthentication):
		return entity.Failed(msgSMTPAuth), fmt.Errorf("%w: %w", entity.ErrAuth, err)
	case errors.As(err, &protoErr), errors.Is(err, mail.ErrSMTPStartTLSUnsupported):
		return entity.Failed("SMTP error occurred: " + err.Error()), fmt.Errorf("%w: %w", entity.ErrTransport, err)
	default:
		return entity.Failed("An error occurred while sending email: " + err.Error()), fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}
}
