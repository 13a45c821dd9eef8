package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/msgraph"
)

type graphSender struct {
	client      *msgraph.Client
	attachments bool
}

func newGraphSender(cfg entity.TransportConfig, dep Dependency, attachments bool) *graphSender {
	tokens := msgraph.NewClientCredentials(msgraph.Credentials{
		TenantID:     cfg.TenantID,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthorityURL: dep.GraphAuthorityURL,
		Cache:        cfg.CacheGraphToken,
		HTTPClient:   dep.HTTPClient,
	})

	opts := make([]msgraph.Option, 0, 2)
	if dep.GraphBaseURL != "" {
		opts = append(opts, msgraph.WithBaseURL(dep.GraphBaseURL))
	}
	if dep.HTTPClient != nil {
		opts = append(opts, msgraph.WithHTTPClient(dep.HTTPClient))
	}

	return &graphSender{
		client:      msgraph.NewClient(tokens, opts...),
		attachments: attachments,
	}
}

func (g *graphSender) send(ctx context.Context, msg entity.OutgoingMessage) (entity.SendResult, error) {
	var attachments []msgraph.FileAttachment
	if g.attachments {
		attachments = lo.Map(msg.Images, func(img entity.InlineImage, _ int) msgraph.FileAttachment {
			return msgraph.NewInlineAttachment(img.Filename, img.ContentType, img.ContentID, img.Content)
		})
	}

	err := g.client.SendMail(ctx, msg.From, msgraph.NewHTMLMessage(msg.Subject, msg.HTMLBody, msg.To, attachments))
	if err == nil {
		return entity.Sent(), nil
	}

	apiPrefix, otherPrefix := "Microsoft Graph API error: ", "An error occurred while sending email: "
	if g.attachments {
		apiPrefix = "Microsoft Graph API error with attachments: "
		otherPrefix = "An error occurred while sending email via Microsoft Graph with attachments: "
	}

	var authErr *msgraph.AuthError
	if errors.As(err, &authErr) {
		return entity.Failed(otherPrefix + err.Error()), fmt.Errorf("%w: %w", entity.ErrAuth, err)
	}

	return entity.Failed(apiPrefix + err.Error()), fmt.Errorf("%w: %w", entity.ErrTransport, err)
}
