package usecase

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/imaging"
)

const imageStyle = "max-width: 100%; height: auto; margin: 10px 0;"

var bodyPolicy = bluemonday.UGCPolicy()

// ComposeHTML renders the body paragraph followed by one <img> per image,
// separated by <hr>. Images are referenced by cid: or embedded as data URIs
// depending on strategy.
func ComposeHTML(body string, images []entity.InlineImage, strategy entity.Strategy) string {
	var b strings.Builder

	b.WriteString("<p>")
	b.WriteString(bodyPolicy.Sanitize(body))
	b.WriteString("</p>")

	for i, img := range images {
		if i > 0 {
			b.WriteString("<hr>")
		}
		b.WriteString(`<img src="`)
		b.WriteString(imageSource(img, strategy))
		b.WriteString(`" style="` + imageStyle + `" alt="Page `)
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(`">`)
	}

	return b.String()
}

func imageSource(img entity.InlineImage, strategy entity.Strategy) string {
	if strategy == entity.StrategyInlineBase64 {
		return "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Content)
	}
	return "cid:" + img.ContentID
}

// BuildMessage composes the message for the variant selected by cfg.
func BuildMessage(cfg entity.TransportConfig, subject, body string, pages []entity.ImagePage) entity.OutgoingMessage {
	variant := cfg.Variant()
	images := inlineImages(variant, pages)

	msg := entity.OutgoingMessage{
		From:     cfg.SenderEmail,
		To:       cfg.RecipientEmail,
		Subject:  subject,
		HTMLBody: ComposeHTML(body, images, variant.Strategy()),
	}
	if variant.Strategy() == entity.StrategyReferencedAttachment {
		msg.Images = images
	}

	return msg
}

func inlineImages(variant entity.Variant, pages []entity.ImagePage) []entity.InlineImage {
	return lo.Map(pages, func(p entity.ImagePage, i int) entity.InlineImage {
		cid := variant.ContentID(i + 1)
		contentType := p.ContentType
		if contentType == "" {
			contentType = "image/png"
		}
		return entity.InlineImage{
			ContentID:   cid,
			Filename:    cid + extensionFor(contentType),
			ContentType: contentType,
			Content:     p.Content,
		}
	})
}

func extensionFor(contentType string) string {
	if contentType == imaging.JPEG.ContentType() {
		return "." + imaging.JPEG.Extension()
	}
	return "." + imaging.PNG.Extension()
}
