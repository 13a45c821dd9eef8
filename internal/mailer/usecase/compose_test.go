package usecase

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func images(variant entity.Variant, n int) []entity.InlineImage {
	pages := make([]entity.ImagePage, n)
	for i := range pages {
		pages[i] = entity.ImagePage{Index: i + 1, Content: []byte{byte(i + 1)}, ContentType: "image/png"}
	}
	return inlineImages(variant, pages)
}

func TestComposeHTML_Referenced(t *testing.T) {
	t.Parallel()

	html := ComposeHTML("Hello", images(entity.VariantGraphAttachments, 3), entity.StrategyReferencedAttachment)

	assert.True(t, strings.HasPrefix(html, "<p>Hello</p>"))
	assert.Equal(t, 2, strings.Count(html, "<hr>"))
	assert.Equal(t, 3, strings.Count(html, "cid:"))
	assert.False(t, strings.HasSuffix(html, "<hr>"))

	p1 := strings.Index(html, `src="cid:page1"`)
	p2 := strings.Index(html, `src="cid:page2"`)
	p3 := strings.Index(html, `src="cid:page3"`)
	require.True(t, p1 >= 0 && p2 >= 0 && p3 >= 0)
	assert.True(t, p1 < p2 && p2 < p3)
	assert.Contains(t, html, `style="max-width: 100%; height: auto; margin: 10px 0;" alt="Page 3"`)
}

func TestComposeHTML_NoImages(t *testing.T) {
	t.Parallel()

	html := ComposeHTML("Only text", nil, entity.StrategyReferencedAttachment)
	assert.Equal(t, "<p>Only text</p>", html)
	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, "<hr>")
}

func TestComposeHTML_InlineBase64(t *testing.T) {
	t.Parallel()

	imgs := images(entity.VariantGraphInline, 2)
	html := ComposeHTML("Hi", imgs, entity.StrategyInlineBase64)

	assert.NotContains(t, html, "cid:")
	assert.Equal(t, 1, strings.Count(html, "<hr>"))
	for _, img := range imgs {
		assert.Contains(t, html, `src="data:image/png;base64,`+base64.StdEncoding.EncodeToString(img.Content)+`"`)
	}
}

func TestComposeHTML_SanitizesBody(t *testing.T) {
	t.Parallel()

	html := ComposeHTML(`<b>bold</b><script>alert(1)</script>`, nil, entity.StrategyReferencedAttachment)
	assert.Equal(t, "<p><b>bold</b></p>", html)
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	pages := []entity.ImagePage{
		{Index: 1, Content: []byte("a"), ContentType: "image/png"},
		{Index: 2, Content: []byte("b"), ContentType: "image/png"},
	}

	t.Run("smtp", func(t *testing.T) {
		t.Parallel()

		msg := BuildMessage(smtpConfig(), "Subj", "Body", pages)
		assert.Equal(t, "sender@x.io", msg.From)
		assert.Equal(t, "team@x.io", msg.To)
		assert.Equal(t, "Subj", msg.Subject)
		require.Len(t, msg.Images, 2)
		assert.Equal(t, "image1", msg.Images[0].ContentID)
		assert.Equal(t, "image2", msg.Images[1].ContentID)
		assert.Equal(t, "image1.png", msg.Images[0].Filename)
		assert.Equal(t, []byte("a"), msg.Images[0].Content)
		assert.Contains(t, msg.HTMLBody, "cid:image2")
	})

	t.Run("graph attachments", func(t *testing.T) {
		t.Parallel()

		msg := BuildMessage(graphConfig(true), "Subj", "Body", pages)
		require.Len(t, msg.Images, 2)
		assert.Equal(t, "page1", msg.Images[0].ContentID)
		assert.Equal(t, "page2.png", msg.Images[1].Filename)
		assert.Contains(t, msg.HTMLBody, "cid:page1")
	})

	t.Run("graph inline", func(t *testing.T) {
		t.Parallel()

		msg := BuildMessage(graphConfig(false), "Subj", "Body", pages)
		assert.Empty(t, msg.Images)
		assert.NotContains(t, msg.HTMLBody, "cid:")
		assert.Equal(t, 2, strings.Count(msg.HTMLBody, "data:image/png;base64,"))
	})
}
