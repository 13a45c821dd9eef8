package entity

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// SenderType selects the mail account kind.
type SenderType string

const (
	SenderGmail          SenderType = "gmail"
	SenderMicrosoft      SenderType = "microsoft"
	SenderYahoo          SenderType = "yahoo"
	SenderMicrosoftGraph SenderType = "microsoft_graph"
)

// DefaultSMTPHosts maps SMTP sender types to their submission hosts.
var DefaultSMTPHosts = map[string]string{
	string(SenderGmail):     "smtp.gmail.com",
	string(SenderMicrosoft): "smtp.office365.com",
	string(SenderYahoo):     "smtp.mail.yahoo.com",
}

// DefaultSMTPPort is the submission port used with STARTTLS.
const DefaultSMTPPort = 587

// Variant is the transport path a message takes.
type Variant int8

const (
	VariantSMTP Variant = iota
	VariantGraphAttachments
	VariantGraphInline
)

func (v Variant) String() string {
	switch v {
	case VariantGraphAttachments:
		return "graph_attachments"
	case VariantGraphInline:
		return "graph_inline"
	default:
		return "smtp"
	}
}

// Strategy says how pages are embedded in the HTML body.
func (v Variant) Strategy() Strategy {
	if v == VariantGraphInline {
		return StrategyInlineBase64
	}
	return StrategyReferencedAttachment
}

// ContentID names page n (1-based). SMTP and Graph recipients have always
// seen different prefixes, so both are kept.
func (v Variant) ContentID(n int) string {
	if v == VariantSMTP {
		return "image" + strconv.Itoa(n)
	}
	return "page" + strconv.Itoa(n)
}

// Strategy is the HTML image embedding strategy.
type Strategy int8

const (
	// StrategyReferencedAttachment points each <img> at an attachment via cid:.
	StrategyReferencedAttachment Strategy = iota
	// StrategyInlineBase64 embeds each image as a data: URI.
	StrategyInlineBase64
)

// TransportConfig is the immutable mail configuration loaded at startup.
type TransportConfig struct {
	SenderType         SenderType
	SMTPHosts          map[string]string
	SMTPPort           int
	SMTPRequireTLS     bool
	SenderEmail        string
	SenderPassword     string
	RecipientEmail     string
	RecipientOptions   []string
	TenantID           string
	ClientID           string
	ClientSecret       string
	UseMIMEAttachments bool
	CacheGraphToken    bool
}

// Variant picks the transport path. Anything that is not Graph is SMTP; an
// unknown sender type then fails on host lookup.
func (c TransportConfig) Variant() Variant {
	if c.SenderType != SenderMicrosoftGraph {
		return VariantSMTP
	}
	if c.UseMIMEAttachments {
		return VariantGraphAttachments
	}
	return VariantGraphInline
}

// SMTPHost resolves the submission host for the sender type.
func (c TransportConfig) SMTPHost() (string, error) {
	host, ok := c.SMTPHosts[string(c.SenderType)]
	if !ok || host == "" {
		return "", fmt.Errorf("%w: no SMTP host for sender type %q", ErrConfig, c.SenderType)
	}
	return host, nil
}

// Describe returns a one-line summary of how mail is sent.
func (c TransportConfig) Describe() string {
	switch c.Variant() {
	case VariantGraphAttachments:
		return "Microsoft Graph API (Inline attachments)"
	case VariantGraphInline:
		return "Microsoft Graph API (Base64 encoding)"
	default:
		return strings.ToUpper(string(c.SenderType)) + " SMTP"
	}
}

// AllowsRecipient reports whether addr may override RecipientEmail.
func (c TransportConfig) AllowsRecipient(addr string) bool {
	return addr == c.RecipientEmail || slices.Contains(c.RecipientOptions, addr)
}

// WithRecipient returns a copy addressed to addr.
func (c TransportConfig) WithRecipient(addr string) TransportConfig {
	c.RecipientEmail = addr
	return c
}

// Validate returns every missing or invalid setting keyed by config key.
// An empty map means the configuration can send.
func (c TransportConfig) Validate() map[string]string {
	issues := make(map[string]string)

	if c.SenderEmail == "" {
		issues["sender_email"] = "SENDER_EMAIL environment variable not set"
	}
	if c.RecipientEmail == "" {
		issues["recipient_email"] = "RECIPIENT_EMAIL environment variable not set"
	}

	switch _, isSMTP := c.SMTPHosts[string(c.SenderType)]; {
	case c.SenderType == SenderMicrosoftGraph:
		if c.TenantID == "" {
			issues["microsoft_tenant_id"] = "MICROSOFT_TENANT_ID environment variable not set"
		}
		if c.ClientID == "" {
			issues["microsoft_client_id"] = "MICROSOFT_CLIENT_ID environment variable not set"
		}
		if c.ClientSecret == "" {
			issues["microsoft_client_secret"] = "MICROSOFT_CLIENT_SECRET environment variable not set"
		}
	case isSMTP:
		if c.SenderPassword == "" {
			issues["sender_password"] = "SENDER_PASSWORD environment variable not set"
		}
	default:
		options := append(slices.Sorted(maps.Keys(c.SMTPHosts)), string(SenderMicrosoftGraph))
		issues["sender_type"] = fmt.Sprintf("Invalid sender type: %s. Options: %s", c.SenderType, strings.Join(options, ", "))
	}

	return issues
}
