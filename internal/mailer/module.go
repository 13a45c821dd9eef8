package mailer

import (
	"fmt"
	"time"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/mailer/inbound"
	"github.com/shandysiswandi/pagemail/internal/mailer/outbound/document"
	"github.com/shandysiswandi/pagemail/internal/mailer/outbound/rasterizer"
	"github.com/shandysiswandi/pagemail/internal/mailer/outbound/transport"
	"github.com/shandysiswandi/pagemail/internal/mailer/usecase"
	"github.com/shandysiswandi/pagemail/internal/pkg/clock"
	"github.com/shandysiswandi/pagemail/internal/pkg/config"
	"github.com/shandysiswandi/pagemail/internal/pkg/imaging"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"github.com/shandysiswandi/pagemail/internal/pkg/router"
	"github.com/shandysiswandi/pagemail/internal/pkg/storage"
	"github.com/shandysiswandi/pagemail/internal/pkg/uid"
	"github.com/shandysiswandi/pagemail/internal/pkg/validator"
)

const defaultSendTimeout = 120 * time.Second

type Dependency struct {
	Config     config.Config
	Instrument instrument.Instrumentation
	UID        uid.NumberID
	Clock      clock.Clocker
	Validator  validator.Validator
	Router     *router.Router
	// Storage is nil when document_key sources are disabled.
	Storage storage.Storage
}

func New(dep Dependency) error {
	converter, err := loadConverterConfig(dep.Config)
	if err != nil {
		return err
	}

	transportCfg := LoadTransportConfig(dep.Config)

	sendTimeout := dep.Config.GetSecond("mail.timeout_seconds")
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	dispatcher := transport.New(transportCfg, transport.Dependency{
		Instrument:        dep.Instrument,
		SMTPTimeout:       sendTimeout,
		GraphBaseURL:      dep.Config.GetString("microsoft_graph_base_url"),
		GraphAuthorityURL: dep.Config.GetString("microsoft_authority_url"),
	})

	poppler := rasterizer.NewPoppler(rasterizer.Config{
		Binary:  dep.Config.GetString("converter.pdftoppm_path"),
		DPI:     dep.Config.GetInt("converter.dpi"),
		TempDir: dep.Config.GetString("converter.temp_dir"),
	}, dep.Instrument)

	ucDep := usecase.Dependency{
		Transport:   transportCfg,
		Converter:   converter,
		SendTimeout: sendTimeout,
		Clock:       dep.Clock,
		Validator:   dep.Validator,
		UID:         dep.UID,
		Instrument:  dep.Instrument,
		Rasterizer:  poppler,
		Dispatcher:  dispatcher,
	}
	if dep.Storage != nil {
		ucDep.Documents = document.New(dep.Storage, dep.Config.GetString("storage.bucket"), dep.Instrument)
	}

	uc := usecase.NewMailer(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc, converter.MaxUploadBytes)

	return nil
}

// LoadTransportConfig reads the flat mail settings. Keys map one to one to
// environment variables (sender_email -> SENDER_EMAIL).
func LoadTransportConfig(cfg config.Config) entity.TransportConfig {
	tc := entity.TransportConfig{
		SenderType:         entity.SenderMicrosoft,
		SMTPHosts:          cfg.GetMap("smtp_hosts"),
		SMTPPort:           cfg.GetInt("smtp_port"),
		SMTPRequireTLS:     true,
		SenderEmail:        cfg.GetString("sender_email"),
		SenderPassword:     cfg.GetString("sender_password"),
		RecipientEmail:     cfg.GetString("recipient_email"),
		RecipientOptions:   cfg.GetArray("recipient_options"),
		TenantID:           cfg.GetString("microsoft_tenant_id"),
		ClientID:           cfg.GetString("microsoft_client_id"),
		ClientSecret:       cfg.GetString("microsoft_client_secret"),
		UseMIMEAttachments: true,
		CacheGraphToken:    cfg.GetBool("graph_cache_token"),
	}

	if st := cfg.GetString("sender_type"); st != "" {
		tc.SenderType = entity.SenderType(st)
	}
	if len(tc.SMTPHosts) == 0 {
		tc.SMTPHosts = entity.DefaultSMTPHosts
	}
	if tc.SMTPPort <= 0 {
		tc.SMTPPort = entity.DefaultSMTPPort
	}
	if cfg.IsSet("smtp_require_tls") {
		tc.SMTPRequireTLS = cfg.GetBool("smtp_require_tls")
	}
	if cfg.IsSet("use_mime_attachments") {
		tc.UseMIMEAttachments = cfg.GetBool("use_mime_attachments")
	}

	return tc
}

func loadConverterConfig(cfg config.Config) (usecase.ConverterConfig, error) {
	format := imaging.PNG
	if raw := cfg.GetString("converter.format"); raw != "" {
		f, err := imaging.ParseFormat(raw)
		if err != nil {
			return usecase.ConverterConfig{}, fmt.Errorf("mailer: converter.format: %w", err)
		}
		format = f
	}

	maxBytes := usecase.DefaultMaxUploadBytes
	if mb := cfg.GetInt64("converter.max_upload_mb"); mb > 0 {
		maxBytes = mb << 20
	}

	return usecase.ConverterConfig{Format: format, MaxUploadBytes: maxBytes}, nil
}
