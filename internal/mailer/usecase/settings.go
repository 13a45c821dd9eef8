package usecase

import (
	"context"
	"maps"
	"slices"

	"github.com/samber/lo"
	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
)

type QualityRange struct {
	Min     int
	Max     int
	Step    int
	Default int
}

type SettingsOutput struct {
	Transport        string
	Variant          entity.Variant
	Sender           string
	Recipient        string
	RecipientOptions []string
	Topics           []string
	SizeChoices      []int
	DefaultSize      int
	Quality          QualityRange
	Format           string
	MaxUploadMB      int64
	Issues           map[string]string
}

// Settings describes the active transport and the form choices the API accepts.
func (s *Usecase) Settings(ctx context.Context) SettingsOutput {
	_, span := s.startSpan(ctx, "Settings")
	defer span.End()

	return SettingsOutput{
		Transport:        s.transport.Describe(),
		Variant:          s.transport.Variant(),
		Sender:           s.transport.SenderEmail,
		Recipient:        s.transport.RecipientEmail,
		RecipientOptions: slices.Clone(s.transport.RecipientOptions),
		Topics:           lo.Map(entity.Topics, func(t entity.Topic, _ int) string { return t.String() }),
		SizeChoices:      slices.Clone(SizeChoices),
		DefaultSize:      DefaultMaxSize,
		Quality: QualityRange{
			Min:     MinQuality,
			Max:     MaxQuality,
			Step:    QualityStep,
			Default: DefaultQuality,
		},
		Format:      string(s.converter.Format),
		MaxUploadMB: s.converter.MaxUploadBytes >> 20,
		Issues:      maps.Clone(s.issues),
	}
}
