package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/clock"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
)

const dateLayout = "2006-01-02"

// GenerateSubject builds "[date] [label] [subtopic]" with empty parts dropped.
// Dated topics use the coming Friday, which is today when today is a Friday.
func GenerateSubject(clk clock.Clocker, topic, subtopic string) (string, error) {
	t, err := entity.ParseTopic(topic)
	if err != nil {
		return "", err
	}

	now := clk.Now()

	var date string
	switch t {
	case entity.TopicUnlabeled:
		date = now.Format(dateLayout)
	case entity.TopicNonOncology, entity.TopicOncology:
		date = nextFriday(now).Format(dateLayout)
	case entity.TopicNoDate:
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{date, t.Label(), subtopic} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " "), nil
}

func nextFriday(now time.Time) time.Time {
	monday0 := (int(now.Weekday()) + 6) % 7
	offset := (4 - monday0 + 7) % 7
	return now.AddDate(0, 0, offset)
}

type SubjectInput struct {
	Topic    string
	Subtopic string `validate:"max=200"`
}

func (s *Usecase) Subject(ctx context.Context, in SubjectInput) (string, error) {
	_, span := s.startSpan(ctx, "Subject")
	defer span.End()

	in.Subtopic = strings.TrimSpace(in.Subtopic)

	if err := s.validator.Validate(in); err != nil {
		return "", goerror.NewInvalidInput(err)
	}

	return s.subject(in.Topic, in.Subtopic)
}

func (s *Usecase) subject(topic, subtopic string) (string, error) {
	subject, err := GenerateSubject(s.clock, topic, subtopic)
	if errors.Is(err, entity.ErrInvalidInput) {
		return "", goerror.NewInvalidInput(nil, "topic", "Invalid topic type: "+topic)
	}
	if err != nil {
		return "", goerror.NewServer(err)
	}

	return subject, nil
}
