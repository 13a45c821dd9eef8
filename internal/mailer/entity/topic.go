package entity

import (
	"fmt"
)

// Topic classifies an email and decides which date, if any, prefixes the subject.
type Topic int8

const (
	TopicUnlabeled Topic = iota
	TopicNonOncology
	TopicOncology
	TopicNoDate
)

// Topics lists every topic in form order.
var Topics = []Topic{TopicUnlabeled, TopicNonOncology, TopicOncology, TopicNoDate}

// ParseTopic maps a wire value to its Topic. Unknown values are rejected.
func ParseTopic(raw string) (Topic, error) {
	switch raw {
	case "":
		return TopicUnlabeled, nil
	case "Non-Onc":
		return TopicNonOncology, nil
	case "Onc":
		return TopicOncology, nil
	case "No Date":
		return TopicNoDate, nil
	default:
		return TopicUnlabeled, fmt.Errorf("%w: invalid topic type: %q", ErrInvalidInput, raw)
	}
}

// String returns the wire value.
func (t Topic) String() string {
	switch t {
	case TopicNonOncology:
		return "Non-Onc"
	case TopicOncology:
		return "Onc"
	case TopicNoDate:
		return "No Date"
	default:
		return ""
	}
}

// Label is the text placed in the subject; only dated topics carry one.
func (t Topic) Label() string {
	switch t {
	case TopicNonOncology, TopicOncology:
		return t.String()
	default:
		return ""
	}
}
