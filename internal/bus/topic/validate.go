package topic

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors. They are wrapped in a *SyntaxError so callers can
// recover the offending topic and segment.
var (
	// ErrEmpty is returned for an empty topic or pattern.
	ErrEmpty = errors.New("topic is empty")

	// ErrEmptySegment is returned when a topic has a leading, trailing or
	// doubled separator.
	ErrEmptySegment = errors.New("topic has an empty segment")

	// ErrPartialWildcard is returned when a wildcard character shares a
	// segment with other characters.
	ErrPartialWildcard = errors.New("wildcard must occupy a whole segment")

	// ErrMultipleMultiWildcards is returned when a pattern has more than one "#".
	ErrMultipleMultiWildcards = errors.New("pattern may contain at most one " + WildcardMulti)

	// ErrWildcardInTopic is returned when a published topic contains a wildcard.
	ErrWildcardInTopic = errors.New("published topic must not contain wildcards")
)

// SyntaxError describes why a topic or pattern was rejected.
type SyntaxError struct {
	Topic   Topic
	Segment int // index of the offending segment, -1 when not applicable
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("invalid topic %q at segment %d: %v", string(e.Topic), e.Segment, e.Err)
	}
	return fmt.Sprintf("invalid topic %q: %v", string(e.Topic), e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ValidatePattern checks the syntax of a subscription pattern.
func ValidatePattern(p Topic) error {
	if p == "" {
		return &SyntaxError{Topic: p, Segment: -1, Err: ErrEmpty}
	}

	multi := 0
	for i, seg := range p.Segments() {
		if err := checkSegment(seg); err != nil {
			return &SyntaxError{Topic: p, Segment: i, Err: err}
		}
		if seg == WildcardMulti {
			multi++
			if multi > 1 {
				return &SyntaxError{Topic: p, Segment: i, Err: ErrMultipleMultiWildcards}
			}
		}
	}
	return nil
}

// ValidateTopic checks the syntax of a concrete, publishable topic.
func ValidateTopic(t Topic) error {
	if t == "" {
		return &SyntaxError{Topic: t, Segment: -1, Err: ErrEmpty}
	}

	for i, seg := range t.Segments() {
		if err := checkSegment(seg); err != nil {
			return &SyntaxError{Topic: t, Segment: i, Err: err}
		}
		if seg == WildcardSingle || seg == WildcardMulti {
			return &SyntaxError{Topic: t, Segment: i, Err: ErrWildcardInTopic}
		}
	}
	return nil
}

// IsValidPattern is a boolean form of ValidatePattern.
func IsValidPattern(p Topic) bool {
	return ValidatePattern(p) == nil
}

// IsValidTopic is a boolean form of ValidateTopic.
func IsValidTopic(t Topic) bool {
	return ValidateTopic(t) == nil
}

func checkSegment(seg string) error {
	if seg == "" {
		return ErrEmptySegment
	}
	if seg == WildcardSingle || seg == WildcardMulti {
		return nil
	}
	if strings.ContainsAny(seg, WildcardSingle+WildcardMulti) {
		return ErrPartialWildcard
	}
	return nil
}
