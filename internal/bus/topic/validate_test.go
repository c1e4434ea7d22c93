package topic

import (
	"errors"
	"testing"
)

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		pattern Topic
		wantErr error
	}{
		{"a.b.c", nil},
		{"a.*.c", nil},
		{"a.#", nil},
		{"#", nil},
		{"#.a", nil},
		{"a.#.b", nil},
		{"*.*.*", nil},
		{"", ErrEmpty},
		{".a", ErrEmptySegment},
		{"a.", ErrEmptySegment},
		{"a..b", ErrEmptySegment},
		{"a.#.#", ErrMultipleMultiWildcards},
		{"#.a.#", ErrMultipleMultiWildcards},
		{"a.b*", ErrPartialWildcard},
		{"a.#b", ErrPartialWildcard},
		{"a.**", ErrPartialWildcard},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			err := ValidatePattern(tt.pattern)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidatePattern(%q) = %v, want nil", tt.pattern, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidatePattern(%q) = %v, want %v", tt.pattern, err, tt.wantErr)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}
			if se.Topic != tt.pattern {
				t.Errorf("SyntaxError.Topic = %q, want %q", se.Topic, tt.pattern)
			}
		})
	}
}

func TestValidateTopic(t *testing.T) {
	tests := []struct {
		topic   Topic
		wantErr error
	}{
		{"xbox.newgame", nil},
		{"single", nil},
		{"", ErrEmpty},
		{"a..b", ErrEmptySegment},
		{"a.*", ErrWildcardInTopic},
		{"#", ErrWildcardInTopic},
		{"a.b#", ErrPartialWildcard},
	}

	for _, tt := range tests {
		err := ValidateTopic(tt.topic)
		if tt.wantErr == nil && err != nil {
			t.Errorf("ValidateTopic(%q) = %v, want nil", tt.topic, err)
			continue
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateTopic(%q) = %v, want %v", tt.topic, err, tt.wantErr)
		}
		if got := IsValidTopic(tt.topic); got != (tt.wantErr == nil) {
			t.Errorf("IsValidTopic(%q) = %v", tt.topic, got)
		}
	}
}

func TestSyntaxError_Message(t *testing.T) {
	err := ValidatePattern("a..b")
	want := `invalid topic "a..b" at segment 1: topic has an empty segment`
	if err == nil || err.Error() != want {
		t.Errorf("Error() = %v, want %q", err, want)
	}

	err = ValidatePattern("")
	want = `invalid topic "": topic is empty`
	if err == nil || err.Error() != want {
		t.Errorf("Error() = %v, want %q", err, want)
	}
}
