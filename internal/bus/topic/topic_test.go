package topic

import (
	"testing"
)

func TestTopic_Segments(t *testing.T) {
	tests := []struct {
		topic    Topic
		expected []string
	}{
		{Topic("order.payment.captured"), []string{"order", "payment", "captured"}},
		{Topic("xbox.newgame"), []string{"xbox", "newgame"}},
		{Topic("single"), []string{"single"}},
		{Topic(""), nil},
	}

	for _, tt := range tests {
		t.Run(tt.topic.String(), func(t *testing.T) {
			got := tt.topic.Segments()
			if len(got) != len(tt.expected) {
				t.Fatalf("Segments() = %v, want %v", got, tt.expected)
			}
			for i, seg := range got {
				if seg != tt.expected[i] {
					t.Errorf("Segments()[%d] = %v, want %v", i, seg, tt.expected[i])
				}
			}
			if n := tt.topic.SegmentCount(); n != len(tt.expected) {
				t.Errorf("SegmentCount() = %d, want %d", n, len(tt.expected))
			}
		})
	}
}

func TestTopic_Navigation(t *testing.T) {
	tp := Topic("order.payment.captured")

	if got := tp.Parent(); got != "order.payment" {
		t.Errorf("Parent() = %q", got)
	}
	if got := Topic("single").Parent(); got != "" {
		t.Errorf("Parent() of single segment = %q, want empty", got)
	}
	if got := tp.Base(); got != "captured" {
		t.Errorf("Base() = %q", got)
	}
	if got := Topic("order").Child("created"); got != "order.created" {
		t.Errorf("Child() = %q", got)
	}
	if got := Topic("").Child("created"); got != "created" {
		t.Errorf("Child() on empty = %q", got)
	}
	if got := Join("a", "b", "c"); got != "a.b.c" {
		t.Errorf("Join() = %q", got)
	}
}

func TestTopic_HasPrefix(t *testing.T) {
	tests := []struct {
		topic  Topic
		prefix Topic
		want   bool
	}{
		{"order.created", "order", true},
		{"order.created", "order.created", true},
		{"order.created", "ord", false},
		{"order.created", "", true},
		{"order", "order.created", false},
	}

	for _, tt := range tests {
		if got := tt.topic.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%q.HasPrefix(%q) = %v, want %v", tt.topic, tt.prefix, got, tt.want)
		}
	}
}

func TestTopic_IsWildcard(t *testing.T) {
	if Topic("a.b").IsWildcard() {
		t.Error("a.b should not be a wildcard")
	}
	if !Topic("a.*").IsWildcard() {
		t.Error("a.* should be a wildcard")
	}
	if !Topic("#").IsWildcard() {
		t.Error("# should be a wildcard")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern Topic
		topic   Topic
		want    bool
	}{
		// literals
		{"a.b.c", "a.b.c", true},
		{"a.b.c", "a.b.d", false},
		{"a.b", "a.b.c", false},
		{"a.b.c", "a.b", false},
		{"Order.created", "order.created", false},

		// single-segment wildcard
		{"a.*.c", "a.b.c", true},
		{"a.*.c", "a.b.b.c", false},
		{"a.*", "a", false},
		{"*", "a", true},
		{"*", "a.b", false},
		{"*.*", "a.b", true},

		// multi-segment wildcard
		{"a.#", "a", true},
		{"a.#", "a.b", true},
		{"a.#", "a.b.c", true},
		{"a.#", "b.a", false},
		{"#", "a", true},
		{"#", "a.b.c.d", true},
		{"#.c", "c", true},
		{"#.c", "a.b.c", true},
		{"#.c", "a.b.d", false},
		{"a.#.c", "a.c", true},
		{"a.#.c", "a.b.c", true},
		{"a.#.c", "a.b.x.c", true},
		{"a.#.c", "a.b.x.d", false},
		{"a.#.c.d", "a.c.c.d", true},
		{"a.#.c.d", "a.c.d.c.d", true},
		{"a.#.*", "a", false},
		{"a.#.*", "a.b", true},
		{"a.#.*", "a.b.c", true},

		// malformed or empty input never matches
		{"", "a", false},
		{"a", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern)+"|"+string(tt.topic), func(t *testing.T) {
			if got := Match(tt.pattern, tt.topic); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
			}
			if got := tt.topic.Matches(tt.pattern); got != tt.want {
				t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMatch_LiteralIdentity(t *testing.T) {
	topics := []Topic{"a", "a.b", "xbox.newgame", "order.payment.captured"}

	for _, t1 := range topics {
		for _, t2 := range topics {
			got := Match(t1, t2)
			if want := t1 == t2; got != want {
				t.Errorf("Match(%q, %q) = %v, want %v", t1, t2, got, want)
			}
		}
	}
}
