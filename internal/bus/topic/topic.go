package topic

import "strings"

// Topic is a dot-separated event name such as "xbox.newgame". The same type
// carries subscription patterns, which may contain wildcard segments
// ("xbox.#").
type Topic string

// Wildcard tokens and the segment separator.
const (
	WildcardSingle = "*" // exactly one segment
	WildcardMulti  = "#" // any run of segments, possibly empty
	Separator      = "."
)

func (t Topic) String() string { return string(t) }

// Segments splits t on the separator. The empty topic has no segments.
func (t Topic) Segments() []string {
	if len(t) == 0 {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// SegmentCount is len(t.Segments()) without allocating.
func (t Topic) SegmentCount() int {
	if len(t) == 0 {
		return 0
	}
	return 1 + strings.Count(string(t), Separator)
}

// Parent drops the final segment: "order.payment.captured" becomes
// "order.payment". A single-segment topic has no parent.
func (t Topic) Parent() Topic {
	cut := strings.LastIndex(string(t), Separator)
	if cut == -1 {
		return ""
	}
	return t[:cut]
}

// Child appends segment to t.
func (t Topic) Child(segment string) Topic {
	if len(t) == 0 {
		return Topic(segment)
	}
	return t + Separator + Topic(segment)
}

// Base is the final segment of t.
func (t Topic) Base() string {
	cut := strings.LastIndex(string(t), Separator)
	return string(t[cut+1:])
}

// HasPrefix reports whether prefix is a leading run of whole segments of t.
// "order.created" has prefix "order" but not "ord".
func (t Topic) HasPrefix(prefix Topic) bool {
	switch {
	case prefix == "":
		return true
	case !strings.HasPrefix(string(t), string(prefix)):
		return false
	case len(t) == len(prefix):
		return true
	}
	return t[len(prefix)] == Separator[0]
}

// IsWildcard reports whether t contains a wildcard segment.
func (t Topic) IsWildcard() bool {
	for _, seg := range t.Segments() {
		switch seg {
		case WildcardSingle, WildcardMulti:
			return true
		}
	}
	return false
}

// Matches is Match with the receiver as the concrete topic.
func (t Topic) Matches(pattern Topic) bool {
	return Match(pattern, t)
}

// Match reports whether the concrete topic matches pattern.
//
// Literal segments compare case-sensitively, "*" consumes exactly one
// segment and "#" consumes zero or more. Both sequences must be fully
// consumed. Match is total: malformed input simply does not match.
func Match(pattern, t Topic) bool {
	if pattern == "" || t == "" {
		return false
	}
	return matchSegments(pattern.Segments(), t.Segments())
}

// matchSegments walks pattern and topic in lock-step. On "#" it tries the
// shortest expansion first and widens it only when the rest fails.
func matchSegments(pattern, topic []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head == WildcardMulti {
			for skip := 0; skip <= len(topic); skip++ {
				if matchSegments(pattern[1:], topic[skip:]) {
					return true
				}
			}
			return false
		}
		if len(topic) == 0 || (head != WildcardSingle && head != topic[0]) {
			return false
		}
		pattern, topic = pattern[1:], topic[1:]
	}
	return len(topic) == 0
}

// Join builds a topic from segments.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}
