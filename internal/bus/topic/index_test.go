package topic

import (
	"sort"
	"testing"
)

func sortedTopics(ts []Topic) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	sort.Strings(out)
	return out
}

func TestIndex_InsertDelete(t *testing.T) {
	x := NewIndex()

	if !x.Insert("a.b") {
		t.Fatal("expected first insert to succeed")
	}
	if x.Insert("a.b") {
		t.Error("expected duplicate insert to report false")
	}
	x.Insert("a.#")

	if x.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", x.Len())
	}
	if !x.Contains("a.b") || !x.Contains("a.#") {
		t.Error("expected both patterns to be present")
	}

	if !x.Delete("a.b") {
		t.Error("expected delete to succeed")
	}
	if x.Delete("a.b") {
		t.Error("expected second delete to report false")
	}
	if x.Delete("nope.nope") {
		t.Error("expected delete of unknown pattern to report false")
	}
	if x.Contains("a.b") {
		t.Error("a.b still present after delete")
	}
	if x.Len() != 1 {
		t.Errorf("Len() = %d, want 1", x.Len())
	}
}

func TestIndex_DeletePrunes(t *testing.T) {
	x := NewIndex()
	x.Insert("a.b.c")
	x.Delete("a.b.c")

	if len(x.root.next) != 0 {
		t.Errorf("expected empty root after prune, got %d children", len(x.root.next))
	}
}

func TestIndex_Match(t *testing.T) {
	x := NewIndex()
	patterns := []Topic{
		"xbox.newgame",
		"xbox.#",
		"xbox.*",
		"*.newgame",
		"#",
		"#.newgame",
		"ps5.#",
		"xbox.*.saved",
		"xbox.#.saved",
	}
	for _, p := range patterns {
		x.Insert(p)
	}

	tests := []struct {
		topic Topic
		want  []string
	}{
		{"xbox.newgame", []string{"#", "#.newgame", "*.newgame", "xbox.#", "xbox.*", "xbox.newgame"}},
		{"xbox", []string{"#", "xbox.#"}},
		{"xbox.game.saved", []string{"#", "xbox.#", "xbox.#.saved", "xbox.*.saved"}},
		{"ps5.newgame", []string{"#", "#.newgame", "*.newgame", "ps5.#"}},
		{"other", []string{"#"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic), func(t *testing.T) {
			got := sortedTopics(x.Match(tt.topic))
			if len(got) != len(tt.want) {
				t.Fatalf("Match(%q) = %v, want %v", tt.topic, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Match(%q) = %v, want %v", tt.topic, got, tt.want)
					break
				}
			}
		})
	}
}

// The trie must agree with the reference matcher for every pattern/topic pair.
func TestIndex_AgreesWithMatch(t *testing.T) {
	patterns := []Topic{
		"a", "a.b", "a.*", "a.#", "#", "*", "#.c", "a.#.c", "*.b.*", "a.*.#", "#.b.c", "*.#",
	}
	topics := []Topic{
		"a", "b", "a.b", "a.c", "a.b.c", "x.b.c", "a.b.b.c", "c", "a.b.c.d",
	}

	x := NewIndex()
	for _, p := range patterns {
		x.Insert(p)
	}

	for _, tp := range topics {
		got := map[Topic]bool{}
		for _, p := range x.Match(tp) {
			if got[p] {
				t.Errorf("Match(%q) returned %q twice", tp, p)
			}
			got[p] = true
		}
		for _, p := range patterns {
			if want := Match(p, tp); got[p] != want {
				t.Errorf("pattern %q topic %q: index=%v reference=%v", p, tp, got[p], want)
			}
		}
	}
}

func TestIndex_AllAndClear(t *testing.T) {
	x := NewIndex()
	x.Insert("a.b")
	x.Insert("c.#")

	all := sortedTopics(x.All())
	if len(all) != 2 || all[0] != "a.b" || all[1] != "c.#" {
		t.Errorf("All() = %v", all)
	}

	x.Clear()
	if x.Len() != 0 || len(x.All()) != 0 {
		t.Error("expected empty index after Clear")
	}
	if x.Match("a.b") != nil {
		t.Error("expected no matches after Clear")
	}
}

func TestIndex_ZeroValue(t *testing.T) {
	var x Index
	if x.Match("a") != nil {
		t.Error("zero Index should match nothing")
	}
	if x.Delete("a") {
		t.Error("zero Index delete should report false")
	}
	if !x.Insert("a") {
		t.Error("zero Index should accept inserts")
	}
	if !x.Contains("a") {
		t.Error("expected pattern after insert on zero Index")
	}
}
