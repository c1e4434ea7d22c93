package topic

// Index is a trie of subscription patterns. Given a concrete topic it returns
// every stored pattern that matches, visiting only the branches that can
// still align instead of testing each pattern in turn.
//
// Index is not safe for concurrent use; the owner serializes access.
type Index struct {
	root *node
	size int
}

type node struct {
	next  map[string]*node
	terms []Topic // patterns ending here
}

func (n *node) child(seg string, create bool) *node {
	c := n.next[seg]
	if c == nil && create {
		if n.next == nil {
			n.next = make(map[string]*node)
		}
		c = &node{}
		n.next[seg] = c
	}
	return c
}

func (n *node) termIndex(pattern Topic) int {
	for i, p := range n.terms {
		if p == pattern {
			return i
		}
	}
	return -1
}

// NewIndex creates an empty pattern index.
func NewIndex() *Index {
	return &Index{root: &node{}}
}

// Insert adds a pattern. Patterns should be validated with ValidatePattern
// first. Returns false if the pattern was already present.
func (x *Index) Insert(pattern Topic) bool {
	if pattern == "" {
		return false
	}
	if x.root == nil {
		x.root = &node{}
	}
	n := x.root
	for _, seg := range pattern.Segments() {
		n = n.child(seg, true)
	}
	if n.termIndex(pattern) >= 0 {
		return false
	}
	n.terms = append(n.terms, pattern)
	x.size++
	return true
}

// Delete removes a pattern and prunes branches left empty.
// Returns false if the pattern was not present.
func (x *Index) Delete(pattern Topic) bool {
	if pattern == "" || x.root == nil {
		return false
	}
	if !remove(x.root, pattern.Segments(), pattern) {
		return false
	}
	x.size--
	return true
}

// remove deletes pattern below n, dropping any child that ends up with
// neither terms nor children.
func remove(n *node, rest []string, pattern Topic) bool {
	if len(rest) == 0 {
		i := n.termIndex(pattern)
		if i < 0 {
			return false
		}
		n.terms = append(n.terms[:i], n.terms[i+1:]...)
		return true
	}
	c := n.child(rest[0], false)
	if c == nil || !remove(c, rest[1:], pattern) {
		return false
	}
	if len(c.next) == 0 && len(c.terms) == 0 {
		delete(n.next, rest[0])
	}
	return true
}

// Contains reports whether the exact pattern is stored.
func (x *Index) Contains(pattern Topic) bool {
	if pattern == "" || x.root == nil {
		return false
	}
	n := x.root
	for _, seg := range pattern.Segments() {
		if n = n.child(seg, false); n == nil {
			return false
		}
	}
	return n.termIndex(pattern) >= 0
}

// Match returns the distinct stored patterns matching the concrete topic.
// The order of the result is unspecified.
func (x *Index) Match(t Topic) []Topic {
	if t == "" || x.root == nil {
		return nil
	}

	segs := t.Segments()
	type visit struct {
		n     *node
		depth int
	}
	var (
		out     []Topic
		seen    = make(map[Topic]bool)
		visited = make(map[visit]bool)
	)

	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		// A "#" branch can be reached from several depths; expand each once.
		k := visit{n, depth}
		if visited[k] {
			return
		}
		visited[k] = true

		if multi := n.next[WildcardMulti]; multi != nil {
			for d := depth; d <= len(segs); d++ {
				walk(multi, d)
			}
		}
		if depth == len(segs) {
			for _, p := range n.terms {
				if !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
			return
		}
		if lit := n.next[segs[depth]]; lit != nil {
			walk(lit, depth+1)
		}
		if one := n.next[WildcardSingle]; one != nil {
			walk(one, depth+1)
		}
	}
	walk(x.root, 0)
	return out
}

// All returns every stored pattern in no particular order.
func (x *Index) All() []Topic {
	if x.root == nil {
		return nil
	}
	out := make([]Topic, 0, x.size)
	stack := []*node{x.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.terms...)
		for _, c := range n.next {
			stack = append(stack, c)
		}
	}
	return out
}

// Len returns the number of stored patterns.
func (x *Index) Len() int { return x.size }

// Clear drops every pattern.
func (x *Index) Clear() {
	x.root = &node{}
	x.size = 0
}
