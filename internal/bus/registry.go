package bus

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/topicbus/internal/bus/topic"
)

// Registry manages subscriptions partitioned by channel and organized by
// topic pattern. It is safe for concurrent use: mutations take exclusive
// access and lookups take shared access.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*partition
	byID     map[string]*subscription
	seq      uint64
}

// partition holds one channel's subscriptions.
type partition struct {
	subs  map[topic.Topic][]*subscription
	index *topic.Index
}

func newPartition() *partition {
	return &partition{
		subs:  make(map[topic.Topic][]*subscription),
		index: topic.NewIndex(),
	}
}

// NewRegistry creates a new subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]*partition),
		byID:     make(map[string]*subscription),
	}
}

// Add validates pattern and registers a subscription on channel. A malformed
// pattern yields a *ConfigurationError and leaves the registry unchanged.
func (r *Registry) Add(channel string, pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	sub, err := r.add(channel, pattern, h, opts...)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *Registry) add(channel string, pattern topic.Topic, h Handler, opts ...SubscriptionOption) (*subscription, error) {
	if channel == "" {
		return nil, ErrInvalidChannel
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	if err := topic.ValidatePattern(pattern); err != nil {
		return nil, &ConfigurationError{Channel: channel, Pattern: pattern, Err: err}
	}

	var cfg SubscriptionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := &subscription{
		id:       uuid.NewString(),
		channel:  channel,
		pattern:  pattern,
		handler:  h,
		config:   cfg,
		registry: r,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	sub.seq = r.seq

	p := r.partitionLocked(channel)
	p.subs[pattern] = append(p.subs[pattern], sub)
	p.index.Insert(pattern)
	r.byID[sub.id] = sub

	return sub, nil
}

// partitionLocked returns the partition for channel, creating it.
// The caller must hold the write lock.
func (r *Registry) partitionLocked(channel string) *partition {
	p, ok := r.channels[channel]
	if !ok {
		p = newPartition()
		r.channels[channel] = p
	}
	return p
}

// EnsureChannel creates an empty partition for channel if none exists.
func (r *Registry) EnsureChannel(channel string) {
	r.mu.RLock()
	_, ok := r.channels[channel]
	r.mu.RUnlock()
	if ok {
		return
	}

	r.mu.Lock()
	r.partitionLocked(channel)
	r.mu.Unlock()
}

// Remove unregisters sub. It returns false, without error, when sub is nil,
// unknown, or already removed.
func (r *Registry) Remove(sub Subscription) bool {
	if sub == nil {
		return false
	}
	return r.RemoveID(sub.ID())
}

// RemoveID unregisters the subscription with the given ID.
func (r *Registry) RemoveID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	sub.cancel()

	p := r.channels[sub.channel]
	subs := p.subs[sub.pattern]
	for i, s := range subs {
		if s == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(p.subs, sub.pattern)
		p.index.Delete(sub.pattern)
	} else {
		p.subs[sub.pattern] = subs
	}
	return true
}

// Get returns a subscription by ID.
func (r *Registry) Get(id string) (Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return sub, true
}

// Lookup returns the subscriptions on channel whose pattern matches t,
// ordered by creation. The result is a snapshot: later mutations of the
// registry do not affect it.
func (r *Registry) Lookup(channel string, t topic.Topic) []Subscription {
	subs := r.lookup(channel, t)
	if len(subs) == 0 {
		return nil
	}
	result := make([]Subscription, len(subs))
	for i, s := range subs {
		result[i] = s
	}
	return result
}

func (r *Registry) lookup(channel string, t topic.Topic) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.channels[channel]
	if !ok {
		return nil
	}

	patterns := p.index.Match(t)
	if len(patterns) == 0 {
		return nil
	}

	var all []*subscription
	for _, pattern := range patterns {
		all = append(all, p.subs[pattern]...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].seq < all[j].seq
	})
	return all
}

// Count returns the total number of subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

// CountChannel returns the number of subscriptions on channel.
func (r *Registry) CountChannel(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.channels[channel]
	if !ok {
		return 0
	}
	n := 0
	for _, subs := range p.subs {
		n += len(subs)
	}
	return n
}

// Patterns returns the distinct patterns subscribed on channel, sorted.
func (r *Registry) Patterns(channel string) []topic.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.channels[channel]
	if !ok {
		return nil
	}
	patterns := p.index.All()
	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i] < patterns[j]
	})
	return patterns
}

// HasChannel reports whether channel is known to the registry.
func (r *Registry) HasChannel(channel string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.channels[channel]
	return ok
}

// Channels returns every known channel name, sorted.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes every subscription and channel. Handles held by callers
// become inert.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.byID {
		sub.cancel()
	}
	r.channels = make(map[string]*partition)
	r.byID = make(map[string]*subscription)
}
