// Package bus provides an in-process, topic-based publish/subscribe bus.
//
// A Bus is partitioned into named channels. Subscribers register a topic
// pattern on a channel; publishers publish a concrete topic with a data
// payload on a channel, and every subscription on that channel whose
// pattern matches receives the data together with an Envelope.
//
// # Topics and Patterns
//
// Topics are dot separated. Patterns may use two wildcard segments:
//
//	*    exactly one segment        "game.*.started" matches "game.chess.started"
//	#    zero or more segments      "xbox.#" matches "xbox", "xbox.newgame"
//
// A pattern holds at most one "#". Malformed patterns are rejected by
// Subscribe with a *ConfigurationError; see package topic.
//
// # Delivery
//
// Publish is synchronous by default: it returns after every matched
// subscriber has been invoked, in the order the subscriptions were created.
// The subscriber list is a snapshot taken before the first invocation, so a
// handler may subscribe or unsubscribe (itself or others) freely; such
// changes apply from the next publish on.
//
// Subscriptions created WithDeferred are instead queued for a worker pool
// started by Bus.Start.
//
// # Errors
//
// A handler that returns an error or panics never prevents the remaining
// subscribers from running. Each failure becomes a *SubscriberError that is
// logged and passed to the ErrorHandler. With ErrorPolicyCollect, Publish
// also returns the failures combined into one error.
//
// # Usage
//
//	b := bus.New(bus.WithLogger(logger))
//	if err := b.Start(); err != nil {
//	    return err
//	}
//	defer b.Close(context.Background())
//
//	xbox := b.Channel("xbox")
//	sub, err := xbox.SubscribeFunc("xbox.#", func(ctx context.Context, data any, env bus.Envelope) error {
//	    log.Printf("%s: %v", env.Topic, data)
//	    return nil
//	})
//	if err != nil {
//	    return err
//	}
//	defer sub.Unsubscribe()
//
//	xbox.Publish(ctx, "xbox.newgame", map[string]any{"player": "jim"})
package bus
