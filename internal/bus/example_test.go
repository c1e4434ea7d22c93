package bus_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/topicbus/internal/bus"
)

// Example_basicUsage subscribes to every topic under "xbox" and publishes one.
func Example_basicUsage() {
	b := bus.New()
	if err := b.Start(); err != nil {
		fmt.Printf("Failed to start bus: %v\n", err)
		return
	}
	defer b.Close(context.Background())

	xbox := b.Channel("xbox")
	_, err := xbox.SubscribeFunc("xbox.#", func(_ context.Context, data any, env bus.Envelope) error {
		fmt.Printf("%s on %s: %v\n", env.Topic, env.Channel, data)
		return nil
	})
	if err != nil {
		fmt.Printf("Subscribe failed: %v\n", err)
		return
	}

	n, _ := xbox.Publish(context.Background(), "xbox.newgame", map[string]any{"player": "jim"})
	fmt.Println("notified:", n)

	// Output:
	// xbox.newgame on xbox: map[player:jim]
	// notified: 1
}

// Example_wildcards shows single and multi segment wildcards.
func Example_wildcards() {
	b := bus.New()
	_ = b.Start()
	defer b.Close(context.Background())

	ch := b.Channel("games")
	_, _ = ch.SubscribeFunc("game.*.started", func(_ context.Context, _ any, env bus.Envelope) error {
		fmt.Println("one segment:", env.Topic)
		return nil
	})
	_, _ = ch.SubscribeFunc("game.#", func(_ context.Context, _ any, env bus.Envelope) error {
		fmt.Println("any depth:", env.Topic)
		return nil
	})

	_, _ = ch.Publish(context.Background(), "game.chess.started", nil)
	_, _ = ch.Publish(context.Background(), "game.chess.white.moved", nil)

	// Output:
	// one segment: game.chess.started
	// any depth: game.chess.started
	// any depth: game.chess.white.moved
}

// Example_collectErrors returns subscriber failures from Publish.
func Example_collectErrors() {
	b := bus.New(bus.WithErrorPolicy(bus.ErrorPolicyCollect))
	_ = b.Start()
	defer b.Close(context.Background())

	ch := b.Channel("jobs")
	_, _ = ch.SubscribeFunc("job.done", func(context.Context, any, bus.Envelope) error {
		return errors.New("disk full")
	})
	_, _ = ch.SubscribeFunc("job.done", func(context.Context, any, bus.Envelope) error {
		fmt.Println("second subscriber still runs")
		return nil
	})

	_, err := ch.Publish(context.Background(), "job.done", nil)

	var serr *bus.SubscriberError
	if errors.As(err, &serr) {
		fmt.Println("failed:", serr.Err)
	}

	// Output:
	// second subscriber still runs
	// failed: disk full
}

// Example_emitter gives a type observer-style events by composition.
func Example_emitter() {
	b := bus.New()
	_ = b.Start()
	defer b.Close(context.Background())

	type Player struct {
		*bus.Emitter
		Name string
	}
	jim := &Player{Emitter: bus.NewEmitter(b.Channel("xbox"), "player.jim"), Name: "jim"}
	defer jim.Close()

	_, _ = jim.On("scored", func(_ context.Context, data any, env bus.Envelope) error {
		fmt.Printf("%s: %v\n", env.Topic, data)
		return nil
	})

	_, _ = jim.Emit(context.Background(), "scored", 10)

	// Output: player.jim.scored: 10
}
