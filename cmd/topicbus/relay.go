package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/topicbus/internal/bus"
	"github.com/dshills/topicbus/internal/bus/codec"
	"github.com/dshills/topicbus/internal/bus/topic"
)

// errBadLine is returned by parseLine for malformed input.
var errBadLine = errors.New("expected: <channel> <topic> [json-data]")

// relay publishes input lines on a bus and writes every delivery it is
// subscribed to as an encoded envelope.
type relay struct {
	bus    *bus.Bus
	codec  codec.Codec
	logger *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// subscribe registers a printing subscription for arg, "channel=pattern".
func (r *relay) subscribe(arg string, opts ...bus.SubscriptionOption) (bus.Subscription, error) {
	channel, pattern, ok := strings.Cut(arg, "=")
	if !ok || channel == "" {
		return nil, fmt.Errorf("subscription %q: expected channel=pattern", arg)
	}
	return r.bus.Channel(channel).SubscribeFunc(topic.Topic(pattern), r.deliver, opts...)
}

func (r *relay) deliver(_ context.Context, _ any, env bus.Envelope) error {
	data, err := r.codec.Encode(env)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.codec.Name() == "json" {
		_, err = fmt.Fprintf(r.out, "%s\n", data)
	} else {
		_, err = fmt.Fprintln(r.out, hex.EncodeToString(data))
	}
	return err
}

// run reads lines from in until EOF or ctx is done and publishes each one.
// Bad lines and failed publishes are logged and skipped. It returns the
// number of accepted publishes.
func (r *relay) run(ctx context.Context, in io.Reader) (int, error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	published := 0
	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return published, nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return published, err
				default:
					return published, nil
				}
			}
			lineNo++
			if r.publishLine(ctx, lineNo, line) {
				published++
			}
		}
	}
}

func (r *relay) publishLine(ctx context.Context, lineNo int, line string) bool {
	channel, t, data, err := parseLine(line)
	if err != nil {
		if !errors.Is(err, errSkipLine) {
			r.logger.Warn("bad input line", zap.Int("line", lineNo), zap.Error(err))
		}
		return false
	}

	n, err := r.bus.Publish(ctx, channel, t, data)
	if err != nil {
		r.logger.Warn("publish failed",
			zap.Int("line", lineNo),
			zap.String("channel", channel),
			zap.Stringer("topic", t),
			zap.Error(err),
		)
		if n == 0 && !isSubscriberError(err) {
			return false
		}
	}
	r.logger.Debug("published",
		zap.String("channel", channel),
		zap.Stringer("topic", t),
		zap.Int("notified", n),
	)
	return true
}

func isSubscriberError(err error) bool {
	var serr *bus.SubscriberError
	return errors.As(err, &serr)
}

// errSkipLine marks blank and comment lines.
var errSkipLine = errors.New("skip")

// parseLine splits "<channel> <topic> [json-data]". Blank lines and lines
// starting with "//" yield errSkipLine.
func parseLine(line string) (string, topic.Topic, any, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "//") {
		return "", "", nil, errSkipLine
	}

	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 || fields[1] == "" {
		return "", "", nil, errBadLine
	}

	var data any
	if len(fields) == 3 {
		raw := strings.TrimSpace(fields[2])
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &data); err != nil {
				return "", "", nil, fmt.Errorf("data: %w", err)
			}
		}
	}
	return fields[0], topic.Topic(fields[1]), data, nil
}
