package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/topicbus/internal/bus"
)

// Config is the complete topicbus configuration.
type Config struct {
	Bus     BusConfig     `toml:"bus" envPrefix:"BUS_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
	Metrics MetricsConfig `toml:"metrics" envPrefix:"METRICS_"`
}

// BusConfig configures the message bus.
type BusConfig struct {
	// DeferredQueueSize bounds the deferred delivery queue.
	DeferredQueueSize int `toml:"deferred_queue_size" env:"DEFERRED_QUEUE_SIZE"`

	// DeferredWorkers is the number of deferred delivery workers.
	DeferredWorkers int `toml:"deferred_workers" env:"DEFERRED_WORKERS"`

	// HandlerTimeout puts a deadline on handler contexts; zero disables it.
	HandlerTimeout Duration `toml:"handler_timeout" env:"HANDLER_TIMEOUT"`

	// ErrorPolicy is "report" or "collect".
	ErrorPolicy string `toml:"error_policy" env:"ERROR_POLICY"`

	// StrictPayload rejects publishes carrying functions or channels.
	StrictPayload bool `toml:"strict_payload" env:"STRICT_PAYLOAD"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `toml:"level" env:"LEVEL"`

	// Format is "json" or "console".
	Format string `toml:"format" env:"FORMAT"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint.
	Addr string `toml:"addr" env:"ADDR"`

	// Namespace prefixes every metric name.
	Namespace string `toml:"namespace" env:"NAMESPACE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bus: BusConfig{
			DeferredQueueSize: 1024,
			DeferredWorkers:   1,
			ErrorPolicy:       bus.ErrorPolicyReport.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Namespace: "topicbus",
		},
	}
}

// Validate checks every setting and returns all problems combined.
func (c Config) Validate() error {
	var err error

	if c.Bus.DeferredQueueSize < 1 {
		err = multierr.Append(err, &FieldError{"bus.deferred_queue_size", c.Bus.DeferredQueueSize, "must be at least 1"})
	}
	if c.Bus.DeferredWorkers < 1 {
		err = multierr.Append(err, &FieldError{"bus.deferred_workers", c.Bus.DeferredWorkers, "must be at least 1"})
	}
	if c.Bus.HandlerTimeout < 0 {
		err = multierr.Append(err, &FieldError{"bus.handler_timeout", c.Bus.HandlerTimeout, "must not be negative"})
	}
	if _, ok := bus.ParseErrorPolicy(c.Bus.ErrorPolicy); !ok {
		err = multierr.Append(err, &FieldError{"bus.error_policy", c.Bus.ErrorPolicy, `must be "report" or "collect"`})
	}
	if _, perr := zapcore.ParseLevel(c.Log.Level); perr != nil {
		err = multierr.Append(err, &FieldError{"log.level", c.Log.Level, perr.Error()})
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, &FieldError{"log.format", c.Log.Format, `must be "json" or "console"`})
	}

	return err
}

// BusOptions converts the bus section to bus options. The logger, error
// handler and clock are not file settings and must be added by the caller.
func (c Config) BusOptions() ([]bus.Option, error) {
	policy, ok := bus.ParseErrorPolicy(c.Bus.ErrorPolicy)
	if !ok {
		return nil, &FieldError{"bus.error_policy", c.Bus.ErrorPolicy, `must be "report" or "collect"`}
	}

	opts := []bus.Option{
		bus.WithDeferredQueueSize(c.Bus.DeferredQueueSize),
		bus.WithDeferredWorkers(c.Bus.DeferredWorkers),
		bus.WithErrorPolicy(policy),
	}
	if c.Bus.HandlerTimeout > 0 {
		opts = append(opts, bus.WithHandlerTimeout(time.Duration(c.Bus.HandlerTimeout)))
	}
	if c.Bus.StrictPayload {
		opts = append(opts, bus.WithStrictPayload())
	}
	return opts, nil
}

// Duration is a time.Duration written as a string such as "1.5s" in TOML
// files and environment variables.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}
