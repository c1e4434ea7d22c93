// Command topicbus runs a topic bus fed from standard input.
//
// Each input line is "<channel> <topic> [json-data]" and is published on
// the bus. Every delivery to a -sub subscription is written to standard
// output as an encoded envelope.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/topicbus/internal/bus"
	"github.com/dshills/topicbus/internal/bus/codec"
	"github.com/dshills/topicbus/internal/config"
	"github.com/dshills/topicbus/internal/logging"
	"github.com/dshills/topicbus/internal/metrics"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the parsed command line.
type options struct {
	configPath  string
	envFiles    stringList
	subs        stringList
	codec       string
	deferred    bool
	logLevel    string
	metricsAddr string
	showVersion bool
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("topicbus", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to TOML configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to TOML configuration file (shorthand)")
	fs.Var(&opts.envFiles, "env-file", "Load variables from a .env file (repeatable)")
	fs.Var(&opts.subs, "sub", "Print deliveries for channel=pattern (repeatable)")
	fs.StringVar(&opts.codec, "codec", "json", "Output envelope encoding ("+strings.Join(codec.Names(), ", ")+")")
	fs.BoolVar(&opts.deferred, "deferred", false, "Deliver to -sub subscriptions on the deferred worker")
	fs.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Override the configured metrics listen address")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "topicbus - topic based message bus\n\n")
		fmt.Fprintf(stderr, "Usage: topicbus [options] < input\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nInput lines:\n")
		fmt.Fprintf(stderr, "  <channel> <topic> [json-data]\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  echo 'xbox xbox.newgame {\"player\":\"jim\"}' | topicbus -sub 'xbox=xbox.#'\n")
		fmt.Fprintf(stderr, "  topicbus -c topicbus.toml -sub 'orders=order.*.created' -codec cbor\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "topicbus %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := config.NewLoader(
		config.WithFile(opts.configPath),
		config.WithEnvFiles(opts.envFiles...),
	).Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := serve(ctx, cfg, opts, logger, stdin, stdout); err != nil {
		logger.Error("topicbus failed", zap.Error(err))
		return 1
	}
	return 0
}

// newLogger logs through the zap sink for the process's own stderr and
// through a plain core for any other writer.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*zap.Logger, error) {
	if f, ok := stderr.(*os.File); ok && f == os.Stderr {
		return logging.New(cfg)
	}
	return logging.NewWithWriter(cfg, stderr)
}

func serve(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger, stdin io.Reader, stdout io.Writer) error {
	out, err := codec.ByName(opts.codec)
	if err != nil {
		return err
	}

	busOpts, err := cfg.BusOptions()
	if err != nil {
		return err
	}
	b := bus.New(append(busOpts, bus.WithLogger(logger))...)
	if err := b.Start(); err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.Close(closeCtx); err != nil {
			logger.Warn("bus close", zap.Error(err))
		}
	}()

	r := &relay{bus: b, codec: out, logger: logger, out: stdout}

	var subOpts []bus.SubscriptionOption
	if opts.deferred {
		subOpts = append(subOpts, bus.WithDeferred())
	}
	for _, arg := range opts.subs {
		if _, err := r.subscribe(arg, subOpts...); err != nil {
			return err
		}
	}

	if cfg.Metrics.Addr != "" {
		stopMetrics, err := startMetrics(cfg.Metrics, b, logger)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	published, err := r.run(ctx, stdin)
	stats := b.Stats()
	logger.Info("input finished",
		zap.Int("published", published),
		zap.Uint64("delivered", stats.Delivered),
		zap.Uint64("handler_errors", stats.HandlerErrors),
		zap.Uint64("handler_panics", stats.HandlerPanics),
	)
	return err
}

// startMetrics serves /metrics until the returned function is called.
func startMetrics(cfg config.MetricsConfig, b *bus.Bus, logger *zap.Logger) (func(), error) {
	reg, err := metrics.NewRegistry(metrics.NewCollector(cfg.Namespace, b))
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
