package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "TOPICBUS_"

// Loader resolves a Config from defaults, a TOML file, .env files and the
// environment.
type Loader struct {
	path     string
	envFiles []string
	environ  map[string]string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFile sets the TOML file to read. A missing file is an error.
func WithFile(path string) LoaderOption {
	return func(l *Loader) {
		l.path = path
	}
}

// WithEnvFiles adds .env files. Their variables never override variables
// already present in the environment.
func WithEnvFiles(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.envFiles = append(l.envFiles, paths...)
	}
}

// WithEnvironment replaces the process environment, mainly for tests.
func WithEnvironment(environ map[string]string) LoaderOption {
	return func(l *Loader) {
		l.environ = environ
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves and validates the configuration.
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	if l.path != "" {
		if err := LoadFile(l.path, &cfg); err != nil {
			return Config{}, err
		}
	}

	environ, err := l.environment()
	if err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// environment merges the base environment with the .env files.
func (l *Loader) environment() (map[string]string, error) {
	base := l.environ
	if base == nil {
		base = env.ToMap(os.Environ())
	}

	merged := make(map[string]string, len(base))
	for k, v := range base {
		merged[k] = v
	}

	for _, path := range l.envFiles {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", path, err)
		}
		for k, v := range vars {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// LoadFile decodes the TOML file at path over cfg. Keys absent from the
// file keep their current values; unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Decode(path, data, cfg)
}

// Decode decodes TOML data over cfg. source names the data in errors.
func Decode(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Err: err}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}
