package config

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dshills/ansistr/internal/config/loader"
	"github.com/dshills/ansistr/internal/config/watcher"
	"github.com/dshills/ansistr/internal/engine/buffer"
	"github.com/dshills/ansistr/internal/engine/search"
	"github.com/dshills/ansistr/internal/gate"
	"github.com/dshills/ansistr/internal/logging"
)

// Config holds every ansistr setting.
type Config struct {
	License gate.License  `toml:"license" yaml:"license"`
	Buffer  BufferConfig  `toml:"buffer" yaml:"buffer"`
	Search  SearchConfig  `toml:"search" yaml:"search"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`

	file string
}

// BufferConfig configures string buffers created by the application.
type BufferConfig struct {
	EmbedSize    int  `toml:"embed_size" yaml:"embed_size"`
	MaxCapacity  int  `toml:"max_capacity" yaml:"max_capacity"` // 0 means unlimited
	Pooled       bool `toml:"pooled" yaml:"pooled"`
	PollInterval int  `toml:"poll_interval" yaml:"poll_interval"`
}

// SearchConfig configures pattern search.
type SearchConfig struct {
	Method     string `toml:"method" yaml:"method"`
	MinPattern int    `toml:"min_pattern" yaml:"min_pattern"`
	MinWindow  int    `toml:"min_window" yaml:"min_window"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Buffer: BufferConfig{
			EmbedSize:    buffer.DefaultEmbedSize,
			PollInterval: buffer.DefaultPollInterval,
		},
		Search: SearchConfig{
			Method:     search.MethodAuto.String(),
			MinPattern: search.DefaultMinPattern,
			MinWindow:  search.DefaultMinWindow,
		},
		Logging: LoggingConfig{
			Level:  logrus.InfoLevel.String(),
			Format: logging.FormatText,
		},
	}
}

// defaultConfig returns the defaults layer as a generic map.
func defaultConfig() map[string]any {
	d := Default()
	return map[string]any{
		"buffer": map[string]any{
			"embed_size":    d.Buffer.EmbedSize,
			"max_capacity":  d.Buffer.MaxCapacity,
			"pooled":        d.Buffer.Pooled,
			"poll_interval": d.Buffer.PollInterval,
		},
		"search": map[string]any{
			"method":      d.Search.Method,
			"min_pattern": d.Search.MinPattern,
			"min_window":  d.Search.MinWindow,
		},
		"logging": map[string]any{
			"level":  d.Logging.Level,
			"format": d.Logging.Format,
		},
	}
}

// File returns the configuration file that was loaded, if any.
func (c *Config) File() string {
	return c.file
}

type options struct {
	path      string
	fs        loader.FileSystem
	envPrefix string
	env       bool
	debounce  time.Duration
}

// Option configures Load and Watch.
type Option func(*options)

// WithFile loads the given file instead of the default location.
// The file must exist.
func WithFile(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithFS reads files through fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv skips the environment layer.
func WithoutEnv() Option {
	return func(o *options) {
		o.env = false
	}
}

// WithDebounce sets how long Watch waits for a file to settle.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

func resolve(opts []Option) *options {
	o := &options{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		env:       true,
		debounce:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load builds the configuration from defaults, the configuration file and
// the environment, then validates it.
func Load(opts ...Option) (*Config, error) {
	o := resolve(opts)

	path := o.path
	if path != "" {
		if _, err := o.fs.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, pkgerrors.Wrap(ErrFileNotFound, path)
			}
			return nil, pkgerrors.Wrapf(err, "stat %s", path)
		}
	} else {
		path = DefaultPath(o.fs)
	}

	var sources []loader.Source
	if path != "" {
		fl, err := loader.NewFileLoaderWithFS(o.fs, path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fl)
	}
	if o.env {
		sources = append(sources, loader.NewEnvLoader(o.envPrefix))
	}

	merged := defaultConfig()
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	c, err := decode(merged)
	if err != nil {
		return nil, err
	}
	c.file = path
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// decode converts the merged map into a Config, rejecting unknown keys.
func decode(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encoding merged configuration")
	}

	c := &Config{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) && len(strict.Errors) > 0 {
			return nil, &ValidationError{
				Path:    strings.Join(strict.Errors[0].Key(), "."),
				Message: "unknown setting",
				Value:   nil,
				Code:    ErrCodeUnknownSetting,
			}
		}
		return nil, &ValidationError{Message: err.Error(), Code: ErrCodeTypeMismatch}
	}
	return c, nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	nonNegative := []struct {
		path string
		v    int
	}{
		{"buffer.embed_size", c.Buffer.EmbedSize},
		{"buffer.max_capacity", c.Buffer.MaxCapacity},
		{"buffer.poll_interval", c.Buffer.PollInterval},
		{"search.min_pattern", c.Search.MinPattern},
		{"search.min_window", c.Search.MinWindow},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return &ValidationError{Path: f.path, Message: "must not be negative", Value: f.v, Code: ErrCodeOutOfRange}
		}
	}

	if c.Buffer.MaxCapacity > 0 && c.Buffer.EmbedSize > c.Buffer.MaxCapacity {
		return &ValidationError{
			Path:    "buffer.embed_size",
			Message: "exceeds buffer.max_capacity",
			Value:   c.Buffer.EmbedSize,
			Code:    ErrCodeOutOfRange,
		}
	}

	if _, err := search.ParseMethod(c.Search.Method); err != nil {
		return &ValidationError{Path: "search.method", Message: "must be auto, naive or skip", Value: c.Search.Method, Code: ErrCodeInvalidEnum}
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging.Level, Code: ErrCodeInvalidEnum}
	}
	if _, err := logging.Formatter(c.Logging.Format); err != nil {
		return &ValidationError{Path: "logging.format", Message: "must be text or json", Value: c.Logging.Format, Code: ErrCodeInvalidEnum}
	}

	// An absent license is allowed here; the gate rejects it when used.
	if c.License != (gate.License{}) && !c.License.Valid() {
		return &ValidationError{Path: "license.key", Message: "does not match license identity", Value: c.License.Key, Code: ErrCodeInvalidLicense}
	}
	return nil
}

// SearchMethod returns the configured search method.
func (c *Config) SearchMethod() search.Method {
	m, _ := search.ParseMethod(c.Search.Method)
	return m
}

// Tuning returns the thresholds for search.MethodAuto.
func (c *Config) Tuning() search.Tuning {
	return search.Tuning{MinPattern: c.Search.MinPattern, MinWindow: c.Search.MinWindow}
}

// Allocator returns the allocator described by the buffer section.
func (c *Config) Allocator() buffer.Allocator {
	if c.Buffer.Pooled {
		return buffer.NewPoolAllocator(c.Buffer.MaxCapacity)
	}
	return buffer.HeapAllocator{Limit: c.Buffer.MaxCapacity}
}

// BufferOptions converts the buffer and search sections into buffer options.
func (c *Config) BufferOptions() []buffer.Option {
	return []buffer.Option{
		buffer.WithEmbedSize(c.Buffer.EmbedSize),
		buffer.WithAllocator(c.Allocator()),
		buffer.WithTuning(c.Tuning()),
		buffer.WithPollInterval(c.Buffer.PollInterval),
	}
}

// Encode renders the configuration in the given format.
func (c *Config) Encode(format loader.Format) ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encoding configuration")
	}
	if format == loader.FormatTOML {
		return data, nil
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, pkgerrors.Wrap(err, "encoding configuration")
	}
	return loader.Encode(format, m)
}

// Watch reloads the configuration whenever its file changes and passes the
// result to fn. It blocks until ctx is done.
func Watch(ctx context.Context, fn func(*Config, error), opts ...Option) error {
	o := resolve(opts)
	path := o.path
	if path == "" {
		path = DefaultPath(o.fs)
	}
	if path == "" {
		return pkgerrors.Wrap(ErrFileNotFound, "nothing to watch")
	}
	// Reloads must read the same file even if it is gone at that moment.
	opts = append(opts, WithFile(path))

	log := logrus.WithField("path", path)
	w := watcher.New(watcher.WithDebounce(o.debounce), watcher.WithLogger(log))
	w.OnChange(func(ev watcher.Event) {
		log.WithField("op", ev.Op).Debug("configuration changed")
		fn(Load(opts...))
	})
	if err := w.Watch(path); err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	return nil
}

// DefaultPath returns the first configuration file found in the user
// configuration directory, or "" when there is none.
func DefaultPath(fsys loader.FileSystem) string {
	dir := defaultUserConfigDir()
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := fsys.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ansistr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ansistr")
}
