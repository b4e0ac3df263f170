package config

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/charbuf/internal/config/loader"
	"github.com/dshills/charbuf/internal/engine/persist"
	"github.com/dshills/charbuf/internal/log"
)

// Setting paths.
const (
	PathLogLevel      = "log.level"
	PathCodecFormat   = "codec.format"
	PathInputEncoding = "input.encoding"
	PathWorkers       = "workers"
)

// Encodings accepted for input text.
var Encodings = []string{"utf-8", "utf-16le", "utf-16be"}

// Settings is the typed view of the merged configuration.
type Settings struct {
	Log struct {
		Level string
	}
	Codec struct {
		Format string
	}
	Input struct {
		Encoding string
	}
	Workers int
}

// Config merges configuration layers and hands out typed settings.
type Config struct {
	mu sync.RWMutex

	merged    map[string]any
	overrides map[string]any

	fs         loader.FileSystem
	configFile string
	envPrefix  string
}

// Option configures a Config instance.
type Option func(*Config)

// WithConfigFile sets the config file. Empty means no file layer.
func WithConfigFile(path string) Option {
	return func(c *Config) {
		c.configFile = path
	}
}

// WithFileSystem sets the file system the config file is read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// New creates a Config holding only the defaults until Load is called.
func New(opts ...Option) *Config {
	c := &Config{
		merged:    defaultConfig(),
		overrides: make(map[string]any),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load rebuilds the merged configuration from defaults, the config file
// and the environment. Values set with Set stay on top.
func (c *Config) Load(ctx context.Context) error {
	merged := defaultConfig()

	if c.configFile != "" {
		data, err := loader.ForPath(c.fs, c.configFile).Load()
		if err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
		if data == nil {
			log.Debug("config file not found", "path", c.configFile)
		}
		merged = loader.DeepMerge(merged, data)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	env, err := loader.NewEnvLoader(c.envPrefix).Load()
	if err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, env)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.merged = loader.DeepMerge(merged, nestedCopy(c.overrides))
	return nil
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.merged, path)
}

// Set overrides the value at path. Overrides survive a later Load.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := setPath(c.merged, path, value); err != nil {
		return err
	}
	c.overrides[path] = value
	return nil
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", notFound(path)
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch(path, "string", v)
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, notFound(path)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, typeMismatch(path, "int", v)
		}
		return int(val), nil
	default:
		return 0, typeMismatch(path, "int", v)
	}
}

// Settings decodes and validates the merged configuration.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	var err error

	if s.Log.Level, err = c.GetString(PathLogLevel); err != nil {
		return Settings{}, err
	}
	if _, err := log.ParseLevel(s.Log.Level); err != nil {
		return Settings{}, invalid(PathLogLevel, s.Log.Level, "unknown level")
	}

	if s.Codec.Format, err = c.GetString(PathCodecFormat); err != nil {
		return Settings{}, err
	}
	if _, err := persist.Lookup(s.Codec.Format); err != nil {
		return Settings{}, invalid(PathCodecFormat, s.Codec.Format, "unknown format")
	}

	if s.Input.Encoding, err = c.GetString(PathInputEncoding); err != nil {
		return Settings{}, err
	}
	s.Input.Encoding = strings.ToLower(s.Input.Encoding)
	if !slices.Contains(Encodings, s.Input.Encoding) {
		return Settings{}, invalid(PathInputEncoding, s.Input.Encoding, "unsupported encoding")
	}

	if s.Workers, err = c.GetInt(PathWorkers); err != nil {
		return Settings{}, err
	}
	if s.Workers < 1 {
		return Settings{}, invalid(PathWorkers, s.Workers, "must be at least 1")
	}

	return s, nil
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level": "info",
		},
		"codec": map[string]any{
			"format": "binary",
		},
		"input": map[string]any{
			"encoding": "utf-8",
		},
		"workers": runtime.NumCPU(),
	}
}

// nestedCopy expands flat path keys into a fresh nested map.
func nestedCopy(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for path, value := range flat {
		_ = setPath(out, path, value)
	}
	return out
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return invalidPath(path)
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return invalidPath(path)
		}
		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path into parts, dropping empty ones.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
