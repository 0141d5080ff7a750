package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dshills/borderedit/internal/config/loader"
	"github.com/dshills/borderedit/internal/config/watcher"
)

// ChangeCallback is called after a successful reload.
type ChangeCallback func(*Config)

// Config holds the merged borderedit configuration: built-in defaults,
// then the config file, then BORDEREDIT_* environment variables.
type Config struct {
	mu sync.RWMutex

	path   string
	fsys   loader.FileSystem
	useEnv bool

	merged map[string]any

	// configErrors stores problems found while reading typed sections.
	// The affected settings fall back to their defaults.
	configErrors map[string]error

	callbacks []ChangeCallback
	watcher   *watcher.Watcher
	closed    bool
}

// Option configures a Config instance.
type Option func(*Config)

// WithPath sets the configuration file. The extension selects the format.
func WithPath(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFS sets the file system the config file is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) {
		if fsys != nil {
			c.fsys = fsys
		}
	}
}

// WithEnv enables or disables the environment layer.
func WithEnv(enable bool) Option {
	return func(c *Config) {
		c.useEnv = enable
	}
}

// New creates a Config holding only the defaults. Call Load to read the
// file and environment.
func New(opts ...Option) *Config {
	c := &Config{
		fsys:         loader.DefaultFS(),
		useEnv:       true,
		merged:       defaultConfig(),
		configErrors: make(map[string]error),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.path == "" {
		c.path = DefaultPath()
	}
	return c
}

// DefaultPath returns the user configuration file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "borderedit", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "borderedit.toml"
	}
	return filepath.Join(home, ".config", "borderedit", "config.toml")
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}

// Load reads all sources and replaces the merged configuration.
// A missing config file is not an error.
func (c *Config) Load(_ context.Context) error {
	merged, err := c.read()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.merged = merged
	c.configErrors = make(map[string]error)
	c.mu.Unlock()
	return nil
}

// Reload re-reads all sources and notifies callbacks. On error the previous
// configuration stays in effect.
func (c *Config) Reload(ctx context.Context) error {
	if err := c.Load(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	callbacks := append([]ChangeCallback(nil), c.callbacks...)
	c.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(c)
		}
	}
	return nil
}

func (c *Config) read() (map[string]any, error) {
	merged := defaultConfig()

	fileLoader, err := loader.ForPath(c.fsys, c.path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", c.path, err)
	}
	data, err := fileLoader.Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, data)

	if c.useEnv {
		env, err := loader.NewEnvLoader(loader.EnvPrefix).Load()
		if err != nil {
			return nil, fmt.Errorf("config environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}
	return merged, nil
}

// OnChange registers a callback run after each successful reload.
// Returns a function to unregister the callback.
func (c *Config) OnChange(callback ChangeCallback) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.callbacks = append(c.callbacks, callback)
	index := len(c.callbacks) - 1

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if index < len(c.callbacks) {
			c.callbacks[index] = nil
		}
	}
}

// Watch reloads the configuration whenever the config file changes, until
// ctx is done. Reload errors are passed to onError and the previous
// configuration is kept.
func (c *Config) Watch(ctx context.Context, onError func(error)) error {
	w, err := watcher.New()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = w.Close()
		return ErrClosed
	}
	c.watcher = w
	c.mu.Unlock()

	defer func() { _ = w.Close() }()

	if err := w.Watch(c.path); err != nil {
		return fmt.Errorf("watch %s: %w", c.path, err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return <-runErr
		case err := <-runErr:
			return err
		case ev := <-w.Events():
			if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
				// Wait for the replacement file.
				continue
			}
			if err := c.Reload(ctx); err != nil {
				report(err)
			}
		case err := <-w.Errors():
			report(err)
		}
	}
}

// Close stops a running Watch.
func (c *Config) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.merged, path)
}

// Merged returns a copy of the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path. Integers are
// accepted.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: typeName(v)}
	}
}

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getFloatOr(path string, defaultValue float64) float64 {
	v, err := c.GetFloat(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

// recordConfigError stores an error for later inspection. Missing
// settings are not errors.
func (c *Config) recordConfigError(path string, err error) {
	if errors.Is(err, ErrSettingNotFound) {
		return
	}
	c.mu.Lock()
	c.configErrors[path] = err
	c.mu.Unlock()
}

// ConfigErrors returns the problems found while reading sections, keyed by
// setting path.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		out[k] = v
	}
	return out
}

// Warnings returns ConfigErrors as sorted messages.
func (c *Config) Warnings() []string {
	errs := c.ConfigErrors()
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	sort.Strings(out)
	return out
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"margin":   DefaultMargin,
			"editable": true,
		},
		"surface": map[string]any{
			"cell_width":  DefaultCellWidth,
			"cell_height": DefaultCellHeight,
		},
		"style": map[string]any{
			"stroke": DefaultStroke,
			"handle": DefaultHandle,
			"active": DefaultActive,
		},
		"hooks": map[string]any{
			"script": "",
		},
		"export": map[string]any{
			"path": "",
		},
		"logging": map[string]any{
			"level": "info",
			"file":  "",
		},
	}
}
