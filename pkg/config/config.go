// Package config reads and writes config.toml in the .uistream/ directory and
// layers it under environment variables and flags through viper.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/uistream/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// Configer reads and writes one config.toml. A Configer without a resolved
// directory loads defaults and refuses to save.
type Configer struct {
	path string
}

// NewConfiger resolves the .uistream/ directory (override first) and returns
// a Configer for the config.toml inside it. The file need not exist.
func NewConfiger(override string) (*Configer, error) {
	dir, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return &Configer{}, nil
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return &Configer{path: path}, nil
}

// Path returns the config.toml location, or "" when no directory resolved.
func (c *Configer) Path() string {
	return c.path
}

// Load returns the stored config with defaults filled in for every unset
// key. A missing file yields NewDefaultConfig().
func (c *Configer) Load() (*Config, error) {
	if c.path == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewDefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	fillDefaults(cfg)
	return cfg, nil
}

// fillDefaults copies a default into every key that is unset in cfg. "0"
// counts as unset for numeric keys; keys without a default stay empty.
func fillDefaults(cfg *Config) {
	defaults := NewDefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	for _, k := range keys {
		def := k.get(defaults)
		if def == "" || def == "0" {
			continue
		}
		if cur := k.get(cfg); cur == "" || cur == "0" {
			_ = k.set(cfg, def)
		}
	}
}

// Save writes cfg to config.toml, readable only by its owner.
func (c *Configer) Save(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}
	if c.path == "" {
		return errors.New("no .uistream directory to save config into")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Set validates value for name and saves it, keeping every other key.
func (c *Configer) Set(name, value string) error {
	k, ok := lookupKey(name)
	if !ok {
		return fmt.Errorf("unknown config key: %q", name)
	}

	cfg, err := c.Load()
	if err != nil {
		return err
	}
	if err := k.set(cfg, value); err != nil {
		return err
	}
	return c.Save(cfg)
}

// Unset puts name back to its default, or clears it when it has none.
func (c *Configer) Unset(name string) error {
	k, ok := lookupKey(name)
	if !ok {
		return fmt.Errorf("unknown config key: %q", name)
	}

	cfg, err := c.Load()
	if err != nil {
		return err
	}
	if err := k.set(cfg, k.get(NewDefaultConfig())); err != nil {
		return err
	}
	return c.Save(cfg)
}

// Get returns the effective value of name, defaults included.
func (c *Configer) Get(name string) (string, error) {
	k, ok := lookupKey(name)
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", name)
	}

	cfg, err := c.Load()
	if err != nil {
		return "", err
	}
	return k.get(cfg), nil
}

// ParseConfigTOML decodes and validates raw TOML. A version field other than
// CurrentV is rejected; defaults are not applied.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	if cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
