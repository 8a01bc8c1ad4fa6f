// Package config loads evkeys settings from a TOML or YAML file.
package config

import (
	"errors"
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strings"
)

const appName = "evkeys"

var (
	ErrUnknownFormat  = errors.New("unknown config file format")
	ErrInvalidBackend = errors.New("invalid keymap store backend")
	ErrHotplugDropped = errors.New("watch_hotplug cannot open new devices after privileges are dropped")
)

type Config struct {
	// Devices lists event device paths. Empty means auto-detect keyboards.
	Devices []string `toml:"devices" yaml:"devices"`
	// Output is a file the text is appended to; "" or "-" is stdout.
	Output  string `toml:"output" yaml:"output"`
	PIDFile string `toml:"pid_file" yaml:"pid_file"`

	ForceUSKeymap bool           `toml:"force_us_keymap" yaml:"force_us_keymap"`
	Dumpkeys      DumpkeysConfig `toml:"dumpkeys" yaml:"dumpkeys"`
	Keymap        KeymapConfig   `toml:"keymap" yaml:"keymap"`

	WatchHotplug   bool   `toml:"watch_hotplug" yaml:"watch_hotplug"`
	DropPrivileges bool   `toml:"drop_privileges" yaml:"drop_privileges"`
	User           string `toml:"user" yaml:"user"`

	Debug bool `toml:"debug" yaml:"debug"`
}

type DumpkeysConfig struct {
	Path string   `toml:"path" yaml:"path"`
	Args []string `toml:"args" yaml:"args"`
}

type KeymapConfig struct {
	// Name selects a stored keymap instead of running dumpkeys.
	Name    string `toml:"name" yaml:"name"`
	Backend string `toml:"backend" yaml:"backend"`
	Store   string `toml:"store" yaml:"store"`
}

func Default() *Config {
	return &Config{
		Output: "-",
		Dumpkeys: DumpkeysConfig{
			Path: "dumpkeys",
			Args: []string{"-n"},
		},
		Keymap: KeymapConfig{
			Backend: "sqlite",
			Store:   filepath.Join(xdg.DataHome, appName, "keymaps.db"),
		},
		DropPrivileges: true,
		User:           "nobody",
	}
}

// DefaultPath returns the config file location, which may not exist.
func DefaultPath() string {
	if path, err := xdg.SearchConfigFile(filepath.Join(appName, "config.toml")); err == nil {
		return path
	}
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Keymap.Backend {
	case "sqlite", "json", "memory":
	default:
		return fmt.Errorf("%q: %w", c.Keymap.Backend, ErrInvalidBackend)
	}

	if c.WatchHotplug && c.DropPrivileges {
		return ErrHotplugDropped
	}

	if c.DropPrivileges && c.User == "" {
		return errors.New("drop_privileges needs a user")
	}

	return nil
}

// StdoutOutput reports whether translated text goes to stdout.
func (c *Config) StdoutOutput() bool {
	return c.Output == "" || c.Output == "-"
}
