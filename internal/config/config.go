// Package config loads and saves kestrelasm's TOML configuration file,
// following the teacher repo's own config package: a struct of tagged
// sub-sections, platform-specific default paths, and graceful fallback to
// built-in defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds kestrelasm's persistent settings.
type Config struct {
	Assemble struct {
		OrgDefault int  `toml:"org_default"`
		PICDefault bool `toml:"pic_default"`
		WrapASM    bool `toml:"wrap_asm"`
	} `toml:"assemble"`

	Output struct {
		Format    string `toml:"format"` // "bin" or "dcl"
		Directory string `toml:"directory"`
	} `toml:"output"`

	API struct {
		Port       int  `toml:"port"`
		EnableCORS bool `toml:"enable_cors"`
	} `toml:"api"`

	Logging struct {
		Level string `toml:"level"` // "debug", "info", "warn", "error"
		File  string `toml:"file"`
	} `toml:"logging"`
}

// DefaultConfig returns kestrelasm's built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assemble.OrgDefault = 0x200
	cfg.Assemble.PICDefault = true
	cfg.Assemble.WrapASM = true

	cfg.Output.Format = "bin"
	cfg.Output.Directory = "."

	cfg.API.Port = 8089
	cfg.API.EnableCORS = true

	cfg.Logging.Level = "info"
	cfg.Logging.File = ""

	return cfg
}

// GetConfigPath returns the platform-specific config file path, creating its
// directory if necessary.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "kestrelasm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "kestrelasm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to defaults when the
// file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
