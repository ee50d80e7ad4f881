package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ARCADE"

// Load loads the arcade configuration.
// Search order: customPath -> ~/.arcade/configs/arcade.yaml -> ./configs/arcade.yaml -> embedded default
func Load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("arcade.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = Default()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/arcade.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = Default()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultArcadeYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Overlay layers environment variables and any flags bound on v over cfg.
// Keys are dotted yaml paths; ARCADE_CONNECT_FOUR_DEPTH sets connect_four.depth.
func Overlay(v *viper.Viper, cfg Config) (Config, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to encode config: %w", err)
	}

	v.SetConfigType("yaml")
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return cfg, fmt.Errorf("failed to merge config: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return cfg, fmt.Errorf("failed to apply overrides: %w", err)
	}
	return out, nil
}

// Dump renders cfg as YAML.
func Dump(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// DataDir returns ~/.arcade, or the working directory when home is unavailable.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".arcade")
}

// DatabasePath returns the configured SQLite path or the default location.
func (s StorageConfig) DatabasePath() string {
	if s.Path != "" {
		return expandHome(s.Path)
	}
	return filepath.Join(DataDir(), "arcade.db")
}

// FilePath returns the configured log file or the default location.
func (l LogConfig) FilePath() string {
	if l.File != "" {
		return expandHome(l.File)
	}
	return filepath.Join(DataDir(), "arcade.log")
}

// HostKeyPath returns the configured SSH host key or the default location.
func (s SSHConfig) HostKeyPath() string {
	if s.HostKey != "" {
		return expandHome(s.HostKey)
	}
	return filepath.Join(DataDir(), "ssh_host_key")
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
