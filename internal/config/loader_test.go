package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal(defaultArcadeYAML, &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestLoadCustomPathMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcade.yaml")
	data := []byte("connect_four:\n  depth: 3\nstorage:\n  driver: memory\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ConnectFour.Depth)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Pong.Gameplay.WinScore, "unset keys keep their defaults")
}

func TestLoadCustomPathErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pong: [1, 2"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
}

func TestOverlayEnvironment(t *testing.T) {
	t.Setenv("ARCADE_CONNECT_FOUR_DEPTH", "7")
	t.Setenv("ARCADE_LOG_LEVEL", "debug")

	cfg, err := Overlay(viper.New(), Default())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.ConnectFour.Depth)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.InDelta(t, 0.04, cfg.Pong.Paddles.Speed, 1e-9)
}

func TestOverlayExplicitValue(t *testing.T) {
	v := viper.New()
	v.Set("storage.driver", "postgres")

	cfg, err := Overlay(v, Default())
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name    string
		preset  string
		depth   int
		wantErr bool
	}{
		{"empty is normal", "", 5, false},
		{"easy", "easy", 2, false},
		{"hard", "hard", 7, false},
		{"unknown", "nightmare", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePreset(tt.preset)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			cfg := Default()
			ApplyPreset(&cfg, p)
			assert.Equal(t, tt.depth, cfg.ConnectFour.Depth)
		})
	}
}

func TestResolvedPaths(t *testing.T) {
	assert.Equal(t, "/tmp/x.db", StorageConfig{Path: "/tmp/x.db"}.DatabasePath())
	assert.Equal(t, "arcade.db", filepath.Base(StorageConfig{}.DatabasePath()))
	assert.Equal(t, "arcade.log", filepath.Base(LogConfig{}.FilePath()))
	assert.Equal(t, "ssh_host_key", filepath.Base(SSHConfig{}.HostKeyPath()))
}
