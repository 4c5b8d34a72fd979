package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromPath(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadFromPath("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
		assert.True(t, cfg.AutoConvert())
	})

	t.Run("partial file is completed with defaults", func(t *testing.T) {
		path := writeConfig(t, `
log:
  level: debug
view:
  budget: 10ms
  progress: true
resolver:
  auto_convert: false
server:
  port: 9090
`)
		cfg, err := LoadFromPath(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, 10*time.Millisecond, cfg.View.Budget.Duration())
		assert.True(t, cfg.View.Progress)
		assert.False(t, cfg.AutoConvert())
		assert.Equal(t, 512, cfg.Resolver.CacheSize)
		assert.Equal(t, "reject", cfg.Resolver.Ambiguity)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "/", cfg.Remote.Namespace)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := LoadFromPath(writeConfig(t, "view:\n  budget: soon\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown level", "log:\n  level: loud\n", "Config.Log.Level: must be one of"},
		{"unknown format", "log:\n  format: xml\n", "Config.Log.Format: must be one of"},
		{"negative budget", "view:\n  budget: -1ms\n", "Config.View.Budget: must be greater than 0"},
		{"unknown ambiguity", "resolver:\n  ambiguity: ask\n", "Config.Resolver.Ambiguity"},
		{"port out of range", "server:\n  port: 70000\n", "Config.Server.Port: must not exceed 65535"},
		{"namespace", "remote:\n  namespace: graph\n", "Config.Remote.Namespace"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	out, err := Duration(4 * time.Millisecond).MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "4ms", out)
}
