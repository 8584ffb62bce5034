package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaabGarcez/Arenna-cameras/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9000
  production: true
dvr:
  ip: "192.168.0.18"
  user: admin
  password: secret
  channels: [1, 2, 3]
  subtype: 1
  target_height: 480
stream:
  fps: 15
  jpeg_quality: 90
logging:
  level: debug
`)

	config, err := core.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.HTTPPort)
	assert.True(t, config.Server.Production)
	assert.Equal(t, []int{1, 2, 3}, config.DVR.Channels)
	assert.Equal(t, 480, config.DVR.TargetHeight)
	assert.Equal(t, 15.0, config.Stream.FPS)
	assert.Equal(t, 90, config.Stream.JPEGQuality)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 8000
`)

	config, err := core.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 12.0, config.Stream.FPS)
	assert.Equal(t, 80, config.Stream.JPEGQuality)
	assert.Equal(t, 2, config.Capture.CooldownSec)
	assert.Equal(t, 50, config.Capture.RetrySleepMillis)
	assert.Equal(t, 360, config.DVR.TargetHeight)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Output)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  http_port: 70000\n"},
		{"bad quality", "stream:\n  jpeg_quality: 200\n"},
		{"bad dvr channel", "dvr:\n  ip: \"10.0.0.1\"\n  channels: [42]\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := core.LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := core.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
