package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, c *Config)
	}{
		{"settings.retries", "9", func(t *testing.T, c *Config) { assert.Equal(t, 9, c.Settings.Retries) }},
		{"settings.extract", "true", func(t *testing.T, c *Config) { assert.True(t, c.Settings.Extract) }},
		{"settings.dest_dir", "/data", func(t *testing.T, c *Config) { assert.Equal(t, "/data", c.Settings.DestDir) }},
		{"http.timeout", "1m", func(t *testing.T, c *Config) { assert.Equal(t, time.Minute, c.HTTP.Timeout) }},
		{"sftp.known_hosts", "/etc/ssh/known_hosts", func(t *testing.T, c *Config) {
			assert.Equal(t, "/etc/ssh/known_hosts", c.SFTP.KnownHosts)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.SetValue(tt.key, tt.value))
			tt.check(t, cfg)
		})
	}
}

func TestSetValue_Errors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.SetValue("settings.nope", "1"))
	assert.Error(t, cfg.SetValue("settings.retries", "many"))
	assert.Error(t, cfg.SetValue("settings.extract", "perhaps"))
	assert.Error(t, cfg.SetValue("ftp.timeout", "soon"))
	assert.Error(t, cfg.SetValue("sftp.password", "x"))
}

func TestGetValue(t *testing.T) {
	cfg := DefaultConfig()

	v, err := cfg.GetValue("http.timeout")
	require.NoError(t, err)
	assert.Equal(t, "10s", v)

	v, err = cfg.GetValue("settings.retries")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	_, err = cfg.GetValue("unknown")
	assert.Error(t, err)
}

func TestToMap(t *testing.T) {
	m := DefaultConfig().ToMap()
	assert.Equal(t, "./downloads", m["settings.dest_dir"])
	assert.Equal(t, "false", m["settings.fail_on_error"])
	assert.Equal(t, "32768", m["sftp.chunk_size"])
	assert.NotContains(t, m, "sftp.password")
}
