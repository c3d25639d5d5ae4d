package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evilmidget38/KittehIRCBot/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadBotConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
server = "irc.kitteh.org:6667"
nick = "Mittens"
message_delay_ms = 500
channels = ["#a", "#b"]
admin_addr = "127.0.0.1:7010"
`)

	cfg, err := LoadBotConfig(path)
	require.NoError(t, err)
	require.Equal(t, "kitteh", cfg.Name)
	require.Equal(t, "irc.kitteh.org:6667", cfg.Server)
	require.Equal(t, "Mittens", cfg.Nick)
	require.Equal(t, "kitteh", cfg.User)
	require.Equal(t, 500*time.Millisecond, cfg.MessageDelay())
	require.Equal(t, []string{"#a", "#b"}, cfg.Channels)
	require.Equal(t, "127.0.0.1:7010", cfg.AdminAddr)
	require.False(t, cfg.TLS.Enabled)
}

func TestLoadBotConfigUserFallsBackToNick(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
nick = "Mittens"
user = ""
`)

	cfg, err := LoadBotConfig(path)
	require.NoError(t, err)
	require.Equal(t, "Mittens", cfg.User)
}

func TestValidateBotConfig(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name    string
		mutate  func(*BotConfig)
		wantErr error
	}{
		{"valid defaults", func(*BotConfig) {}, nil},
		{"missing name", func(c *BotConfig) { c.Name = " " }, ErrMissingName},
		{"missing server", func(c *BotConfig) { c.Server = "" }, ErrMissingServer},
		{"missing nick", func(c *BotConfig) { c.Nick = "" }, ErrMissingNick},
		{"negative delay", func(c *BotConfig) { c.MessageDelayMS = -1 }, ErrNegativeDelay},
		{"insecure with ca", func(c *BotConfig) {
			c.TLS = TLSConfig{Enabled: true, InsecureSkipVerify: true, CAFile: "ca.pem"}
		}, ErrTLSInsecureWithCA},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultBotConfig()
			tc.mutate(&cfg)
			err := ValidateBotConfig(cfg)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadBotConfigRejectsBadToml(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `nick = [broken`)
	_, err := LoadBotConfig(path)
	require.Error(t, err)
}

func TestTemplateRoundTrip(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteTemplate(path, false))
	require.ErrorContains(t, WriteTemplate(path, false), "config already exists")
	require.NoError(t, WriteTemplate(path, true))

	cfg, err := LoadBotConfig(path)
	require.NoError(t, err)
	require.Equal(t, "irc.libera.chat:6667", cfg.Server)
	require.Equal(t, 1200*time.Millisecond, cfg.MessageDelay())
	require.Equal(t, []string{"#kitteh"}, cfg.Channels)
}
