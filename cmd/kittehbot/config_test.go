package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/evilmidget38/KittehIRCBot/internal/config"
)

func TestLoadBotConfigDefaultsAndOverrides(t *testing.T) {
	cfg, err := loadBotConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Name != "kitteh" {
		t.Fatalf("unexpected name: %q", cfg.Name)
	}
	if cfg.Server != "irc.libera.chat:6697" {
		t.Fatalf("unexpected server: %q", cfg.Server)
	}
	if cfg.Nick != "KittehBot" {
		t.Fatalf("unexpected nick: %q", cfg.Nick)
	}
	// user not defined in the file: falls back through the default.
	if cfg.User != "kitteh" {
		t.Fatalf("unexpected user: %q", cfg.User)
	}
	if cfg.MessageDelayMS != 1500 {
		t.Fatalf("unexpected delay: %d", cfg.MessageDelayMS)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0] != "#kitteh" {
		t.Fatalf("unexpected channels: %+v", cfg.Channels)
	}
	if cfg.AdminAddr != "127.0.0.1:7020" {
		t.Fatalf("unexpected admin addr: %q", cfg.AdminAddr)
	}
	if !cfg.TLS.Enabled {
		t.Fatalf("expected tls enabled")
	}
	if cfg.TLS.ServerName != "irc.libera.chat" {
		t.Fatalf("unexpected tls server name: %q", cfg.TLS.ServerName)
	}
	if cfg.TLS.InsecureSkipVerify {
		t.Fatalf("expected verification enabled")
	}
}

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadBotConfigUndefinedKeysKeepDefaults(t *testing.T) {
	path := writeTestConfig(t, "nick = \"OtherBot\"\n")

	cfg, err := loadBotConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Nick != "OtherBot" {
		t.Fatalf("unexpected nick: %q", cfg.Nick)
	}
	defaults := config.DefaultBotConfig()
	if cfg.Server != defaults.Server {
		t.Fatalf("server default lost: %q", cfg.Server)
	}
	if cfg.MessageDelayMS != defaults.MessageDelayMS {
		t.Fatalf("delay default lost: %d", cfg.MessageDelayMS)
	}
}

func TestLoadBotConfigDelayMSOverridesDuration(t *testing.T) {
	path := writeTestConfig(t, "message_delay = \"2s\"\nmessage_delay_ms = 250\n")

	cfg, err := loadBotConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MessageDelayMS != 250 {
		t.Fatalf("unexpected delay: %d", cfg.MessageDelayMS)
	}
}

func TestLoadBotConfigRejectsBadDuration(t *testing.T) {
	path := writeTestConfig(t, "message_delay = \"soon\"\n")

	if _, err := loadBotConfig(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestLoadBotConfigValidates(t *testing.T) {
	path := writeTestConfig(t, "nick = \"\"\n")

	if _, err := loadBotConfig(path); !errors.Is(err, config.ErrMissingNick) {
		t.Fatalf("expected missing nick, got %v", err)
	}
}
