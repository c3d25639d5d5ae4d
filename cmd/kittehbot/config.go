package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/evilmidget38/KittehIRCBot/internal/config"
)

type fileConfig struct {
	Name           string   `toml:"name"`
	Server         string   `toml:"server"`
	Nick           string   `toml:"nick"`
	User           string   `toml:"user"`
	RealName       string   `toml:"real_name"`
	Password       string   `toml:"password"`
	MessageDelay   string   `toml:"message_delay"`
	MessageDelayMS int64    `toml:"message_delay_ms"`
	Channels       []string `toml:"channels"`
	AdminAddr      string   `toml:"admin_addr"`
	CorsOrigins    []string `toml:"cors_origins"`
	TLS            struct {
		Enabled            bool   `toml:"enabled"`
		InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
		CAFile             string `toml:"ca_file"`
		ServerName         string `toml:"server_name"`
	} `toml:"tls"`
}

// loadBotConfig applies only the keys the file actually defines on top of
// the built-in defaults.
func loadBotConfig(path string) (config.BotConfig, error) {
	cfg := config.DefaultBotConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.BotConfig{}, fmt.Errorf("load bot config: %w", err)
	}

	if meta.IsDefined("name") {
		if name := strings.TrimSpace(raw.Name); name != "" {
			cfg.Name = name
		}
	}
	if meta.IsDefined("server") {
		cfg.Server = strings.TrimSpace(raw.Server)
	}
	if meta.IsDefined("nick") {
		cfg.Nick = strings.TrimSpace(raw.Nick)
	}
	if meta.IsDefined("user") {
		cfg.User = strings.TrimSpace(raw.User)
	}
	if meta.IsDefined("real_name") {
		cfg.RealName = raw.RealName
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("message_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.MessageDelay))
		if err != nil {
			return config.BotConfig{}, fmt.Errorf("parse message_delay: %w", err)
		}
		cfg.MessageDelayMS = d.Milliseconds()
	}
	if meta.IsDefined("message_delay_ms") {
		cfg.MessageDelayMS = raw.MessageDelayMS
	}
	if meta.IsDefined("channels") {
		cfg.Channels = normalizeChannels(raw.Channels)
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("tls", "enabled") {
		cfg.TLS.Enabled = raw.TLS.Enabled
	}
	if meta.IsDefined("tls", "insecure_skip_verify") {
		cfg.TLS.InsecureSkipVerify = raw.TLS.InsecureSkipVerify
	}
	if meta.IsDefined("tls", "ca_file") {
		cfg.TLS.CAFile = strings.TrimSpace(raw.TLS.CAFile)
	}
	if meta.IsDefined("tls", "server_name") {
		cfg.TLS.ServerName = strings.TrimSpace(raw.TLS.ServerName)
	}

	if cfg.User == "" {
		cfg.User = cfg.Nick
	}
	if err := config.ValidateBotConfig(cfg); err != nil {
		return config.BotConfig{}, err
	}
	return cfg, nil
}

func normalizeChannels(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, channel := range in {
		v := strings.TrimSpace(channel)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
