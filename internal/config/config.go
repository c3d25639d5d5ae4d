package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrMissingName     = errors.New("config: missing bot name")
	ErrMissingServer   = errors.New("config: missing server address")
	ErrMissingNick     = errors.New("config: missing nick")
	ErrNegativeDelay   = errors.New("config: negative message delay")
	ErrTLSInsecureWithCA = errors.New("config: insecure_skip_verify not allowed with ca_file")
)

// TLSConfig controls the optional TLS client transport for the server
// connection.
type TLSConfig struct {
	Enabled            bool   `toml:"enabled"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	CAFile             string `toml:"ca_file"`
	ServerName         string `toml:"server_name"`
}

// BotConfig is the full runtime configuration for one bot instance.
type BotConfig struct {
	Name           string    `toml:"name"`
	Server         string    `toml:"server"`
	Nick           string    `toml:"nick"`
	User           string    `toml:"user"`
	RealName       string    `toml:"real_name"`
	Password       string    `toml:"password"`
	MessageDelayMS int64     `toml:"message_delay_ms"`
	Channels       []string  `toml:"channels"`
	AdminAddr      string    `toml:"admin_addr"`
	CorsOrigins    []string  `toml:"cors_origins"`
	TLS            TLSConfig `toml:"tls"`
}

// MessageDelay returns the inter-message delay as a duration.
func (c BotConfig) MessageDelay() time.Duration {
	return time.Duration(c.MessageDelayMS) * time.Millisecond
}

func DefaultBotConfig() BotConfig {
	return BotConfig{
		Name:           "kitteh",
		Server:         "localhost:6667",
		Nick:           "KittehBot",
		User:           "kitteh",
		RealName:       "Kitteh IRCBot",
		MessageDelayMS: 1200,
	}
}

func LoadBotConfig(path string) (BotConfig, error) {
	cfg := DefaultBotConfig()
	if err := loadToml(path, &cfg); err != nil {
		return BotConfig{}, err
	}
	if cfg.User == "" {
		cfg.User = cfg.Nick
	}
	if err := ValidateBotConfig(cfg); err != nil {
		return BotConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateBotConfig(cfg BotConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(cfg.Server) == "" {
		return ErrMissingServer
	}
	if strings.TrimSpace(cfg.Nick) == "" {
		return ErrMissingNick
	}
	if cfg.MessageDelayMS < 0 {
		return ErrNegativeDelay
	}
	return ValidateTLSConfig(cfg.TLS)
}

func ValidateTLSConfig(cfg TLSConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.InsecureSkipVerify && strings.TrimSpace(cfg.CAFile) != "" {
		return ErrTLSInsecureWithCA
	}
	return nil
}
