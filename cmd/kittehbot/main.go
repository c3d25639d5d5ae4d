package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evilmidget38/KittehIRCBot/internal/admin"
	"github.com/evilmidget38/KittehIRCBot/internal/irc"
	"github.com/evilmidget38/KittehIRCBot/internal/logging"
)

const quitGrace = 10 * time.Second

func main() {
	configPath := flag.String("config", "cmd/kittehbot/config.toml", "path to the bot config file")
	flag.Parse()

	logging.ConfigureRuntime()
	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "kittehbot: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadBotConfig(configPath)
	if err != nil {
		return err
	}

	bot, err := irc.NewBot(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Connect(ctx); err != nil {
		return err
	}

	if cfg.AdminAddr != "" {
		srv := admin.New(admin.Config{
			Name:        cfg.Name,
			Addr:        cfg.AdminAddr,
			CorsOrigins: cfg.CorsOrigins,
			Status:      bot.Status,
		})
		go func() {
			if err := srv.Serve(ctx); err != nil {
				logging.Errorf("kittehbot admin server failed err=%v", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		quitCtx, cancel := context.WithTimeout(context.Background(), quitGrace)
		defer cancel()
		return bot.Shutdown(quitCtx, "signal received")
	case <-bot.Done():
		// Connection loss or server-driven termination.
		return nil
	}
}
