// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	_ "github.com/keshon/commandbot/internal/commands/core"
	_ "github.com/keshon/commandbot/internal/commands/fun"

	"github.com/keshon/commandbot/internal/bot"
	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/discord"
	"github.com/keshon/commandbot/internal/dispatch"
	"github.com/keshon/commandbot/internal/logging"
	"github.com/keshon/commandbot/internal/storage"
	v "github.com/keshon/commandbot/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read configuration")
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	info := v.Get()
	log.Info().
		Str("version", info.Version).
		Str("commit", info.Commit).
		Str("built", info.BuildTime).
		Str("go", info.GoVersion).
		Str("platform", info.Platform).
		Msgf("Starting %s", info.Project)

	overrides, err := config.LoadOverrides(cfg.CommandsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read command overrides")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.New(ctx, cfg.StoragePath, cfg.CommandPrefix, cfg.StorageSaveInterval)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("Failed to open storage")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to flush storage")
		}
	}()

	b := bot.New(cfg, overrides, command.Declared(),
		dispatch.WithPrefixes(store),
		dispatch.WithMiddleware(dispatch.CommandLogger(store)),
		dispatch.WithContext(ctx),
	)

	go b.Cooldowns.Run(ctx, cfg.CooldownSweepInterval)

	session, err := discord.NewBot(cfg, store, b.Dispatcher, b.Registry)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Discord bot")
		return
	}
	if err := session.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Discord bot error")
		return
	}
	log.Info().Msg("Discord bot exited cleanly")
}
