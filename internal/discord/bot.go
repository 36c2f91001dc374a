package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/dispatch"
)

// Bot connects the dispatcher to a Discord gateway session.
type Bot struct {
	cfg        *config.Config
	dg         *discordgo.Session
	dispatcher *dispatch.Dispatcher
	registry   *command.Registry
	syncer     *Syncer
	ctx        context.Context
	log        zerolog.Logger
}

func NewBot(cfg *config.Config, hashes HashStore, d *dispatch.Dispatcher, reg *command.Registry) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Bot{
		cfg:        cfg,
		dg:         dg,
		dispatcher: d,
		registry:   reg,
		syncer:     NewSyncer(dg, hashes),
		ctx:        context.Background(),
		log:        log.With().Str("component", "discord").Logger(),
	}, nil
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("Shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Int("commands", b.registry.Len()).
		Msg("Discord bot is running")

	if !b.cfg.InitSlashCommands {
		b.log.Info().Msg("Registering slash commands skipped")
		return
	}
	go b.syncCommands(r.User.ID)
}

func (b *Bot) syncCommands(appID string) {
	ctx, cancel := context.WithTimeout(b.ctx, 2*time.Minute)
	defer cancel()

	report, err := b.syncer.Sync(ctx, appID, b.cfg.GuildID, Definitions(b.registry))
	if err != nil {
		b.log.Error().Err(err).Msg("Slash command sync failed")
		return
	}
	b.log.Info().
		Int("created", len(report.Created)).
		Int("deleted", len(report.Deleted)).
		Int("unchanged", report.Unchanged).
		Strs("failed", report.Failed).
		Msg("Slash commands synced")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	b.dispatcher.HandleMessage(newMessage(s, m.Message))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		b.log.Debug().Int("type", int(i.Type)).Msg("Ignoring interaction")
		return
	}
	if i.ApplicationCommandData().CommandType != discordgo.ChatApplicationCommand {
		return
	}
	b.dispatcher.HandleInteraction(newInteraction(s, i.Interaction))
}
