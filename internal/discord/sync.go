package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/commandbot/internal/command"
	st "github.com/keshon/commandbot/internal/storagetypes"
	"github.com/keshon/commandbot/pkg/retrylimit"
)

// commandAPI is the part of *discordgo.Session that publishes slash
// commands.
type commandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// HashStore remembers what was last published per scope.
type HashStore interface {
	SlashHashes(scope string) (st.SlashHashes, error)
	SetSlashHashes(scope string, hashes st.SlashHashes) error
}

type SyncReport struct {
	Created   []string
	Deleted   []string
	Unchanged int
	Failed    []string
}

// Syncer makes the commands published on Discord match the registry.
type Syncer struct {
	api     commandAPI
	hashes  HashStore
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	log     zerolog.Logger
}

func NewSyncer(api commandAPI, hashes HashStore) *Syncer {
	cfg := retrylimit.DefaultConfig()
	cfg.Status = restStatus
	return &Syncer{
		api:     api,
		hashes:  hashes,
		limiter: retrylimit.NewAdaptiveLimiter(4, 1, 10, 1, 0.5),
		retry:   cfg,
		log:     log.With().Str("component", "slash-sync").Logger(),
	}
}

// Definitions collects the slash definitions of every command that has a
// slash body.
func Definitions(reg *command.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, cmd := range reg.All() {
		if def := command.Definition(cmd); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// Sync publishes defs to guildID, or globally when guildID is empty.
// Obsolete remote commands are deleted, and only definitions whose hash
// changed or that are missing remotely are created.
func (s *Syncer) Sync(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand) (SyncReport, error) {
	var report SyncReport
	logger := s.log.With().Str("guild", guildID).Logger()

	remote, err := s.api.ApplicationCommands(appID, guildID)
	if err != nil {
		return report, fmt.Errorf("failed to list commands: %w", err)
	}
	cached, err := s.hashes.SlashHashes(guildID)
	if err != nil {
		return report, fmt.Errorf("failed to load command hashes: %w", err)
	}
	if cached == nil {
		cached = st.SlashHashes{}
	}

	wanted := make(map[string]string, len(defs))
	for _, d := range defs {
		wanted[d.Name] = hashCommand(d)
	}

	remoteNames := make(map[string]bool, len(remote))
	for _, rc := range remote {
		if _, ok := wanted[rc.Name]; ok {
			remoteNames[rc.Name] = true
			continue
		}
		err := retrylimit.Do(ctx, s.limiter, s.retry, func() error {
			return s.api.ApplicationCommandDelete(appID, guildID, rc.ID)
		})
		if err != nil {
			logger.Error().Err(err).Str("command", rc.Name).Msg("Failed to delete obsolete command")
			report.Failed = append(report.Failed, rc.Name)
			continue
		}
		logger.Info().Str("command", rc.Name).Msg("Deleted obsolete command")
		delete(cached, rc.Name)
		report.Deleted = append(report.Deleted, rc.Name)
	}

	for _, d := range defs {
		hash := wanted[d.Name]
		if cached[d.Name] == hash && remoteNames[d.Name] {
			report.Unchanged++
			continue
		}
		err := retrylimit.Do(ctx, s.limiter, s.retry, func() error {
			_, err := s.api.ApplicationCommandCreate(appID, guildID, d)
			return err
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			logger.Error().Err(err).Str("command", d.Name).Msg("Failed to register command")
			report.Failed = append(report.Failed, d.Name)
			continue
		}
		logger.Info().Str("command", d.Name).Msg("Registered command")
		cached[d.Name] = hash
		report.Created = append(report.Created, d.Name)
	}

	for name := range cached {
		if _, ok := wanted[name]; !ok {
			delete(cached, name)
		}
	}
	if err := s.hashes.SetSlashHashes(guildID, cached); err != nil {
		return report, fmt.Errorf("failed to save command hashes: %w", err)
	}
	return report, nil
}

func restStatus(err error) (int, bool) {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode, true
	}
	return 0, false
}
