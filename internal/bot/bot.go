// Package bot assembles the registry, cooldown tracker and dispatcher
// shared by every front end.
package bot

import (
	"github.com/rs/zerolog/log"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/cooldown"
	"github.com/keshon/commandbot/internal/dispatch"
)

type Bot struct {
	Registry   *command.Registry
	Cooldowns  *cooldown.Tracker
	Dispatcher *dispatch.Dispatcher
	// LoadErrors lists commands that failed to load; the rest still work.
	LoadErrors []error
}

// New loads every declared command, minus the disabled ones, and builds
// the dispatcher. opts are applied after the config-derived options.
func New(cfg *config.Config, overrides *config.Overrides, factories []command.Factory, opts ...dispatch.Option) *Bot {
	if overrides == nil {
		overrides = &config.Overrides{}
	}

	reg := command.NewRegistry()
	reg.Disable(overrides.Disabled...)
	errs := reg.Load(factories...)

	tracker := cooldown.New()
	base := []dispatch.Option{
		dispatch.WithDefaultPrefix(cfg.CommandPrefix),
		dispatch.WithCooldownOverrides(overrides.CooldownDurations()),
	}
	d := dispatch.New(reg, tracker, append(base, opts...)...)

	for name := range overrides.Cooldowns {
		if _, ok := reg.Resolve(name); !ok {
			log.Warn().Str("command", name).Msg("Cooldown override for unknown command")
		}
	}

	return &Bot{
		Registry:   reg,
		Cooldowns:  tracker,
		Dispatcher: d,
		LoadErrors: errs,
	}
}
