// /internal/config/config.go
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

type Config struct {
	DiscordToken          string        `env:"DISCORD_TOKEN"`
	GuildID               string        `env:"DISCORD_GUILD_ID"`
	CommandPrefix         string        `env:"COMMAND_PREFIX" envDefault:"!"`
	StoragePath           string        `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	StorageSaveInterval   time.Duration `env:"STORAGE_SAVE_INTERVAL" envDefault:"1m"`
	CommandsFile          string        `env:"COMMANDS_FILE" envDefault:"commands.yaml"`
	InitSlashCommands     bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	CooldownSweepInterval time.Duration `env:"COOLDOWN_SWEEP_INTERVAL" envDefault:"1m"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile               string        `env:"LOG_FILE"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks what the Discord bot needs to start.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX cannot be empty")
	}
	return nil
}
