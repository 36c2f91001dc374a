package command

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Category groups commands in help output. It plays no part in dispatch.
type Category string

const (
	CategoryInformation Category = "🕯️ Information"
	CategoryUtilities   Category = "📢 Utilities"
	CategoryFun         Category = "🎲 Fun"
	CategoryModeration  Category = "🛡️ Moderation"
	CategoryEconomy     Category = "💰 Economy"
	CategoryLeveling    Category = "📈 Leveling"
	CategoryMusic       Category = "🎵 Music"
	CategoryTranslation Category = "🌐 Translation"
	CategoryMaintenance Category = "🛠️ Maintenance"
)

// Command is the static descriptor every command exposes.
// A command must also implement MessageHandler, SlashHandler or both.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Category() Category
	Cooldown() time.Duration
}

// MessageHandler runs a command triggered by a prefixed text message.
type MessageHandler interface {
	Message(ctx *MessageContext) error
}

// SlashHandler runs a command triggered by a slash interaction.
type SlashHandler interface {
	Slash(ctx *SlashContext) error
}

// SlashProvider supplies a custom slash definition (options, choices).
// Slash handlers without it are published with name and description only.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Surfaces reports which invocation bodies cmd carries.
func Surfaces(cmd Command) (text, slash bool) {
	_, text = cmd.(MessageHandler)
	_, slash = cmd.(SlashHandler)
	return text, slash
}

// Definition returns the application command published for cmd,
// or nil if cmd has no slash body.
func Definition(cmd Command) *discordgo.ApplicationCommand {
	if _, ok := cmd.(SlashHandler); !ok {
		return nil
	}
	if sp, ok := cmd.(SlashProvider); ok {
		if def := sp.SlashDefinition(); def != nil {
			if def.Type == 0 {
				def.Type = discordgo.ChatApplicationCommand
			}
			return def
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        Normalize(cmd.Name()),
		Description: cmd.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}
