package core

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
)

// EchoCommand exists only as a slash command.
type EchoCommand struct{}

func (c *EchoCommand) Name() string               { return "echo" }
func (c *EchoCommand) Description() string        { return "Repeat a message back" }
func (c *EchoCommand) Aliases() []string          { return nil }
func (c *EchoCommand) Category() command.Category { return command.CategoryUtilities }
func (c *EchoCommand) Cooldown() time.Duration    { return 2 * time.Second }

func (c *EchoCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "What to repeat",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "hidden",
				Description: "Only you will see the answer",
			},
		},
	}
}

func (c *EchoCommand) Slash(ctx *command.SlashContext) error {
	text := strings.TrimSpace(ctx.StringOption("text"))
	if text == "" {
		return ctx.ReplyEphemeral("Nothing to repeat.")
	}
	return ctx.Interaction.Reply(text, ctx.BoolOption("hidden", false))
}

func init() {
	command.Declare(func() command.Command { return &EchoCommand{} })
}
