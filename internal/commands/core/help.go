package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/config"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string               { return "help" }
func (c *HelpCommand) Description() string        { return "Show a list of available commands" }
func (c *HelpCommand) Aliases() []string          { return []string{"commands", "h"} }
func (c *HelpCommand) Category() command.Category { return command.CategoryInformation }
func (c *HelpCommand) Cooldown() time.Duration    { return 0 }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "command",
				Description: "Show details for one command",
			},
		},
	}
}

func (c *HelpCommand) Message(ctx *command.MessageContext) error {
	if len(ctx.Args) > 0 {
		return ctx.Reply(commandDetails(ctx.Registry, ctx.Cooldowns, ctx.Args[0], ctx.Prefix))
	}
	return ctx.Reply(buildHelpMessage(ctx.Registry, ctx.Prefix, false))
}

func (c *HelpCommand) Slash(ctx *command.SlashContext) error {
	if name := ctx.StringOption("command"); name != "" {
		return ctx.ReplyEphemeral(commandDetails(ctx.Registry, ctx.Cooldowns, name, "/"))
	}
	return ctx.ReplyEphemeral(buildHelpMessage(ctx.Registry, "/", true))
}

// buildHelpMessage lists the commands reachable from one surface, grouped
// by category in CategoryWeights order.
func buildHelpMessage(reg *command.Registry, prefix string, slash bool) string {
	cats := reg.Categories()
	config.SortCategories(cats)

	var sb strings.Builder
	sb.WriteString("📖 **Available Commands**\n\n")
	for _, cat := range cats {
		var lines []string
		for _, cmd := range reg.ByCategory(cat) {
			text, hasSlash := command.Surfaces(cmd)
			if (slash && !hasSlash) || (!slash && !text) {
				continue
			}
			lines = append(lines, fmt.Sprintf("`%s%s` - %s", prefix, cmd.Name(), cmd.Description()))
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "**%s**\n%s\n\n", cat, strings.Join(lines, "\n"))
	}
	if !slash {
		fmt.Fprintf(&sb, "Use `%shelp <command>` for details.", prefix)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// commandDetails describes one command as it behaves right now: only the
// aliases it owns, and the cooldown after overrides.
func commandDetails(reg *command.Registry, cooldowns command.CooldownSource, token, prefix string) string {
	token = command.Normalize(strings.TrimPrefix(token, prefix))
	cmd, ok := reg.Resolve(token)
	if !ok {
		return fmt.Sprintf("❓ No command named `%s`.", token)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** - %s\n", cmd.Name(), cmd.Description())
	if aliases := reg.ActiveAliases(cmd); len(aliases) > 0 {
		fmt.Fprintf(&sb, "Aliases: `%s`\n", strings.Join(aliases, "`, `"))
	}
	text, slash := command.Surfaces(cmd)
	var surfaces []string
	if text {
		surfaces = append(surfaces, "message")
	}
	if slash {
		surfaces = append(surfaces, "slash")
	}
	fmt.Fprintf(&sb, "Available as: %s\n", strings.Join(surfaces, ", "))
	if cd := command.EffectiveCooldown(cooldowns, cmd); cd > 0 {
		fmt.Fprintf(&sb, "Cooldown: %s", cd)
	} else {
		sb.WriteString("Cooldown: none")
	}
	return sb.String()
}

func init() {
	command.Declare(func() command.Command { return &HelpCommand{} })
}
