package fun

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
)

const chooseUsage = "Give me at least two options, e.g. `pizza, sushi, tacos`."

type ChooseCommand struct {
	rng func(n int) int
}

func (c *ChooseCommand) Name() string               { return "choose" }
func (c *ChooseCommand) Description() string        { return "Pick one of several options" }
func (c *ChooseCommand) Aliases() []string          { return []string{"pick"} }
func (c *ChooseCommand) Category() command.Category { return command.CategoryFun }
func (c *ChooseCommand) Cooldown() time.Duration    { return 5 * time.Second }

func (c *ChooseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "options",
				Description: "Options separated by commas",
				Required:    true,
			},
		},
	}
}

func (c *ChooseCommand) Message(ctx *command.MessageContext) error {
	return ctx.Reply(c.choose(ctx.RawArgs()))
}

func (c *ChooseCommand) Slash(ctx *command.SlashContext) error {
	return ctx.Reply(c.choose(ctx.StringOption("options")))
}

func (c *ChooseCommand) choose(raw string) string {
	options := splitOptions(raw)
	if len(options) < 2 {
		return chooseUsage
	}
	return fmt.Sprintf("🎯 I choose: **%s**", options[intn(c.rng, len(options))])
}

// splitOptions splits on commas or pipes when present, else on spaces.
func splitOptions(raw string) []string {
	var parts []string
	if strings.ContainsAny(raw, ",|") {
		parts = strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '|' })
	} else {
		parts = strings.Fields(raw)
	}

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	command.Declare(func() command.Command { return &ChooseCommand{} })
}
