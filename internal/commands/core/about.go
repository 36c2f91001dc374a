package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/version"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string               { return "about" }
func (c *AboutCommand) Description() string        { return "Show info about the bot" }
func (c *AboutCommand) Aliases() []string          { return []string{"info"} }
func (c *AboutCommand) Category() command.Category { return command.CategoryInformation }
func (c *AboutCommand) Cooldown() time.Duration    { return 0 }

func (c *AboutCommand) Message(ctx *command.MessageContext) error {
	return ctx.Reply(buildAboutMessage(ctx.Registry))
}

func (c *AboutCommand) Slash(ctx *command.SlashContext) error {
	return ctx.Reply(buildAboutMessage(ctx.Registry))
}

func buildAboutMessage(reg *command.Registry) string {
	info := version.Get()
	var sb strings.Builder
	fmt.Fprintf(&sb, "ℹ️ **%s** %s\n%s\n\n", info.Project, info.Version, info.Description)
	fmt.Fprintf(&sb, "Release: `%s` built %s (Go %s, %s)\n", info.Commit, info.BuildTime, strings.TrimPrefix(info.GoVersion, "go"), info.Platform)
	if reg != nil {
		fmt.Fprintf(&sb, "Commands loaded: %d", reg.Len())
	}
	return sb.String()
}

func init() {
	command.Declare(func() command.Command { return &AboutCommand{} })
}
