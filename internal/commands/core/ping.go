package core

import (
	"fmt"
	"time"

	"github.com/keshon/commandbot/internal/command"
)

// PingCommand measures the round trip of sending a reply.
type PingCommand struct {
	now func() time.Time
}

func (c *PingCommand) Name() string               { return "ping" }
func (c *PingCommand) Description() string        { return "Check bot latency" }
func (c *PingCommand) Aliases() []string          { return []string{"latency"} }
func (c *PingCommand) Category() command.Category { return command.CategoryMaintenance }
func (c *PingCommand) Cooldown() time.Duration    { return 3 * time.Second }

func (c *PingCommand) Message(ctx *command.MessageContext) error {
	start := c.clock()
	sent, err := ctx.Message.Reply("🏓 Pong!")
	if err != nil {
		return err
	}
	return sent.Edit(pongText(c.clock().Sub(start)))
}

func (c *PingCommand) Slash(ctx *command.SlashContext) error {
	start := c.clock()
	if err := ctx.Reply("🏓 Pong!"); err != nil {
		return err
	}
	return ctx.Interaction.EditReply(pongText(c.clock().Sub(start)))
}

func (c *PingCommand) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func pongText(rtt time.Duration) string {
	return fmt.Sprintf("🏓 Pong! Response time: `%dms`", rtt.Milliseconds())
}

func init() {
	command.Declare(func() command.Command { return &PingCommand{} })
}
