package fun

import (
	"time"

	"github.com/keshon/commandbot/internal/command"
)

// FlipCommand is only available as a prefixed message.
type FlipCommand struct {
	rng func(n int) int
}

func (c *FlipCommand) Name() string               { return "flip" }
func (c *FlipCommand) Description() string        { return "Flip a coin" }
func (c *FlipCommand) Aliases() []string          { return []string{"coin"} }
func (c *FlipCommand) Category() command.Category { return command.CategoryFun }
func (c *FlipCommand) Cooldown() time.Duration    { return 2 * time.Second }

func (c *FlipCommand) Message(ctx *command.MessageContext) error {
	if intn(c.rng, 2) == 0 {
		return ctx.Reply("🪙 Heads!")
	}
	return ctx.Reply("🪙 Tails!")
}

func init() {
	command.Declare(func() command.Command { return &FlipCommand{} })
}
