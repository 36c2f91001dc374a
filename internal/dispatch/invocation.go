package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/keshon/commandkit"
	"github.com/rs/zerolog/log"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/storagetypes"
)

// Invocation is one resolved command run, as seen by middleware. It rides
// in commandkit.Invocation.Data; use InvocationOf to get it back.
type Invocation struct {
	ID        string
	Surface   Surface
	Command   command.Command
	Token     string
	UserID    string
	GuildID   string
	ChannelID string
	Args      []string
}

// Middleware wraps the resolved command. It runs inside the failure
// boundary, so a panicking middleware is contained like a handler.
type Middleware = commandkit.Middleware

// InvocationOf returns the dispatch invocation carried by kinv, or nil.
func InvocationOf(kinv *commandkit.Invocation) *Invocation {
	if kinv == nil {
		return nil
	}
	inv, _ := kinv.Data.(*Invocation)
	return inv
}

// PanicError carries a panic recovered from a handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("command panicked: %v", e.Value)
}

// bound is the innermost link of the chain: the resolved command with its
// surface body already chosen.
type bound struct {
	cmd command.Command
	run func() error
}

func (b *bound) Name() string        { return b.cmd.Name() }
func (b *bound) Description() string { return b.cmd.Description() }

func (b *bound) Run(context.Context, *commandkit.Invocation) error { return b.run() }

func (d *Dispatcher) invoke(inv *Invocation, run func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()

	c := commandkit.Apply(&bound{cmd: inv.Command, run: run}, d.chain...)
	return c.Run(d.ctx, &commandkit.Invocation{Args: inv.Args, Data: inv})
}

// HistoryRecorder persists successful command runs.
type HistoryRecorder interface {
	AppendCommandHistory(guildID string, entry storagetypes.CommandHistory) error
}

// CommandLogger records every successful invocation. Recording failures
// are logged and never fail the command.
func CommandLogger(rec HistoryRecorder) Middleware {
	return func(next commandkit.Command) commandkit.Command {
		return commandkit.Wrap(next, func(ctx context.Context, kinv *commandkit.Invocation) error {
			if err := next.Run(ctx, kinv); err != nil {
				return err
			}
			inv := InvocationOf(kinv)
			if inv == nil {
				return nil
			}
			entry := storagetypes.CommandHistory{
				ChannelID: inv.ChannelID,
				UserID:    inv.UserID,
				Command:   command.Normalize(inv.Command.Name()),
				Surface:   string(inv.Surface),
				Args:      kinv.Args,
				Datetime:  time.Now(),
			}
			if err := rec.AppendCommandHistory(inv.GuildID, entry); err != nil {
				log.Warn().Err(err).Str("command", entry.Command).Msg("Failed to record command history")
			}
			return nil
		})
	}
}
