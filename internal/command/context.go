package command

import (
	"fmt"
	"strings"
	"time"
)

// Message is an inbound text event as seen by the dispatcher.
type Message interface {
	Content() string
	AuthorID() string
	AuthorIsBot() bool
	GuildID() string
	ChannelID() string
	// Reply sends a reply to the message and returns a handle to it.
	Reply(content string) (SentMessage, error)
}

// SentMessage is a message the bot has already sent.
type SentMessage interface {
	Edit(content string) error
}

// Interaction is an inbound slash interaction.
//
// Reply and Defer are mutually exclusive first responses. Once either
// has succeeded Acknowledged reports true and only EditReply or Followup
// may be used.
type Interaction interface {
	CommandName() string
	UserID() string
	GuildID() string
	ChannelID() string
	Option(name string) (any, bool)
	Reply(content string, ephemeral bool) error
	Defer(ephemeral bool) error
	EditReply(content string) error
	Followup(content string, ephemeral bool) error
	Acknowledged() bool
}

// CooldownSource reports the cooldown in effect for a command, which
// operator overrides may set apart from its declared Cooldown.
type CooldownSource interface {
	Cooldown(cmd Command) time.Duration
}

// EffectiveCooldown asks src, falling back to the declared cooldown when
// src is nil.
func EffectiveCooldown(src CooldownSource, cmd Command) time.Duration {
	if src == nil {
		return cmd.Cooldown()
	}
	return src.Cooldown(cmd)
}

// MessageContext is handed to MessageHandler.Message.
type MessageContext struct {
	Message Message
	Args    []string
	Prefix  string
	// Invoked is the token the user typed, a name or an alias.
	Invoked   string
	Registry  *Registry
	Cooldowns CooldownSource
}

// Reply is a shorthand for ctx.Message.Reply that drops the handle.
func (ctx *MessageContext) Reply(content string) error {
	_, err := ctx.Message.Reply(content)
	return err
}

// Replyf formats and replies.
func (ctx *MessageContext) Replyf(format string, a ...any) error {
	return ctx.Reply(fmt.Sprintf(format, a...))
}

// RawArgs joins the argument list back into one string.
func (ctx *MessageContext) RawArgs() string {
	return strings.Join(ctx.Args, " ")
}

// SlashContext is handed to SlashHandler.Slash.
type SlashContext struct {
	Interaction Interaction
	Registry    *Registry
	Cooldowns   CooldownSource
}

func (ctx *SlashContext) Reply(content string) error {
	return ctx.Interaction.Reply(content, false)
}

func (ctx *SlashContext) ReplyEphemeral(content string) error {
	return ctx.Interaction.Reply(content, true)
}

// StringOption returns the named option as a string, or "" when absent.
func (ctx *SlashContext) StringOption(name string) string {
	v, ok := ctx.Interaction.Option(name)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// IntOption returns the named option as an integer, or def when absent.
func (ctx *SlashContext) IntOption(name string, def int64) int64 {
	v, ok := ctx.Interaction.Option(name)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return def
	}
}

// BoolOption returns the named option as a bool, or def when absent.
func (ctx *SlashContext) BoolOption(name string, def bool) bool {
	v, ok := ctx.Interaction.Option(name)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}
