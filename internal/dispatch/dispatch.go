// Package dispatch routes text and slash events to registered commands.
//
// Every command-shaped event ends in exactly one outcome: a handler reply,
// a cooldown notice, a not-found notice (slash only) or a generic failure
// notice. Handler errors and panics stop at the Dispatcher.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/cooldown"
)

const DefaultPrefix = "!"

type Surface string

const (
	SurfaceText  Surface = "text"
	SurfaceSlash Surface = "slash"
)

type Outcome int

const (
	// OutcomeIgnored means the event was not addressed to the bot.
	OutcomeIgnored Outcome = iota
	OutcomeNotFound
	OutcomeCooldown
	OutcomeInvoked
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeInvoked:
		return "invoked"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result describes what happened to one event.
type Result struct {
	Outcome   Outcome
	Surface   Surface
	Command   string
	Remaining time.Duration
	Err       error
}

// PrefixSource supplies the text prefix for a guild ("" for DMs).
// Returning "" selects the dispatcher's default prefix.
type PrefixSource interface {
	Prefix(guildID string) string
}

// Messages holds the user-facing texts the dispatcher sends itself.
type Messages struct {
	// Cooldown is formatted with the remaining seconds and the command name.
	Cooldown string
	// NotFound is formatted with the slash command name.
	NotFound string
	Failure  string
}

func DefaultMessages() Messages {
	return Messages{
		Cooldown: "⏳ Please wait %.1fs before using `%s` again.",
		NotFound: "❓ Unknown command `/%s`.",
		Failure:  "❌ Something went wrong while running that command. Please try again later.",
	}
}

type Dispatcher struct {
	registry      *command.Registry
	cooldowns     *cooldown.Tracker
	prefixes      PrefixSource
	defaultPrefix string
	overrides     map[string]time.Duration
	middleware    []Middleware
	chain         []Middleware
	ctx           context.Context
	messages      Messages
	log           zerolog.Logger
}

type Option func(*Dispatcher)

func WithPrefixes(p PrefixSource) Option {
	return func(d *Dispatcher) { d.prefixes = p }
}

func WithDefaultPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		if prefix != "" {
			d.defaultPrefix = prefix
		}
	}
}

// WithCooldownOverrides replaces the cooldown of the named commands.
// Keys are canonical names, matched case-insensitively.
func WithCooldownOverrides(overrides map[string]time.Duration) Option {
	return func(d *Dispatcher) {
		for name, window := range overrides {
			d.overrides[command.Normalize(name)] = window
		}
	}
}

// WithContext sets the context handed to the middleware chain.
func WithContext(ctx context.Context) Option {
	return func(d *Dispatcher) {
		if ctx != nil {
			d.ctx = ctx
		}
	}
}

// WithMiddleware appends to the invocation chain. The first middleware
// given is the outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(d *Dispatcher) { d.middleware = append(d.middleware, mws...) }
}

func WithMessages(m Messages) Option {
	return func(d *Dispatcher) { d.messages = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

func New(registry *command.Registry, cooldowns *cooldown.Tracker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:      registry,
		cooldowns:     cooldowns,
		defaultPrefix: DefaultPrefix,
		overrides:     make(map[string]time.Duration),
		ctx:           context.Background(),
		messages:      DefaultMessages(),
		log:           log.With().Str("component", "dispatch").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	// commandkit.Apply makes its last middleware the outermost.
	for i := len(d.middleware) - 1; i >= 0; i-- {
		d.chain = append(d.chain, d.middleware[i])
	}
	return d
}

// Cooldown returns the effective cooldown window of cmd.
func (d *Dispatcher) Cooldown(cmd command.Command) time.Duration {
	if w, ok := d.overrides[command.Normalize(cmd.Name())]; ok {
		return w
	}
	return cmd.Cooldown()
}

// Prefix returns the text prefix in effect for guildID.
func (d *Dispatcher) Prefix(guildID string) string {
	if d.prefixes != nil {
		if p := d.prefixes.Prefix(guildID); p != "" {
			return p
		}
	}
	return d.defaultPrefix
}

// ParseText splits content into a normalized command token and arguments.
// ok is false when content does not start with prefix or names no command.
func ParseText(content, prefix string) (token string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}
	return command.Normalize(fields[0]), fields[1:], true
}

// HandleMessage dispatches a text event. Unknown commands are ignored
// silently so near-miss prefixes do not produce noise.
func (d *Dispatcher) HandleMessage(msg command.Message) Result {
	res := Result{Surface: SurfaceText}

	if msg.AuthorIsBot() {
		return res
	}
	prefix := d.Prefix(msg.GuildID())
	token, args, ok := ParseText(msg.Content(), prefix)
	if !ok {
		return res
	}

	cmd, found := d.registry.Resolve(token)
	if !found {
		res.Outcome = OutcomeNotFound
		return res
	}
	handler, capable := cmd.(command.MessageHandler)
	if !capable {
		res.Outcome = OutcomeNotFound
		res.Command = cmd.Name()
		return res
	}
	res.Command = cmd.Name()

	inv := &Invocation{
		ID:        uuid.NewString(),
		Surface:   SurfaceText,
		Command:   cmd,
		Token:     token,
		UserID:    msg.AuthorID(),
		GuildID:   msg.GuildID(),
		ChannelID: msg.ChannelID(),
		Args:      args,
	}
	logger := d.invocationLogger(inv)

	key := command.Normalize(cmd.Name())
	window := d.Cooldown(cmd)
	if remaining, blocked := d.cooldowns.Check(inv.UserID, key, window); blocked {
		res.Outcome = OutcomeCooldown
		res.Remaining = remaining
		logger.Debug().Dur("remaining", res.Remaining).Msg("Command on cooldown")
		if _, err := msg.Reply(d.cooldownNotice(cmd.Name(), res.Remaining)); err != nil {
			logger.Warn().Err(err).Msg("Failed to send cooldown notice")
		}
		return res
	}

	ctx := &command.MessageContext{
		Message:   msg,
		Args:      args,
		Prefix:    prefix,
		Invoked:   token,
		Registry:  d.registry,
		Cooldowns: d,
	}
	err := d.invoke(inv, func() error { return handler.Message(ctx) })
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		logger.Error().Err(err).Msg("Command failed")
		if _, rerr := msg.Reply(d.messages.Failure); rerr != nil {
			logger.Warn().Err(rerr).Msg("Failed to send failure notice")
		}
		return res
	}

	d.cooldowns.MarkUsed(inv.UserID, key, window)
	res.Outcome = OutcomeInvoked
	logger.Debug().Msg("Command completed")
	return res
}

// HandleInteraction dispatches a slash event. Slash interactions must be
// answered before Discord's deadline, so an unknown command, or one
// without a slash body, always gets an explicit reply.
func (d *Dispatcher) HandleInteraction(it command.Interaction) Result {
	res := Result{Surface: SurfaceSlash}
	token := it.CommandName()

	cmd, found := d.registry.Resolve(token)
	var handler command.SlashHandler
	if found {
		handler, found = cmd.(command.SlashHandler)
	}
	if !found {
		res.Outcome = OutcomeNotFound
		d.log.Warn().Str("surface", string(SurfaceSlash)).Str("token", token).Msg("Unknown slash command")
		if err := it.Reply(fmt.Sprintf(d.messages.NotFound, token), true); err != nil {
			d.log.Warn().Err(err).Str("token", token).Msg("Failed to send not-found notice")
		}
		return res
	}
	res.Command = cmd.Name()

	inv := &Invocation{
		ID:        uuid.NewString(),
		Surface:   SurfaceSlash,
		Command:   cmd,
		Token:     token,
		UserID:    it.UserID(),
		GuildID:   it.GuildID(),
		ChannelID: it.ChannelID(),
	}
	logger := d.invocationLogger(inv)

	key := command.Normalize(cmd.Name())
	window := d.Cooldown(cmd)
	if remaining, blocked := d.cooldowns.Check(inv.UserID, key, window); blocked {
		res.Outcome = OutcomeCooldown
		res.Remaining = remaining
		logger.Debug().Dur("remaining", res.Remaining).Msg("Command on cooldown")
		if err := it.Reply(d.cooldownNotice(cmd.Name(), res.Remaining), true); err != nil {
			logger.Warn().Err(err).Msg("Failed to send cooldown notice")
		}
		return res
	}

	ctx := &command.SlashContext{Interaction: it, Registry: d.registry, Cooldowns: d}
	err := d.invoke(inv, func() error { return handler.Slash(ctx) })
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		logger.Error().Err(err).Bool("acknowledged", it.Acknowledged()).Msg("Command failed")
		d.deliverFailure(it, logger)
		return res
	}

	d.cooldowns.MarkUsed(inv.UserID, key, window)
	res.Outcome = OutcomeInvoked
	logger.Debug().Msg("Command completed")
	return res
}

// deliverFailure uses a follow-up when the interaction's single reply slot
// is already taken.
func (d *Dispatcher) deliverFailure(it command.Interaction, logger zerolog.Logger) {
	var err error
	if it.Acknowledged() {
		err = it.Followup(d.messages.Failure, true)
	} else {
		err = it.Reply(d.messages.Failure, true)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to send failure notice")
	}
}

func (d *Dispatcher) cooldownNotice(name string, remaining time.Duration) string {
	secs := math.Ceil(remaining.Seconds()*10) / 10
	return fmt.Sprintf(d.messages.Cooldown, secs, name)
}

func (d *Dispatcher) invocationLogger(inv *Invocation) zerolog.Logger {
	return d.log.With().
		Str("invocation", inv.ID).
		Str("surface", string(inv.Surface)).
		Str("command", inv.Command.Name()).
		Str("user", inv.UserID).
		Str("guild", inv.GuildID).
		Logger()
}
