package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/keshon/commandkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/cooldown"
)

type harness struct {
	reg   *command.Registry
	cd    *cooldown.Tracker
	clock *fakeClock
	d     *Dispatcher
}

func newHarness(t *testing.T, cmds []command.Command, opts ...Option) *harness {
	t.Helper()
	reg := command.NewRegistry()
	for _, c := range cmds {
		require.NoError(t, reg.Register(c))
	}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	cd := cooldown.New(cooldown.WithClock(clock.Now))
	return &harness{reg: reg, cd: cd, clock: clock, d: New(reg, cd, opts...)}
}

func chooseCommand() *testCommand {
	return &testCommand{
		name:     "choose",
		aliases:  []string{"pick"},
		cooldown: 5 * time.Second,
		onText: func(ctx *command.MessageContext) error {
			return ctx.Reply("I choose " + ctx.Args[0])
		},
		onSlash: func(ctx *command.SlashContext) error {
			return ctx.Reply("I choose " + ctx.StringOption("options"))
		},
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		content string
		prefix  string
		token   string
		args    []string
		ok      bool
	}{
		{"!ping", "!", "ping", []string{}, true},
		{"!Choose a  b   c", "!", "choose", []string{"a", "b", "c"}, true},
		{"! roll 2d6", "!", "roll", []string{"2d6"}, true},
		{"?ping", "!", "", nil, false},
		{"!", "!", "", nil, false},
		{"!   ", "!", "", nil, false},
		{"hello", "!", "", nil, false},
		{">>skip now", ">>", "skip", []string{"now"}, true},
		{"ping", "", "", nil, false},
	}
	for _, tt := range tests {
		token, args, ok := ParseText(tt.content, tt.prefix)
		assert.Equal(t, tt.ok, ok, tt.content)
		assert.Equal(t, tt.token, token, tt.content)
		if tt.ok {
			assert.Equal(t, tt.args, args, tt.content)
		}
	}
}

func TestHandleMessage_CooldownEndToEnd(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}})

	first := newMessage("userA", "!choose tea coffee")
	res := h.d.HandleMessage(first)
	assert.Equal(t, OutcomeInvoked, res.Outcome)
	assert.Equal(t, []string{"I choose tea"}, first.replies)

	h.clock.Advance(2 * time.Second)

	second := newMessage("userA", "!choose tea coffee")
	res = h.d.HandleMessage(second)
	assert.Equal(t, OutcomeCooldown, res.Outcome)
	assert.Greater(t, res.Remaining, time.Duration(0))
	assert.LessOrEqual(t, res.Remaining, 5*time.Second)
	require.Len(t, second.replies, 1)
	assert.Contains(t, second.replies[0], "3.0s")
	assert.Contains(t, second.replies[0], "choose")
	assert.Equal(t, 1, choose.calls)
}

func TestHandleMessage_AliasSharesCooldownBucket(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}})

	viaAlias := newMessage("userA", "!pick red blue")
	res := h.d.HandleMessage(viaAlias)
	assert.Equal(t, OutcomeInvoked, res.Outcome)
	assert.Equal(t, "choose", res.Command)
	assert.Equal(t, []string{"I choose red"}, viaAlias.replies)

	direct := newMessage("userA", "!choose red blue")
	res = h.d.HandleMessage(direct)
	assert.Equal(t, OutcomeCooldown, res.Outcome)
	assert.True(t, h.cd.IsBlocked("userA", "choose", 5*time.Second))
	assert.False(t, h.cd.IsBlocked("userA", "pick", 5*time.Second))
}

func TestHandleMessage_CooldownExpires(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}})

	h.d.HandleMessage(newMessage("userA", "!choose a"))
	h.clock.Advance(5 * time.Second)

	res := h.d.HandleMessage(newMessage("userA", "!choose b"))
	assert.Equal(t, OutcomeInvoked, res.Outcome)
	assert.Equal(t, 2, choose.calls)
}

func TestHandleMessage_CooldownRejectionDoesNotRefresh(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}})

	h.d.HandleMessage(newMessage("userA", "!choose a"))
	h.clock.Advance(4 * time.Second)
	res := h.d.HandleMessage(newMessage("userA", "!choose a"))
	require.Equal(t, OutcomeCooldown, res.Outcome)

	h.clock.Advance(time.Second)
	res = h.d.HandleMessage(newMessage("userA", "!choose a"))
	assert.Equal(t, OutcomeInvoked, res.Outcome)
}

func TestHandleMessage_ZeroCooldownNeverBlocks(t *testing.T) {
	ping := &testCommand{
		name:   "ping",
		onText: func(ctx *command.MessageContext) error { return ctx.Reply("pong") },
	}
	h := newHarness(t, []command.Command{textOnly{ping}})

	for i := 0; i < 20; i++ {
		res := h.d.HandleMessage(newMessage("userA", "!ping"))
		require.Equal(t, OutcomeInvoked, res.Outcome)
	}
	assert.Equal(t, 0, h.cd.Len())
}

func TestHandleMessage_FailureIsContained(t *testing.T) {
	boom := errors.New("database down")
	broken := &testCommand{
		name:     "broken",
		cooldown: 30 * time.Second,
		onText:   func(*command.MessageContext) error { return boom },
	}
	h := newHarness(t, []command.Command{textOnly{broken}})

	msg := newMessage("userA", "!broken")
	res := h.d.HandleMessage(msg)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, boom)
	require.Len(t, msg.replies, 1)
	assert.Equal(t, DefaultMessages().Failure, msg.replies[0])
	assert.NotContains(t, msg.replies[0], "database down")
	assert.False(t, h.cd.IsBlocked("userA", "broken", 30*time.Second))
	assert.Equal(t, 0, h.cd.Len())
}

func TestHandleMessage_PanicIsContained(t *testing.T) {
	crashy := &testCommand{
		name:     "crashy",
		cooldown: time.Minute,
		onText: func(*command.MessageContext) error {
			var m map[string]int
			m["x"] = 1
			return nil
		},
	}
	h := newHarness(t, []command.Command{textOnly{crashy}})

	msg := newMessage("userA", "!crashy")
	var res Result
	require.NotPanics(t, func() { res = h.d.HandleMessage(msg) })

	assert.Equal(t, OutcomeFailed, res.Outcome)
	var pe *PanicError
	require.ErrorAs(t, res.Err, &pe)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, []string{DefaultMessages().Failure}, msg.replies)
	assert.Equal(t, 0, h.cd.Len())
}

func TestHandleMessage_UnknownIsSilent(t *testing.T) {
	h := newHarness(t, []command.Command{dual{chooseCommand()}})

	msg := newMessage("userA", "!nope")
	res := h.d.HandleMessage(msg)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Empty(t, msg.replies)
}

func TestHandleMessage_IgnoresNonCommands(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}})

	plain := newMessage("userA", "choose a b")
	assert.Equal(t, OutcomeIgnored, h.d.HandleMessage(plain).Outcome)

	fromBot := newMessage("bot", "!choose a b")
	fromBot.bot = true
	assert.Equal(t, OutcomeIgnored, h.d.HandleMessage(fromBot).Outcome)

	assert.Empty(t, plain.replies)
	assert.Empty(t, fromBot.replies)
	assert.Equal(t, 0, choose.calls)
}

func TestHandleMessage_SlashOnlyCommandIsSilentOnText(t *testing.T) {
	echo := &testCommand{
		name:    "echo",
		onSlash: func(ctx *command.SlashContext) error { return ctx.Reply("echo") },
	}
	h := newHarness(t, []command.Command{slashOnly{echo}})

	msg := newMessage("userA", "!echo hi")
	res := h.d.HandleMessage(msg)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Empty(t, msg.replies)
	assert.Equal(t, 0, echo.calls)
}

func TestHandleMessage_PerGuildPrefix(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}},
		WithPrefixes(staticPrefixes{"g2": "$"}),
		WithDefaultPrefix("?"),
	)

	inDefault := newMessage("userA", "?choose x")
	assert.Equal(t, OutcomeInvoked, h.d.HandleMessage(inDefault).Outcome)

	custom := newMessage("userB", "$choose y")
	custom.guild = "g2"
	assert.Equal(t, OutcomeInvoked, h.d.HandleMessage(custom).Outcome)

	wrong := newMessage("userC", "?choose z")
	wrong.guild = "g2"
	assert.Equal(t, OutcomeIgnored, h.d.HandleMessage(wrong).Outcome)
}

func TestHandleMessage_ReplyHandleCanBeEdited(t *testing.T) {
	ping := &testCommand{
		name: "ping",
		onText: func(ctx *command.MessageContext) error {
			sent, err := ctx.Message.Reply("Pinging...")
			if err != nil {
				return err
			}
			return sent.Edit("Pong!")
		},
	}
	h := newHarness(t, []command.Command{textOnly{ping}})

	msg := newMessage("userA", "!ping")
	h.d.HandleMessage(msg)
	assert.Equal(t, []string{"Pong!"}, msg.replies)
}

func TestHandleMessage_ReplyFailureStillContained(t *testing.T) {
	broken := &testCommand{
		name:   "broken",
		onText: func(*command.MessageContext) error { return errors.New("nope") },
	}
	h := newHarness(t, []command.Command{textOnly{broken}})

	msg := newMessage("userA", "!broken")
	msg.replyErr = errors.New("missing permissions")
	res := h.d.HandleMessage(msg)
	assert.Equal(t, OutcomeFailed, res.Outcome)
}

func TestHandleMessage_CooldownOverride(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}},
		WithCooldownOverrides(map[string]time.Duration{"choose": 0}),
	)

	for i := 0; i < 3; i++ {
		assert.Equal(t, OutcomeInvoked, h.d.HandleMessage(newMessage("userA", "!choose a")).Outcome)
	}
}

func TestHandleInteraction_Success(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}})

	it := newInteraction("userA", "choose")
	it.options["options"] = "tea"
	res := h.d.HandleInteraction(it)

	assert.Equal(t, OutcomeInvoked, res.Outcome)
	require.Len(t, it.replies, 1)
	assert.Equal(t, "I choose tea", it.replies[0].content)
	assert.True(t, h.cd.IsBlocked("userA", "choose", 5*time.Second))
}

func TestHandleInteraction_SharesCooldownWithText(t *testing.T) {
	choose := chooseCommand()
	h := newHarness(t, []command.Command{dual{choose}})

	h.d.HandleMessage(newMessage("userA", "!pick x"))

	it := newInteraction("userA", "choose")
	res := h.d.HandleInteraction(it)
	assert.Equal(t, OutcomeCooldown, res.Outcome)
	require.Len(t, it.replies, 1)
	assert.True(t, it.replies[0].ephemeral)
	assert.True(t, strings.HasPrefix(it.replies[0].content, "⏳"))
}

func TestHandleInteraction_UnknownGetsExplicitReply(t *testing.T) {
	h := newHarness(t, nil)

	it := newInteraction("userA", "ghost")
	res := h.d.HandleInteraction(it)

	assert.Equal(t, OutcomeNotFound, res.Outcome)
	require.Len(t, it.replies, 1)
	assert.Contains(t, it.replies[0].content, "ghost")
	assert.True(t, it.replies[0].ephemeral)
}

func TestHandleInteraction_CapabilityMismatchIsNotFound(t *testing.T) {
	flip := &testCommand{
		name: "flip",
		onText: func(ctx *command.MessageContext) error {
			return ctx.Reply("heads")
		},
	}
	h := newHarness(t, []command.Command{textOnly{flip}})

	it := newInteraction("userA", "flip")
	res := h.d.HandleInteraction(it)

	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Equal(t, 0, flip.calls, "text body must not run for a slash event")
	require.Len(t, it.replies, 1)
	assert.Contains(t, it.replies[0].content, "flip")
}

func TestHandleInteraction_FailureBeforeReply(t *testing.T) {
	broken := &testCommand{
		name:     "broken",
		cooldown: time.Minute,
		onSlash:  func(*command.SlashContext) error { return errors.New("upstream timeout") },
	}
	h := newHarness(t, []command.Command{slashOnly{broken}})

	it := newInteraction("userA", "broken")
	res := h.d.HandleInteraction(it)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Len(t, it.replies, 1)
	assert.Equal(t, DefaultMessages().Failure, it.replies[0].content)
	assert.Empty(t, it.followups)
	assert.Equal(t, 0, h.cd.Len())
}

func TestHandleInteraction_FailureAfterDeferUsesFollowup(t *testing.T) {
	slow := &testCommand{
		name:     "slow",
		cooldown: time.Minute,
		onSlash: func(ctx *command.SlashContext) error {
			if err := ctx.Interaction.Defer(false); err != nil {
				return err
			}
			return errors.New("gave up")
		},
	}
	h := newHarness(t, []command.Command{slashOnly{slow}})

	it := newInteraction("userA", "slow")
	res := h.d.HandleInteraction(it)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Empty(t, it.replies)
	require.Len(t, it.followups, 1)
	assert.Equal(t, DefaultMessages().Failure, it.followups[0].content)
	assert.Equal(t, 0, h.cd.Len())
}

func TestHandleInteraction_PanicAfterReplyUsesFollowup(t *testing.T) {
	half := &testCommand{
		name: "half",
		onSlash: func(ctx *command.SlashContext) error {
			_ = ctx.Reply("working on it")
			panic("lost the thread")
		},
	}
	h := newHarness(t, []command.Command{slashOnly{half}})

	it := newInteraction("userA", "half")
	var res Result
	require.NotPanics(t, func() { res = h.d.HandleInteraction(it) })

	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Len(t, it.replies, 1)
	assert.Equal(t, "working on it", it.replies[0].content)
	require.Len(t, it.followups, 1)
}

func TestCommandLoggerMiddleware(t *testing.T) {
	hist := &memoryHistory{}
	choose := chooseCommand()
	broken := &testCommand{
		name:   "broken",
		onText: func(*command.MessageContext) error { return errors.New("x") },
	}
	h := newHarness(t, []command.Command{dual{choose}, textOnly{broken}},
		WithMiddleware(CommandLogger(hist)),
	)

	h.d.HandleMessage(newMessage("userA", "!pick a b"))
	h.d.HandleMessage(newMessage("userA", "!broken"))

	require.Len(t, hist.entries, 1)
	e := hist.entries[0]
	assert.Equal(t, "choose", e.Command)
	assert.Equal(t, "text", e.Surface)
	assert.Equal(t, "userA", e.UserID)
	assert.Equal(t, []string{"g1"}, hist.guilds)
	assert.Equal(t, []string{"a", "b"}, e.Args)
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next commandkit.Command) commandkit.Command {
			return commandkit.Wrap(next, func(ctx context.Context, kinv *commandkit.Invocation) error {
				order = append(order, name)
				return next.Run(ctx, kinv)
			})
		}
	}
	ping := &testCommand{
		name: "ping",
		onText: func(*command.MessageContext) error {
			order = append(order, "handler")
			return nil
		},
	}
	h := newHarness(t, []command.Command{textOnly{ping}}, WithMiddleware(mw("outer"), mw("inner")))

	h.d.HandleMessage(newMessage("userA", "!ping"))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestMiddlewareSeesInvocation(t *testing.T) {
	type ctxKey struct{}
	var seen *Invocation
	var seenArgs []string
	var seenValue any
	spy := func(next commandkit.Command) commandkit.Command {
		return commandkit.Wrap(next, func(ctx context.Context, kinv *commandkit.Invocation) error {
			seen = InvocationOf(kinv)
			seenArgs = kinv.Args
			seenValue = ctx.Value(ctxKey{})
			return next.Run(ctx, kinv)
		})
	}
	choose := chooseCommand()
	base := context.WithValue(context.Background(), ctxKey{}, "base")
	h := newHarness(t, []command.Command{dual{choose}}, WithMiddleware(spy), WithContext(base))

	h.d.HandleMessage(newMessage("userA", "!pick a b"))

	require.NotNil(t, seen)
	assert.Equal(t, SurfaceText, seen.Surface)
	assert.Equal(t, "pick", seen.Token)
	assert.Equal(t, []string{"a", "b"}, seenArgs)
	assert.Equal(t, "base", seenValue)
	assert.Nil(t, InvocationOf(nil))
}

func TestMiddlewarePanicIsContained(t *testing.T) {
	boom := func(next commandkit.Command) commandkit.Command {
		return commandkit.Wrap(next, func(context.Context, *commandkit.Invocation) error {
			panic("middleware exploded")
		})
	}
	h := newHarness(t, []command.Command{dual{chooseCommand()}}, WithMiddleware(boom))

	msg := newMessage("userA", "!choose a")
	var res Result
	require.NotPanics(t, func() { res = h.d.HandleMessage(msg) })
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.False(t, h.cd.IsBlocked("userA", "choose", 5*time.Second))
}

// tickingClock moves forward by step on every read.
type tickingClock struct {
	now  time.Time
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func TestCooldownNoticeNeverReadsZero(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := &tickingClock{now: start, step: time.Millisecond}
	reg := command.NewRegistry()
	require.NoError(t, reg.Register(dual{chooseCommand()}))
	cd := cooldown.New(cooldown.WithClock(clock.Now))
	d := New(reg, cd)

	require.Equal(t, OutcomeInvoked, d.HandleMessage(newMessage("userA", "!choose a")).Outcome)

	// The lookup took the first tick, so the entry was stamped at start+1ms.
	// The next read lands one millisecond before it expires.
	clock.now = start.Add(5 * time.Second)
	msg := newMessage("userA", "!choose b")
	res := d.HandleMessage(msg)
	require.Equal(t, OutcomeCooldown, res.Outcome)
	assert.Greater(t, res.Remaining, time.Duration(0))
	assert.LessOrEqual(t, res.Remaining, 5*time.Second)
	require.Len(t, msg.replies, 1)
	assert.NotContains(t, msg.replies[0], "0.0s")

	clock.now = start.Add(5 * time.Second)
	it := newInteraction("userA", "choose")
	ires := d.HandleInteraction(it)
	require.Equal(t, OutcomeCooldown, ires.Outcome)
	assert.Greater(t, ires.Remaining, time.Duration(0))
}

func TestMixedCaseCommandName(t *testing.T) {
	choose := chooseCommand()
	choose.name = "Choose"
	choose.aliases = []string{"Pick"}
	h := newHarness(t, []command.Command{dual{choose}},
		WithCooldownOverrides(map[string]time.Duration{"Choose": 0}),
	)

	assert.Equal(t, time.Duration(0), h.d.Cooldown(choose))
	for i := 0; i < 3; i++ {
		res := h.d.HandleMessage(newMessage("userA", "!Choose a"))
		assert.Equal(t, OutcomeInvoked, res.Outcome)
		assert.Equal(t, OutcomeInvoked, h.d.HandleMessage(newMessage("userA", "!pick a")).Outcome)
	}
	assert.Equal(t, OutcomeInvoked, h.d.HandleInteraction(newInteraction("userA", "choose")).Outcome)
}

func TestMixedCaseNameSharesCooldownBucket(t *testing.T) {
	choose := chooseCommand()
	choose.name = "Choose"
	h := newHarness(t, []command.Command{dual{choose}})

	require.Equal(t, OutcomeInvoked, h.d.HandleMessage(newMessage("userA", "!choose a")).Outcome)
	assert.Equal(t, OutcomeCooldown, h.d.HandleInteraction(newInteraction("userA", "choose")).Outcome)
	assert.True(t, h.cd.IsBlocked("userA", "choose", 5*time.Second))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "cooldown", OutcomeCooldown.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
