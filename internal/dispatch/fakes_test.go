package dispatch

import (
	"errors"
	"sync"
	"time"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/storagetypes"
)

type fakeMessage struct {
	content  string
	author   string
	bot      bool
	guild    string
	channel  string
	replies  []string
	replyErr error
}

func newMessage(author, content string) *fakeMessage {
	return &fakeMessage{content: content, author: author, guild: "g1", channel: "c1"}
}

func (m *fakeMessage) Content() string   { return m.content }
func (m *fakeMessage) AuthorID() string  { return m.author }
func (m *fakeMessage) AuthorIsBot() bool { return m.bot }
func (m *fakeMessage) GuildID() string   { return m.guild }
func (m *fakeMessage) ChannelID() string { return m.channel }

func (m *fakeMessage) Reply(content string) (command.SentMessage, error) {
	if m.replyErr != nil {
		return nil, m.replyErr
	}
	m.replies = append(m.replies, content)
	return &fakeSent{msg: m, index: len(m.replies) - 1}, nil
}

type fakeSent struct {
	msg   *fakeMessage
	index int
}

func (s *fakeSent) Edit(content string) error {
	s.msg.replies[s.index] = content
	return nil
}

var errAlreadyAcknowledged = errors.New("interaction already acknowledged")

type sentReply struct {
	content   string
	ephemeral bool
}

type fakeInteraction struct {
	mu        sync.Mutex
	name      string
	user      string
	guild     string
	options   map[string]any
	replies   []sentReply
	followups []sentReply
	edits     []string
	deferred  bool
}

func newInteraction(user, name string) *fakeInteraction {
	return &fakeInteraction{name: name, user: user, guild: "g1", options: map[string]any{}}
}

func (i *fakeInteraction) CommandName() string { return i.name }
func (i *fakeInteraction) UserID() string      { return i.user }
func (i *fakeInteraction) GuildID() string     { return i.guild }
func (i *fakeInteraction) ChannelID() string   { return "c1" }

func (i *fakeInteraction) Option(name string) (any, bool) {
	v, ok := i.options[name]
	return v, ok
}

func (i *fakeInteraction) Reply(content string, ephemeral bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.replies) > 0 || i.deferred {
		return errAlreadyAcknowledged
	}
	i.replies = append(i.replies, sentReply{content, ephemeral})
	return nil
}

func (i *fakeInteraction) Defer(bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.replies) > 0 || i.deferred {
		return errAlreadyAcknowledged
	}
	i.deferred = true
	return nil
}

func (i *fakeInteraction) EditReply(content string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.edits = append(i.edits, content)
	return nil
}

func (i *fakeInteraction) Followup(content string, ephemeral bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.followups = append(i.followups, sentReply{content, ephemeral})
	return nil
}

func (i *fakeInteraction) Acknowledged() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.replies) > 0 || i.deferred
}

// testCommand carries both bodies; set either func to nil via the
// textOnly / slashOnly wrappers below.
type testCommand struct {
	name     string
	aliases  []string
	cooldown time.Duration
	onText   func(ctx *command.MessageContext) error
	onSlash  func(ctx *command.SlashContext) error
	calls    int
}

func (c *testCommand) Name() string               { return c.name }
func (c *testCommand) Description() string        { return "test command" }
func (c *testCommand) Aliases() []string          { return c.aliases }
func (c *testCommand) Category() command.Category { return command.CategoryFun }
func (c *testCommand) Cooldown() time.Duration    { return c.cooldown }

type textOnly struct{ *testCommand }

func (c textOnly) Message(ctx *command.MessageContext) error {
	c.calls++
	return c.onText(ctx)
}

type slashOnly struct{ *testCommand }

func (c slashOnly) Slash(ctx *command.SlashContext) error {
	c.calls++
	return c.onSlash(ctx)
}

type dual struct{ *testCommand }

func (c dual) Message(ctx *command.MessageContext) error {
	c.calls++
	return c.onText(ctx)
}

func (c dual) Slash(ctx *command.SlashContext) error {
	c.calls++
	return c.onSlash(ctx)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type staticPrefixes map[string]string

func (p staticPrefixes) Prefix(guildID string) string { return p[guildID] }

type memoryHistory struct {
	guilds  []string
	entries []storagetypes.CommandHistory
}

func (h *memoryHistory) AppendCommandHistory(guildID string, e storagetypes.CommandHistory) error {
	h.guilds = append(h.guilds, guildID)
	h.entries = append(h.entries, e)
	return nil
}
