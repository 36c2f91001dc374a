// Package commandtest provides in-memory Message and Interaction
// implementations for exercising command handlers.
package commandtest

import (
	"errors"
	"strings"
	"sync"

	"github.com/keshon/commandbot/internal/command"
)

var ErrAlreadyAcknowledged = errors.New("interaction already acknowledged")

// Message records replies and edits in memory.
type Message struct {
	Text    string
	Author  string
	Bot     bool
	Guild   string
	Channel string

	mu      sync.Mutex
	replies []string
}

func NewMessage(text string) *Message {
	return &Message{Text: text, Author: "user-1", Guild: "guild-1", Channel: "channel-1"}
}

func (m *Message) Content() string   { return m.Text }
func (m *Message) AuthorID() string  { return m.Author }
func (m *Message) AuthorIsBot() bool { return m.Bot }
func (m *Message) GuildID() string   { return m.Guild }
func (m *Message) ChannelID() string { return m.Channel }

func (m *Message) Reply(content string) (command.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, content)
	return &sent{msg: m, index: len(m.replies) - 1}, nil
}

// Replies returns the current text of every reply, edits applied.
func (m *Message) Replies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replies...)
}

// LastReply returns the most recent reply or "".
func (m *Message) LastReply() string {
	r := m.Replies()
	if len(r) == 0 {
		return ""
	}
	return r[len(r)-1]
}

type sent struct {
	msg   *Message
	index int
}

func (s *sent) Edit(content string) error {
	s.msg.mu.Lock()
	defer s.msg.mu.Unlock()
	s.msg.replies[s.index] = content
	return nil
}

// Response is one message sent through an Interaction.
type Response struct {
	Content   string
	Ephemeral bool
}

// Interaction enforces the single initial response rule.
type Interaction struct {
	Name    string
	User    string
	Guild   string
	Channel string
	Options map[string]any

	mu        sync.Mutex
	reply     *Response
	deferred  bool
	edits     []string
	followups []Response
}

func NewInteraction(name string, options map[string]any) *Interaction {
	if options == nil {
		options = map[string]any{}
	}
	return &Interaction{Name: name, User: "user-1", Guild: "guild-1", Channel: "channel-1", Options: options}
}

func (i *Interaction) CommandName() string { return i.Name }
func (i *Interaction) UserID() string      { return i.User }
func (i *Interaction) GuildID() string     { return i.Guild }
func (i *Interaction) ChannelID() string   { return i.Channel }

func (i *Interaction) Option(name string) (any, bool) {
	v, ok := i.Options[name]
	return v, ok
}

func (i *Interaction) Reply(content string, ephemeral bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.reply != nil || i.deferred {
		return ErrAlreadyAcknowledged
	}
	i.reply = &Response{Content: content, Ephemeral: ephemeral}
	return nil
}

func (i *Interaction) Defer(bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.reply != nil || i.deferred {
		return ErrAlreadyAcknowledged
	}
	i.deferred = true
	return nil
}

func (i *Interaction) EditReply(content string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.reply == nil && !i.deferred {
		return errors.New("nothing to edit")
	}
	i.edits = append(i.edits, content)
	return nil
}

func (i *Interaction) Followup(content string, ephemeral bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.followups = append(i.followups, Response{Content: content, Ephemeral: ephemeral})
	return nil
}

func (i *Interaction) Acknowledged() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.reply != nil || i.deferred
}

// Response returns the initial reply, nil if none was sent.
func (i *Interaction) Response() *Response {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.reply
}

// Visible returns what the user ends up seeing as the main response:
// the last edit if any, else the initial reply.
func (i *Interaction) Visible() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if n := len(i.edits); n > 0 {
		return i.edits[n-1]
	}
	if i.reply != nil {
		return i.reply.Content
	}
	return ""
}

func (i *Interaction) Followups() []Response {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Response(nil), i.followups...)
}

// Text builds a MessageContext for a handler call without a dispatcher.
func Text(reg *command.Registry, line string) (*command.MessageContext, *Message) {
	msg := NewMessage("!" + line)
	fields := strings.Fields(line)
	ctx := &command.MessageContext{Message: msg, Prefix: "!", Registry: reg}
	if len(fields) > 0 {
		ctx.Invoked = strings.ToLower(fields[0])
		ctx.Args = fields[1:]
	}
	return ctx, msg
}

// Slash builds a SlashContext for a handler call without a dispatcher.
func Slash(reg *command.Registry, name string, options map[string]any) (*command.SlashContext, *Interaction) {
	it := NewInteraction(name, options)
	return &command.SlashContext{Interaction: it, Registry: reg}, it
}
