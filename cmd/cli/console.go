package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/keshon/commandbot/internal/command"
)

// consoleMessage is a command.Message typed on the terminal. Replies are
// printed to out.
type consoleMessage struct {
	content string
	user    string
	out     io.Writer

	mu   sync.Mutex
	sent int
}

func (m *consoleMessage) Content() string   { return m.content }
func (m *consoleMessage) AuthorID() string  { return m.user }
func (m *consoleMessage) AuthorIsBot() bool { return false }
func (m *consoleMessage) GuildID() string   { return "" }
func (m *consoleMessage) ChannelID() string { return "console" }

func (m *consoleMessage) Reply(content string) (command.SentMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	if _, err := fmt.Fprintln(m.out, content); err != nil {
		return nil, err
	}
	return &consoleReply{msg: m, n: m.sent}, nil
}

type consoleReply struct {
	msg *consoleMessage
	n   int
}

func (r *consoleReply) Edit(content string) error {
	r.msg.mu.Lock()
	defer r.msg.mu.Unlock()
	_, err := fmt.Fprintf(r.msg.out, "(edited #%d) %s\n", r.n, content)
	return err
}
