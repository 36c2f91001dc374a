package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
)

// message adapts a gateway message to command.Message.
type message struct {
	s *discordgo.Session
	m *discordgo.Message
}

func newMessage(s *discordgo.Session, m *discordgo.Message) *message {
	return &message{s: s, m: m}
}

func (msg *message) Content() string   { return msg.m.Content }
func (msg *message) GuildID() string   { return msg.m.GuildID }
func (msg *message) ChannelID() string { return msg.m.ChannelID }

func (msg *message) AuthorID() string {
	if msg.m.Author == nil {
		return ""
	}
	return msg.m.Author.ID
}

func (msg *message) AuthorIsBot() bool {
	return msg.m.Author == nil || msg.m.Author.Bot
}

func (msg *message) Reply(content string) (command.SentMessage, error) {
	sent, err := msg.s.ChannelMessageSendReply(msg.m.ChannelID, content, msg.m.Reference())
	if err != nil {
		return nil, err
	}
	return &sentMessage{s: msg.s, channelID: sent.ChannelID, id: sent.ID}, nil
}

type sentMessage struct {
	s         *discordgo.Session
	channelID string
	id        string
}

func (m *sentMessage) Edit(content string) error {
	_, err := m.s.ChannelMessageEdit(m.channelID, m.id, content)
	return err
}
