package discord

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var errAlreadyAcknowledged = errors.New("interaction already acknowledged")

// interaction adapts a slash command interaction to command.Interaction.
type interaction struct {
	s       *discordgo.Session
	i       *discordgo.Interaction
	name    string
	options map[string]any

	mu    sync.Mutex
	acked bool
}

func newInteraction(s *discordgo.Session, i *discordgo.Interaction) *interaction {
	data := i.ApplicationCommandData()
	return &interaction{
		s:       s,
		i:       i,
		name:    data.Name,
		options: optionValues(data.Options),
	}
}

func (it *interaction) CommandName() string { return it.name }
func (it *interaction) GuildID() string     { return it.i.GuildID }
func (it *interaction) ChannelID() string   { return it.i.ChannelID }

func (it *interaction) UserID() string {
	return interactionUserID(it.i)
}

func (it *interaction) Option(name string) (any, bool) {
	v, ok := it.options[name]
	return v, ok
}

func (it *interaction) Reply(content string, ephemeral bool) error {
	return it.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags(ephemeral),
		},
	})
}

func (it *interaction) Defer(ephemeral bool) error {
	return it.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags(ephemeral)},
	})
}

func (it *interaction) respond(resp *discordgo.InteractionResponse) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.acked {
		return errAlreadyAcknowledged
	}
	if err := it.s.InteractionRespond(it.i, resp); err != nil {
		return err
	}
	it.acked = true
	return nil
}

func (it *interaction) EditReply(content string) error {
	_, err := it.s.InteractionResponseEdit(it.i, &discordgo.WebhookEdit{Content: &content})
	return err
}

func (it *interaction) Followup(content string, ephemeral bool) error {
	_, err := it.s.FollowupMessageCreate(it.i, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   flags(ephemeral),
	})
	return err
}

func (it *interaction) Acknowledged() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.acked
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// optionValues flattens option values by name. Subcommand options are
// merged into the same map.
func optionValues(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]any {
	out := make(map[string]any)
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			for k, v := range optionValues(o.Options) {
				out[k] = v
			}
		case discordgo.ApplicationCommandOptionString:
			out[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			out[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionBoolean:
			out[o.Name] = o.BoolValue()
		case discordgo.ApplicationCommandOptionNumber:
			out[o.Name] = o.FloatValue()
		default:
			// users, channels, roles and mentionables arrive as IDs
			out[o.Name] = fmt.Sprint(o.Value)
		}
	}
	return out
}
