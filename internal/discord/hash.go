package discord

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/bwmarrin/discordgo"
)

// fingerprint is the user-visible shape of a slash definition. IDs and
// versions assigned by Discord are left out so a fetched command and a
// local one compare equal.
type fingerprint struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        int                 `json:"type"`
	Permissions *int64              `json:"permissions,omitempty"`
	Options     []optionFingerprint `json:"options,omitempty"`
}

type optionFingerprint struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Type         int                 `json:"type"`
	Required     bool                `json:"required"`
	Autocomplete bool                `json:"autocomplete,omitempty"`
	MinValue     *float64            `json:"min_value,omitempty"`
	MaxValue     float64             `json:"max_value,omitempty"`
	MinLength    *int                `json:"min_length,omitempty"`
	MaxLength    int                 `json:"max_length,omitempty"`
	Choices      []choiceFingerprint `json:"choices,omitempty"`
	Options      []optionFingerprint `json:"options,omitempty"`
}

type choiceFingerprint struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// hashCommand digests def. Option order is kept: Discord shows options in
// the order they were published, so reordering is a change.
func hashCommand(def *discordgo.ApplicationCommand) string {
	fp := fingerprint{
		Name:        def.Name,
		Description: def.Description,
		Type:        int(def.Type),
		Permissions: def.DefaultMemberPermissions,
		Options:     optionFingerprints(def.Options),
	}
	if fp.Type == 0 {
		fp.Type = int(discordgo.ChatApplicationCommand)
	}
	data, _ := json.Marshal(fp)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func optionFingerprints(opts []*discordgo.ApplicationCommandOption) []optionFingerprint {
	if len(opts) == 0 {
		return nil
	}
	out := make([]optionFingerprint, 0, len(opts))
	for _, o := range opts {
		fp := optionFingerprint{
			Name:         o.Name,
			Description:  o.Description,
			Type:         int(o.Type),
			Required:     o.Required,
			Autocomplete: o.Autocomplete,
			MinValue:     o.MinValue,
			MaxValue:     o.MaxValue,
			MinLength:    o.MinLength,
			MaxLength:    o.MaxLength,
			Options:      optionFingerprints(o.Options),
		}
		for _, c := range o.Choices {
			fp.Choices = append(fp.Choices, choiceFingerprint{Name: c.Name, Value: c.Value})
		}
		out = append(out, fp)
	}
	return out
}
