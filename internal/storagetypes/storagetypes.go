package storagetypes

import (
	"time"
)

type CommandHistory struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Command   string    `json:"command"`
	Surface   string    `json:"surface"`
	Args      []string  `json:"args,omitempty"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything stored per guild. Direct messages use the empty
// guild ID key.
type Record struct {
	Prefix          string           `json:"prefix,omitempty"`
	CommandsHistory []CommandHistory `json:"commands_history"`
}

// SlashHashes maps a published slash command name to the hash of its
// definition, per publishing scope (a guild ID or the global scope).
type SlashHashes map[string]string
