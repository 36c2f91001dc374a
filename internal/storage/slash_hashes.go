package storage

import (
	st "github.com/keshon/commandbot/internal/storagetypes"
)

// GlobalScope is the publishing scope for application-wide slash commands.
const GlobalScope = "global"

func hashesKey(scope string) string {
	if scope == "" {
		scope = GlobalScope
	}
	return "slash:" + scope
}

// SlashHashes returns the definition hashes last published to scope.
func (s *Storage) SlashHashes(scope string) (st.SlashHashes, error) {
	hashes := st.SlashHashes{}
	if _, err := s.ds.Get(hashesKey(scope), &hashes); err != nil {
		return nil, err
	}
	if hashes == nil {
		hashes = st.SlashHashes{}
	}
	return hashes, nil
}

// SetSlashHashes records what was published. It reaches disk with the next
// autosave or on Close; a lost write only costs one republish.
func (s *Storage) SetSlashHashes(scope string, hashes st.SlashHashes) error {
	return s.ds.Set(hashesKey(scope), hashes)
}
