// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/keshon/datastore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	st "github.com/keshon/commandbot/internal/storagetypes"
)

const (
	commandHistoryLimit int = 50
	defaultSaveInterval     = time.Minute
)

// Storage keeps per-guild records and slash publishing hashes on top of
// the JSON datastore.
type Storage struct {
	ds            *datastore.DataStore
	defaultPrefix string
	cancel        context.CancelFunc

	// read-modify-write of a record is not atomic in the datastore
	mu sync.Mutex
}

// New opens filePath, creating it and its directory if needed. The store
// flushes every saveInterval until ctx is done or Close is called.
func New(ctx context.Context, filePath, defaultPrefix string, saveInterval time.Duration) (*Storage, error) {
	if saveInterval <= 0 {
		saveInterval = defaultSaveInterval
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	logger := log.Logger.With().Str("component", "datastore").Logger()
	ds, err := datastore.New(ctx, filePath,
		datastore.WithSaveInterval(saveInterval),
		datastore.WithLogger(slog.New(zerolog.NewSlogHandler(logger))),
	)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Storage{ds: ds, defaultPrefix: defaultPrefix, cancel: cancel}, nil
}

// Close stops autosave and writes the final snapshot.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

func guildKey(guildID string) string {
	if guildID == "" {
		return "guild:dm"
	}
	return "guild:" + guildID
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*st.Record, error) {
	var record st.Record
	found, err := s.ds.Get(guildKey(guildID), &record)
	if err != nil {
		return nil, err
	}
	if !found || record.CommandsHistory == nil {
		record.CommandsHistory = []st.CommandHistory{}
	}
	return &record, nil
}

// Prefix returns the guild's text prefix, or the default when none is set.
func (s *Storage) Prefix(guildID string) string {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil || record.Prefix == "" {
		return s.defaultPrefix
	}
	return record.Prefix
}

func (s *Storage) SetPrefix(guildID, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || strings.ContainsAny(prefix, " \t\n") {
		return fmt.Errorf("invalid prefix %q", prefix)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.Prefix = prefix
	return s.ds.Set(guildKey(guildID), record)
}

func (s *Storage) ResetPrefix(guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.Prefix = ""
	return s.ds.Set(guildKey(guildID), record)
}

// AppendCommandHistory appends an entry, keeping only the newest
// commandHistoryLimit entries per guild.
func (s *Storage) AppendCommandHistory(guildID string, entry st.CommandHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistory = append(record.CommandsHistory, entry)
	if n := len(record.CommandsHistory); n > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[n-commandHistoryLimit:]
	}
	return s.ds.Set(guildKey(guildID), record)
}

func (s *Storage) CommandHistory(guildID string) ([]st.CommandHistory, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}
