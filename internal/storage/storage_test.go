package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	st "github.com/keshon/commandbot/internal/storagetypes"
)

func newStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datastore.json")
	s, err := New(context.Background(), path, "!", time.Hour)
	require.NoError(t, err)
	return s, path
}

func TestPrefix_DefaultAndOverride(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	assert.Equal(t, "!", s.Prefix("g1"))

	require.NoError(t, s.SetPrefix("g1", " $ "))
	assert.Equal(t, "$", s.Prefix("g1"))
	assert.Equal(t, "!", s.Prefix("g2"))

	require.NoError(t, s.ResetPrefix("g1"))
	assert.Equal(t, "!", s.Prefix("g1"))
}

func TestPrefix_RejectsBlankOrSpaced(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	assert.Error(t, s.SetPrefix("g1", "   "))
	assert.Error(t, s.SetPrefix("g1", "a b"))
	assert.Equal(t, "!", s.Prefix("g1"))
}

func TestCommandHistory_Bounded(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandHistory("g1", st.CommandHistory{
			UserID:   "u1",
			Command:  fmt.Sprintf("cmd%d", i),
			Surface:  "text",
			Datetime: time.Now(),
		}))
	}

	history, err := s.CommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "cmd5", history[0].Command)
	assert.Equal(t, fmt.Sprintf("cmd%d", commandHistoryLimit+4), history[len(history)-1].Command)

	empty, err := s.CommandHistory("other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_SurvivesReopen(t *testing.T) {
	s, path := newStorage(t)
	require.NoError(t, s.SetPrefix("g1", "?"))
	require.NoError(t, s.AppendCommandHistory("", st.CommandHistory{Command: "ping"}))
	require.NoError(t, s.SetSlashHashes("g1", st.SlashHashes{"ping": "abc"}))
	require.NoError(t, s.Close())

	reopened, err := New(context.Background(), path, "!", 0)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, "?", reopened.Prefix("g1"))
	history, err := reopened.CommandHistory("")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ping", history[0].Command)

	hashes, err := reopened.SlashHashes("g1")
	require.NoError(t, err)
	assert.Equal(t, st.SlashHashes{"ping": "abc"}, hashes)
}

func TestSlashHashes_ScopesAreSeparate(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	hashes, err := s.SlashHashes("")
	require.NoError(t, err)
	assert.Empty(t, hashes)

	require.NoError(t, s.SetSlashHashes("", st.SlashHashes{"help": "1"}))
	require.NoError(t, s.SetSlashHashes("g1", st.SlashHashes{"ping": "2"}))

	global, err := s.SlashHashes(GlobalScope)
	require.NoError(t, err)
	assert.Equal(t, st.SlashHashes{"help": "1"}, global)

	guild, err := s.SlashHashes("g1")
	require.NoError(t, err)
	assert.Equal(t, st.SlashHashes{"ping": "2"}, guild)
}

func TestStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "datastore.json")
	s, err := New(context.Background(), path, "!", time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.SetPrefix("g1", "%"))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"guild:g1"`)
}

func TestStorage_AutosavesUntilContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	path := filepath.Join(t.TempDir(), "datastore.json")
	s, err := New(ctx, path, "!", 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, s.SetPrefix("g1", "$"))

	assert.Eventually(t, func() bool {
		raw, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(raw), `"guild:g1"`)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, s.Close())
	assert.Error(t, s.SetPrefix("g1", "?"), "writes after Close are refused")
}

func TestStorage_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := New(context.Background(), path, "!", time.Hour)
	assert.Error(t, err)
}
