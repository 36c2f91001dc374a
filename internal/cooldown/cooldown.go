// Package cooldown tracks per-user, per-command cooldown windows.
//
// A window slides from the last successful use: once it has fully elapsed
// the user may run the command again straight away. Entries exist only
// while their window is open; expired ones are dropped on access and by
// Sweep.
package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type key struct {
	command string
	user    string
}

type entry struct {
	at     time.Time
	window time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.at) >= e.window
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	entries map[key]entry
	now     func() time.Time
}

type Option func(*Tracker)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		entries: make(map[key]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Check reports whether userID is still inside command's window and, if
// so, how long is left. Both come from a single clock reading, so a
// blocked result always carries a remaining time in (0, window].
// A window <= 0 never blocks.
func (t *Tracker) Check(userID, command string, window time.Duration) (remaining time.Duration, blocked bool) {
	if window <= 0 {
		return 0, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	e, ok := t.lookup(key{command, userID}, window, now)
	if !ok {
		return 0, false
	}
	return window - now.Sub(e.at), true
}

// IsBlocked reports whether userID is still inside command's window.
func (t *Tracker) IsBlocked(userID, command string, window time.Duration) bool {
	_, blocked := t.Check(userID, command, window)
	return blocked
}

// Remaining returns how long userID must still wait, or zero.
func (t *Tracker) Remaining(userID, command string, window time.Duration) time.Duration {
	remaining, _ := t.Check(userID, command, window)
	return remaining
}

// MarkUsed starts (or restarts) the window for userID on command.
func (t *Tracker) MarkUsed(userID, command string, window time.Duration) {
	if window <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[key{command, userID}] = entry{at: t.now(), window: window}
}

// lookup returns the live entry for k, evicting it if it has expired.
// The window passed by the caller wins over the stored one so a changed
// cooldown takes effect immediately. Callers hold t.mu.
func (t *Tracker) lookup(k key, window time.Duration, now time.Time) (entry, bool) {
	e, ok := t.entries[k]
	if !ok {
		return entry{}, false
	}
	e.window = window
	if e.expired(now) {
		delete(t.entries, k)
		return entry{}, false
	}
	return e, true
}

// Sweep drops every expired entry and returns how many were removed.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for k, e := range t.entries {
		if e.expired(now) {
			delete(t.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries, expired or not.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Run sweeps every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired cooldowns cleared")
			}
		}
	}
}
