package command

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoName       = errors.New("command has no name")
	ErrNoHandler    = errors.New("command has neither a message nor a slash handler")
	ErrFactoryPanic = errors.New("command factory panicked")
	ErrNilCommand   = errors.New("command factory returned nil")
)

// Normalize returns the lookup key for a command name or alias.
// Names and aliases match case-insensitively on every surface.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Registry maps command names and aliases to commands.
//
// Canonical names are last-write-wins: a later command with the same name
// replaces the earlier one. Aliases are first-write-wins: an alias already
// claimed, or equal to a canonical name, is not reassigned.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
	order    []string
	disabled map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
		disabled: make(map[string]bool),
	}
}

// Disable keeps the named commands out of the registry. It only affects
// commands registered afterwards.
func (r *Registry) Disable(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.disabled[Normalize(n)] = true
	}
}

// Validate reports why cmd cannot be registered, or nil.
func Validate(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if strings.TrimSpace(cmd.Name()) == "" {
		return ErrNoName
	}
	if text, slash := Surfaces(cmd); !text && !slash {
		return fmt.Errorf("%s: %w", cmd.Name(), ErrNoHandler)
	}
	return nil
}

// Register validates cmd and adds it. Disabled commands are skipped
// without error.
func (r *Registry) Register(cmd Command) error {
	if err := Validate(cmd); err != nil {
		return err
	}

	name := Normalize(cmd.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disabled[name] {
		log.Info().Str("command", name).Msg("Command disabled, skipping")
		return nil
	}

	if _, exists := r.commands[name]; exists {
		log.Warn().Str("command", name).Msg("Duplicate command name, later registration replaces earlier")
	} else {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
	if owner, ok := r.aliases[name]; ok {
		log.Debug().Str("alias", name).Str("owner", owner).Msg("Command name takes over alias")
		delete(r.aliases, name)
	}

	for _, alias := range cmd.Aliases() {
		alias = Normalize(alias)
		if alias == "" || alias == name {
			continue
		}
		if owner, taken := r.aliases[alias]; taken {
			log.Debug().Str("alias", alias).Str("owner", owner).Str("command", name).Msg("Alias already claimed")
			continue
		}
		if _, isName := r.commands[alias]; isName {
			log.Debug().Str("alias", alias).Str("command", name).Msg("Alias shadows a command name")
			continue
		}
		r.aliases[alias] = name
	}
	return nil
}

// Resolve looks token up as a canonical name first, then as an alias.
func (r *Registry) Resolve(token string) (Command, bool) {
	token = Normalize(token)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.commands[token]; ok {
		return cmd, true
	}
	if name, ok := r.aliases[token]; ok {
		cmd, ok := r.commands[name]
		return cmd, ok
	}
	return nil, false
}

// AliasOwner returns the normalized canonical name an alias points at.
func (r *Registry) AliasOwner(alias string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.aliases[Normalize(alias)]
	return name, ok
}

// ActiveAliases returns the declared aliases of cmd that actually resolve
// to it. Aliases lost to an earlier claim are left out.
func (r *Registry) ActiveAliases(cmd Command) []string {
	name := Normalize(cmd.Name())

	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []string
	for _, alias := range cmd.Aliases() {
		if r.aliases[Normalize(alias)] == name {
			list = append(list, alias)
		}
	}
	return list
}

// All returns every command in first-registration order.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.commands[name])
	}
	return list
}

// ByCategory returns the commands tagged with category in registration order.
func (r *Registry) ByCategory(category Category) []Command {
	var list []Command
	for _, cmd := range r.All() {
		if cmd.Category() == category {
			list = append(list, cmd)
		}
	}
	return list
}

// Categories returns every category in use, in order of first appearance.
func (r *Registry) Categories() []Category {
	seen := map[Category]bool{}
	var list []Category
	for _, cmd := range r.All() {
		if !seen[cmd.Category()] {
			seen[cmd.Category()] = true
			list = append(list, cmd.Category())
		}
	}
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
