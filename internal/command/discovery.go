package command

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Factory builds one command. Factories run once, at load time.
type Factory func() Command

var (
	declaredMu sync.Mutex
	declared   []Factory
)

// Declare queues a factory for the next Load of Declared. Command packages
// call it from init and the binary blank-imports them.
func Declare(f Factory) {
	declaredMu.Lock()
	defer declaredMu.Unlock()
	declared = append(declared, f)
}

// Declared returns a copy of every factory queued by Declare so far.
func Declared() []Factory {
	declaredMu.Lock()
	defer declaredMu.Unlock()
	return append([]Factory(nil), declared...)
}

// Load builds and registers each factory in turn. A factory that panics or
// yields an invalid command is logged and skipped; the rest still load.
func (r *Registry) Load(factories ...Factory) []error {
	var errs []error
	for i, f := range factories {
		if err := r.loadOne(f); err != nil {
			log.Error().Err(err).Int("index", i).Msg("Failed to load command")
			errs = append(errs, err)
		}
	}
	log.Info().Int("commands", r.Len()).Int("failed", len(errs)).Msg("Commands loaded")
	return errs
}

func (r *Registry) loadOne(f Factory) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrFactoryPanic, rec)
		}
	}()
	if f == nil {
		return ErrNilCommand
	}
	return r.Register(f())
}
