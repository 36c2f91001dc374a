package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keshon/commandbot/internal/command"
)

// Overrides is the optional operator file adjusting commands without a
// rebuild.
type Overrides struct {
	Cooldowns map[string]float64 `yaml:"cooldowns"` // canonical name -> seconds
	Disabled  []string           `yaml:"disabled"`
}

// LoadOverrides reads path. A missing file yields empty overrides.
func LoadOverrides(path string) (*Overrides, error) {
	o := &Overrides{}
	if path == "" {
		return o, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("parsing overrides file: %w", err)
	}

	for name, secs := range o.Cooldowns {
		if secs < 0 {
			return nil, fmt.Errorf("cooldown for %q cannot be negative", name)
		}
	}
	return o, nil
}

// CooldownDurations returns the overrides keyed by normalized name.
func (o *Overrides) CooldownDurations() map[string]time.Duration {
	out := make(map[string]time.Duration, len(o.Cooldowns))
	for name, secs := range o.Cooldowns {
		out[command.Normalize(name)] = time.Duration(secs * float64(time.Second))
	}
	return out
}
