package txstore

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables a deployment loads once at startup. The zero
// value is valid and picks the same defaults LoadConfig fills in for any
// field a YAML document omits.
type Config struct {
	// MaxRegions bounds how many per-thread generation regions the runtime
	// will ever hand out concurrently. The protocol supports 2^31; this
	// exists to let a deployment cap concurrent open transactions to
	// something its workload actually needs.
	MaxRegions uint32 `yaml:"max_regions"`

	// UpdateHistoryLimit bounds how many UpdateEvent rows PendingUpdates
	// retains.
	UpdateHistoryLimit int `yaml:"update_history_limit"`

	// JanitorInterval sets how often the background sweep looks for
	// already-erased clauses to reclaim. Zero disables the janitor.
	JanitorInterval time.Duration `yaml:"janitor_interval"`

	// Reclaimer, if set, is asked to recycle CL_ERASED clause storage on
	// every janitor sweep. Not YAML-loadable; set programmatically.
	Reclaimer Reclaimer `yaml:"-"`
}

func (c Config) withDefaults() Config {
	if c.MaxRegions == 0 {
		c.MaxRegions = 4096
	}
	if c.UpdateHistoryLimit == 0 {
		c.UpdateHistoryLimit = 1024
	}
	return c
}

// LoadConfig reads a YAML config document from path. A missing file is not
// an error: callers get an all-defaults Config, matching how optional
// config layers are usually wired in (fall back silently, fail loudly on a
// malformed file that does exist).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}.withDefaults(), nil
		}
		return Config{}, fmt.Errorf("txstore: reading config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("txstore: parsing config %q: %w", path, err)
	}
	return cfg.withDefaults(), nil
}
