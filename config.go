package clausetx

import "github.com/clausetx/clausetx/internal/txstore"

// Config is the YAML-loadable set of runtime tunables (max concurrent
// transaction regions, update history depth, janitor cadence).
type Config = txstore.Config

// Reclaimer is implemented by a host application's clause/predicate
// storage to recycle clauses the janitor has marked erased.
type Reclaimer = txstore.Reclaimer

// LoadConfig reads a YAML config document from path, falling back to
// documented defaults if the file does not exist.
func LoadConfig(path string) (Config, error) {
	return txstore.LoadConfig(path)
}
