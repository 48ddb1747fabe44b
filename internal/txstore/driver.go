package txstore

import (
	"context"
	"sync"
)

// Runtime is the clause store: the shared generation clock, the per-thread
// region registry, and the update/janitor machinery layered on top of it
// (spec.md §2, "System Overview"). One Runtime is shared by every goroutine
// that asserts, retracts, or reads through it.
type Runtime struct {
	clock   *Clock
	genLock sync.Mutex

	regions *regionAllocator
	roots   *roots

	updates *updateLog

	janitor *Janitor

	config Config

	log *logger
}

// NewRuntime builds a Runtime ready to accept transactions. cfg supplies
// the tunables a deployment normally loads from YAML (config.go); the zero
// Config is usable and picks the documented defaults.
func NewRuntime(cfg Config) *Runtime {
	cfg = cfg.withDefaults()
	rt := &Runtime{
		clock:   NewClock(),
		regions: newRegionAllocator(cfg.MaxRegions),
		roots:   newRoots(),
		updates: newUpdateLog(cfg.UpdateHistoryLimit),
		config:  cfg,
		log:     defaultLogger(),
	}
	if cfg.JanitorInterval > 0 {
		rt.janitor = newJanitor(rt, cfg.JanitorInterval)
	}
	return rt
}

// Start launches background maintenance (currently just the janitor, if
// configured). It is a no-op if no janitor interval was configured.
func (rt *Runtime) Start() error {
	if rt.janitor == nil {
		return nil
	}
	return rt.janitor.Start()
}

// Stop halts background maintenance.
func (rt *Runtime) Stop() {
	if rt.janitor != nil {
		rt.janitor.Stop()
	}
}

// Global returns the runtime's current global generation, suitable as a
// reading generation for a caller with no open transaction.
func (rt *Runtime) Global() Generation { return rt.clock.Global() }

// popFrame is called by Commit/Discard once tc's own writes have been
// folded or reverted. It either hands tc's thread region back to the pool
// (tc was the outermost frame) or exposes tc's parent as the new innermost
// open frame for that region.
func (rt *Runtime) popFrame(tc *TxContext) {
	tid, ok := regionOf(tc.genBase)
	if !ok {
		return
	}
	if tc.parent == nil {
		rt.roots.set(tid, nil)
		rt.regions.release(tid)
		return
	}
	rt.roots.set(tid, tc.parent)
}

// Transaction opens a top-level or nested transaction. If parent is nil, a
// thread region is acquired from the pool (blocking until ctx is done if
// none is free) and a root frame is pushed; if parent is non-nil, a child
// frame sharing parent's region is pushed instead (spec.md §4.6, External
// Interfaces).
//
// The caller must eventually call Commit or Discard on the returned
// context exactly once.
func (rt *Runtime) Transaction(ctx context.Context, parent *TxContext, goal string) (*TxContext, error) {
	return rt.begin(ctx, parent, goal, 0)
}

// Snapshot opens a read-only transaction that can never commit: every
// write made against it (if any are attempted — normally none are) is
// reverted when the caller calls Discard (spec.md §4.6).
func (rt *Runtime) Snapshot(ctx context.Context, parent *TxContext, goal string) (*TxContext, error) {
	return rt.begin(ctx, parent, goal, FlagSnapshot)
}

// TransactionBulk is Transaction with update-event emission deferred to a
// single sorted batch at commit (spec.md §4.7, "bulk" option).
func (rt *Runtime) TransactionBulk(ctx context.Context, parent *TxContext, goal string) (*TxContext, error) {
	return rt.begin(ctx, parent, goal, FlagBulk)
}

func (rt *Runtime) begin(ctx context.Context, parent *TxContext, goal string, flags Flag) (*TxContext, error) {
	if parent != nil {
		child := newChildContext(parent, flags, goal)
		tid, ok := regionOf(child.genBase)
		if ok {
			rt.roots.set(tid, child)
		}
		return child, nil
	}

	tid, err := rt.regions.acquire(ctx)
	if err != nil {
		return nil, err
	}
	root := newRootContext(rt, tid, flags, goal)
	rt.roots.set(tid, root)
	return root, nil
}

// Visible reports whether clause c is visible at the runtime's current
// global generation, outside any transaction.
func (rt *Runtime) Visible(c *Clause) bool {
	return Visible(c, rt.clock.Global(), nil)
}
