// Package txstore implements the transactional clause store: a
// generation-based MVCC visibility scheme with per-thread transaction
// regions, layered under nestable, isolated transactions (and a snapshot
// variant) in the style of ISO logical-update semantics.
//
// What: a monotonic 64-bit generation clock partitioned into one global
// region and 2^31 per-thread transaction regions, a clause record carrying
// created/erased generations, a visibility oracle, and the trail/driver
// machinery that folds a transaction's private writes back into the global
// timeline on commit (or reverts them on discard).
// How: readers compare a clause's created/erased pair against a reading
// generation; writers inside a transaction mint generations from their own
// private region so concurrent transactions never need to coordinate except
// at commit time, when a single lock serializes the rewrite into the global
// region.
// Why: lets many goroutines assert/retract concurrently against a shared
// predicate database with snapshot-isolated reads, while keeping the
// uncontended path (a read, or a write inside an active transaction) entirely
// lock-free.
package txstore

import "sync/atomic"

// Generation is a 64-bit logical timestamp. Values below GenTxBase are the
// global region; values at or above GenTxBase identify a per-thread
// transaction region.
type Generation uint64

const (
	// GenTxBase is the first generation value reserved for transaction
	// regions. Values below it are globally visible generations.
	GenTxBase Generation = 1 << 63

	// GenTxSize is the number of generation values reserved per thread.
	GenTxSize Generation = 1 << 32

	// GenTxRegions is the number of distinct thread regions the clock
	// supports: (2^64 - GenTxBase) / GenTxSize == 2^31.
	GenTxRegions = 1 << 31

	// GenTxReserved is the number of sentinel values reserved at the end
	// of every transaction region; they are never minted as real
	// generations (see reservedDead* below).
	GenTxReserved Generation = 6

	// GenMax denotes "never erased".
	GenMax Generation = ^Generation(0)
)

// Reserved dead-clause generations used when discarding asserted clauses
// (spec.md §4.5, §6). These are small global-region values, so they never
// collide with a transaction region. They can coincide with ordinary global
// generations (the clock starts at 1 and the first commit publishes 2);
// that is harmless because each stamps created == erased, and a clause with
// created == erased is invisible at every generation.
const (
	reservedDeadDiscardedFresh    Generation = 2 // ASSERTA/ASSERTZ, commit-time CL_ERASED
	reservedDeadDiscardedAsserted Generation = 3 // ASSERTA/ASSERTZ, discard, not yet erased
	reservedDeadDiscardedErased   Generation = 4 // ASSERTA/ASSERTZ, discard, already erased
)

// regionBase returns the first generation value of thread region tid.
func regionBase(tid uint32) Generation {
	return GenTxBase + Generation(tid)*GenTxSize
}

// regionMax returns the exclusive upper bound of mintable generations for
// the region beginning at base: it and the values above it in the region
// are the reserved sentinels.
func regionMax(base Generation) Generation {
	return base + GenTxSize - GenTxReserved
}

// regionOf reports the thread region a generation belongs to, and whether
// it lies in a transaction region at all.
func regionOf(g Generation) (tid uint32, ok bool) {
	if g < GenTxBase {
		return 0, false
	}
	return uint32((g - GenTxBase) / GenTxSize), true
}

// Clock is the monotonically increasing global generation counter G. A
// single instance is shared by every Runtime-managed predicate.
type Clock struct {
	g atomic.Uint64
}

// NewClock returns a clock whose first global generation is 1.
func NewClock() *Clock {
	c := &Clock{}
	c.g.Store(1)
	return c
}

// Global returns the current global generation (acquire load: callers that
// need a stable snapshot should pair this with the generation lock, as
// commit does).
func (c *Clock) Global() Generation {
	return Generation(c.g.Load())
}

// advanceTo publishes a new global generation. Callers must hold the
// generation lock (Runtime.genLock) while calling this, matching the
// source's PL_LOCK(L_GENERATION)/PL_UNLOCK(L_GENERATION) protocol.
func (c *Clock) advanceTo(g Generation) {
	c.g.Store(uint64(g))
}

// Predicate is the minimal collaborator the core needs from the (external,
// out-of-scope) predicate database: a private, monotonically increasing
// local clock advanced on every retract, and a name for diagnostics.
// The clause-compilation, indexing, and storage concerns around Predicate
// are entirely out of scope for this package (spec.md §1).
type Predicate interface {
	// Name identifies the predicate for diagnostics and error messages.
	Name() string

	// NextLocalGeneration advances and returns the predicate's own local
	// generation counter. It is independent of the global clock.
	// TxContext.runtimeNextGeneration calls it on every retract but stamps
	// the clause from the transaction's own region, not from this value.
	NextLocalGeneration() Generation
}

// LocalClock is an embeddable atomic counter satisfying the private half of
// Predicate. Real predicate implementations (out of scope here) embed it.
type LocalClock struct {
	gen atomic.Uint64
}

// NextLocalGeneration implements part of Predicate.
func (l *LocalClock) NextLocalGeneration() Generation {
	return Generation(l.gen.Add(1))
}
