package txstore

import (
	"sync/atomic"
)

// ClauseFlag holds boolean clause state bits.
type ClauseFlag uint32

const (
	// ClErased marks a clause as hard-deleted: no reader will ever see it
	// again, but it may still be reachable from an open transaction's
	// trail (which holds a reference), so it cannot be recycled yet.
	ClErased ClauseFlag = 1 << iota
)

// Clause is the persistent per-clause state the core needs. Everything
// about how a clause's body/head is represented, compiled, or indexed is
// out of scope (spec.md §1); this is the MVCC envelope around an opaque
// clause identity.
//
// created/erased are atomic, and publish always stores erased before
// created, so a concurrent lock-free reader that observes the new created
// also observes the matching erased (spec.md §3, "Invariants").
type Clause struct {
	// Predicate is the clause's owning predicate. The predicate table
	// itself is out of scope; only its generation-minting hook is used.
	Predicate Predicate

	created atomic.Uint64
	erased  atomic.Uint64

	// trErasedNo counts the open transactions that have staged a retract
	// of this clause against the global timeline. It is nonzero exactly
	// while at least one TC has a pending (uncommitted) retract trail
	// entry naming this clause.
	trErasedNo atomic.Uint32

	flags atomic.Uint32

	// refs is the reference count held by trails and, notionally, by
	// choice points in the (out-of-scope) engine. The clause store itself
	// only manages the trail's share of this count.
	refs atomic.Int32
}

// NewClause returns a clause that is not yet visible anywhere (created ==
// erased == 0). Callers use Assert to give it a generation.
func NewClause(pred Predicate) *Clause {
	c := &Clause{Predicate: pred}
	c.refs.Store(1) // the caller's own reference
	return c
}

// Created returns the clause's creation generation (acquire load).
func (c *Clause) Created() Generation { return Generation(c.created.Load()) }

// Erased returns the clause's erasure generation, or GenMax if still live
// (acquire load).
func (c *Clause) Erased() Generation { return Generation(c.erased.Load()) }

// setCreated sets the creation generation (release store).
func (c *Clause) setCreated(g Generation) { c.created.Store(uint64(g)) }

// setErased sets the erasure generation (release store).
func (c *Clause) setErased(g Generation) { c.erased.Store(uint64(g)) }

// publish implements the commit/discard double-write rule from spec.md
// §4.4: write erased first, then created, so a reader that observes the
// new created already observes the correct erased (never the converse).
func (c *Clause) publish(created, erased Generation) {
	c.setErased(erased)
	c.setCreated(created)
}

// IsErased reports the CL_ERASED hard-delete flag.
func (c *Clause) IsErased() bool {
	return ClauseFlag(c.flags.Load())&ClErased != 0
}

// markErased sets the CL_ERASED flag.
func (c *Clause) markErased() {
	for {
		old := c.flags.Load()
		if ClauseFlag(old)&ClErased != 0 {
			return
		}
		if c.flags.CompareAndSwap(old, old|uint32(ClErased)) {
			return
		}
	}
}

// TrErasedNo returns the number of open transactions that have staged a
// retract of this clause globally.
func (c *Clause) TrErasedNo() uint32 { return c.trErasedNo.Load() }

// Acquire increments the clause's reference count. A trail entry acquires
// a reference on the clause it names so that a concurrent hard-delete
// cannot free the clause out from under the trail (spec.md §3,
// "Ownership").
func (c *Clause) Acquire() { c.refs.Add(1) }

// Release decrements the clause's reference count, hard-deleting the
// clause (marking CL_ERASED) once no reader holds it any longer.
//
// The core does not itself recycle clause storage — recycling is the
// out-of-scope predicate/clause-indexing subsystem's job — but it does
// mark CL_ERASED so that subsystem knows the clause is free to reclaim.
func (c *Clause) Release() {
	if c.refs.Add(-1) == 0 {
		c.markErased()
	}
}

// Refs reports the current reference count, for diagnostics/tests only.
func (c *Clause) Refs() int32 { return c.refs.Load() }

// retractClause publishes a retract (sets erased) to the given generation;
// it does not touch the reference count or flags. This is the core's analogue of
// the out-of-scope predicate table's retract_clause: it only manages the
// generation/ownership bookkeeping, never the clause list itself.
func retractClause(c *Clause, gen Generation) {
	c.setErased(gen)
}
