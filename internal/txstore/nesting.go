package txstore

import "github.com/google/uuid"

// newRootContext opens a top-level transaction frame owning thread region
// tid, pinned to the runtime's current global generation (spec.md §4.1,
// §4.6).
func newRootContext(rt *Runtime, tid uint32, flags Flag, goal string) *TxContext {
	base := regionBase(tid)
	return &TxContext{
		id:       uuid.New(),
		genBase:  base,
		genMax:   regionMax(base),
		genStart: rt.clock.Global(),
		genNest:  0,
		trail:    newTrail(),
		goal:     goal,
		flags:    flags,
		runtime:  rt,
	}
}

// newChildContext pushes a nested frame onto parent's stack, sharing
// parent's region and read snapshot but starting its own trail, so a child
// commit/discard can be folded or reverted independently of its siblings
// (spec.md §4.6, "Nesting").
func newChildContext(parent *TxContext, flags Flag, goal string) *TxContext {
	return &TxContext{
		id:         uuid.New(),
		genBase:    parent.genBase,
		genMax:     parent.genMax,
		genStart:   parent.genStart,
		genNest:    parent.genBase + parent.generation,
		generation: parent.generation,
		trail:      newTrail(),
		goal:       goal,
		flags:      flags,
		parent:     parent,
		runtime:    parent.runtime,
	}
}

// Commit folds tc's pending writes into its parent (if nested) or the
// global timeline (if top-level) and releases tc's thread region when the
// whole stack unwinds. It returns ErrSnapshotCommit for a snapshot and nil
// otherwise.
//
// Commit on a snapshot transaction is a programming error: snapshots only
// discard (spec.md §4.6).
func (tc *TxContext) Commit() error {
	if tc.IsSnapshot() {
		return ErrSnapshotCommit
	}
	rt := tc.runtime
	if tc.parent != nil {
		tc.mergeIntoParent()
	} else {
		tc.commitToGlobal(rt)
	}
	rt.popFrame(tc)
	return nil
}

// Discard reverts every write tc staged, stamping asserted clauses dead and
// restoring retracted ones, and releases tc's thread region when the whole
// stack unwinds (spec.md §4.5, §4.6).
func (tc *TxContext) Discard() error {
	rt := tc.runtime
	if tc.parent != nil {
		tc.discardNested()
	} else {
		tc.discard()
	}
	rt.popFrame(tc)
	return nil
}
