package txstore

// discard reverts tc's trail, implementing the discard table of spec.md
// §4.5. Unlike commit, discard never touches the global generation clock:
// every clause tc asserted is stamped dead with one of the reserved
// sentinel generations (generation.go) rather than folded into the visible
// timeline, and every clause tc retracted is restored to its pre-retract
// state.
//
//	ASSERTA/ASSERTZ, not yet erased  -> created/erased := reservedDeadDiscardedAsserted
//	ASSERTA/ASSERTZ, already erased  -> created/erased := reservedDeadDiscardedErased
//	NESTED_RETRACT                   -> erased restored to GenMax (clause un-retracted)
//	RETRACT                          -> trErasedNo released, no generation touched
//	                                     (the clause was never actually stamped)
//	SELF_RETRACT                      -> same as the assert cases: the clause
//	                                     never escaped tc's own region
//
// discard is always what a snapshot transaction ends with (spec.md §4.6):
// Commit on a snapshot returns ErrSnapshotCommit, so discard is its only
// exit path, never commitToGlobal.
//
// If tc is not in bulk mode and a sink is installed, discard also
// synthesises a rollback event (Rollback: true) per non-NESTED_RETRACT,
// non-self-retract entry, matching spec.md §4.5's "synthesise a rollback
// event per non-NESTED_RETRACT entry (asserta/assertz/retract with
// phase = ROLLBACK)". Delivery is best-effort: this Go rendition's
// UpdateSink.OnUpdate has no error return (only the bulk pre-commit path
// uses the checked RejectingUpdateSink), so spec.md §7's "hook error during
// discard is collected and returned as the overall result" is simplified
// to "discard always completes regardless of what the sink does", which is
// the part of that rule every caller can actually observe.
func (tc *TxContext) discard() {
	sink := tc.runtime.updates.currentSink()
	if tc.IsBulk() {
		sink = nil
	}

	tc.trail.each(func(c *Clause, e trailEntry) {
		switch e.kind {
		case trailKindAsserta, trailKindAssertz, trailKindSelfRetract:
			createdBefore := c.Created()
			if c.IsErased() {
				c.publish(reservedDeadDiscardedErased, reservedDeadDiscardedErased)
			} else {
				c.publish(reservedDeadDiscardedAsserted, reservedDeadDiscardedAsserted)
			}
			c.markErased()
			if sink != nil && e.kind != trailKindSelfRetract {
				sink.OnUpdate(UpdateEvent{Predicate: c.Predicate.Name(), Kind: UpdateAsserted, Generation: createdBefore, Rollback: true})
			}

		case trailKindNestedRetract:
			c.setErased(GenMax)

		case trailKindRetract:
			c.trErasedNo.Add(^uint32(0)) // -1
			if sink != nil {
				sink.OnUpdate(UpdateEvent{Predicate: c.Predicate.Name(), Kind: UpdateRetracted, Generation: tc.genBase + e.lgen, Rollback: true})
			}
		}
		c.Release()
	})

	if tc.tableTrail != nil {
		tc.tableTrail.Discard()
	}
}

// discardNested reverts a nested transaction exactly the way a top-level
// discard does: nested frames mint from the same per-thread region as their
// parent and discard only ever deals in per-clause generation fields, so no
// special-casing is needed beyond calling discard.
func (tc *TxContext) discardNested() {
	tc.discard()
}
