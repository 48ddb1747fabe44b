package txstore

// commitToGlobal folds tc's trail back into the global timeline under a
// single generation-lock critical section, implementing the commit table of
// spec.md §4.4:
//
//	ASSERTA/ASSERTZ      -> clause becomes globally visible at genCommit,
//	                        unless a concurrent committer already marked it
//	                        CL_ERASED, in which case it is stamped dead
//	                        (reserved value 2) instead of resurrected
//	NESTED_RETRACT       -> clause (asserted by an ancestor) erased at genCommit
//	RETRACT              -> globally-visible clause erased at genCommit,
//	                        trErasedNo released
//	SELF_RETRACT          -> asserted and retracted within tc; created and
//	                        erased both moved to genCommit, so the clause
//	                        stays invisible at every generation
//
// Every published write follows the erased-then-created double-write rule
// (Clause.publish) so a concurrent lock-free reader never observes a torn
// pair, and the whole batch is published before the global clock advances
// past genCommit, so no reader can see a post-commit generation without
// also seeing every clause this commit touched.
func (tc *TxContext) commitToGlobal(rt *Runtime) {
	rt.genLock.Lock()
	defer rt.genLock.Unlock()

	genCommit := rt.clock.Global() + 1

	tc.trail.each(func(c *Clause, e trailEntry) {
		switch e.kind {
		case trailKindAsserta, trailKindAssertz:
			if c.IsErased() {
				// The clause was hard-deleted (CL_ERASED) by a concurrent
				// committer while this trail entry was still pending — the
				// second committer to a contended clause must skip
				// re-publishing it (spec.md §4.4, §5) and instead stamp it
				// to the reserved dead value so it never becomes visible.
				c.publish(reservedDeadDiscardedFresh, reservedDeadDiscardedFresh)
			} else {
				c.publish(genCommit, GenMax)
			}

		case trailKindNestedRetract:
			c.setErased(genCommit)

		case trailKindRetract:
			c.setErased(genCommit)
			c.trErasedNo.Add(^uint32(0)) // -1

		case trailKindSelfRetract:
			// The clause was never visible outside tc. Move both
			// generations out of tc's region so a later transaction that
			// reuses the region cannot see it.
			c.publish(genCommit, genCommit)
		}
		c.Release()
	})

	rt.clock.advanceTo(genCommit)
	rt.updates.record(tc, genCommit)

	if tc.tableTrail != nil {
		tc.tableTrail.Commit(genCommit)
	}
}

// mergeIntoParent folds a nested, non-snapshot transaction's trail into its
// parent's trail instead of the global timeline (spec.md §4.6, "Nesting").
// No generation is minted: the clauses stay in the (shared) generation
// region; trail ownership moves up one frame and the parent's generation
// counter advances to the child's, so the parent's own eventual commit or
// discard will finish the job.
func (tc *TxContext) mergeIntoParent() {
	parent := tc.parent
	tc.trail.each(func(c *Clause, e trailEntry) {
		// A child's SELF_RETRACT is only a no-op when the clause was also
		// created by the child; once reparented under the grandparent's
		// timeline, the same trail tag documents the fact for the parent.
		parent.trail.set(c, e)
	})
	// The child minted from the shared region; the parent continues past
	// those values so it sees the merged clauses and never re-mints them.
	if tc.generation > parent.generation {
		parent.generation = tc.generation
	}
	if tc.tableTrail != nil && parent.tableTrail == nil {
		parent.tableTrail = tc.tableTrail
	}
}
