package txstore

// Visible implements the visibility oracle (spec.md §4.2).
//
// Outside any transaction, a clause is visible at generation gen iff
// created <= gen < erased. Inside a transaction context tc, two additional
// rules compose with the base rule:
//
//   - a clause created in tc's own region is visible exactly when the base
//     rule holds against tc's current generation (it was asserted by this
//     TC, so created/erased already encode the right answer);
//   - a clause that was globally visible at tc.genStart remains visible to
//     tc unless tc itself staged a retract of it, detected via the trail.
//
// A clause created outside tc's own region (global, or some other TC's
// region) is never governed by the base rule directly: that would let tc
// observe another transaction's still-uncommitted assert, or a global
// assert published after gen_start, breaking snapshot isolation (spec.md
// §1, §4.2, §8 scenario 2). Such a clause is visible to tc only through
// the snapshot rule above.
func Visible(c *Clause, gen Generation, tc *TxContext) bool {
	created := c.Created()
	erased := c.Erased()

	if tc == nil {
		return created <= gen && gen < erased
	}

	if created <= tc.genStart && tc.genStart < erased {
		if c.TrErasedNo() > 0 {
			if entry, ok := tc.trail.lookup(c); ok && entry.kind == trailKindRetract {
				if entry.lgen+tc.genBase <= gen {
					return false
				}
			}
		}
		return true
	}

	if created < tc.genBase {
		return false
	}

	return created <= gen && gen < erased
}
