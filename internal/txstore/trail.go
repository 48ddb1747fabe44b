package txstore

import "sync"

// trailKind tags a trail entry (spec.md §3, "Trail entry"). Unlike the
// source, which overloads a single uintptr_t with both small integers and
// reserved pointer-sized sentinels, this is a plain tagged variant — spec.md
// §9 calls this out explicitly ("eliminate collision risk by construction").
type trailKind uint8

const (
	trailKindAsserta trailKind = iota
	trailKindAssertz
	trailKindNestedRetract
	trailKindRetract     // lgen holds the local generation offset
	trailKindSelfRetract // assert-then-retract within the same TC; see Retract
)

// trailEntry is the value half of a trail mapping (clause -> tag).
type trailEntry struct {
	kind trailKind
	lgen Generation // only meaningful when kind == trailKindRetract
}

// Trail is the per-transaction-context log of clause mutations, keyed by
// clause. It exclusively owns one reference on every clause it names
// (spec.md §3, "Ownership").
type Trail struct {
	mu      sync.Mutex
	entries map[*Clause]trailEntry
	// order preserves insertion order for deterministic diagnostics; the
	// actual commit/discard/update-collection passes do not depend on it
	// (they sort or are order-independent), but tests benefit from stable
	// iteration.
	order []*Clause
}

func newTrail() *Trail {
	return &Trail{}
}

func (t *Trail) ensure() {
	if t.entries == nil {
		t.entries = make(map[*Clause]trailEntry, 16)
	}
}

// lookup returns the trail entry for a clause, if any.
func (t *Trail) lookup(c *Clause) (trailEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[c]
	return e, ok
}

func (t *Trail) set(c *Clause, e trailEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure()
	if _, exists := t.entries[c]; !exists {
		t.order = append(t.order, c)
	}
	t.entries[c] = e
}

// Len reports the number of distinct clauses named by the trail.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// each calls fn once per (clause, entry) pair in insertion order. fn must
// not mutate the trail.
func (t *Trail) each(fn func(c *Clause, e trailEntry)) {
	t.mu.Lock()
	clauses := make([]*Clause, len(t.order))
	copy(clauses, t.order)
	entries := make(map[*Clause]trailEntry, len(t.entries))
	for k, v := range t.entries {
		entries[k] = v
	}
	t.mu.Unlock()

	for _, c := range clauses {
		fn(c, entries[c])
	}
}

// Position selects where an asserted clause is placed relative to its
// predicate's other clauses (out of scope here beyond the trail tag it
// produces).
type Position int

const (
	PositionStart Position = iota
	PositionEnd
)

// Assert stamps clause.created with tc's next private generation and
// clause.erased with GenMax, acquires a trail reference, and records an
// ASSERTA/ASSERTZ trail entry (spec.md §4.3).
func (tc *TxContext) Assert(c *Clause, pos Position) {
	gen := tc.nextGeneration()
	c.publish(gen, GenMax)

	kind := trailKindAssertz
	if pos == PositionStart {
		kind = trailKindAsserta
	}
	c.Acquire()
	tc.trail.set(c, trailEntry{kind: kind})

	if !tc.IsBulk() {
		tc.announceInline(c, UpdateAsserted, gen)
	}
}

// Retract implements the three-way branch of spec.md §4.3.
//
//   - a globally visible clause (created < tc.genBase) stages a retract:
//     the clause's erased generation is not touched yet, only the trail
//     and tr_erased_no record that this TC considers it gone;
//   - a clause asserted by a still-open ancestor transaction
//     (created <= tc.genNest) is retracted immediately, visible within the
//     TC family, staged as NESTED_RETRACT so commit/discard can finish the
//     job;
//   - a clause asserted by this very TC is, under the (a) resolution of
//     spec.md §9's open question, still recorded — as trailKindSelfRetract
//     — rather than left untracked as the source's bare `return FALSE`
//     leaves it. Like the NESTED_RETRACT branch, it mints a fresh TC-local
//     generation and stamps erased to it, so the clause is immediately
//     invisible to subsequent reads within this same TC (spec.md §4.3,
//     "the clause's created/erased already encode the change"); commit and
//     discard both treat it as "never escaped this TC's region" without
//     touching the global trErasedNo count (see commit.go, discard.go,
//     DESIGN.md).
func (tc *TxContext) Retract(c *Clause) (bool, error) {
	created := c.Created()

	switch {
	case created < tc.genBase:
		lgen, err := tc.runtimeNextGeneration(c.Predicate)
		if err != nil {
			return false, err
		}
		c.trErasedNo.Add(1)
		c.Acquire()
		tc.trail.set(c, trailEntry{kind: trailKindRetract, lgen: lgen - tc.genBase})
		if !tc.IsBulk() {
			tc.announceInline(c, UpdateRetracted, lgen)
		}
		return true, nil

	case created <= tc.genNest:
		egen, err := tc.runtimeNextGeneration(c.Predicate)
		if err != nil {
			return false, err
		}
		c.setErased(egen)
		c.Acquire()
		tc.trail.set(c, trailEntry{kind: trailKindNestedRetract})
		if !tc.IsBulk() {
			tc.announceInline(c, UpdateRetracted, egen)
		}
		return true, nil

	default:
		// Asserted by this TC. Decision (a) from spec.md §9: always
		// record the retract (trailKindSelfRetract, distinct from
		// trailKindRetract so commit does not double-count trErasedNo,
		// which was never incremented for a clause this same TC created)
		// rather than the source's bare `return FALSE` for this case.
		//
		// erased is still GenMax from Assert, so a fresh TC-local
		// generation has to be minted and stamped here — otherwise the
		// clause stays visible to this very TC for the rest of its
		// lifetime, which is not a retract at all.
		egen, err := tc.runtimeNextGeneration(c.Predicate)
		if err != nil {
			return false, err
		}
		c.setErased(egen)
		tc.trail.set(c, trailEntry{kind: trailKindSelfRetract})
		// No announceInline call here: a self-retract never produces an
		// externally visible event in any mode (spec.md §4.7's
		// collect_updates filters trailKindSelfRetract out entirely), so
		// there is nothing to announce beyond what Assert already
		// announced for the clause's (now-undone) creation.
		return true, nil
	}
}
