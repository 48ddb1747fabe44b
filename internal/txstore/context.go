package txstore

import (
	"fmt"

	"github.com/google/uuid"
)

// Flag holds boolean transaction-context state bits (spec.md §3,
// "Transaction flags").
type Flag uint32

const (
	// FlagSnapshot marks a transaction as a read-only snapshot: it never
	// commits, and is always discarded, restoring every asserted clause's
	// generations as if the transaction had never run (spec.md §4.6).
	FlagSnapshot Flag = 1 << iota

	// FlagBulk disables per-assert/per-retract update-event emission;
	// updates are instead collected and announced in one sorted batch at
	// commit (spec.md §4.7, "bulk" option).
	FlagBulk
)

// TxContext is one frame of a thread's (possibly nested) transaction stack
// (spec.md §3, "Transaction context"). It owns a private generation region,
// a trail of the clauses it touched, and — while nested — a link to its
// parent frame.
//
// A TxContext is not safe for concurrent use by multiple goroutines: like
// the source's tr_stack, a transaction belongs to the single logical thread
// of control that opened it. Concurrency happens across TxContexts, not
// within one.
type TxContext struct {
	id uuid.UUID

	// genBase/genMax bound this TC's private region: every generation this
	// TC mints for a fresh assert lies in [genBase, genMax).
	genBase Generation
	genMax  Generation

	// generation is the next value this TC will mint from its own region.
	generation Generation

	// genStart is the global generation this TC's reads are pinned to: a
	// clause globally visible at genStart stays visible to this TC for its
	// whole lifetime unless the TC retracts it itself.
	genStart Generation

	// genNest is the generation boundary below which a clause is considered
	// to belong to an already-open ancestor frame rather than to this one;
	// it is the parent's absolute generation (genBase+generation) at the
	// moment this frame was pushed (spec.md §4.6), in the same units as a
	// clause's created field so Retract can compare them directly.
	genNest Generation

	trail *Trail

	// goal identifies the call that opened this transaction, for
	// introspection only (spec.md §4.8, current_transaction/1). The engine
	// that supplies it is out of scope; txstore treats it as opaque.
	goal string

	flags Flag

	parent *TxContext

	runtime *Runtime

	// tableTrail, if attached, is folded/discarded in lockstep with this
	// TC's own clause trail (hooks.go).
	tableTrail TableTrail
}

// ID returns the correlation identifier used by introspection and logging.
func (tc *TxContext) ID() uuid.UUID { return tc.id }

// Goal returns the identifying goal text supplied when the transaction was
// opened.
func (tc *TxContext) Goal() string { return tc.goal }

// Parent returns the enclosing transaction context, or nil at the top of
// the stack.
func (tc *TxContext) Parent() *TxContext { return tc.parent }

// IsSnapshot reports whether this context is a read-only snapshot.
func (tc *TxContext) IsSnapshot() bool { return tc.flags&FlagSnapshot != 0 }

// IsBulk reports whether update announcements are deferred to commit.
func (tc *TxContext) IsBulk() bool { return tc.flags&FlagBulk != 0 }

// Depth reports the nesting depth, 1 for a top-level transaction.
func (tc *TxContext) Depth() int {
	d := 0
	for c := tc; c != nil; c = c.parent {
		d++
	}
	return d
}

// nextGeneration mints the next generation value from this TC's own
// region, used to stamp a freshly asserted clause's created field. Like
// every other TxContext method, it assumes single-threaded access.
//
// It panics if the region is exhausted; callers that can observe exhaustion
// ahead of time (Assert does not — a region holds 2^32-6 values, far more
// than any single transaction plausibly mints) should prefer
// runtimeNextGeneration, which returns an error instead.
func (tc *TxContext) nextGeneration() Generation {
	tc.generation++
	g := tc.genBase + tc.generation
	if g >= tc.genMax {
		panic(fmt.Sprintf("txstore: transaction generation region exhausted (base=%d)", tc.genBase))
	}
	return g
}

// runtimeNextGeneration mints a generation the same way nextGeneration
// does, additionally advancing pred's own local counter so the predicate's
// diagnostic generation tracking (out of scope beyond this hook) stays in
// step with what the transaction actually minted.
//
// It returns ErrGenerationsExhausted instead of panicking, matching the
// source's representation_error("transaction_generations") at the one call
// site (retract) where exhaustion is a reachable, catchable condition
// rather than a programming error.
func (tc *TxContext) runtimeNextGeneration(pred Predicate) (Generation, error) {
	pred.NextLocalGeneration()
	next := tc.generation + 1
	g := tc.genBase + next
	if g >= tc.genMax {
		return 0, fmt.Errorf("%w: predicate %q, region base %d", ErrGenerationsExhausted, pred.Name(), tc.genBase)
	}
	tc.generation = next
	return g, nil
}
