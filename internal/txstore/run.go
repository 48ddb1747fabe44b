package txstore

import (
	"context"
	"fmt"
	"sync"
)

// GoalFunc is the hook this package calls into the (out-of-scope) engine to
// run a transaction's body or its constraint (spec.md §1, "Engine.run(goal)
// -> Result"; §6, "transaction(goal)"/"transaction(goal, constraint,
// lock)"). A non-nil error is treated as goal failure or a goal exception —
// the core does not distinguish the two (spec.md §7 kinds 2 and 3 both
// route to discard); callers that need to tell them apart can use a
// sentinel error or a panic, both of which RunTransaction handles.
type GoalFunc func(tx *TxContext) error

// runOptions configures RunTransaction (spec.md §6, "Options").
type runOptions struct {
	bulk       bool
	constraint GoalFunc
	lock       sync.Locker
}

// RunOption configures one call to RunTransaction.
type RunOption func(*runOptions)

// WithRunBulk defers update-event emission to a single sorted batch
// announced just before commit, instead of inline at each assert/retract
// (spec.md §4.7, the `bulk(true)` option).
func WithRunBulk() RunOption {
	return func(o *runOptions) { o.bulk = true }
}

// WithConstraint attaches a constraint goal, re-evaluated after gen_start is
// re-captured, optionally serialised by lock (spec.md §4, "transaction
// driver"; §6, "transaction(goal, constraint, lock)"). lock may be nil, in
// which case the constraint runs without any additional serialisation
// beyond the generation lock commit itself takes.
func WithConstraint(fn GoalFunc, lock sync.Locker) RunOption {
	return func(o *runOptions) {
		o.constraint = fn
		o.lock = lock
	}
}

func parseRunOptions(opts []RunOption) runOptions {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RunTransaction implements the external transaction(goal) and
// transaction(goal, constraint, lock) entry points (spec.md §6): it begins
// a transaction, runs fn, and — for a plain Transaction, not Snapshot —
// commits on success or discards on failure. With WithConstraint, the
// constraint only runs once fn itself succeeds, under lock if one was
// given, after re-capturing gen_start so the constraint observes the
// freshest possible snapshot (spec.md §4.1's rationale for per-thread
// regions: "the re-capture of gen_start and the commit run under it").
//
// A panic escaping fn or the constraint is recovered just long enough to
// discard tc, then re-raised, matching spec.md §5's "Cancellation": "the
// engine-level exception propagates after rollback completes."
func (rt *Runtime) RunTransaction(ctx context.Context, parent *TxContext, goal string, fn GoalFunc, opts ...RunOption) error {
	o := parseRunOptions(opts)
	flags := Flag(0)
	if o.bulk {
		flags = FlagBulk
	}
	tc, err := rt.begin(ctx, parent, goal, flags)
	if err != nil {
		return err
	}
	return runTransactionBody(tc, fn, o)
}

// RunSnapshot implements the external snapshot(goal) entry point (spec.md
// §6): fn runs against an isolated, read-only transaction that is always
// discarded afterward, success or failure, so the database is left exactly
// as it was (spec.md §4.6, "SNAPSHOT transactions never contribute to
// their parent").
func (rt *Runtime) RunSnapshot(ctx context.Context, parent *TxContext, goal string, fn GoalFunc) (err error) {
	tc, err := rt.begin(ctx, parent, goal, FlagSnapshot)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			tc.Discard()
			panic(r)
		}
	}()
	goalErr := fn(tc)
	if discardErr := tc.Discard(); discardErr != nil && goalErr == nil {
		return discardErr
	}
	return goalErr
}

func runTransactionBody(tc *TxContext, fn GoalFunc, o runOptions) (err error) {
	defer func() {
		if r := recover(); r != nil {
			tc.Discard()
			panic(r)
		}
	}()

	if err = fn(tc); err != nil {
		tc.Discard()
		return err
	}

	if o.constraint != nil {
		if o.lock != nil {
			o.lock.Lock()
			defer o.lock.Unlock()
		}
		tc.recaptureSnapshot()
		if err = o.constraint(tc); err != nil {
			tc.Discard()
			return err
		}
	}

	if tc.IsBulk() {
		if err = tc.announceBulk(); err != nil {
			tc.Discard()
			return err
		}
	}

	if err = tc.Commit(); err != nil {
		tc.Discard()
		return err
	}
	return nil
}

// recaptureSnapshot re-pins gen_start to the runtime's current global
// generation, used by RunTransaction's constraint path just before the
// constraint goal runs (spec.md §4.1).
func (tc *TxContext) recaptureSnapshot() {
	tc.genStart = tc.runtime.clock.Global()
}

// announceBulk gives the installed sink, if it implements
// RejectingUpdateSink, a chance to veto this transaction's pending updates
// before commit (spec.md §4.7: "a failed announcement aborts commit and
// routes to discard"). It only checks — actual delivery to the sink still
// happens from updateLog.record once commit has actually published the
// clauses, so a rejected announcement is never partially delivered.
func (tc *TxContext) announceBulk() error {
	sink := tc.runtime.updates.currentSink()
	rs, ok := sink.(RejectingUpdateSink)
	if !ok {
		return nil
	}
	for _, ev := range tc.PendingUpdates() {
		if err := rs.Check(ev); err != nil {
			return fmt.Errorf("txstore: bulk update announcement rejected: %w", err)
		}
	}
	return nil
}
