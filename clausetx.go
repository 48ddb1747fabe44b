// Package clausetx implements a transactional clause store: a
// generation-based MVCC visibility scheme supporting nestable, isolated
// transactions and a read-only snapshot variant, in the spirit of ISO
// Prolog's logical-update-view semantics.
//
// The store itself only tracks the MVCC envelope around a clause (its
// created/erased generations and reference count); clause compilation,
// indexing, and the predicate database are a host application's concern —
// Predicate is the one hook this package needs from it.
package clausetx

import (
	"context"
	"log"
	"sync"

	"github.com/clausetx/clausetx/internal/txstore"
)

// Generation is a 64-bit logical timestamp; see internal/txstore for the
// clock and region layout it partitions.
type Generation = txstore.Generation

// Predicate is the minimal collaborator a clause's owner must implement:
// a name for diagnostics, and a private monotonic counter advanced on every
// retract.
type Predicate = txstore.Predicate

// LocalClock is an embeddable Predicate-local generation counter.
type LocalClock = txstore.LocalClock

// Clause is the MVCC envelope around one opaque clause identity.
type Clause = txstore.Clause

// NewClause returns a clause owned by pred, not yet visible anywhere.
func NewClause(pred Predicate) *Clause { return txstore.NewClause(pred) }

// Position selects where Assert places a new clause.
type Position = txstore.Position

const (
	PositionStart = txstore.PositionStart
	PositionEnd   = txstore.PositionEnd
)

// Tx is one transaction context, top-level or nested. Obtain one from
// Store.Transaction, Store.Snapshot, or the package-level Transaction/Snapshot
// for a nested child.
type Tx = txstore.TxContext

// TransactionInfo is a read-only snapshot of one open Tx, as returned by
// Store.CurrentTransactions.
type TransactionInfo = txstore.TransactionInfo

// UpdateEvent, UpdateKind, and UpdateSink describe and deliver committed
// clause mutations; see Store.SetUpdateSink.
type (
	UpdateEvent = txstore.UpdateEvent
	UpdateKind  = txstore.UpdateKind
	UpdateSink  = txstore.UpdateSink
)

const (
	UpdateAsserted  = txstore.UpdateAsserted
	UpdateRetracted = txstore.UpdateRetracted
)

// ClauseSnapshot is one row of DumpPredicate's output.
type ClauseSnapshot = txstore.ClauseSnapshot

// DumpPredicate reports the MVCC envelope of every clause passed in.
func DumpPredicate(clauses []*Clause) []ClauseSnapshot { return txstore.DumpPredicate(clauses) }

// Sentinel errors; use errors.Is.
var (
	ErrGenerationsExhausted = txstore.ErrGenerationsExhausted
	ErrRegionsExhausted     = txstore.ErrRegionsExhausted
	ErrNoTransaction        = txstore.ErrNoTransaction
	ErrNotNested            = txstore.ErrNotNested
	ErrSnapshotCommit       = txstore.ErrSnapshotCommit
)

// Store is the top-level handle an application holds: the shared
// generation clock, thread-region pool, update log, and janitor.
type Store struct {
	rt *txstore.Runtime
}

// NewStore builds a Store. The zero Config is valid.
func NewStore(cfg Config) *Store {
	return &Store{rt: txstore.NewRuntime(cfg)}
}

// Start launches background maintenance (the janitor, if configured).
func (s *Store) Start() error { return s.rt.Start() }

// Stop halts background maintenance.
func (s *Store) Stop() { s.rt.Stop() }

// Global returns the store's current global generation, the right reading
// generation for a caller with no open transaction.
func (s *Store) Global() Generation { return s.rt.Global() }

// Visible reports whether c is visible right now, outside any transaction.
func (s *Store) Visible(c *Clause) bool { return s.rt.Visible(c) }

// Transaction opens a new top-level transaction. WithGoal sets the text that
// identifies the call for introspection; it need not be unique.
func (s *Store) Transaction(ctx context.Context, opts ...Option) (*Tx, error) {
	o := parseOptions(opts)
	if o.bulk {
		return s.rt.TransactionBulk(ctx, nil, o.goal)
	}
	return s.rt.Transaction(ctx, nil, o.goal)
}

// Snapshot opens a read-only top-level transaction that can only ever be
// discarded, never committed.
func (s *Store) Snapshot(ctx context.Context, opts ...Option) (*Tx, error) {
	return s.rt.Snapshot(ctx, nil, parseOptions(opts).goal)
}

// Transaction opens a nested child transaction under parent.
func Transaction(ctx context.Context, parent *Tx, store *Store, opts ...Option) (*Tx, error) {
	o := parseOptions(opts)
	if o.bulk {
		return store.rt.TransactionBulk(ctx, parent, o.goal)
	}
	return store.rt.Transaction(ctx, parent, o.goal)
}

// Snapshot opens a nested, read-only child transaction under parent.
func Snapshot(ctx context.Context, parent *Tx, store *Store, opts ...Option) (*Tx, error) {
	return store.rt.Snapshot(ctx, parent, parseOptions(opts).goal)
}

// Assert and Retract are free functions rather than Store methods because
// they operate on a transaction context, not the store itself — mirroring
// the source's transaction_assert_clause/transaction_retract_clause taking
// the transaction, not the global state, as their primary argument.

// Assert stages c for assertion within tx, visible to tx immediately and
// to every other reader only once tx commits.
func Assert(tx *Tx, c *Clause, pos Position) { tx.Assert(c, pos) }

// Retract stages c for retraction within tx.
func Retract(tx *Tx, c *Clause) (bool, error) { return tx.Retract(c) }

// VisibleIn reports whether c is visible at generation gen under tx (nil
// for no transaction).
func VisibleIn(c *Clause, gen Generation, tx *Tx) bool { return txstore.Visible(c, gen, tx) }

// Commit folds tx's writes into its parent or the global timeline.
func Commit(tx *Tx) error { return tx.Commit() }

// Discard reverts every write tx staged.
func Discard(tx *Tx) error { return tx.Discard() }

// CurrentTransactions enumerates every open transaction frame, the
// current_transaction/1 analogue.
func (s *Store) CurrentTransactions() []TransactionInfo { return s.rt.CurrentTransactions() }

// PendingUpdates returns the bounded recent-update history, the
// transaction_updates/1 analogue.
func (s *Store) PendingUpdates() []UpdateEvent { return s.rt.PendingUpdates() }

// SetUpdateSink installs the sink every future commit announces to.
func (s *Store) SetUpdateSink(sink UpdateSink) { s.rt.SetUpdateSink(sink) }

// SetLogger replaces the store's diagnostic logger, which reports janitor
// sweeps. Defaults to a *log.Logger writing to stderr.
func (s *Store) SetLogger(l *log.Logger) { s.rt.SetLogger(l) }

// GoalFunc is the engine hook Run/RunSnapshot call into: the (out-of-scope)
// language runtime's goal execution, modelled as an opaque function from an
// open transaction to an error (spec.md §1, "Engine.run(goal) -> Result").
type GoalFunc = txstore.GoalFunc

// RunOption configures a call to Store.Run.
type RunOption = txstore.RunOption

// WithRunBulk defers update-event emission to a single sorted batch
// announced just before commit (spec.md §4.7, the `bulk(true)` option).
func WithRunBulk() RunOption { return txstore.WithRunBulk() }

// WithConstraint attaches a constraint goal re-evaluated, under lock (which
// may be nil), after gen_start is re-captured — the transaction(goal,
// constraint, lock) external interface (spec.md §6). The overall
// transaction only commits if both fn and the constraint succeed.
func WithConstraint(fn GoalFunc, lock sync.Locker) RunOption {
	return txstore.WithConstraint(fn, lock)
}

// RejectingUpdateSink is an UpdateSink that can additionally veto a
// bulk-mode transaction's pending updates just before commit (spec.md §7,
// "Update-listener rejection during bulk announce"); a rejection routes the
// transaction to Discard instead of Commit, exactly like a failed
// constraint goal.
type RejectingUpdateSink = txstore.RejectingUpdateSink

// Run implements the transaction(goal)/transaction(goal, constraint, lock)
// external interfaces (spec.md §6): it opens a top-level transaction, runs
// fn, and commits on success or discards on failure. A panic escaping fn
// (or the constraint, if one is attached via WithConstraint) is recovered
// just long enough to discard the transaction, then re-raised.
func (s *Store) Run(ctx context.Context, goal string, fn GoalFunc, opts ...RunOption) error {
	return s.rt.RunTransaction(ctx, nil, goal, fn, opts...)
}

// RunNested runs fn as a nested child transaction under parent, merging
// into parent on success or discarding just the child frame on failure
// (spec.md §4.6, "Nesting and merge").
func (s *Store) RunNested(ctx context.Context, parent *Tx, goal string, fn GoalFunc, opts ...RunOption) error {
	return s.rt.RunTransaction(ctx, parent, goal, fn, opts...)
}

// RunSnapshot implements the external snapshot(goal) entry point (spec.md
// §6): fn runs against an isolated, read-only transaction that is always
// discarded afterward, leaving the database exactly as it was.
func (s *Store) RunSnapshot(ctx context.Context, goal string, fn GoalFunc) error {
	return s.rt.RunSnapshot(ctx, nil, goal, fn)
}

// TxPendingUpdates returns the sorted, filtered update list for tx itself —
// the transaction_updates/1 analogue scoped to one open transaction (spec.md
// §4.8), as opposed to Store.PendingUpdates' runtime-wide bounded history.
func TxPendingUpdates(tx *Tx) []UpdateEvent { return tx.PendingUpdates() }
