package txstore

import "errors"

// Error sentinels (spec.md §7, "Error Handling Design"). Callers should use
// errors.Is against these, never string-match messages.
var (
	// ErrGenerationsExhausted is returned when a transaction's private
	// generation region has no values left to mint. It is the Go analogue
	// of the source's representation_error("transaction_generations").
	ErrGenerationsExhausted = errors.New("txstore: transaction generations exhausted")

	// ErrRegionsExhausted is returned when every per-thread generation
	// region is already assigned and the caller's context is done before
	// one is released, so a new transaction root cannot be opened (spec.md
	// §5, "Concurrency & Resource Model").
	ErrRegionsExhausted = errors.New("txstore: transaction regions exhausted")

	// ErrNoTransaction reports that no transaction context is active. No
	// function in this package returns it.
	ErrNoTransaction = errors.New("txstore: no active transaction")

	// ErrNotNested reports a transaction context that is no longer open.
	// Commit and Discard do not detect a context that was already closed
	// and never return it.
	ErrNotNested = errors.New("txstore: transaction context is not open")

	// ErrSnapshotCommit is returned when Commit is called on a snapshot
	// transaction; snapshots only ever discard (spec.md §4.6).
	ErrSnapshotCommit = errors.New("txstore: snapshot transactions cannot commit")
)
