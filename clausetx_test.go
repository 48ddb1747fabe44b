package clausetx

import (
	"context"
	"errors"
	"testing"
)

type testPredicate struct {
	LocalClock
	name string
}

func (p *testPredicate) Name() string { return p.name }

func TestStoreAssertCommitVisible(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	tx, err := store.Transaction(ctx, WithGoal("assert fact"))
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}

	c := NewClause(&testPredicate{name: "fact/1"})
	Assert(tx, c, PositionEnd)

	if store.Visible(c) {
		t.Fatalf("clause should not be visible before commit")
	}
	if err := Commit(tx); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if !store.Visible(c) {
		t.Fatalf("clause should be visible after commit")
	}
}

func TestStoreSnapshotDiscardOnly(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	tx, err := store.Snapshot(ctx, WithGoal("read only"))
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if err := Commit(tx); err == nil {
		t.Fatalf("Commit() on a snapshot should fail")
	}
	if err := Discard(tx); err != nil {
		t.Fatalf("Discard() error: %v", err)
	}
}

func TestNestedTransactionViaFreeFunctions(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	parent, err := store.Transaction(ctx)
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
	child, err := Transaction(ctx, parent, store)
	if err != nil {
		t.Fatalf("nested Transaction() error: %v", err)
	}

	c := NewClause(&testPredicate{name: "nested/1"})
	Assert(child, c, PositionEnd)

	if err := Commit(child); err != nil {
		t.Fatalf("child Commit() error: %v", err)
	}
	if store.Visible(c) {
		t.Fatalf("clause should not be visible until the parent commits too")
	}
	if err := Commit(parent); err != nil {
		t.Fatalf("parent Commit() error: %v", err)
	}
	if !store.Visible(c) {
		t.Fatalf("clause should be visible once the parent commits")
	}
}

func TestBulkOptionRecordsUpdatesAtCommit(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	tx, err := store.Transaction(ctx, WithBulk(), WithGoal("bulk load"))
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		Assert(tx, NewClause(&testPredicate{name: "bulk/1"}), PositionEnd)
	}
	if err := Commit(tx); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if got := len(store.PendingUpdates()); got != 3 {
		t.Fatalf("PendingUpdates() len = %d, want 3", got)
	}
}

func TestStoreRunCommitsOnSuccess(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	var c *Clause
	err := store.Run(ctx, "assert fact", func(tx *Tx) error {
		c = NewClause(&testPredicate{name: "fact/1"})
		Assert(tx, c, PositionEnd)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !store.Visible(c) {
		t.Fatalf("clause should be visible once Run commits")
	}
}

func TestStoreRunDiscardsOnConstraintFailure(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	wantErr := errors.New("constraint failed")
	var c *Clause
	err := store.Run(ctx, "assert fact", func(tx *Tx) error {
		c = NewClause(&testPredicate{name: "fact/1"})
		Assert(tx, c, PositionEnd)
		return nil
	}, WithConstraint(func(tx *Tx) error { return wantErr }, nil))

	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}
	if store.Visible(c) {
		t.Fatalf("clause should not be visible after a failed constraint")
	}
}

func TestStoreRunNestedMergesIntoParent(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	parent, err := store.Transaction(ctx, WithGoal("parent"))
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}

	var c *Clause
	err = store.RunNested(ctx, parent, "child", func(tx *Tx) error {
		c = NewClause(&testPredicate{name: "nested/1"})
		Assert(tx, c, PositionEnd)
		return nil
	})
	if err != nil {
		t.Fatalf("RunNested() error: %v", err)
	}
	if store.Visible(c) {
		t.Fatalf("clause should not be visible until the parent commits too")
	}
	if err := Commit(parent); err != nil {
		t.Fatalf("parent Commit() error: %v", err)
	}
	if !store.Visible(c) {
		t.Fatalf("clause should be visible once the parent commits")
	}
}

func TestStoreRunSnapshotNeverPersists(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	var c *Clause
	err := store.RunSnapshot(ctx, "peek", func(tx *Tx) error {
		c = NewClause(&testPredicate{name: "fact/1"})
		Assert(tx, c, PositionEnd)
		return nil
	})
	if err != nil {
		t.Fatalf("RunSnapshot() error: %v", err)
	}
	if store.Visible(c) {
		t.Fatalf("a snapshot's writes must never become globally visible")
	}
}
