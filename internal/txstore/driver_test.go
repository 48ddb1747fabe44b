package txstore

import (
	"context"
	"sync"
	"testing"
)

func TestTransactionCommitMakesClauseGloballyVisible(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	tc, err := rt.Transaction(ctx, nil, "assert p")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}

	pred := newFakePredicate("p/1")
	c := NewClause(pred)
	tc.Assert(c, PositionEnd)

	if rt.Visible(c) {
		t.Fatalf("clause should not be globally visible before commit")
	}

	if err := tc.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	if !rt.Visible(c) {
		t.Fatalf("clause should be globally visible after commit")
	}
}

func TestTransactionDiscardStampsDeadGeneration(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	tc, err := rt.Transaction(ctx, nil, "assert then abandon")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}

	c := NewClause(newFakePredicate("p/1"))
	tc.Assert(c, PositionEnd)

	if err := tc.Discard(); err != nil {
		t.Fatalf("Discard() error: %v", err)
	}

	if rt.Visible(c) {
		t.Fatalf("discarded clause should never become globally visible")
	}
	if !c.IsErased() {
		t.Fatalf("discarded clause should be marked CL_ERASED")
	}
	if g := c.Created(); g != reservedDeadDiscardedAsserted {
		t.Fatalf("Created() = %d, want reservedDeadDiscardedAsserted", g)
	}
}

func TestSnapshotCannotCommit(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	tc, err := rt.Snapshot(ctx, nil, "read only")
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if err := tc.Commit(); err == nil {
		t.Fatalf("Commit() on a snapshot should fail")
	}
	if err := tc.Discard(); err != nil {
		t.Fatalf("Discard() error: %v", err)
	}
}

func TestNestedCommitMergesIntoParent(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	parent, err := rt.Transaction(ctx, nil, "parent")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}

	child, err := rt.Transaction(ctx, parent, "child")
	if err != nil {
		t.Fatalf("nested Transaction() error: %v", err)
	}

	c := NewClause(newFakePredicate("p/1"))
	child.Assert(c, PositionEnd)

	if err := child.Commit(); err != nil {
		t.Fatalf("child Commit() error: %v", err)
	}

	// Not yet globally visible: only merged into the parent's trail.
	if rt.Visible(c) {
		t.Fatalf("clause should not be globally visible before the parent commits")
	}
	if _, ok := parent.trail.lookup(c); !ok {
		t.Fatalf("child's trail entry should have merged into the parent")
	}

	if err := parent.Commit(); err != nil {
		t.Fatalf("parent Commit() error: %v", err)
	}
	if !rt.Visible(c) {
		t.Fatalf("clause should be globally visible once the parent commits")
	}
}

func TestRegionReleasedAfterTopLevelCommit(t *testing.T) {
	rt := NewRuntime(Config{MaxRegions: 1})
	ctx := context.Background()

	tc, err := rt.Transaction(ctx, nil, "first")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
	if err := tc.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	// With only one region configured, this call would block forever if
	// the first transaction's region were not released back to the pool.
	tc2, err := rt.Transaction(ctx, nil, "second")
	if err != nil {
		t.Fatalf("second Transaction() error: %v", err)
	}
	if err := tc2.Discard(); err != nil {
		t.Fatalf("Discard() error: %v", err)
	}
}

func TestConcurrentTransactionsAcrossRegions(t *testing.T) {
	rt := NewRuntime(Config{MaxRegions: 32})
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	clauses := make([]*Clause, n)
	for i := 0; i < n; i++ {
		clauses[i] = NewClause(newFakePredicate("p/1"))
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc, err := rt.Transaction(ctx, nil, "concurrent")
			if err != nil {
				t.Errorf("Transaction() error: %v", err)
				return
			}
			tc.Assert(clauses[i], PositionEnd)
			if err := tc.Commit(); err != nil {
				t.Errorf("Commit() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	for i, c := range clauses {
		if !rt.Visible(c) {
			t.Errorf("clause %d not visible after concurrent commit", i)
		}
	}
}
