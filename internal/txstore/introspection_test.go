package txstore

import (
	"context"
	"testing"
)

func TestCurrentTransactionsEnumeratesOpenFrames(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	tc, err := rt.Transaction(ctx, nil, "goal-a")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
	defer tc.Discard()

	infos := rt.CurrentTransactions()
	if len(infos) != 1 {
		t.Fatalf("CurrentTransactions() len = %d, want 1", len(infos))
	}
	if infos[0].Goal != "goal-a" {
		t.Fatalf("Goal = %q, want %q", infos[0].Goal, "goal-a")
	}
	if infos[0].Parent != nil {
		t.Fatalf("top-level transaction should have no parent")
	}
}

func TestCurrentTransactionsIncludesNestedChain(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	parent, err := rt.Transaction(ctx, nil, "outer")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
	child, err := rt.Transaction(ctx, parent, "inner")
	if err != nil {
		t.Fatalf("nested Transaction() error: %v", err)
	}
	defer parent.Discard()
	defer child.Discard()

	infos := rt.CurrentTransactions()
	if len(infos) != 2 {
		t.Fatalf("CurrentTransactions() len = %d, want 2", len(infos))
	}

	var sawChild, sawParent bool
	for _, info := range infos {
		switch info.Goal {
		case "inner":
			sawChild = true
			if info.Parent == nil {
				t.Errorf("inner transaction should report a parent")
			}
			if info.Depth != 2 {
				t.Errorf("inner transaction Depth = %d, want 2", info.Depth)
			}
		case "outer":
			sawParent = true
			if info.Depth != 1 {
				t.Errorf("outer transaction Depth = %d, want 1", info.Depth)
			}
		}
	}
	if !sawChild || !sawParent {
		t.Fatalf("expected both inner and outer in %+v", infos)
	}
}

func TestDumpPredicate(t *testing.T) {
	pred := newFakePredicate("p/1")
	live := NewClause(pred)
	live.publish(1, GenMax)

	dead := NewClause(pred)
	dead.publish(1, 2)
	dead.Release() // drop the last ref to mark CL_ERASED

	snaps := DumpPredicate([]*Clause{live, dead})
	if len(snaps) != 2 {
		t.Fatalf("DumpPredicate() len = %d, want 2", len(snaps))
	}
	if snaps[0].Dead {
		t.Errorf("live clause snapshot should not be Dead")
	}
	if !snaps[1].Dead {
		t.Errorf("dead clause snapshot should be Dead")
	}
}
