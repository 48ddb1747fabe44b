package txstore

import (
	"context"
	"testing"
)

type recordingSink struct {
	events []UpdateEvent
}

func (s *recordingSink) OnUpdate(ev UpdateEvent) {
	s.events = append(s.events, ev)
}

func TestPendingUpdatesAfterCommit(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	sink := &recordingSink{}
	rt.SetUpdateSink(sink)

	tc, err := rt.Transaction(ctx, nil, "assert two")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
	c1 := NewClause(newFakePredicate("p/1"))
	c2 := NewClause(newFakePredicate("q/2"))
	tc.Assert(c1, PositionEnd)
	tc.Assert(c2, PositionEnd)

	if err := tc.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	pending := rt.PendingUpdates()
	if len(pending) != 2 {
		t.Fatalf("PendingUpdates() len = %d, want 2", len(pending))
	}
	for _, ev := range pending {
		if ev.Kind != UpdateAsserted {
			t.Errorf("event kind = %v, want UpdateAsserted", ev.Kind)
		}
	}

	if len(sink.events) != 2 {
		t.Fatalf("sink received %d events, want 2", len(sink.events))
	}
}

func TestUpdateHistoryBounded(t *testing.T) {
	rt := NewRuntime(Config{UpdateHistoryLimit: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tc, err := rt.Transaction(ctx, nil, "one assert")
		if err != nil {
			t.Fatalf("Transaction() error: %v", err)
		}
		tc.Assert(NewClause(newFakePredicate("p/1")), PositionEnd)
		if err := tc.Commit(); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
	}

	if got := len(rt.PendingUpdates()); got != 3 {
		t.Fatalf("PendingUpdates() len = %d, want 3", got)
	}
}

func TestSelfRetractProducesNoUpdateEvent(t *testing.T) {
	rt := NewRuntime(Config{})
	ctx := context.Background()

	tc, err := rt.Transaction(ctx, nil, "assert then retract")
	if err != nil {
		t.Fatalf("Transaction() error: %v", err)
	}
	c := NewClause(newFakePredicate("p/1"))
	tc.Assert(c, PositionEnd)
	if _, err := tc.Retract(c); err != nil {
		t.Fatalf("Retract() error: %v", err)
	}
	if err := tc.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	if got := len(rt.PendingUpdates()); got != 0 {
		t.Fatalf("PendingUpdates() len = %d, want 0 for an assert+retract that cancels out", got)
	}
}
