package txstore

import "testing"

func TestTrailAssertThenLookup(t *testing.T) {
	rt := NewRuntime(Config{})
	tc := newRootContext(rt, 0, 0, "t")

	c := NewClause(newFakePredicate("p/1"))
	tc.Assert(c, PositionEnd)

	entry, ok := tc.trail.lookup(c)
	if !ok {
		t.Fatalf("expected a trail entry after Assert")
	}
	if entry.kind != trailKindAssertz {
		t.Fatalf("entry.kind = %v, want trailKindAssertz", entry.kind)
	}
	if c.Refs() != 2 { // NewClause's own ref, plus the trail's
		t.Fatalf("Refs() = %d, want 2", c.Refs())
	}
}

func TestTrailAssertaTag(t *testing.T) {
	rt := NewRuntime(Config{})
	tc := newRootContext(rt, 0, 0, "t")

	c := NewClause(newFakePredicate("p/1"))
	tc.Assert(c, PositionStart)

	entry, _ := tc.trail.lookup(c)
	if entry.kind != trailKindAsserta {
		t.Fatalf("entry.kind = %v, want trailKindAsserta", entry.kind)
	}
}

func TestRetractGloballyVisibleClause(t *testing.T) {
	rt := NewRuntime(Config{})
	pred := newFakePredicate("p/1")
	c := NewClause(pred)
	c.publish(1, GenMax)

	tc := newRootContext(rt, 0, 0, "t")
	ok, err := tc.Retract(c)
	if err != nil || !ok {
		t.Fatalf("Retract() = (%v, %v), want (true, nil)", ok, err)
	}
	if n := c.TrErasedNo(); n != 1 {
		t.Fatalf("TrErasedNo() = %d, want 1", n)
	}
	entry, ok := tc.trail.lookup(c)
	if !ok || entry.kind != trailKindRetract {
		t.Fatalf("trail entry = (%+v, %v), want kind trailKindRetract", entry, ok)
	}
}

func TestRetractAncestorAssertedClause(t *testing.T) {
	rt := NewRuntime(Config{})
	parent := newRootContext(rt, 0, 0, "parent")

	c := NewClause(newFakePredicate("p/1"))
	parent.Assert(c, PositionEnd)

	child := newChildContext(parent, 0, "child")
	ok, err := child.Retract(c)
	if err != nil || !ok {
		t.Fatalf("Retract() = (%v, %v), want (true, nil)", ok, err)
	}
	if c.Erased() == GenMax {
		t.Fatalf("clause asserted by an ancestor should be erased immediately for the child")
	}
	entry, ok := child.trail.lookup(c)
	if !ok || entry.kind != trailKindNestedRetract {
		t.Fatalf("trail entry = (%+v, %v), want kind trailKindNestedRetract", entry, ok)
	}
}

func TestRetractSameTCAssertedClause(t *testing.T) {
	rt := NewRuntime(Config{})
	tc := newRootContext(rt, 0, 0, "t")

	c := NewClause(newFakePredicate("p/1"))
	tc.Assert(c, PositionEnd)

	ok, err := tc.Retract(c)
	if err != nil || !ok {
		t.Fatalf("Retract() = (%v, %v), want (true, nil)", ok, err)
	}
	entry, ok := tc.trail.lookup(c)
	if !ok || entry.kind != trailKindSelfRetract {
		t.Fatalf("trail entry = (%+v, %v), want kind trailKindSelfRetract", entry, ok)
	}
	// Decision (a) from spec.md §9: no reference double-counted, since
	// Retract did not Acquire() again for this case.
	if c.Refs() != 2 {
		t.Fatalf("Refs() = %d, want 2 (no extra Acquire on self-retract)", c.Refs())
	}
}
