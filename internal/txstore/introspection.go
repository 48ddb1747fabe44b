package txstore

import "github.com/google/uuid"

// TransactionInfo is one row of the current_transaction/1 enumeration
// (spec.md §4.8): a snapshot of one open frame's identity, without
// exposing the frame itself (which is not safe to share across
// goroutines).
type TransactionInfo struct {
	ID       uuid.UUID
	Parent   *uuid.UUID
	Goal     string
	Depth    int
	Snapshot bool
	Bulk     bool
	GenBase  Generation
	GenStart Generation
}

func describe(tc *TxContext) TransactionInfo {
	info := TransactionInfo{
		ID:       tc.id,
		Goal:     tc.goal,
		Depth:    tc.Depth(),
		Snapshot: tc.IsSnapshot(),
		Bulk:     tc.IsBulk(),
		GenBase:  tc.genBase,
		GenStart: tc.genStart,
	}
	if tc.parent != nil {
		id := tc.parent.id
		info.Parent = &id
	}
	return info
}

// CurrentTransactions enumerates every currently open transaction frame
// across every thread region, innermost frame first within each region's
// ancestor chain — the Go analogue of current_transaction/1's nondeterministic
// enumeration.
func (rt *Runtime) CurrentTransactions() []TransactionInfo {
	var out []TransactionInfo
	for _, innermost := range rt.roots.snapshot() {
		for tc := innermost; tc != nil; tc = tc.parent {
			out = append(out, describe(tc))
		}
	}
	return out
}

// ClauseSnapshot is one row of a predicate generation dump: the always-
// compiled counterpart to the source's debug-only pred_generations/1
// (spec.md §9 / original_source supplement — see DESIGN.md).
type ClauseSnapshot struct {
	Created     Generation
	Erased      Generation
	ErasedCount uint32
	Refs        int32
	Dead        bool
}

// DumpPredicate reports the MVCC envelope of every clause a caller passes
// in, for diagnostics. The predicate's actual clause list is out of scope
// for this package (spec.md §1); callers that own one pass it in directly.
func DumpPredicate(clauses []*Clause) []ClauseSnapshot {
	out := make([]ClauseSnapshot, len(clauses))
	for i, c := range clauses {
		out[i] = ClauseSnapshot{
			Created:     c.Created(),
			Erased:      c.Erased(),
			ErasedCount: c.TrErasedNo(),
			Refs:        c.Refs(),
			Dead:        c.IsErased(),
		}
	}
	return out
}
