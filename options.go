package clausetx

// Option configures a call to Store.Transaction/Snapshot, mirroring the
// source's transaction_options/scan_options descriptor tables (spec.md §4,
// "Supplemented Features" — see SPEC_FULL.md).
type Option func(*txOptions)

type txOptions struct {
	goal string
	bulk bool
}

func parseOptions(opts []Option) txOptions {
	var o txOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithGoal sets the identifying goal text a transaction reports through
// introspection. Optional; defaults to "".
func WithGoal(goal string) Option {
	return func(o *txOptions) { o.goal = goal }
}

// WithBulk defers update-event emission to a single sorted batch at
// commit, instead of announcing inline as each assert/retract happens
// (spec.md §4.7, "bulk" option).
func WithBulk() Option {
	return func(o *txOptions) { o.bulk = true }
}
