package txstore

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps clauses already marked CL_ERASED, handing
// them back to the (out-of-scope) predicate/clause storage for recycling.
// It is the one background job this package runs, grounded on the
// teacher's cron-backed Scheduler but repurposed from SQL job execution to
// a single fixed GC sweep.
type Janitor struct {
	rt   *Runtime
	cron *cron.Cron
	spec string
}

// newJanitor builds a janitor that sweeps every interval.
func newJanitor(rt *Runtime, interval time.Duration) *Janitor {
	loc, _ := time.LoadLocation("UTC")
	return &Janitor{
		rt:   rt,
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		spec: intervalToCronSpec(interval),
	}
}

// intervalToCronSpec renders a duration as a "@every" cron spec, the
// simplest of robfig/cron's supported descriptors.
func intervalToCronSpec(d time.Duration) string {
	if d <= 0 {
		d = time.Minute
	}
	return "@every " + d.String()
}

// Start registers and launches the sweep job.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.spec, j.sweep)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the sweep job, waiting for any in-flight run to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// sweep asks the configured reclaimer (if any) to recycle every clause the
// runtime has already marked CL_ERASED. The clause/predicate storage
// itself is out of scope for this package (spec.md §1); the janitor only
// owns the cadence.
func (j *Janitor) sweep() {
	if j.rt.config.Reclaimer == nil {
		return
	}
	n := j.rt.config.Reclaimer.ReclaimErased()
	if n > 0 {
		j.rt.log.Printf("txstore: janitor reclaimed %d erased clauses", n)
	}
}

// Reclaimer is the hook a host application implements to actually recycle
// CL_ERASED clause storage; txstore only decides when to ask.
type Reclaimer interface {
	ReclaimErased() int
}
