package dump

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Report summarizes one run: every planned job is accounted for exactly
// once, either in Succeeded or in Failures.
type Report struct {
	TotalJobs      int
	ObjectsWritten int
	Succeeded      int
	Failures       []JobOutcome
}

func (r *Report) fatals() int {
	n := 0
	for _, f := range r.Failures {
		if f.Status == StatusFatal {
			n++
		}
	}
	return n
}

func (r *Report) partials() int {
	return len(r.Failures) - r.fatals()
}

// Err implements the exit policy: nil only when no job failed fatally and
// at most maxPartial jobs ended partially. The error text reflects the
// work actually completed.
func (r *Report) Err(maxPartial int) error {
	fatals, partials := r.fatals(), r.partials()
	if fatals == 0 && partials <= maxPartial {
		return nil
	}
	return fmt.Errorf("%d of %d jobs failed (%d fatal, %d partial), %d objects written", len(r.Failures), r.TotalJobs, fatals, partials, r.ObjectsWritten)
}

// Log prints the summary and one line per failed job, with enough context
// to retry that subset by hand.
func (r *Report) Log() {
	klog.Infof("Dump finished: %d/%d jobs succeeded, %d objects written", r.Succeeded, r.TotalJobs, r.ObjectsWritten)
	for _, f := range r.Failures {
		klog.Errorf("%s: %s after %d objects: %v", f.Job, f.Status, f.ObjectsWritten, f.Err)
	}
}

// aggregator collects outcomes on behalf of the scheduler. It is driven
// by a single goroutine, so no locking.
type aggregator struct {
	r Report
}

func newAggregator() *aggregator {
	return &aggregator{}
}

func (a *aggregator) record(out JobOutcome) {
	a.r.TotalJobs++
	a.r.ObjectsWritten += out.ObjectsWritten
	if out.Status == StatusSuccess {
		a.r.Succeeded++
		return
	}
	a.r.Failures = append(a.r.Failures, out)
}

func (a *aggregator) fatals() int {
	return a.r.fatals()
}

func (a *aggregator) report() *Report {
	return &a.r
}
