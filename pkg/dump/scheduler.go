package dump

import (
	"context"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/klog/v2"
)

const DefaultConcurrency = 20

// ExportFunc receives every listed object of a job, in server order.
type ExportFunc func(ctx context.Context, job EnumerationJob, obj *unstructured.Unstructured) error

// Scheduler executes planned jobs with a bounded number in flight. Jobs
// fail independently: one job's fatal failure never cancels its siblings.
// The only exception is the optional fail-fast threshold, which cancels
// the whole run once too many jobs have failed fatally. Cancelled and
// never-started jobs still produce outcomes, so the report accounts for
// every planned job.
type Scheduler struct {
	lister      *PagedLister
	export      ExportFunc
	concurrency int
	maxFatals   int // fail-fast threshold, 0 disables
}

func NewScheduler(lister *PagedLister, export ExportFunc, concurrency, maxFatals int) *Scheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Scheduler{
		lister:      lister,
		export:      export,
		concurrency: concurrency,
		maxFatals:   maxFatals,
	}
}

func (s *Scheduler) Run(ctx context.Context, jobs []EnumerationJob) *Report {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan JobOutcome)
	agg := newAggregator()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for out := range outcomes {
			agg.record(out)
			if out.Status == StatusFatal && s.maxFatals > 0 && agg.fatals() >= s.maxFatals {
				klog.Errorf("Fail-fast: %d fatal job failures, cancelling remaining jobs", agg.fatals())
				cancel()
			}
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			outcomes <- s.runJob(ctx, job)
			return nil
		})
	}
	g.Wait()
	close(outcomes)
	<-done
	return agg.report()
}

// runJob drives one paginated listing to completion, or to the first
// job-terminal error. Cancellation surfaces as a partial failure unless
// the job had already finished.
func (s *Scheduler) runJob(ctx context.Context, job EnumerationJob) JobOutcome {
	out := JobOutcome{Job: job, Status: StatusSuccess}
	if err := ctx.Err(); err != nil {
		out.Status = StatusPartial
		out.Err = err
		return out
	}

	klog.V(3).Infof("Dumping %s", job)
	err := s.lister.Each(ctx, job.Kind, job.Scope, func(obj *unstructured.Unstructured) error {
		if err := s.export(ctx, job, obj); err != nil {
			return err
		}
		out.ObjectsWritten++
		return nil
	})
	switch {
	case err == nil:
	case isFatal(err):
		out.Status = StatusFatal
		out.Err = err
	default:
		out.Status = StatusPartial
		out.Err = err
	}
	return out
}
