package dump

import (
	"context"
	"fmt"
	"path/filepath"

	shell "gomodules.xyz/go-sh"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

var podKind = ResourceKind{Version: "v1", Kind: "Pod", Resource: "pods", Namespaced: true}

// Options configures one dump run.
type Options struct {
	Config    *rest.Config
	OutputDir string

	Namespaces   []string // empty means all
	IncludeKinds []string // GroupKind strings, empty means all
	ExcludeKinds []string
	Selector     string // label selector applied to every listing

	PageSize           int64
	Concurrency        int
	MaxFatalFailures   int // fail-fast threshold, 0 disables
	MaxPartialFailures int // exit policy, see Report.Err

	Sanitize bool
	PodLogs  bool

	Storage Writer // defaults to the atomic file writer
}

// Run executes the whole pipeline: discovery, namespace resolution, job
// planning, bounded concurrent enumeration, export, aggregation. A non-nil
// error means the run could not start or produce a catalog at all;
// per-job failures are reported through the Report instead.
func Run(ctx context.Context, opt Options) (*Report, error) {
	// The bounded job concurrency is the backpressure mechanism; client-go's
	// own rate limiter would fight it.
	opt.Config.QPS = 1e6
	opt.Config.Burst = 1e6

	disc, err := discovery.NewDiscoveryClientForConfig(opt.Config)
	if err != nil {
		return nil, err
	}
	dyn, err := dynamic.NewForConfig(opt.Config)
	if err != nil {
		return nil, err
	}

	layout := Layout{Root: opt.OutputDir}
	storage := opt.Storage
	if storage == nil {
		storage = NewAtomicFileWriter()
	}

	version, err := disc.ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("connecting to cluster: %w", err)
	}
	klog.Infof("Connected to Kubernetes %s", version.GitVersion)
	if err := writeRootMetadata(layout.ClusterVersion(), version, storage); err != nil {
		return nil, err
	}
	writeClusterInfo(layout, storage)

	kinds, err := Catalog(disc, NewKindFilter(opt.IncludeKinds, opt.ExcludeKinds))
	if err != nil {
		return nil, err
	}
	klog.Infof("Discovered %d resource kinds", len(kinds))
	if err := writeRootMetadata(layout.APIResources(), kinds, storage); err != nil {
		return nil, err
	}

	pages := NewDynamicPageLister(dyn)
	namespaces, err := ResolveNamespaces(ctx, pages, opt.PageSize, opt.Namespaces)
	if err != nil {
		return nil, err
	}
	lister := NewPagedLister(pages, opt.PageSize, opt.Selector)

	jobs := Plan(kinds, namespaces)
	klog.Infof("Planned %d jobs across %d namespaces", len(jobs), len(namespaces))

	exporter := &Exporter{Layout: layout, Storage: storage, Sanitize: opt.Sanitize}
	export := func(_ context.Context, job EnumerationJob, obj *unstructured.Unstructured) error {
		return exporter.Export(job, obj)
	}
	if opt.PodLogs {
		kc, err := kubernetes.NewForConfig(opt.Config)
		if err != nil {
			return nil, err
		}
		logs := &PodLogDumper{Client: kc, Layout: layout, Storage: storage}
		export = func(ctx context.Context, job EnumerationJob, obj *unstructured.Unstructured) error {
			if err := exporter.Export(job, obj); err != nil {
				return err
			}
			if job.Kind.GroupVersionKind() == podKind.GroupVersionKind() {
				logs.Dump(ctx, job.Scope, obj)
			}
			return nil
		}
	}

	sched := NewScheduler(lister, export, opt.Concurrency, opt.MaxFatalFailures)
	report := sched.Run(ctx, jobs)
	report.Log()
	return report, nil
}

// writeRootMetadata serializes one of the dump-root metadata files. A
// value that cannot be marshaled only costs that file, not the run; a
// failed write is a run-scoped storage problem and propagates.
func writeRootMetadata(path string, v interface{}, storage Writer) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		klog.Warningf("Cannot marshal %s, skipping: %v", filepath.Base(path), err)
		return nil
	}
	return storage.Write(path, data)
}

// writeClusterInfo captures `kubectl cluster-info` next to the dump, when
// kubectl is available. Purely informational, never fails the run.
func writeClusterInfo(layout Layout, storage Writer) {
	session := shell.NewSession()
	session.SetEnv("TERM", "dumb")
	out, err := session.Command("kubectl", "cluster-info").Output()
	if err != nil {
		klog.V(2).Infof("Skipping cluster-info capture: %v", err)
		return
	}
	if err := storage.Write(layout.ClusterInfo(), out); err != nil {
		klog.Warningf("Writing cluster-info: %v", err)
	}
}
