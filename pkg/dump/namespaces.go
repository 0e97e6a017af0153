package dump

import (
	"context"
	"fmt"

	"gomodules.xyz/sets"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/klog/v2"
)

var namespaceKind = ResourceKind{
	Version:  "v1",
	Kind:     "Namespace",
	Resource: "namespaces",
}

// ResolveNamespaces returns the sorted set of namespaces namespaced kinds
// will be dumped from. Namespaces are listed through the same paginated
// lister machinery the jobs use, but never with a label selector: a
// selector restricts the object listings, not namespace discovery. When
// the caller requested specific namespaces, each is validated against the
// live set; missing ones are logged and skipped rather than failing the
// run.
func ResolveNamespaces(ctx context.Context, client PageLister, pageSize int64, requested []string) ([]string, error) {
	lister := NewPagedLister(client, pageSize, "")
	live := sets.NewString()
	err := lister.Each(ctx, namespaceKind, ClusterScope(), func(obj *unstructured.Unstructured) error {
		live.Insert(obj.GetName())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}

	if len(requested) == 0 {
		return live.List(), nil
	}
	selected := sets.NewString()
	for _, ns := range requested {
		if !live.Has(ns) {
			klog.Warningf("Namespace %q does not exist, skipping", ns)
			continue
		}
		selected.Insert(ns)
	}
	return selected.List(), nil
}
