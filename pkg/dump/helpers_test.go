package dump_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kubedump.dev/kubedump/pkg/dump"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func newObj(apiVersion, kind, namespace, name string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name": name,
		},
	}}
	if namespace != "" {
		obj.SetNamespace(namespace)
	}
	return obj
}

type pageResp struct {
	items []*unstructured.Unstructured
	next  string
	err   error
}

// scriptedLister serves a fixed sequence of page responses and records the
// continuation tokens and label selectors it was asked for.
type scriptedLister struct {
	mu        sync.Mutex
	script    []pageResp
	tokens    []string
	selectors []string
	calls     int
}

func (f *scriptedLister) ListPage(_ context.Context, _ dump.ResourceKind, _ string, opts metav1.ListOptions) (*unstructured.UnstructuredList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, opts.Continue)
	f.selectors = append(f.selectors, opts.LabelSelector)
	if f.calls >= len(f.script) {
		return nil, fmt.Errorf("unexpected call #%d", f.calls+1)
	}
	resp := f.script[f.calls]
	f.calls++
	if resp.err != nil {
		return nil, resp.err
	}
	list := &unstructured.UnstructuredList{}
	list.SetContinue(resp.next)
	for _, o := range resp.items {
		list.Items = append(list.Items, *o)
	}
	return list, nil
}

func fastLister(client dump.PageLister) *dump.PagedLister {
	l := dump.NewPagedLister(client, 2, "")
	l.InitialBackoff = time.Millisecond
	return l
}
